package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/catalog"
	"github.com/bukudev/catalog-api/internal/ierr"
)

type BookRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBookRepository(db *pgxpool.Pool, logger *zap.Logger) *BookRepository {
	return &BookRepository{
		db:     db,
		logger: logger.Named("BookRepository"),
	}
}

var _ catalog.BookRepository = (*BookRepository)(nil)

const bookColumns = `b.id, b.title, b.author, b.publisher, b.year, b.category_id,
	b.isbn, b.description, b.cover, b.created_at, b.updated_at`

func (r *BookRepository) List(ctx context.Context, filter catalog.BookFilter) ([]catalog.BookWithCategory, error) {
	query := `
		SELECT ` + bookColumns + `, c.name AS category_name
		FROM books b
		LEFT JOIN categories c ON c.id = b.category_id
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(" AND b.category_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (b.title ILIKE $%d OR b.author ILIKE $%d OR c.name ILIKE $%d)", n, n, n)
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY b.created_at DESC, b.id DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list books", zap.Error(err))
		return nil, fmt.Errorf("db error listing books: %w", err)
	}
	defer rows.Close()

	var books []catalog.BookWithCategory
	for rows.Next() {
		var b catalog.BookWithCategory
		err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.Publisher, &b.Year, &b.CategoryID,
			&b.ISBN, &b.Description, &b.Cover, &b.CreatedAt, &b.UpdatedAt,
			&b.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("db error scanning book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating books: %w", err)
	}

	return books, nil
}

func (r *BookRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+bookColumns+`
		FROM books b
		WHERE b.id = $1
	`, id)

	var b catalog.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Publisher, &b.Year, &b.CategoryID,
		&b.ISBN, &b.Description, &b.Cover, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrNotFound
		}
		r.logger.Error("Failed to find book by id", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("db error finding book: %w", err)
	}

	return &b, nil
}

func (r *BookRepository) Create(ctx context.Context, book *catalog.Book) (uuid.UUID, error) {
	var insertedID uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO books (title, author, publisher, year, category_id, isbn, description, cover)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		book.Title, book.Author, book.Publisher, book.Year, book.CategoryID,
		book.ISBN, book.Description, book.Cover,
	).Scan(&insertedID)
	if err != nil {
		r.logger.Error("Failed to create book", zap.Error(err))
		return uuid.Nil, fmt.Errorf("db error creating book: %w", err)
	}

	return insertedID, nil
}

func (r *BookRepository) Update(ctx context.Context, book *catalog.Book) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE books
		SET title = $1, author = $2, publisher = $3, year = $4, category_id = $5,
		    isbn = $6, description = $7, cover = $8, updated_at = now()
		WHERE id = $9
	`,
		book.Title, book.Author, book.Publisher, book.Year, book.CategoryID,
		book.ISBN, book.Description, book.Cover, book.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update book", zap.String("id", book.ID.String()), zap.Error(err))
		return fmt.Errorf("db error updating book: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ierr.ErrNotFound
	}

	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete book", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("db error deleting book: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ierr.ErrNotFound
	}

	return nil
}

func (r *BookRepository) ListCovers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT cover FROM books WHERE cover IS NOT NULL`)
	if err != nil {
		r.logger.Error("Failed to list covers", zap.Error(err))
		return nil, fmt.Errorf("db error listing covers: %w", err)
	}
	defer rows.Close()

	var covers []string
	for rows.Next() {
		var cover string
		if err := rows.Scan(&cover); err != nil {
			return nil, fmt.Errorf("db error scanning cover: %w", err)
		}
		covers = append(covers, cover)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating covers: %w", err)
	}

	return covers, nil
}
