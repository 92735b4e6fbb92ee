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

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger.Named("CategoryRepository"),
	}
}

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) List(ctx context.Context, search string) ([]catalog.CategoryWithCount, error) {
	query := `
		SELECT c.id, c.name, c.created_at, COUNT(b.id) AS book_count
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.id
	`
	args := []interface{}{}
	if search != "" {
		query += " WHERE c.name ILIKE $1"
		args = append(args, "%"+search+"%")
	}
	query += " GROUP BY c.id, c.name, c.created_at ORDER BY c.created_at, c.id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("db error listing categories: %w", err)
	}
	defer rows.Close()

	var categories []catalog.CategoryWithCount
	for rows.Next() {
		var c catalog.CategoryWithCount
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.BookCount); err != nil {
			return nil, fmt.Errorf("db error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, created_at FROM categories WHERE id = $1
	`, id)

	var c catalog.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrNotFound
		}
		r.logger.Error("Failed to find category by id", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("db error finding category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*catalog.Category, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, created_at FROM categories WHERE name = $1
	`, name)

	var c catalog.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrNotFound
		}
		r.logger.Error("Failed to find category by name", zap.Error(err))
		return nil, fmt.Errorf("db error finding category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *catalog.Category) (uuid.UUID, error) {
	var insertedID uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1) RETURNING id
	`, category.Name).Scan(&insertedID)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrCategoryExists)
		}
		r.logger.Error("Failed to create category", zap.Error(err))
		return uuid.Nil, fmt.Errorf("db error creating category: %w", err)
	}
	return insertedID, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, name string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE categories SET name = $1 WHERE id = $2
	`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrCategoryExists)
		}
		r.logger.Error("Failed to update category", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("db error updating category: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ierr.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete category", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("db error deleting category: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ierr.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) CountBooks(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM books WHERE category_id = $1
	`, categoryID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count books in category", zap.String("id", categoryID.String()), zap.Error(err))
		return 0, fmt.Errorf("db error counting books: %w", err)
	}
	return count, nil
}
