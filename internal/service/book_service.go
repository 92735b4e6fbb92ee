package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/catalog"
	"github.com/bukudev/catalog-api/internal/ierr"
)

type BookService struct {
	books      catalog.BookRepository
	categories catalog.CategoryRepository
	covers     catalog.CoverStore
	logger     *zap.Logger
}

func NewBookService(books catalog.BookRepository, categories catalog.CategoryRepository, covers catalog.CoverStore, logger *zap.Logger) *BookService {
	return &BookService{
		books:      books,
		categories: categories,
		covers:     covers,
		logger:     logger.Named("BookService"),
	}
}

type CoverUpload struct {
	Data []byte
	Ext  string
}

type BookInput struct {
	Title       string
	Author      string
	Publisher   *string
	Year        *int32
	CategoryID  *uuid.UUID
	ISBN        *string
	Description *string
	Cover       *CoverUpload
}

func (s *BookService) List(ctx context.Context, filter catalog.BookFilter) ([]catalog.BookWithCategory, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	books, err := s.books.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list books", zap.Error(err))
		return nil, fmt.Errorf("repository error listing books: %w", err)
	}
	return books, nil
}

func (s *BookService) Create(ctx context.Context, input *BookInput) (*catalog.Book, error) {
	if input.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, ierr.ErrNotFound) {
				return nil, fmt.Errorf("%w: category not found", ierr.ErrNotFound)
			}
			s.logger.Error("Failed to check category", zap.Error(err))
			return nil, fmt.Errorf("repository error checking category: %w", err)
		}
	}

	book := &catalog.Book{}
	applyBookInput(book, input)

	if input.Cover != nil {
		handle, err := s.covers.Store(input.Cover.Data, input.Cover.Ext)
		if err != nil {
			s.logger.Error("Failed to store cover", zap.Error(err))
			return nil, fmt.Errorf("%w: cover storage failed: %v", ierr.ErrInternalServer, err)
		}
		book.Cover = sql.NullString{String: handle, Valid: true}
	}

	insertedID, err := s.books.Create(ctx, book)
	if err != nil {
		if book.Cover.Valid {
			if delErr := s.covers.Delete(book.Cover.String); delErr != nil {
				s.logger.Warn("Failed to remove cover after aborted create", zap.Error(delErr))
			}
		}
		s.logger.Error("Failed to create book", zap.Error(err))
		return nil, fmt.Errorf("repository error creating book: %w", err)
	}
	book.ID = insertedID

	s.logger.Info("Book created", zap.String("id", insertedID.String()), zap.String("title", book.Title))
	return book, nil
}

func (s *BookService) Update(ctx context.Context, id uuid.UUID, input *BookInput) error {
	existing, err := s.books.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ierr.ErrNotFound) {
			return ierr.ErrNotFound
		}
		s.logger.Error("Failed to find book", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error finding book: %w", err)
	}

	if input.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, ierr.ErrNotFound) {
				return fmt.Errorf("%w: category not found", ierr.ErrNotFound)
			}
			return fmt.Errorf("repository error checking category: %w", err)
		}
	}

	book := &catalog.Book{ID: id, Cover: existing.Cover}
	applyBookInput(book, input)

	oldCover := ""
	if input.Cover != nil {
		handle, err := s.covers.Store(input.Cover.Data, input.Cover.Ext)
		if err != nil {
			s.logger.Error("Failed to store replacement cover", zap.Error(err))
			return fmt.Errorf("%w: cover storage failed: %v", ierr.ErrInternalServer, err)
		}
		if existing.Cover.Valid {
			oldCover = existing.Cover.String
		}
		book.Cover = sql.NullString{String: handle, Valid: true}
	}

	if err := s.books.Update(ctx, book); err != nil {
		if input.Cover != nil && book.Cover.Valid {
			if delErr := s.covers.Delete(book.Cover.String); delErr != nil {
				s.logger.Warn("Failed to remove cover after aborted update", zap.Error(delErr))
			}
		}
		s.logger.Error("Failed to update book", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error updating book: %w", err)
	}

	// The replaced blob only goes away once the row points at the new one.
	if oldCover != "" {
		if err := s.covers.Delete(oldCover); err != nil {
			s.logger.Warn("Failed to remove replaced cover, sweep will pick it up", zap.String("handle", oldCover), zap.Error(err))
		}
	}

	s.logger.Info("Book updated", zap.String("id", id.String()))
	return nil
}

func (s *BookService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.books.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ierr.ErrNotFound) {
			return ierr.ErrNotFound
		}
		s.logger.Error("Failed to find book", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error finding book: %w", err)
	}

	if err := s.books.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete book", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error deleting book: %w", err)
	}

	if existing.Cover.Valid {
		if err := s.covers.Delete(existing.Cover.String); err != nil {
			s.logger.Warn("Failed to remove cover of deleted book, sweep will pick it up", zap.String("handle", existing.Cover.String), zap.Error(err))
		}
	}

	s.logger.Info("Book deleted", zap.String("id", id.String()))
	return nil
}

func applyBookInput(book *catalog.Book, input *BookInput) {
	book.Title = input.Title
	book.Author = input.Author

	book.Publisher = sql.NullString{}
	if input.Publisher != nil {
		book.Publisher = sql.NullString{String: *input.Publisher, Valid: true}
	}
	book.Year = sql.NullInt32{}
	if input.Year != nil {
		book.Year = sql.NullInt32{Int32: *input.Year, Valid: true}
	}
	book.CategoryID = uuid.NullUUID{}
	if input.CategoryID != nil {
		book.CategoryID = uuid.NullUUID{UUID: *input.CategoryID, Valid: true}
	}
	book.ISBN = sql.NullString{}
	if input.ISBN != nil {
		book.ISBN = sql.NullString{String: *input.ISBN, Valid: true}
	}
	book.Description = sql.NullString{}
	if input.Description != nil {
		book.Description = sql.NullString{String: *input.Description, Valid: true}
	}
}
