package catalog

import (
	"context"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	List(ctx context.Context, search string) ([]CategoryWithCount, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, category *Category) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountBooks(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type BookRepository interface {
	List(ctx context.Context, filter BookFilter) ([]BookWithCategory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Book, error)
	Create(ctx context.Context, book *Book) (uuid.UUID, error)
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListCovers returns every cover handle currently referenced by a book.
	ListCovers(ctx context.Context) ([]string, error)
}
