package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/ierr"
	"github.com/bukudev/catalog-api/internal/storage/memstorage"
)

func newCatalogStores(t *testing.T) (*memstorage.CategoryRepository, *memstorage.BookRepository) {
	t.Helper()
	books := memstorage.NewBookRepository()
	categories := memstorage.NewCategoryRepository(books)
	books.Bind(categories)
	return categories, books
}

func TestCategoryServiceCreate(t *testing.T) {
	categories, _ := newCatalogStores(t)
	svc := NewCategoryService(categories, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "Fiction")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = svc.Create(ctx, "Fiction")
	assert.ErrorIs(t, err, ierr.ErrConflict)
	assert.ErrorIs(t, err, ierr.ErrCategoryExists)

	listed, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(0), listed[0].BookCount)
}

func TestCategoryServiceListSearch(t *testing.T) {
	categories, _ := newCatalogStores(t)
	svc := NewCategoryService(categories, zap.NewNop())
	ctx := context.Background()

	for _, name := range []string{"Science Fiction", "History", "Science"} {
		_, err := svc.Create(ctx, name)
		require.NoError(t, err)
	}

	listed, err := svc.List(ctx, "science")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestCategoryServiceUpdate(t *testing.T) {
	categories, _ := newCatalogStores(t)
	svc := NewCategoryService(categories, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "Fiction")
	require.NoError(t, err)
	other, err := svc.Create(ctx, "History")
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, created.ID, "Literary Fiction"))

	err = svc.Update(ctx, other.ID, "Literary Fiction")
	assert.ErrorIs(t, err, ierr.ErrConflict)

	err = svc.Update(ctx, uuid.New(), "Ghost")
	assert.ErrorIs(t, err, ierr.ErrNotFound)
}

func TestCategoryServiceDeleteInUse(t *testing.T) {
	categories, books := newCatalogStores(t)
	svc := NewCategoryService(categories, zap.NewNop())
	bookSvc := NewBookService(books, categories, discardCovers{}, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "Fiction")
	require.NoError(t, err)

	_, err = bookSvc.Create(ctx, &BookInput{
		Title:      "Dune",
		Author:     "Frank Herbert",
		CategoryID: &created.ID,
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, ierr.ErrConflict)
	assert.ErrorIs(t, err, ierr.ErrCategoryInUse)

	// Still listable with its count intact.
	listed, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(1), listed[0].BookCount)

	empty, err := svc.Create(ctx, "History")
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, empty.ID))
}
