package tasks

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/catalog"
	"github.com/bukudev/catalog-api/internal/storage/filestore"
	"github.com/bukudev/catalog-api/internal/storage/memstorage"
)

func TestSweepCoversRemovesOnlyOrphans(t *testing.T) {
	books := memstorage.NewBookRepository()
	store, err := filestore.NewDiskStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	age := func(handle string) {
		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(filepath.Join(store.Dir(), handle), past, past))
	}

	referenced, err := store.Store([]byte("in use"), ".jpg")
	require.NoError(t, err)
	age(referenced)
	_, err = books.Create(ctx, &catalog.Book{
		Title:  "Dune",
		Author: "Frank Herbert",
		Cover:  sql.NullString{String: referenced, Valid: true},
	})
	require.NoError(t, err)

	orphaned, err := store.Store([]byte("leaked"), ".jpg")
	require.NoError(t, err)
	age(orphaned)

	fresh, err := store.Store([]byte("just uploaded"), ".jpg")
	require.NoError(t, err)

	handler := NewSweepCoversHandler(books, store, 30*time.Minute, zap.NewNop())
	task, err := NewSweepCoversTask()
	require.NoError(t, err)
	require.NoError(t, handler.ProcessTask(ctx, task))

	_, err = os.Stat(filepath.Join(store.Dir(), referenced))
	assert.NoError(t, err, "referenced cover must survive the sweep")

	_, err = os.Stat(filepath.Join(store.Dir(), orphaned))
	assert.True(t, os.IsNotExist(err), "orphaned cover must be swept")

	_, err = os.Stat(filepath.Join(store.Dir(), fresh))
	assert.NoError(t, err, "files inside the grace window must be left alone")
}

func TestSweepCoversTaskType(t *testing.T) {
	task, err := NewSweepCoversTask()
	require.NoError(t, err)
	assert.Equal(t, TypeSweepCovers, task.Type())
}
