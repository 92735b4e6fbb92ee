package filestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestDiskStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	handle, err := store.Store([]byte("jpegdata"), ".jpg")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(handle))
	assert.NotContains(t, handle, string(os.PathSeparator))

	data, err := os.ReadFile(filepath.Join(store.Dir(), handle))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegdata"), data)

	require.NoError(t, store.Delete(handle))
	_, err = os.Stat(filepath.Join(store.Dir(), handle))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStoreDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	handle, err := store.Store([]byte("x"), ".png")
	require.NoError(t, err)
	require.NoError(t, store.Delete(handle))
	assert.NoError(t, store.Delete(handle), "deleting an already gone blob is not an error")
}

func TestDiskStoreRejectsPathHandles(t *testing.T) {
	store := newTestStore(t)

	outside := filepath.Join(filepath.Dir(store.Dir()), "victim")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	for _, handle := range []string{"", ".", "..", "../victim", "sub/child", `sub\child`} {
		assert.Error(t, store.Delete(handle), "handle %q must be rejected", handle)
	}

	_, err := os.Stat(outside)
	assert.NoError(t, err, "file outside the store directory must survive")
}

func TestDiskStoreStoreSanitizesExt(t *testing.T) {
	store := newTestStore(t)

	handle, err := store.Store([]byte("x"), "../../evil.sh")
	require.NoError(t, err)
	assert.Equal(t, ".sh", filepath.Ext(handle))
	assert.NotContains(t, handle, "/")

	_, err = os.Stat(filepath.Join(store.Dir(), handle))
	assert.NoError(t, err)
}

func TestDiskStoreListOlderThan(t *testing.T) {
	store := newTestStore(t)

	oldHandle, err := store.Store([]byte("old"), ".jpg")
	require.NoError(t, err)
	newHandle, err := store.Store([]byte("new"), ".jpg")
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(store.Dir(), oldHandle), past, past))

	handles, err := store.ListOlderThan(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{oldHandle}, handles)
	assert.NotContains(t, handles, newHandle)
}
