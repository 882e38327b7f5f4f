package local

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalSnapshotStore {
	t.Helper()
	store, err := NewLocalSnapshotStore(t.TempDir())
	require.NoError(t, err)

	tick := time.Date(2025, 7, 4, 18, 30, 0, 0, time.UTC)
	store.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return store
}

func TestLocalSnapshotStoreSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	data := []byte(`[{"spot":"Pit Stop"}]`)

	key, err := store.Save(ctx, "reviews", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "reviews_20250704T183001.000000000.json", key)

	reader, contentType, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "application/json", contentType)

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalSnapshotStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, err := store.Save(ctx, "reviews", "application/json", bytes.NewReader([]byte("[]")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))

	_, _, err = store.Get(ctx, key)
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, key))
}

func TestLocalSnapshotStoreList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var saved []string
	for range 3 {
		key, err := store.Save(ctx, "reviews", "application/json", bytes.NewReader([]byte("[]")))
		require.NoError(t, err)
		saved = append(saved, key)
	}
	_, err := store.Save(ctx, "other", "text/plain", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(store.basePath, "reviews_dir"), 0755))

	keys, err := store.List(ctx, "reviews")
	require.NoError(t, err)
	assert.Equal(t, saved, keys)
}

func TestLocalSnapshotStoreListEmpty(t *testing.T) {
	store := newTestStore(t)

	keys, err := store.List(context.Background(), "reviews")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalSnapshotStoreNotFound(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Get(context.Background(), "reviews_nonexistent.json")
	assert.Error(t, err)
}

func TestLocalSnapshotStorePathTraversal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "../outside.json"))
}

func TestLocalSnapshotStoreCancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, "reviews", "application/json", bytes.NewReader([]byte("[]")))
	assert.ErrorIs(t, err, context.Canceled)
}
