package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a temporary SQLite store for testing
func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, dbPath
}

func TestNewSQLiteStoreEmptyPath(t *testing.T) {
	_, err := NewSQLiteStore("")
	assert.Error(t, err)
}

func TestSetAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key1", "value1"))

	value, err := store.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", value)
}

func TestGetMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSetOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key1", "first"))
	require.NoError(t, store.Set(ctx, "key1", "second"))

	value, err := store.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestSetEmptyKey(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Set(context.Background(), "", "value"))
}

func TestRemove(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key1", "value1"))
	require.NoError(t, store.Remove(ctx, "key1"))

	_, err := store.Get(ctx, "key1")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Removing a missing key is not an error
	assert.NoError(t, store.Remove(ctx, "key1"))
}

func TestKeys(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, store.Set(ctx, "b", "2"))
	require.NoError(t, store.Set(ctx, "a", "1"))

	keys, err = store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestConfigOperations(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetConfig(ctx, "theme")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.SetConfig(ctx, "theme", "dark"))

	value, err := store.GetConfig(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", value)

	// Config entries live in their own table, separate from records
	_, err = store.Get(ctx, "theme")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "key1", "value1"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", value)
}
