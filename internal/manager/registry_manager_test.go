package manager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"x0x0/internal/models"
	"x0x0/internal/storage"
	"x0x0/pkg/errors"
)

// newTestStore creates a temporary SQLite store for manager tests
func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// sampleRecord builds a complete record for the given name
func sampleRecord(name string) *models.FileRecord {
	return &models.FileRecord{
		ID:        models.DeriveFileID(name),
		Name:      name,
		Size:      1048576,
		MimeType:  "application/pdf",
		LocalURI:  "/cache/" + name,
		RemoteURL: "https://0x0.st/abcd.pdf",
		Token:     "tok123",
		Expires:   "1735689600000",
	}
}

func TestRegistryPutGetRoundTrip(t *testing.T) {
	registry := NewRegistryManager(newTestStore(t))
	ctx := context.Background()

	record := sampleRecord("report.pdf")
	require.NoError(t, registry.Put(ctx, record))

	loaded, err := registry.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record, loaded)
}

func TestRegistryPutValidation(t *testing.T) {
	registry := NewRegistryManager(newTestStore(t))
	ctx := context.Background()

	assert.Error(t, registry.Put(ctx, nil))
	assert.Error(t, registry.Put(ctx, &models.FileRecord{Name: "no-id.txt"}))
}

func TestRegistryGetMissing(t *testing.T) {
	registry := NewRegistryManager(newTestStore(t))

	_, err := registry.Get(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRecordNotFound))
}

func TestRegistryListEmpty(t *testing.T) {
	registry := NewRegistryManager(newTestStore(t))

	records, err := registry.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRegistryListSkipsCorruptEntries(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistryManager(store)
	ctx := context.Background()

	good := sampleRecord("good.pdf")
	require.NoError(t, registry.Put(ctx, good))

	// A corrupt blob written behind the registry's back must not break
	// listing of the remaining records
	require.NoError(t, store.Set(ctx, "corrupt-entry", "%%% not json %%%"))

	records, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, good.ID, records[0].ID)
}

func TestRegistryListMigratesLegacyRecords(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistryManager(store)
	ctx := context.Background()

	legacy := `{"id": "legacy1", "file": {"name": "old.png", "size": 10, "mimeType": "image/png", "uri": "/cache/old.png"}, "url": "https://0x0.st/old.png", "token": "tokold", "expires": "1"}`
	require.NoError(t, store.Set(ctx, "legacy1", legacy))

	records, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "old.png", records[0].Name)
	assert.Equal(t, "https://0x0.st/old.png", records[0].RemoteURL)
	assert.Equal(t, models.CurrentSchemaVersion, records[0].SchemaVersion)
}

func TestRegistryUpsertOnIDCollision(t *testing.T) {
	registry := NewRegistryManager(newTestStore(t))
	ctx := context.Background()

	first := sampleRecord("report.pdf")
	require.NoError(t, registry.Put(ctx, first))

	// Same display name derives the same id; last write wins
	second := sampleRecord("report.pdf")
	second.RemoteURL = "https://0x0.st/other.pdf"
	second.Token = "tok999"
	require.NoError(t, registry.Put(ctx, second))

	records, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://0x0.st/other.pdf", records[0].RemoteURL)
}

func TestRegistryRemove(t *testing.T) {
	registry := NewRegistryManager(newTestStore(t))
	ctx := context.Background()

	record := sampleRecord("report.pdf")
	require.NoError(t, registry.Put(ctx, record))
	require.NoError(t, registry.Remove(ctx, record.ID))

	_, err := registry.Get(ctx, record.ID)
	assert.True(t, errors.IsCode(err, errors.ErrRecordNotFound))

	records, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
