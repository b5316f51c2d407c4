package manager

import (
	"context"
	stderrors "errors"
	"fmt"

	"x0x0/internal/models"
	"x0x0/internal/storage"
	"x0x0/pkg/errors"
	"x0x0/pkg/logger"
)

// RegistryManager interface defines the contract for the local file registry.
// It is the single authority over persisted FileRecords; callers never touch
// the key-value store directly.
type RegistryManager interface {
	// Put upserts a record keyed by its id (last write wins on collision)
	Put(ctx context.Context, record *models.FileRecord) error

	// Get retrieves one record by id
	Get(ctx context.Context, id string) (*models.FileRecord, error)

	// List retrieves all readable records; individually corrupt entries are
	// skipped with a warning rather than failing the whole listing
	List(ctx context.Context) ([]*models.FileRecord, error)

	// Remove deletes the record for id from storage
	Remove(ctx context.Context, id string) error
}

// RegistryManagerImpl implements the RegistryManager interface
type RegistryManagerImpl struct {
	store  storage.Store
	logger *logger.Logger
}

// NewRegistryManager creates a new RegistryManager instance
func NewRegistryManager(store storage.Store) *RegistryManagerImpl {
	return &RegistryManagerImpl{
		store:  store,
		logger: logger.NewWithComponent("registry"),
	}
}

// Put upserts a record keyed by its id
func (rm *RegistryManagerImpl) Put(ctx context.Context, record *models.FileRecord) error {
	if record == nil {
		return errors.NewAppError(errors.ErrInvalidInput, "file record cannot be nil", nil)
	}
	if record.ID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "file record must have an id", nil)
	}

	data, err := record.ToJSON()
	if err != nil {
		return errors.WrapError(err, errors.ErrInternalError, "failed to serialize file record")
	}

	if err := rm.store.Set(ctx, record.ID, data); err != nil {
		return errors.WrapError(err, errors.ErrStorageError, "failed to persist file record")
	}

	rm.logger.InfoWithFields("File record stored", map[string]interface{}{
		"id":   record.ID,
		"name": record.Name,
	})
	return nil
}

// Get retrieves one record by id
func (rm *RegistryManagerImpl) Get(ctx context.Context, id string) (*models.FileRecord, error) {
	if id == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "file id cannot be empty", nil)
	}

	data, err := rm.store.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrKeyNotFound) {
			return nil, errors.NewAppError(errors.ErrRecordNotFound, fmt.Sprintf("no record for id %s", id), err)
		}
		return nil, errors.WrapError(err, errors.ErrStorageError, "failed to read file record")
	}

	record, err := models.DecodeFileRecord(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrRecordCorrupt, "stored file record is corrupt")
	}
	return record, nil
}

// List retrieves all readable records. A corrupt entry is logged and skipped;
// the listing itself only fails when the storage layer does.
func (rm *RegistryManagerImpl) List(ctx context.Context) ([]*models.FileRecord, error) {
	keys, err := rm.store.Keys(ctx)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrStorageError, "failed to list file records")
	}

	records := []*models.FileRecord{}
	for _, key := range keys {
		data, err := rm.store.Get(ctx, key)
		if err != nil {
			// The entry vanished between Keys and Get, or the read failed;
			// either way the rest of the listing is still useful
			rm.logger.WarnWithError(fmt.Sprintf("Skipping unreadable record %s", key), err)
			continue
		}

		record, err := models.DecodeFileRecord(data)
		if err != nil {
			rm.logger.WarnWithError(fmt.Sprintf("Skipping corrupt record %s", key), err)
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// Remove deletes the record for id from storage
func (rm *RegistryManagerImpl) Remove(ctx context.Context, id string) error {
	if id == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "file id cannot be empty", nil)
	}
	if err := rm.store.Remove(ctx, id); err != nil {
		return errors.WrapError(err, errors.ErrStorageError, "failed to remove file record")
	}
	rm.logger.InfoWithFields("File record removed", map[string]interface{}{"id": id})
	return nil
}
