package manager

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"x0x0/internal/models"
	"x0x0/internal/storage"
	"x0x0/pkg/errors"
	"x0x0/pkg/logger"
)

const shareHistoryConfigKey = "share_history"

// ShareSheet is the platform share integration: handing a payload to it is
// fire-and-forget, no result comes back
type ShareSheet interface {
	Share(title, message string) error
}

// ShareManager defines the interface for sharing uploaded files
type ShareManager interface {
	// ShareFile hands the record's URL to the platform share sheet and
	// appends a share record to the local history
	ShareFile(ctx context.Context, record *models.FileRecord) (*models.ShareRecord, error)

	// GetShareHistory retrieves all share records for a file
	GetShareHistory(ctx context.Context, fileID string) ([]*models.ShareRecord, error)
}

// ShareManagerImpl implements ShareManager interface
type ShareManagerImpl struct {
	store  storage.Store
	sheet  ShareSheet
	logger *logger.Logger
}

// NewShareManager creates a new ShareManager instance
func NewShareManager(store storage.Store, sheet ShareSheet) *ShareManagerImpl {
	return &ShareManagerImpl{
		store:  store,
		sheet:  sheet,
		logger: logger.NewWithComponent("share"),
	}
}

// ShareFile hands the record's URL to the platform share sheet
func (sm *ShareManagerImpl) ShareFile(ctx context.Context, record *models.FileRecord) (*models.ShareRecord, error) {
	if record == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "file record cannot be nil", nil)
	}
	if record.RemoteURL == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "file record has no remote URL to share", nil)
	}

	if sm.sheet != nil {
		if err := sm.sheet.Share("Share URL", record.RemoteURL); err != nil {
			return nil, errors.WrapError(err, errors.ErrInternalError, "sharing failed")
		}
	}

	share := &models.ShareRecord{
		ID:         uuid.NewString(),
		FileID:     record.ID,
		RemoteURL:  record.RemoteURL,
		Message:    record.Name,
		SharedDate: time.Now(),
	}

	if err := sm.appendHistory(ctx, share); err != nil {
		// History is best effort; the share itself already happened
		sm.logger.WarnWithError("Failed to record share history", err)
	}

	return share, nil
}

// GetShareHistory retrieves all share records for a file
func (sm *ShareManagerImpl) GetShareHistory(ctx context.Context, fileID string) ([]*models.ShareRecord, error) {
	if fileID == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "file ID cannot be empty", nil)
	}

	history, err := sm.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	shares := []*models.ShareRecord{}
	for _, share := range history {
		if share.FileID == fileID {
			shares = append(shares, share)
		}
	}
	return shares, nil
}

// loadHistory reads the full share history from the config table
func (sm *ShareManagerImpl) loadHistory(ctx context.Context) ([]*models.ShareRecord, error) {
	data, err := sm.store.GetConfig(ctx, shareHistoryConfigKey)
	if err != nil {
		if stderrors.Is(err, storage.ErrKeyNotFound) {
			return []*models.ShareRecord{}, nil
		}
		return nil, errors.WrapError(err, errors.ErrStorageError, "failed to load share history")
	}

	var history []*models.ShareRecord
	if err := json.Unmarshal([]byte(data), &history); err != nil {
		return nil, errors.WrapError(err, errors.ErrRecordCorrupt, "share history is corrupt")
	}
	return history, nil
}

// appendHistory persists one more share record
func (sm *ShareManagerImpl) appendHistory(ctx context.Context, share *models.ShareRecord) error {
	history, err := sm.loadHistory(ctx)
	if err != nil {
		return err
	}
	history = append(history, share)

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to serialize share history: %w", err)
	}
	return sm.store.SetConfig(ctx, shareHistoryConfigKey, string(data))
}
