package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"x0x0/internal/models"
	"x0x0/internal/remote"
	"x0x0/pkg/errors"
	"x0x0/pkg/logger"
)

// CacheManager interface defines the contract for the local file cache. The
// on-device copy referenced by a record can be purged at any time; before a
// file is opened for viewing the cache must be able to restore it from the
// remote URL.
type CacheManager interface {
	// EnsureLocal returns a usable local path for the record's content,
	// re-fetching it from the remote URL when the cached copy is gone. The
	// registry is never mutated.
	EnsureLocal(ctx context.Context, record *models.FileRecord) (string, error)

	// HasLocal reports whether the record's cached copy currently exists
	HasLocal(record *models.FileRecord) bool
}

// CacheManagerImpl implements the CacheManager interface
type CacheManagerImpl struct {
	client   remote.Client
	cacheDir string
	logger   *logger.Logger
}

// NewCacheManager creates a new CacheManager instance
func NewCacheManager(client remote.Client, cacheDir string) *CacheManagerImpl {
	return &CacheManagerImpl{
		client:   client,
		cacheDir: cacheDir,
		logger:   logger.NewWithComponent("cache"),
	}
}

// HasLocal reports whether the record's cached copy currently exists
func (cm *CacheManagerImpl) HasLocal(record *models.FileRecord) bool {
	path := cm.localPath(record)
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureLocal returns a usable local path for the record's content
func (cm *CacheManagerImpl) EnsureLocal(ctx context.Context, record *models.FileRecord) (string, error) {
	if record == nil {
		return "", errors.NewAppError(errors.ErrInvalidInput, "file record cannot be nil", nil)
	}

	path := cm.localPath(record)
	if cm.HasLocal(record) {
		return path, nil
	}

	if record.RemoteURL == "" {
		return "", errors.NewAppError(errors.ErrCacheRefetchFailed,
			fmt.Sprintf("cached copy of %s is gone and the record has no remote URL", record.Name), nil)
	}

	cm.logger.InfoWithFields("Cached copy missing, re-fetching from remote", map[string]interface{}{
		"id":   record.ID,
		"name": record.Name,
	})

	if err := cm.client.Download(ctx, record.RemoteURL, path); err != nil {
		return "", errors.WrapError(err, errors.ErrCacheRefetchFailed,
			fmt.Sprintf("failed to re-fetch %s", record.Name))
	}
	return path, nil
}

// localPath resolves the cache path for a record. Records keep the path they
// were created with; a record without one gets a stable path under the cache
// directory.
func (cm *CacheManagerImpl) localPath(record *models.FileRecord) string {
	if record.LocalURI != "" {
		return record.LocalURI
	}
	return filepath.Join(cm.cacheDir, record.ID+"-"+filepath.Base(record.Name))
}
