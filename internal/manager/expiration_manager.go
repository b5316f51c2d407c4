package manager

import (
	"time"

	"x0x0/internal/models"
)

// ExpirationManager interface defines the contract for expiry display logic.
// Expiry is purely informational: the host deletes expired files on its own
// schedule and this client performs no cleanup of its own records.
type ExpirationManager interface {
	// IsExpired reports whether the record's host-supplied expiry has passed.
	// A record without a parseable expiry is never considered expired.
	IsExpired(record *models.FileRecord) bool

	// TimeUntilExpiration returns the remaining time before expiry; false
	// when the record has no parseable expiry
	TimeUntilExpiration(record *models.FileRecord) (time.Duration, bool)

	// FormatExpiry renders the record's expiry for display, or "unknown"
	FormatExpiry(record *models.FileRecord) string
}

// ExpirationManagerImpl implements the ExpirationManager interface
type ExpirationManagerImpl struct {
	now func() time.Time
}

// NewExpirationManager creates a new ExpirationManager instance
func NewExpirationManager() *ExpirationManagerImpl {
	return &ExpirationManagerImpl{now: time.Now}
}

// IsExpired reports whether the record's host-supplied expiry has passed
func (em *ExpirationManagerImpl) IsExpired(record *models.FileRecord) bool {
	expires, err := record.ExpiresTime()
	if err != nil {
		return false
	}
	return em.now().After(expires)
}

// TimeUntilExpiration returns the remaining time before expiry
func (em *ExpirationManagerImpl) TimeUntilExpiration(record *models.FileRecord) (time.Duration, bool) {
	expires, err := record.ExpiresTime()
	if err != nil {
		return 0, false
	}
	return expires.Sub(em.now()), true
}

// FormatExpiry renders the record's expiry for display
func (em *ExpirationManagerImpl) FormatExpiry(record *models.FileRecord) string {
	expires, err := record.ExpiresTime()
	if err != nil {
		return "unknown"
	}
	return models.FormatExpiry(expires)
}
