package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no entry exists for the key
var ErrKeyNotFound = errors.New("key not found")

// Store interface defines the contract for the local key-value persistence
// layer. File records are stored one entry per record, keyed by the record id;
// the config surface holds application settings and other small values.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any existing entry
	Set(ctx context.Context, key, value string) error

	// Remove deletes the entry for key; removing a missing key is not an error
	Remove(ctx context.Context, key string) error

	// Keys lists all record keys in storage order
	Keys(ctx context.Context) ([]string, error)

	// Configuration operations
	SetConfig(ctx context.Context, key, value string) error
	GetConfig(ctx context.Context, key string) (string, error)

	// Store lifecycle
	Close() error
}
