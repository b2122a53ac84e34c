// internal/storage/store.go
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("key not found")

// Store is the day-log key-value store. One key per calendar day, one JSON
// array per value. Set always overwrites the whole value.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete reports whether the key was actually removed.
	Delete(ctx context.Context, key string) (bool, error)
	Close() error
}
