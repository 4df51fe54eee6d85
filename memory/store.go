// Package memory persists keyed documents for the assistant. The schedule
// book and the operator's prompt notes both live in a Store; notes are read
// through a Cache that is bootstrapped once at startup.
package memory

import (
	"context"
	"errors"
)

// Store failures. Load wraps ErrKeyNotFound for a missing key; FileStore
// wraps I/O failures in ErrLoadFailed and ErrSaveFailed.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrLoadFailed  = errors.New("load failed")
	ErrSaveFailed  = errors.New("save failed")
)

// Store translates between external storage and a flat key-value namespace.
// Implementations do no caching; every call performs I/O.
type Store interface {
	// List returns all available keys in sorted order.
	List(ctx context.Context) ([]string, error)
	// Load retrieves entries for the specified keys. A missing key fails with
	// ErrKeyNotFound.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save persists entries, creating or overwriting as needed.
	Save(ctx context.Context, entries ...Entry) error
	// Delete removes entries. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
