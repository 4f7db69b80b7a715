package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by stores used after Close
var ErrClosed = errors.New("storage is closed")

// Store is a minimal key-value persistence boundary.
// Get returns nil, nil when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
