package storage

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned when a backend is asked for the empty key.
var ErrEmptyKey = errors.New("storage: empty key")

// KV is a tiny durable string key-value store.
// Get returns "" with a nil error when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Close() error
}
