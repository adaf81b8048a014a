package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when the key has never been set or
// has been removed.
var ErrNotFound = errors.New("key not found")

// KV is the local key-value persistence the session layer is built on.
// Implementations must be safe to call from a single goroutine at a time;
// no cross-process coordination is expected.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
