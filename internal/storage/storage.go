package storage

import (
	"context"
	"errors"
)

var (
	ErrUnavailable = errors.New("storage unavailable")
)

// Store is the flat key-value persistence layer. Values are JSON-serializable;
// Get reports absence with found=false rather than an error so callers can
// treat "never written" and "removed" identically.
type Store interface {
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}
