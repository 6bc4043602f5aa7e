package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Delete when no object exists at the key.
var ErrNotFound = errors.New("blob not found")

// Store is a minimal keyed object store: opaque bytes plus a content type.
// Keys are slash-separated paths; listing is by key prefix.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}
