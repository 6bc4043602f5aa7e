package domain

import (
	"context"
)

// Media represents an uploaded file. Once written under its key it is never
// rewritten, so served media can be cached indefinitely. The upload instant
// lives in the key's timestamp prefix rather than a field of its own.
type Media struct {
	Key         string
	Content     []byte
	ContentType string
}

type MediaStore interface {
	// Put stores the bytes under a freshly generated collision-resistant key
	// derived from filename and returns that key.
	Put(ctx context.Context, filename string, content []byte, contentType string) (string, error)

	// Get retrieves a stored media object by key.
	Get(ctx context.Context, key string) (*Media, error)
}
