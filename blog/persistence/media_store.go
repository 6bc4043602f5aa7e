package persistence

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/inkwell-blog/inkwell/blog/domain"
	"github.com/inkwell-blog/inkwell/shared/blob"
)

var _ domain.MediaStore = (*BlobMediaStore)(nil)

const (
	mediaPrefix        = "uploads/"
	defaultContentType = "application/octet-stream"
)

// BlobMediaStore implements domain.MediaStore on any blob.Store. Keys are
// time-prefixed so a repeated upload of the same filename never lands on an
// existing key.
type BlobMediaStore struct {
	store blob.Store
	now   func() time.Time
}

func NewBlobMediaStore(store blob.Store) *BlobMediaStore {
	return &BlobMediaStore{
		store: store,
		now:   time.Now,
	}
}

func (s *BlobMediaStore) Put(ctx context.Context, filename string, content []byte, contentType string) (string, error) {
	if len(content) == 0 {
		return "", domain.NewValidationError("file", "empty upload")
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	key := fmt.Sprintf("%s%d-%s", mediaPrefix, s.now().UnixMilli(), sanitizeFilename(filename))

	if err := s.store.Put(ctx, key, content, contentType); err != nil {
		return "", fmt.Errorf("failed to store media: %w", err)
	}

	return key, nil
}

func (s *BlobMediaStore) Get(ctx context.Context, key string) (*domain.Media, error) {
	data, contentType, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read media %s: %w", key, err)
	}

	if contentType == "" {
		contentType = defaultContentType
	}

	return &domain.Media{
		Key:         key,
		Content:     data,
		ContentType: contentType,
	}, nil
}

// sanitizeFilename reduces an uploaded filename to its base name with any
// character outside [A-Za-z0-9._-] replaced by '-'.
func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	return b.String()
}
