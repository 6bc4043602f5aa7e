package persistence

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/inkwell-blog/inkwell/blog/domain"
	"github.com/inkwell-blog/inkwell/shared/blob"
)

func TestBlobMediaStore_PutGetRoundTrip(t *testing.T) {
	store := NewBlobMediaStore(blob.NewMemStore())
	ctx := context.Background()
	content := []byte{0x89, 0x50, 0x4e, 0x47}

	key, err := store.Put(ctx, "a.png", content, "image/png")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if !strings.HasPrefix(key, "uploads/") || !strings.HasSuffix(key, "-a.png") {
		t.Errorf("unexpected key shape: %q", key)
	}

	media, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(media.Content, content) {
		t.Errorf("content mismatch: got %v", media.Content)
	}
	if media.ContentType != "image/png" {
		t.Errorf("got content type %q, want image/png", media.ContentType)
	}
}

func TestBlobMediaStore_RepeatedUploadGetsFreshKey(t *testing.T) {
	store := NewBlobMediaStore(blob.NewMemStore())
	ts := time.UnixMilli(1700000000000)
	store.now = func() time.Time {
		ts = ts.Add(time.Millisecond)
		return ts
	}

	k1, err := store.Put(context.Background(), "a.png", []byte("one"), "image/png")
	if err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	k2, err := store.Put(context.Background(), "a.png", []byte("two"), "image/png")
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	if k1 == k2 {
		t.Errorf("repeated upload reused key %q", k1)
	}
}

func TestBlobMediaStore_SanitizesFilename(t *testing.T) {
	store := NewBlobMediaStore(blob.NewMemStore())

	key, err := store.Put(context.Background(), "../evil name!.png", []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if strings.Contains(key, "..") || strings.Contains(key, " ") || strings.Contains(key, "!") {
		t.Errorf("key not sanitized: %q", key)
	}
}

func TestBlobMediaStore_EmptyUploadRejected(t *testing.T) {
	store := NewBlobMediaStore(blob.NewMemStore())

	_, err := store.Put(context.Background(), "a.png", nil, "image/png")
	if !domain.IsValidation(err) {
		t.Errorf("got %v, want ValidationError", err)
	}
}

func TestBlobMediaStore_GetMissing(t *testing.T) {
	store := NewBlobMediaStore(blob.NewMemStore())

	_, err := store.Get(context.Background(), "uploads/nope.png")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestBlobMediaStore_DefaultsContentType(t *testing.T) {
	store := NewBlobMediaStore(blob.NewMemStore())
	ctx := context.Background()

	key, err := store.Put(ctx, "blob.bin", []byte("x"), "")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	media, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if media.ContentType != "application/octet-stream" {
		t.Errorf("got content type %q, want application/octet-stream", media.ContentType)
	}
}
