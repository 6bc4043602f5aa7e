package blob

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

// stores under test share one contract; S3Store is exercised against real
// buckets out of band.
func testStores(t *testing.T) map[string]Store {
	t.Helper()

	fsStore, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create fs store: %v", err)
	}

	return map[string]Store{
		"memory": NewMemStore(),
		"fs":     fsStore,
	}
}

func TestStore_PutGet(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := store.Put(ctx, "posts/p1/meta.json", []byte(`{"id":"p1"}`), "application/json")
			if err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			data, ct, err := store.Get(ctx, "posts/p1/meta.json")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !bytes.Equal(data, []byte(`{"id":"p1"}`)) {
				t.Errorf("got data %q", data)
			}
			if ct != "application/json" {
				t.Errorf("got content type %q, want application/json", ct)
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := store.Get(context.Background(), "nope")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.Put(ctx, "uploads/a.png", []byte{1, 2, 3}, "image/png"); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			if err := store.Delete(ctx, "uploads/a.png"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, _, err := store.Get(ctx, "uploads/a.png"); !errors.Is(err, ErrNotFound) {
				t.Errorf("got %v after delete, want ErrNotFound", err)
			}
			if err := store.Delete(ctx, "uploads/a.png"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second delete got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_List(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, key := range []string{"slugs/b-post", "slugs/a-post", "posts/p1/meta.json"} {
				if err := store.Put(ctx, key, []byte("x"), "text/plain"); err != nil {
					t.Fatalf("Put %s failed: %v", key, err)
				}
			}

			keys, err := store.List(ctx, "slugs/")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(keys) != 2 {
				t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
			}
			if keys[0] != "slugs/a-post" || keys[1] != "slugs/b-post" {
				t.Errorf("got keys %v, want sorted slugs", keys)
			}
		})
	}
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create fs store: %v", err)
	}

	if err := store.Put(context.Background(), "../escape", []byte("x"), ""); err == nil {
		t.Error("expected error for traversal key")
	}
}
