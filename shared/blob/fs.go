package blob

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var _ Store = (*FSStore)(nil)

// ctSuffix is appended to a key's file name to persist its content type
// alongside the data file.
const ctSuffix = ".ct"

// FSStore implements Store on a local directory. Intended for development and
// single-host deployments; keys map directly onto relative file paths.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// path resolves a key inside the store directory, rejecting traversal.
func (s *FSStore) path(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid blob key: %s", key)
	}
	return filepath.Join(s.dir, cleaned), nil
}

func (s *FSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create blob subdirectory: %w", err)
	}

	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}

	if err := os.WriteFile(p+ctSuffix, []byte(contentType), 0644); err != nil {
		return fmt.Errorf("failed to write blob content type %s: %w", key, err)
	}

	return nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to read blob %s: %w", key, err)
	}

	ct, err := os.ReadFile(p + ctSuffix)
	if err != nil && !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("failed to read blob content type %s: %w", key, err)
	}

	return data, string(ct), nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove blob %s: %w", key, err)
	}

	if err := os.Remove(p + ctSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove blob content type %s: %w", key, err)
	}

	return nil
}

func (s *FSStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ctSuffix) {
			return nil
		}

		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs under %s: %w", prefix, err)
	}

	sort.Strings(keys)
	return keys, nil
}
