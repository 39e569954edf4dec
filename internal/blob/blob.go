// Package blob stores uploaded file content outside the database. The
// database keeps only opaque paths returned by a Store.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/obra-coop/obranet/internal/models"
)

// Store persists raw file content and returns an opaque path for later
// retrieval.
type Store interface {
	// Put writes data under a path derived from name and returns that path.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Get returns the content previously stored at path. A missing path
	// yields models.ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)
	// Delete removes the content at path. Deleting a missing path is a no-op.
	Delete(ctx context.Context, path string) error
}

// LocalStore is a Store backed by a directory on the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

// Put writes data to a uniquely named file preserving the original
// extension. The returned path is relative to the store root.
func (s *LocalStore) Put(_ context.Context, name string, data []byte) (string, error) {
	path := uuid.New().String() + sanitizeExt(filepath.Ext(name))
	full := filepath.Join(s.root, path)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return path, nil
}

// Get reads the content stored at path.
func (s *LocalStore) Get(_ context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("blob %s: %w", path, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Delete removes the content stored at path.
func (s *LocalStore) Delete(_ context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// resolve joins path to the root and rejects traversal outside it.
func (s *LocalStore) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("blob path %q escapes store root", path)
	}
	return full, nil
}

// sanitizeExt keeps only simple alphanumeric extensions.
func sanitizeExt(ext string) string {
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return ""
		}
	}
	return strings.ToLower(ext)
}
