package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/filex"
)

// FSBlobStore is a filesystem-backed BlobStore for development and tests.
type FSBlobStore struct {
	root string
}

func NewFSBlobStore(root string) *FSBlobStore {
	return &FSBlobStore{root: root}
}

func (s *FSBlobStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FSBlobStore) Put(ctx context.Context, key string, r io.Reader) error {
	path := s.path(key)
	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return filex.WriteFileAtomic(path, r)
}

func (s *FSBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("opening blob %s: %w", key, err)
	}
	return f, nil
}

func (s *FSBlobStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	return nil
}
