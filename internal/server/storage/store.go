// Package storage abstracts the object store holding encrypted portfolio
// archives. Only ciphertext ever reaches a BlobStore.
package storage

import (
	"context"
	"io"
)

// BlobStore stores and retrieves opaque blobs by key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
