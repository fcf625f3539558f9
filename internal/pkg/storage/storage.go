package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Get when nothing is stored under the key.
var ErrObjectNotFound = errors.New("storage: object not found")

// ErrInvalidKey is returned for keys that would escape the storage root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage stores opaque blobs under slash-separated relative keys.
type Storage interface {
	Save(ctx context.Context, key string, content io.Reader) error
	// Get returns ErrObjectNotFound when the key is absent.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}
