// Package storage defines where exported artifacts such as CSV snapshots are
// written. Implementations live in the local, gcs and memory subpackages.
package storage

import (
	"context"
	"io"
)

// BlobStore writes an artifact under path and returns a URI describing where
// it landed.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}
