// Package gcs provides a BlobStore backed by Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Config captures the parameters required to write to GCS.
type Config struct {
	Bucket string
	// Prefix is prepended to every object name.
	Prefix string
}

// BlobStore writes artifacts to a configured GCS bucket.
type BlobStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a GCS-backed blob store from an existing client.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &BlobStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Dial creates a storage client using Application Default Credentials (or
// the supplied options) and wraps it in a BlobStore. Callers own Close.
func Dial(ctx context.Context, cfg Config, opts ...option.ClientOption) (*BlobStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	store, err := New(client, cfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying client.
func (s *BlobStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close gcs client: %w", err)
	}
	return nil
}

// PutObject uploads data to the configured bucket and returns a gs:// URI.
func (s *BlobStore) PutObject(ctx context.Context, name string, contentType string, r io.Reader) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("path is required")
	}
	object := name
	if s.prefix != "" {
		object = path.Join(s.prefix, name)
	}
	writer := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}
	if _, err := io.Copy(writer, r); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return "", fmt.Errorf("copy object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("copy object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, object), nil
}
