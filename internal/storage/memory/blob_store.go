// Package memory keeps artifacts in process memory, for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// BlobStore stores artifacts in-memory and returns pseudo URIs.
type BlobStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	err  error
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{data: make(map[string][]byte)}
}

// FailWith makes every subsequent PutObject return err.
func (s *BlobStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// PutObject persists the content and returns a URI.
func (s *BlobStore) PutObject(_ context.Context, path string, _ string, data io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return "", s.err
	}
	byteData, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("failed to read data from reader: %w", err)
	}
	s.data[path] = byteData
	return fmt.Sprintf("memory://%s", path), nil
}

// Object returns the stored content for path.
func (s *BlobStore) Object(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[path]
	return append([]byte(nil), data...), ok
}

// Paths lists stored object paths.
func (s *BlobStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.data))
	for p := range s.data {
		paths = append(paths, p)
	}
	return paths
}
