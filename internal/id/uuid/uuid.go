// Package uuid generates pipeline run identifiers.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates time-ordered run IDs.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUID7 string, falling back to a random UUIDv4 if the
// time-based generator fails.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err == nil {
		return id.String(), nil
	}
	fallback, ferr := uuid.NewRandom()
	if ferr != nil {
		return "", fmt.Errorf("generate run id: %w (uuid4: %v)", err, ferr)
	}
	return fallback.String(), nil
}
