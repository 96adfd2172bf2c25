package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTargetNotFound is returned when a repository root or file passed to a
	// request does not exist.
	ErrTargetNotFound = errors.New("target not found")

	// ErrInvalidChunk marks a chunk that breaks the id/content invariant.
	ErrInvalidChunk = errors.New("invalid chunk")
)

// ValidateChunk rejects a chunk whose id or content is blank.
func ValidateChunk(c Chunk) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: empty id (file %q, kind %s)", ErrInvalidChunk, c.File, c.Kind)
	}
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: empty content for %s (file %q)", ErrInvalidChunk, c.ID, c.File)
	}
	return nil
}
