// Package blob provides durable byte storage keyed by opaque,
// collision-resistant storage keys. Stores know nothing about repositories
// or versions; keys are never derived from caller-supplied filenames.
package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/google/uuid"
)

// Store is the blob storage contract shared by the S3, filesystem and
// in-memory backends.
type Store interface {
	// Put persists data under a fresh, globally unique key and returns it.
	Put(ctx context.Context, data []byte, contentType string) (string, error)

	// Get returns the bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the bytes under key. Deleting a missing key is
	// treated as success (idempotent).
	Delete(ctx context.Context, key string) error
}

// NewStorageKey generates a fresh storage key: a date prefix for operator
// friendliness plus a uuid for uniqueness.
func NewStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("blobs/%d/%02d/%02d/%s", d.Year(), int(d.Month()), d.Day(), uuid.New())
}

// validateKey rejects keys that are empty, absolute, or contain path
// traversal. Keys are always server-generated, so a failure here points at
// corrupted metadata rather than user input.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q: %w", key, common.ErrNotFound)
	}
	return nil
}
