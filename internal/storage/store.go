// Package storage persists uploaded chat attachments and serves back the
// public URL a delivery frame references.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for an attachment storage backend.
type Store interface {
	// Save writes the attachment under the given key and returns its
	// public URL.
	Save(ctx context.Context, key, contentType string, reader io.Reader) (string, error)
}

// ObjectKey derives a collision-free storage key for an uploaded file,
// keeping the original extension so browsers render the attachment inline.
func ObjectKey(filename string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), filepath.Ext(filename))
}
