// Package storage keeps highlight video objects. Production uses MinIO; local
// development without an object store falls back to a directory on disk.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// HighlightPrefix is the key prefix under which highlight videos are stored.
const HighlightPrefix = "highlights/"

// MediaStore stores and removes media objects by key.
type MediaStore interface {
	// Put stores r under key and returns the URL clients should fetch it from.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// NewHighlightKey returns a fresh object key for an uploaded file, keeping
// the lowercased extension of filename.
func NewHighlightKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return HighlightPrefix + uuid.NewString() + ext
}
