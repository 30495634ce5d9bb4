// Package storage abstracts file storage behind a Disk interface with
// local-filesystem and S3 implementations. Product images live here.
package storage

import (
	"context"
	"io"
)

// Disk is a named storage backend.
type Disk interface {
	// Put writes contents to path, creating parent directories as needed.
	Put(ctx context.Context, path string, contents []byte) error
	// PutStream writes from a reader, for uploads too large to buffer.
	PutStream(ctx context.Context, path string, r io.Reader) error
	// Get reads the full contents at path.
	Get(ctx context.Context, path string) ([]byte, error)
	// GetStream opens a reader for the contents at path.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)
	// Exists reports whether path holds an object.
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes the object at path. Deleting a missing path is not
	// an error.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL serving the object at path.
	URL(path string) string
	// Size returns the object size in bytes.
	Size(ctx context.Context, path string) (int64, error)
}
