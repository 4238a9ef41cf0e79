// Package core defines the abstraction over the raw survey-file archive.
// Raw per-cycle component files (CSV exports, legacy fixed-width data) are
// stored as opaque objects keyed "<cycle>/<COMPONENT>"; loaders read them
// through this interface so the pipeline core never touches the filesystem
// or network directly.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Driver identifies a concrete archive backend.
type Driver string

const (
	// DriverFilesystem stores archives under a local directory (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 stores archives in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps archives in process memory (tests).
	DriverMemory Driver = "memory"
)

// Info describes a stored archive object.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
}

// Store is the thin object-store abstraction the loaders consume.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// ErrNotFound marks an absent archive object. Loaders translate it into an
// empty component table; it is never a pipeline failure.
var ErrNotFound = errors.New("archive: object not found")

// Key builds the canonical archive key for a cycle's component file.
func Key(cycle, component, ext string) string {
	return fmt.Sprintf("%s/%s.%s", cycle, component, ext)
}
