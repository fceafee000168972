// Package blobstore provides the storage abstraction the map/reduce core's
// chunk-backing store is built on: local file slices (vector.FileVec) and,
// via package objectstore, remote object-store slices. Implementations
// must be safe for concurrent use.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction over a backend that holds immutable data
// blobs — vector backing files, in this core's case.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create opens a blob for writing. The blob is not visible to Open
	// until Close is called on the returned WritableBlob.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically in one call.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes starting at off, per io.ReaderAt semantics
	// (short reads return io.EOF alongside n > 0 data).
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange opens a streaming reader over [off, off+length).
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a handle for writing a new blob. Bytes are not durable,
// and the blob is not visible via Open, until Close returns successfully.
type WritableBlob interface {
	io.Writer
	io.Closer
	// Sync flushes any buffered bytes to the backend without closing.
	Sync() error
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice. The slice is valid until
	// the Blob is closed. This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}
