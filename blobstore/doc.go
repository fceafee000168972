// Package blobstore provides the storage abstraction the map/reduce core's
// chunk-backing store is built on.
//
// BlobStore is the interface for reading and writing immutable data blobs —
// vector backing files, in this core's case. Implementations must be safe
// for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap support
//   - MemoryStore: in-memory, for tests
//   - CachingStore: block-level read cache wrapping any other BlobStore
//
// Object-store-backed vectors (package objectstore) implement BlobStore
// against Amazon S3 and MinIO, with range reads and retry on transient
// errors.
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)      // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for writing
//	    Put(ctx, name, data) error         // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// For cloud backends, implement ReadRange for efficient partial reads:
//
//	type Blob interface {
//	    io.Closer
//	    ReadAt(ctx, p, off) (int, error)
//	    ReadRange(ctx, off, length) (io.ReadCloser, error)
//	    Size() int64
//	}
package blobstore
