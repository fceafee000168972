// Package mmap provides memory-mapped file access for zero-copy reads
// of file-backed chunked vectors.
//
// # Overview
//
// Memory mapping lets blobstore.LocalStore serve a column's chunk
// bytes straight out of the page cache rather than copying them
// through a read(2) buffer on every access — important for the
// map/reduce core, where the same file-backed vector is opened
// independently by every local fork/join leaf that homes a chunk.
//
// # Usage
//
//	m, err := mmap.Open("column.i32")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy access to the whole file
//	data := m.Bytes()
//
//	// A view into one chunk's byte range
//	region, _ := m.Region(offset, size)
//
//	// Hint the kernel about this chunk's access pattern
//	m.Advise(mmap.AccessSequential)
//
// # Platform support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints.
//   - Windows: CreateFileMapping/MapViewOfFile (madvise is a no-op).
//
// # Thread safety
//
// Mapping and Region are safe for concurrent read access. Close is
// idempotent and protected by atomic operations. Callers must not
// access Bytes() after Close returns.
package mmap
