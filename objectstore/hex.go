package objectstore

import (
	"context"
	"encoding/binary"
	"io"
	"strings"
)

// HexSuffix marks a vector's logical name as a packed, ValueArray-style
// blob carrying a small binary header before its chunk data begins,
// mirroring PersistS3's ".hex" special case (PersistS3.java:53,87,137):
// loadKey, fileLoad, and lazyArrayChunk all special-case keys ending in
// ".hex" and shift every chunk offset past the header.
const HexSuffix = ".hex"

// IsHexName reports whether name carries a .hex header.
func IsHexName(name string) bool {
	return strings.HasSuffix(name, HexSuffix)
}

// hexPrefixLen is the width of the length-prefix written before a .hex
// blob's header bytes: a big-endian uint32 byte count, read once at
// Open time so every subsequent ReadAt/ReadRange can shift by it
// without re-reading the header on every call.
const hexPrefixLen = 4

// WrapHex inspects name and, if it carries a .hex suffix, reads the
// header-length prefix off the front of blob and returns a Blob that
// transparently shifts every offset past it — the Go analogue of
// fileLoad's "skip += value_len" (PersistS3.java:87-90) and
// lazyArrayChunk's "rem -= value_len" (PersistS3.java:137-139). Callers
// that don't pass a .hex name get blob back unchanged.
func WrapHex(ctx context.Context, name string, blob Blob) (Blob, error) {
	if !IsHexName(name) {
		return blob, nil
	}

	prefix := make([]byte, hexPrefixLen)
	if _, err := blob.ReadAt(ctx, prefix, 0); err != nil && err != io.EOF {
		return nil, err
	}
	headerLen := int64(binary.BigEndian.Uint32(prefix))
	return &hexBlob{inner: blob, headerOffset: hexPrefixLen + headerLen}, nil
}

// PutHex writes a .hex blob: the 4-byte header-length prefix, the
// header bytes, then the packed chunk data — the inverse of WrapHex.
func PutHex(ctx context.Context, store Store, name string, header, data []byte) error {
	buf := make([]byte, hexPrefixLen+len(header)+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(header)))
	copy(buf[hexPrefixLen:], header)
	copy(buf[hexPrefixLen+len(header):], data)
	return store.Put(ctx, name, buf)
}

// hexBlob shifts every read past a .hex blob's length-prefixed header.
type hexBlob struct {
	inner        Blob
	headerOffset int64
}

func (b *hexBlob) Close() error { return b.inner.Close() }
func (b *hexBlob) Size() int64  { return b.inner.Size() - b.headerOffset }

func (b *hexBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	return b.inner.ReadAt(ctx, p, off+b.headerOffset)
}

func (b *hexBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return b.inner.ReadRange(ctx, off+b.headerOffset, length)
}

// ReadRangeProgress forwards to inner's ReadRangeProgress, shifted past
// the header, if inner implements ProgressReader; otherwise it falls
// back to RangeReaderWithProgress's plain-ReadRange behavior so wrapping
// a .hex name never silently drops progress reporting.
func (b *hexBlob) ReadRangeProgress(ctx context.Context, off, length int64, progress ProgressFunc) (io.ReadCloser, error) {
	if pr, ok := b.inner.(ProgressReader); ok {
		return pr.ReadRangeProgress(ctx, off+b.headerOffset, length, progress)
	}
	return RangeReaderWithProgress(ctx, b.inner, off+b.headerOffset, length, progress)
}
