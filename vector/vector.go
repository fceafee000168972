// Package vector implements the map/reduce core's data model: an immutable
// logical column partitioned into chunks (spec.md §3), in its three kinds
// — read-only file-backed, appendable (task output, finalized on
// completion), and new/materialized (write-once, built inside a single map
// call). Package objectstore defines no Vector of its own: its Adapter
// exposes an object store as a blobstore.BlobStore a FileVec can read.
package vector

import (
	"context"
	"fmt"

	"github.com/distcol/mrengine/chunk"
	"github.com/distcol/mrengine/codec"
	"github.com/google/uuid"
)

// Vector is an immutable logical column with total length N rows,
// partitioned into an ordered sequence of chunks.
type Vector interface {
	// ID identifies the vector for chunk-key construction.
	ID() uuid.UUID
	// Length returns the total row count.
	Length() int64
	// NChunks returns the number of chunks the vector is partitioned into.
	NChunks() int
	// Writable reports whether new chunks can still be appended.
	Writable() bool
	// Readable reports whether the vector's metadata has been published
	// and is safe to read from any node.
	Readable() bool
	// Chunk2StartElem maps a chunk index to its starting row.
	Chunk2StartElem(cidx int) int64
	// Elem2ChunkIdx maps a row index to its chunk index.
	Elem2ChunkIdx(row int64) int
	// ChunkKey returns the opaque key addressing chunk cidx.
	ChunkKey(cidx int) chunk.Key
	// Elem2BV decodes chunk cidx (which starts at row start) into a
	// ChunkView ready for map(). Off-home chunks (not homed on the
	// current node) may legitimately be skipped by the caller before
	// this is reached; Elem2BV itself always attempts the decode.
	Elem2BV(ctx context.Context, start int64, cidx int) (ChunkView, error)
}

// ChunkView is a window over one chunk: a start row, a length, and the
// chunk's bytes as stored. The Codec field records how those bytes are
// encoded; Int32s decodes them, and callers that re-encode
// (AppendableVec) can match the vector's storage convention.
type ChunkView struct {
	StartRow int64
	Len      int
	Data     []byte
	Codec    codec.Kind
}

// Int32s decodes the chunk's payload per its Codec (a no-op for Raw)
// and views the result as a slice of little-endian int32 values, for
// user map() functions operating on int32 columns (e.g. the S1/S2
// testable scenarios). Every call allocates a new []int32; non-Raw
// codecs are also decompressed into a temporary buffer first.
func (v ChunkView) Int32s() []int32 {
	data, err := codec.DecodeChunk(v.Codec, v.Data)
	if err != nil {
		// Decode failures only arise from corrupt or mismatched codec
		// bytes, never from Raw data; callers operate on decoded int32s
		// and have no way to propagate an error from this accessor, so
		// an empty result is the only safe signal short of a panic.
		return nil
	}
	out := make([]int32, len(data)/4)
	for i := range out {
		out[i] = int32(uint32(data[4*i]) | uint32(data[4*i+1])<<8 |
			uint32(data[4*i+2])<<16 | uint32(data[4*i+3])<<24)
	}
	return out
}

// checkCompatible validates that every non-appendable vector in vecs has
// the same chunk boundaries as the first readable one — spec.md §3's
// alignment invariant, and testable property 3. AppendableVecs are output
// vectors and are exempt (they have no shape yet).
func checkCompatible(vecs []Vector) error {
	var ref Vector
	for _, v := range vecs {
		if v == nil {
			continue
		}
		if _, ok := v.(*AppendableVec); ok {
			continue
		}
		if v.Readable() {
			ref = v
			break
		}
	}
	if ref == nil {
		return nil
	}
	n := ref.NChunks()
	for _, v := range vecs {
		if v == nil {
			continue
		}
		if _, ok := v.(*AppendableVec); ok {
			continue
		}
		if v.NChunks() != n {
			return &ErrIncompatibleVectors{
				Reason: "different numbers of chunks",
				Want:   n,
				Got:    v.NChunks(),
			}
		}
	}
	for i := 0; i < n; i++ {
		es := ref.Chunk2StartElem(i)
		for _, v := range vecs {
			if v == nil {
				continue
			}
			if _, ok := v.(*AppendableVec); ok {
				continue
			}
			if got := v.Chunk2StartElem(i); got != es {
				return &ErrIncompatibleVectors{
					Reason:   "different chunk boundaries",
					ChunkIdx: i,
					Want:     int(es),
					Got:      int(got),
				}
			}
		}
	}
	return nil
}

// CheckCompatible is the exported form of checkCompatible, used by the
// task package to validate input vectors before any fan-out begins
// (spec.md §4.D, §8 invariant 3).
func CheckCompatible(vecs []Vector) error {
	return checkCompatible(vecs)
}

// ErrIncompatibleVectors is returned when two input vectors passed to the
// same task invocation have different shapes.
type ErrIncompatibleVectors struct {
	Reason   string
	ChunkIdx int
	Want     int
	Got      int
}

func (e *ErrIncompatibleVectors) Error() string {
	if e.Reason == "different chunk boundaries" {
		return fmt.Sprintf("vector: chunk %d starts at %d, want %d", e.ChunkIdx, e.Got, e.Want)
	}
	return fmt.Sprintf("vector: %s: %d and %d", e.Reason, e.Got, e.Want)
}
