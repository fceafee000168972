package vector

import (
	"context"
	"fmt"

	"github.com/distcol/mrengine/blobstore"
	"github.com/distcol/mrengine/chunk"
	"github.com/distcol/mrengine/codec"
	"github.com/distcol/mrengine/kv"
	"github.com/google/uuid"
)

// FileVec is a read-only, file-backed Vector. Its length is fixed at
// creation; chunks are not generated until first touched, matching
// NFSFileVec's lazy-chunk-creation contract. FileVec is never writable.
type FileVec struct {
	id      uuid.UUID
	length  int64
	nChunks int
	store   blobstore.BlobStore
	name    string
	kv      kv.Store
}

var _ Vector = (*FileVec)(nil)

// NewFileVec opens name in store as a FileVec of the given total row
// length. Rows are fixed-width 4-byte little-endian int32 values, so
// name's file holds 4*length bytes.
func NewFileVec(id uuid.UUID, store blobstore.BlobStore, name string, length int64, kvStore kv.Store) *FileVec {
	return &FileVec{
		id:      id,
		length:  length,
		nChunks: chunk.NChunksForLength(length),
		store:   store,
		name:    name,
		kv:      kvStore,
	}
}

func (v *FileVec) ID() uuid.UUID            { return v.id }
func (v *FileVec) Length() int64            { return v.length }
func (v *FileVec) NChunks() int             { return v.nChunks }
func (v *FileVec) Writable() bool           { return false }
func (v *FileVec) Readable() bool           { return true }
func (v *FileVec) Chunk2StartElem(c int) int64 {
	return chunk.Chunk2StartElem(c)
}
func (v *FileVec) Elem2ChunkIdx(row int64) int {
	return chunk.Elem2ChunkIdx(row, v.nChunks)
}
func (v *FileVec) ChunkKey(cidx int) chunk.Key {
	return chunk.NewChunkKey(v.id, cidx)
}

// Elem2BV materializes chunk cidx, on first touch reading the backing
// file slice and atomically publishing it under the chunk key. A losing
// racer (another thread or, via the shared kv.Store, another node)
// discards its own read and adopts whichever value won the
// compare-and-swap — both readers then observe identical bytes (testable
// property 8).
func (v *FileVec) Elem2BV(ctx context.Context, start int64, cidx int) (ChunkView, error) {
	if cidx < 0 || cidx >= v.nChunks {
		return ChunkView{}, fmt.Errorf("filevec: chunk %d out of range [0,%d)", cidx, v.nChunks)
	}
	key := v.ChunkKey(cidx).String()

	if existing, ok, err := v.kv.Get(ctx, key); err != nil {
		return ChunkView{}, err
	} else if ok {
		return ChunkView{StartRow: start, Len: int(chunk.ChunkLen(cidx, v.nChunks, v.length)), Data: existing, Codec: codec.Raw}, nil
	}

	length := chunk.ChunkLen(cidx, v.nChunks, v.length)
	data, err := v.readFileSlice(ctx, start, length)
	if err != nil {
		return ChunkView{}, err
	}

	won, current, err := v.kv.PutIfMatch(ctx, key, data, nil)
	if err != nil {
		return ChunkView{}, err
	}
	if !won {
		data = current // another racer's value won; adopt it verbatim
	}
	return ChunkView{StartRow: start, Len: int(length), Data: data, Codec: codec.Raw}, nil
}

func (v *FileVec) readFileSlice(ctx context.Context, startRow, length int64) ([]byte, error) {
	blob, err := v.store.Open(ctx, v.name)
	if err != nil {
		return nil, fmt.Errorf("filevec: open %q: %w", v.name, err)
	}
	defer blob.Close()

	buf := make([]byte, length*4) // rows are 4-byte (int32) columns in this core
	n, err := blob.ReadAt(ctx, buf, startRow*4)
	if err != nil {
		return nil, fmt.Errorf("filevec: read %q at row %d: %w", v.name, startRow, err)
	}
	return buf[:n], nil
}
