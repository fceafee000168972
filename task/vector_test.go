package task

import (
	"context"
	"encoding/binary"

	"github.com/distcol/mrengine/chunk"
	"github.com/distcol/mrengine/codec"
	"github.com/distcol/mrengine/vector"
	"github.com/google/uuid"
)

// fakeVector is a minimal, self-contained vector.Vector for tests: a
// fixed number of equal-length chunks, each row holding the same int32
// value, with no backing store. It deliberately doesn't use package
// chunk's default sizing so tests can exercise many small chunks
// cheaply.
type fakeVector struct {
	id       uuid.UUID
	nChunks  int
	chunkLen int64
	value    int32
}

func newFakeVector(nChunks int, chunkLen int64, value int32) *fakeVector {
	return &fakeVector{id: uuid.New(), nChunks: nChunks, chunkLen: chunkLen, value: value}
}

var _ vector.Vector = (*fakeVector)(nil)

func (v *fakeVector) ID() uuid.UUID    { return v.id }
func (v *fakeVector) Length() int64    { return int64(v.nChunks) * v.chunkLen }
func (v *fakeVector) NChunks() int     { return v.nChunks }
func (v *fakeVector) Writable() bool   { return false }
func (v *fakeVector) Readable() bool   { return true }

func (v *fakeVector) Chunk2StartElem(cidx int) int64 { return int64(cidx) * v.chunkLen }

func (v *fakeVector) Elem2ChunkIdx(row int64) int {
	c := int(row / v.chunkLen)
	if c >= v.nChunks {
		c = v.nChunks - 1
	}
	return c
}

func (v *fakeVector) ChunkKey(cidx int) chunk.Key { return chunk.NewChunkKey(v.id, cidx) }

func (v *fakeVector) Elem2BV(_ context.Context, start int64, cidx int) (vector.ChunkView, error) {
	data := make([]byte, v.chunkLen*4)
	for i := int64(0); i < v.chunkLen; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(v.value))
	}
	return vector.ChunkView{StartRow: start, Len: int(v.chunkLen), Data: data, Codec: codec.Raw}, nil
}
