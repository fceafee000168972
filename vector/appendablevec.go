package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/distcol/mrengine/chunk"
	"github.com/distcol/mrengine/codec"
	"github.com/distcol/mrengine/kv"
	"github.com/google/uuid"
)

// NewChunk is the write-once, single-chunk value a map() hook builds
// inside one invocation (spec's "new/materialized vector"). The
// framework closes it into the task's output AppendableVec at the
// invoking chunk's index; it has no independent existence afterward.
type NewChunk struct {
	Data  []byte
	Codec codec.Kind
}

// Future represents background publication work enqueued when a chunk
// is closed into an AppendableVec. A task's postLocal blocks on every
// future it has accumulated before the node's result is considered
// final (spec.md §4.G, §5 suspension point 2).
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(err error) {
	f.err = err
	close(f.done)
}

// Wait blocks until the future's publication completes.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AppendableVec accumulates chunks produced by map() calls across the
// local chunk range a task owns, one chunk per homed index, and
// finalizes into a read-only vector once the owning task completes.
// Safe for concurrent Close calls from sibling leaves of the same
// local fan-out tree; never shared across task invocations.
type AppendableVec struct {
	id    uuid.UUID
	kv    kv.Store
	codec codec.Kind

	mu       sync.Mutex
	chunks   map[int][]byte
	chunkLen map[int]int // logical (decompressed) element count per chunk
	nChunks  int         // set once the shape is known (mirrors the input vectors')
	closed   bool
}

// Option configures an AppendableVec at construction.
type Option func(*AppendableVec)

// WithCodec compresses every chunk closed into this vector with kind
// before publication, and reports kind on every ChunkView it later
// hands back. Object-store-backed output vectors use this to pay
// compression's CPU cost once on write rather than transfer the
// uncompressed bytes on every later read (mirroring PersistS3's
// packed ".hex" format); file-backed vectors stay Raw, the default.
func WithCodec(kind codec.Kind) Option {
	return func(v *AppendableVec) { v.codec = kind }
}

// NewAppendableVec creates an output vector expected to receive exactly
// nChunks chunks (the same chunk count as the aligned input vectors),
// durably publishing each chunk's bytes through kvStore as it arrives.
func NewAppendableVec(id uuid.UUID, nChunks int, kvStore kv.Store, opts ...Option) *AppendableVec {
	v := &AppendableVec{
		id:       id,
		kv:       kvStore,
		codec:    codec.Raw,
		chunks:   make(map[int][]byte, nChunks),
		chunkLen: make(map[int]int, nChunks),
		nChunks:  nChunks,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var _ Vector = (*AppendableVec)(nil)

func (v *AppendableVec) ID() uuid.UUID { return v.id }
func (v *AppendableVec) NChunks() int  { return v.nChunks }

func (v *AppendableVec) Length() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	var n int64
	for i := 0; i < v.nChunks; i++ {
		if l, ok := v.chunkLen[i]; ok {
			n += int64(l)
		} else {
			n += chunk.ChunkSize
		}
	}
	return n
}

func (v *AppendableVec) Writable() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.closed
}

func (v *AppendableVec) Readable() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *AppendableVec) Chunk2StartElem(cidx int) int64 { return chunk.Chunk2StartElem(cidx) }
func (v *AppendableVec) Elem2ChunkIdx(row int64) int    { return chunk.Elem2ChunkIdx(row, v.nChunks) }
func (v *AppendableVec) ChunkKey(cidx int) chunk.Key    { return chunk.NewChunkKey(v.id, cidx) }

func (v *AppendableVec) Elem2BV(ctx context.Context, start int64, cidx int) (ChunkView, error) {
	v.mu.Lock()
	data, ok := v.chunks[cidx]
	length := v.chunkLen[cidx]
	v.mu.Unlock()
	if !ok {
		return ChunkView{}, fmt.Errorf("appendablevec: chunk %d not yet closed", cidx)
	}
	return ChunkView{StartRow: start, Len: length, Data: data, Codec: v.codec}, nil
}

// Close finalizes a NewChunk produced by map() into this vector at
// cidx, and enqueues its durable publication as a Future. Returns an
// error if cidx was already closed (a map() contract violation: each
// chunk is produced exactly once, spec.md §8 invariant 1).
func (v *AppendableVec) Close(ctx context.Context, cidx int, nc NewChunk) (*Future, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, fmt.Errorf("appendablevec: vector already finalized")
	}
	if _, dup := v.chunks[cidx]; dup {
		v.mu.Unlock()
		return nil, fmt.Errorf("appendablevec: chunk %d closed twice", cidx)
	}
	v.mu.Unlock()

	stored, err := codec.EncodeChunk(v.codec, nc.Data)
	if err != nil {
		return nil, fmt.Errorf("appendablevec: encode chunk %d: %w", cidx, err)
	}

	v.mu.Lock()
	v.chunks[cidx] = stored
	v.chunkLen[cidx] = len(nc.Data) / 4
	v.mu.Unlock()

	future := newFuture()
	if v.kv == nil {
		future.resolve(nil)
		return future, nil
	}
	key := v.ChunkKey(cidx).String()
	go func() {
		future.resolve(v.kv.Put(ctx, key, stored))
	}()
	return future, nil
}

// Finalize marks the vector read-only. Called once by the owning task's
// root instance after every pending publication future has resolved.
func (v *AppendableVec) Finalize() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}
