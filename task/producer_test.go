package task

import (
	"context"
	"testing"

	"github.com/distcol/mrengine/codec"
	"github.com/distcol/mrengine/fjpool"
	"github.com/distcol/mrengine/kv/memstore"
	"github.com/distcol/mrengine/vector"
	"github.com/google/uuid"
)

// doublingTask doubles every row of its single input chunk into a new
// output chunk, exercising the Producer path (fanout_local.go's
// AppendableVec.Close call) with a codec other than Raw.
type doublingTask struct {
	chunkLen int64
	total    int64
	produced vector.NewChunk
	hasChunk bool
}

func (t *doublingTask) Clone() Task { return &doublingTask{chunkLen: t.chunkLen} }

func (t *doublingTask) Map(_ context.Context, _ int64, _ int, a vector.ChunkView) error {
	in := a.Int32s()
	out := make([]byte, len(in)*4)
	for i, v := range in {
		scaled := v * 2
		out[4*i] = byte(scaled)
		out[4*i+1] = byte(scaled >> 8)
		out[4*i+2] = byte(scaled >> 16)
		out[4*i+3] = byte(scaled >> 24)
		t.total += int64(scaled)
	}
	t.produced = vector.NewChunk{Data: out}
	t.hasChunk = true
	return nil
}

func (t *doublingTask) Produced() (vector.NewChunk, bool) { return t.produced, t.hasChunk }

func (t *doublingTask) Reduce(other Task) error {
	t.total += other.(*doublingTask).total
	return nil
}

func TestInvokeProducerRoundTripsThroughLZ4Codec(t *testing.T) {
	const nChunks, chunkLen, value = 4, int64(10), int32(6)
	vec := newFakeVector(nChunks, chunkLen, value)

	kvStore := memstore.New()
	out := vector.NewAppendableVec(uuid.New(), nChunks, kvStore, vector.WithCodec(codec.LZ4))

	pool := fjpool.New(2)
	defer pool.Close()

	eng := New(pool, singleNode{}, singleNode{}, noDispatch{}, nil)
	result, err := eng.Invoke(context.Background(), &doublingTask{chunkLen: chunkLen}, []vector.Vector{vec}, []*vector.AppendableVec{out})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	want := int64(nChunks) * chunkLen * int64(value) * 2
	if got := result.(*doublingTask).total; got != want {
		t.Errorf("total = %d, want %d", got, want)
	}

	out.Finalize()
	for cidx := 0; cidx < nChunks; cidx++ {
		view, err := out.Elem2BV(context.Background(), int64(cidx)*chunkLen, cidx)
		if err != nil {
			t.Fatalf("Elem2BV(%d): %v", cidx, err)
		}
		for _, v := range view.Int32s() {
			if v != value*2 {
				t.Errorf("chunk %d: got %d, want %d", cidx, v, value*2)
			}
		}
	}
}
