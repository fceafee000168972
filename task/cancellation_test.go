package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/distcol/mrengine/cluster/local"
	"github.com/distcol/mrengine/fjpool"
	"github.com/distcol/mrengine/rpc"
	"github.com/distcol/mrengine/vector"
)

// errOnChunkTask errors out of Map on exactly one chunk index, for
// exercising spec.md §8 testable property 5 / scenario S5: a Map error
// propagating through the distributed fan-out must surface at the
// root's blocking Invoke and cancel whichever sibling RPC was still
// outstanding, rather than hanging or silently dropping the failure.
type errOnChunkTask struct {
	chunkLen   int64
	errorChunk int
	err        error
}

func (t *errOnChunkTask) Clone() Task {
	return &errOnChunkTask{chunkLen: t.chunkLen, errorChunk: t.errorChunk, err: t.err}
}

func (t *errOnChunkTask) Map(_ context.Context, startRow int64, _ int, _ vector.ChunkView) error {
	if int(startRow/t.chunkLen) == t.errorChunk {
		return t.err
	}
	return nil
}

func (t *errOnChunkTask) Reduce(Task) error { return nil }

// recordingDispatcher wraps a real Dispatcher, counting how many of the
// rpc.Call handles it hands out are later Cancelled, so a test can
// assert cancellation actually reached the transport layer rather than
// just that Invoke returned an error.
type recordingDispatcher struct {
	inner   rpc.Dispatcher[Envelope, Reply]
	cancels atomic.Int32
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, peer int, payload Envelope) rpc.Call[Reply] {
	return &trackedCall{inner: d.inner.Dispatch(ctx, peer, payload), cancels: &d.cancels}
}

type trackedCall struct {
	inner   rpc.Call[Reply]
	cancels *atomic.Int32
}

func (c *trackedCall) Get(ctx context.Context) (Reply, error) { return c.inner.Get(ctx) }

func (c *trackedCall) Cancel() {
	c.cancels.Add(1)
	c.inner.Cancel()
}

func TestInvokeMapErrorPropagatesAndCancelsSibling(t *testing.T) {
	const numNodes = 4
	const nChunks, chunkLen = 17, int64(5)
	const errorChunk = 9
	vec := newFakeVector(nChunks, chunkLen, 1)

	pool := fjpool.New(4)
	defer pool.Close()

	clus := local.New[Envelope, Reply](numNodes)
	dispatcher := &recordingDispatcher{inner: clus}

	engines := make([]*Engine, numNodes)
	for i := 0; i < numNodes; i++ {
		engines[i] = New(pool, clus.Node(i), clus, dispatcher, nil)
		clus.SetHandler(i, engines[i].RunOnNode)
	}

	wantErr := errors.New("boom on chunk 9")
	_, err := engines[0].Invoke(context.Background(), &errOnChunkTask{chunkLen: chunkLen, errorChunk: errorChunk, err: wantErr}, []vector.Vector{vec}, nil)

	if err == nil {
		t.Fatal("expected Invoke to return the Map error, got nil")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Invoke error = %v, want it to wrap %v", err, wantErr)
	}
	if n := dispatcher.cancels.Load(); n == 0 {
		t.Error("expected at least one outstanding sibling RPC to be cancelled")
	}
}
