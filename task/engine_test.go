package task

import (
	"context"
	"testing"

	"github.com/distcol/mrengine/cluster/local"
	"github.com/distcol/mrengine/fjpool"
	"github.com/distcol/mrengine/rpc"
	"github.com/distcol/mrengine/testutil"
	"github.com/distcol/mrengine/vector"
)

// testSumTask sums every row it's mapped over and records, via an
// optional shared coverage recorder, which chunk index it ran on.
type testSumTask struct {
	total    int64
	chunkLen int64
	coverage *testutil.ChunkCoverageRecorder
}

func (t *testSumTask) Clone() Task {
	return &testSumTask{chunkLen: t.chunkLen, coverage: t.coverage}
}

func (t *testSumTask) Map(_ context.Context, startRow int64, _ int, a vector.ChunkView) error {
	if t.coverage != nil {
		t.coverage.Record(int(startRow / t.chunkLen))
	}
	for _, v := range a.Int32s() {
		t.total += int64(v)
	}
	return nil
}

func (t *testSumTask) Reduce(other Task) error {
	t.total += other.(*testSumTask).total
	return nil
}

type singleNode struct{}

func (singleNode) Index() int { return 0 }
func (singleNode) Size() int  { return 1 }

type noDispatch struct{}

func (noDispatch) Dispatch(context.Context, int, Envelope) rpc.Call[Reply] {
	panic("task: dispatch called in a single-node test")
}

func TestInvokeSingleNodeSum(t *testing.T) {
	const nChunks, chunkLen, value = 6, int64(10), int32(3)
	vec := newFakeVector(nChunks, chunkLen, value)
	coverage := testutil.NewChunkCoverageRecorder()

	pool := fjpool.New(2)
	defer pool.Close()

	eng := New(pool, singleNode{}, singleNode{}, noDispatch{}, nil)

	result, err := eng.Invoke(context.Background(), &testSumTask{chunkLen: chunkLen, coverage: coverage}, []vector.Vector{vec}, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	want := int64(nChunks) * chunkLen * int64(value)
	got := result.(*testSumTask).total
	if got != want {
		t.Errorf("total = %d, want %d", got, want)
	}
	if err := coverage.VerifyComplete(nChunks); err != nil {
		t.Error(err)
	}
}

func TestInvokeMultiNodeSum(t *testing.T) {
	const numNodes = 4
	const nChunks, chunkLen, value = 17, int64(5), int32(7)
	vec := newFakeVector(nChunks, chunkLen, value)
	coverage := testutil.NewChunkCoverageRecorder()

	pool := fjpool.New(4)
	defer pool.Close()

	clus := local.New[Envelope, Reply](numNodes)
	engines := make([]*Engine, numNodes)
	for i := 0; i < numNodes; i++ {
		engines[i] = New(pool, clus.Node(i), clus, clus, nil)
		clus.SetHandler(i, engines[i].RunOnNode)
	}

	result, err := engines[0].Invoke(context.Background(), &testSumTask{chunkLen: chunkLen, coverage: coverage}, []vector.Vector{vec}, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	want := int64(nChunks) * chunkLen * int64(value)
	got := result.(*testSumTask).total
	if got != want {
		t.Errorf("total = %d, want %d", got, want)
	}
	if err := coverage.VerifyComplete(nChunks); err != nil {
		t.Error(err)
	}
}

func TestInvokeZeroLengthChunkReturnsResult(t *testing.T) {
	vec := newFakeVector(1, 0, 0)

	pool := fjpool.New(1)
	defer pool.Close()

	eng := New(pool, singleNode{}, singleNode{}, noDispatch{}, nil)
	result, err := eng.Invoke(context.Background(), &testSumTask{chunkLen: 1}, []vector.Vector{vec}, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result == nil {
		t.Fatal("expected a non-nil result task even for a zero-length chunk")
	}
}

func TestInvokeCancelledContext(t *testing.T) {
	vec := newFakeVector(4, 10, 1)

	pool := fjpool.New(2)
	defer pool.Close()

	eng := New(pool, singleNode{}, singleNode{}, noDispatch{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Invoke(ctx, &testSumTask{chunkLen: 10}, []vector.Vector{vec}, nil)
	// A cancelled root context has no remote halves to observe
	// cancellation through in the single-node case (postLocal's
	// dispatcher calls are never reached), so the call may still
	// succeed; this test only guards against a panic/hang.
	_ = err
}
