package task

import (
	"context"

	"github.com/distcol/mrengine/fjpool"
	"github.com/distcol/mrengine/vector"
)

// runLocal drives the balanced-binary-tree fork/join split of parent's
// chunk range (spec.md §4.F), forking one child onto the pool per split
// and computing the other inline in the calling goroutine.
func (e *Engine) runLocal(ctx context.Context, parent *node) (Task, []*vector.Future, error) {
	return e.runLocalW(ctx, parent, nil)
}

func (e *Engine) runLocalW(ctx context.Context, parent *node, w *fjpool.Worker) (Task, []*vector.Future, error) {
	if parent.hi == parent.lo {
		return nil, nil, nil
	}
	if parent.hi-parent.lo == 1 {
		return e.runLeaf(ctx, parent)
	}

	mid := (parent.lo + parent.hi) / 2
	left := &node{self: parent.self.Clone(), nlo: parent.nlo, nhi: parent.nhi, lo: parent.lo, hi: mid, inputs: parent.inputs, outputs: parent.outputs}
	rite := &node{self: parent.self.Clone(), nlo: parent.nlo, nhi: parent.nhi, lo: mid, hi: parent.hi, inputs: parent.inputs, outputs: parent.outputs}
	parent.left, parent.rite = left, rite
	parent.state.set(StateSplit)

	done := make(chan struct{})
	var leftErr error
	fork := &localForkTask{e: e, ctx: ctx, nd: left, done: done, errOut: &leftErr}
	if w != nil {
		e.pool.ForkFrom(w, fork)
	} else {
		e.pool.Fork(fork)
	}

	riteResult, riteFutures, riteErr := e.runLocalW(ctx, rite, w)
	rite.result, rite.pendingFutures = riteResult, riteFutures

	// Join the forked left half. A worker already inside the pool
	// (w != nil) keeps servicing its own deque and stealing while it
	// waits, via Worker.Help, instead of blocking outside the run loop
	// that is the pool's only source of steals; a plain channel receive
	// here would deadlock the pool once nChunks exceeds the worker
	// count. The top-level caller (w == nil) isn't a pool worker, so a
	// plain receive is safe there.
	if w != nil {
		w.Help(done)
	} else {
		<-done
	}
	if leftErr != nil {
		return nil, nil, leftErr
	}
	if riteErr != nil {
		return nil, nil, riteErr
	}

	if err := e.reduce2(ctx, parent, left); err != nil {
		return nil, nil, err
	}
	if err := e.reduce2(ctx, parent, rite); err != nil {
		return nil, nil, err
	}
	parent.left, parent.rite = nil, nil
	parent.state.set(StateReduced)
	return parent.result, parent.pendingFutures, nil
}

// localForkTask adapts one forked half of a split onto the pool.
type localForkTask struct {
	e      *Engine
	ctx    context.Context
	nd     *node
	done   chan struct{}
	errOut *error
}

func (t *localForkTask) Compute(w *fjpool.Worker) {
	defer close(t.done)
	result, futures, err := t.e.runLocalW(t.ctx, t.nd, w)
	t.nd.result, t.nd.pendingFutures = result, futures
	if err != nil {
		*t.errOut = err
	}
}

// runLeaf handles a single-chunk range: skip silently if the chunk
// isn't homed on this node (spec.md §4.F, and the "open question" in
// spec.md §9 about whether this can occur in practice — preserved
// verbatim, logged as a diagnostic), otherwise decode the chunk view(s)
// and invoke the matching map overload.
func (e *Engine) runLeaf(ctx context.Context, nd *node) (Task, []*vector.Future, error) {
	homeVec := primaryVector(nd)
	if homeVec == nil {
		return nil, nil, nil
	}

	cidx := nd.lo
	key := homeVec.ChunkKey(cidx)
	if !key.Home(e.cloud, e.self.Index()) {
		e.logger.Debug("skipping chunk not homed on this node", "chunk", cidx, "node", e.self.Index())
		return nil, nil, nil
	}

	start := homeVec.Chunk2StartElem(cidx)
	length := chunkLength(homeVec, cidx, start)

	if err := e.invokeMap(ctx, nd, start, length, cidx); err != nil {
		return nil, nil, err
	}

	var futures []*vector.Future
	if p, ok := nd.self.(Producer); ok {
		if nc, has := p.Produced(); has {
			for _, out := range nd.outputs {
				f, err := out.Close(ctx, cidx, nc)
				if err != nil {
					return nil, nil, err
				}
				futures = append(futures, f)
			}
		}
	}

	nd.result = nd.self
	nd.state.set(StateMapped)
	return nd.self, futures, nil
}

func (e *Engine) invokeMap(ctx context.Context, nd *node, start int64, length int, cidx int) error {
	switch len(nd.inputs) {
	case 0:
		return nil
	case 1:
		view, err := nd.inputs[0].Elem2BV(ctx, start, cidx)
		if err != nil {
			return err
		}
		if m1, ok := nd.self.(Mapper1); ok {
			return m1.Map(ctx, start, length, view)
		}
		return nil
	case 2:
		viewA, err := nd.inputs[0].Elem2BV(ctx, start, cidx)
		if err != nil {
			return err
		}
		viewB, err := nd.inputs[1].Elem2BV(ctx, start, cidx)
		if err != nil {
			return err
		}
		if m2, ok := nd.self.(Mapper2); ok {
			return m2.Map2(ctx, start, length, viewA, viewB)
		}
		return nil
	default:
		return &ErrTooManyVectors{Count: len(nd.inputs)}
	}
}

// chunkLength derives chunk cidx's row count from the vector's own
// chunk-boundary methods (the next chunk's start, or the vector's
// total length for the last chunk) rather than assuming package
// chunk's global ChunkSize, since Vector is the authority on its own
// chunking scheme.
func chunkLength(v vector.Vector, cidx int, start int64) int {
	if cidx+1 < v.NChunks() {
		return int(v.Chunk2StartElem(cidx+1) - start)
	}
	return int(v.Length() - start)
}

func primaryVector(nd *node) vector.Vector {
	if len(nd.inputs) > 0 {
		return nd.inputs[0]
	}
	if len(nd.outputs) > 0 {
		return nd.outputs[0]
	}
	return nil
}
