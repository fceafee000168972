package task

import (
	"context"

	"github.com/distcol/mrengine/rpc"
)

// reduce2 folds child's result into parent after a local fork/join join
// point (spec.md §4.G). Output AppendableVecs are shared pointers across
// the whole tree (every node writes directly into the same map), so
// there is nothing to merge on the output side here; only the user's
// Task state needs combining.
func (e *Engine) reduce2(ctx context.Context, parent, child *node) error {
	if child == nil {
		return nil
	}
	if parent.result == nil {
		parent.result = child.result
		return nil
	}
	if child.result == nil {
		return nil
	}
	err := reduceAll(parent.result, child.result)
	e.logger.LogReduce(ctx, child.lo, child.hi, err)
	return err
}

// reduceAll invokes the user's Reducer hook, if implemented. Tasks with
// no Reducer are assumed to carry no combinable state (e.g. pure
// producers), so a missing hook is not an error.
func reduceAll(a, b Task) error {
	r, ok := a.(Reducer)
	if !ok {
		return nil
	}
	return r.Reduce(b)
}

// postLocal is the distributed-fan-out join point (spec.md §4.G): it
// blocks on both remote halves in turn, reduces their replies into nd,
// then blocks on every pending output-chunk future before completing.
// Any failure anywhere cancels the sibling that's still outstanding and
// marks nd cancelled rather than complete.
func (e *Engine) postLocal(ctx context.Context, nd *node, nleft, nrite rpc.Call[Reply]) (Reply, error) {
	if err := e.reduce3(ctx, nd, nleft); err != nil {
		e.cancelBoth(ctx, err, nleft, nrite)
		nd.state.cancel()
		return Reply{}, translateError(err)
	}
	if err := e.reduce3(ctx, nd, nrite); err != nil {
		e.cancelBoth(ctx, err, nleft, nrite)
		nd.state.cancel()
		return Reply{}, translateError(err)
	}

	for _, f := range nd.pendingFutures {
		if err := f.Wait(ctx); err != nil {
			nd.state.cancel()
			return Reply{}, translateError(err)
		}
	}

	nd.state.set(StatePostLocalDone)
	nd.state.set(StateComplete)

	if nd.result == nil {
		return Reply{Empty: true}, nil
	}
	return Reply{Task: nd.result}, nil
}

// reduce3 blocks on one outstanding remote half and folds its reply
// into nd. A nil call means that half was never dispatched (nd was at
// the edge of the node range); an Empty reply means that half produced
// no result and is skipped.
func (e *Engine) reduce3(ctx context.Context, nd *node, call rpc.Call[Reply]) error {
	if call == nil {
		return nil
	}
	reply, err := call.Get(ctx)
	if err != nil {
		return err
	}
	if reply.Empty {
		return nil
	}
	if nd.result == nil {
		nd.result = reply.Task
		return nil
	}
	err = reduceAll(nd.result, reply.Task)
	e.logger.LogReduce(ctx, nd.lo, nd.hi, err)
	return err
}
