package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/distcol/mrengine/cluster"
	"github.com/distcol/mrengine/fjpool"
	"github.com/distcol/mrengine/rpc"
	"github.com/distcol/mrengine/vector"
	"github.com/google/uuid"
)

// Engine is the per-node map/reduce runtime: it owns the local
// work-stealing pool, the cluster membership handles, and the RPC
// dispatcher, and runs Envelopes dispatched to this node. One Engine
// per physical node; install RunOnNode as that node's cluster/local
// Handler (or equivalent real-transport request handler).
type Engine struct {
	pool       *fjpool.Pool
	self       cluster.Self
	cloud      cluster.Cloud
	dispatcher rpc.Dispatcher[Envelope, Reply]
	logger     *Logger

	initOnce sync.Once
	initErr  error
	initTask Task // the task instance Init was called on, for node-local state sharing
}

// New creates an Engine bound to a work-stealing pool, this node's
// cluster handles, and an RPC dispatcher for reaching peers.
func New(pool *fjpool.Pool, self cluster.Self, cloud cluster.Cloud, dispatcher rpc.Dispatcher[Envelope, Reply], logger *Logger) *Engine {
	if logger == nil {
		logger = NewLogger(nil)
	}
	return &Engine{pool: pool, self: self, cloud: cloud, dispatcher: dispatcher, logger: logger}
}

// Invoke is the root call: it blocks until the whole cluster-wide
// fan-out completes (spec.md §5 suspension point 1) and returns the
// coalesced result task, or the first error observed anywhere in the
// tree.
func (e *Engine) Invoke(ctx context.Context, t Task, inputs []vector.Vector, outputs []*vector.AppendableVec) (Task, error) {
	if err := validate(t, inputs); err != nil {
		return nil, newValidationError(err)
	}

	nChunks := shapeChunks(inputs, outputs)
	env := Envelope{
		TaskID:  uuid.New(),
		Task:    t,
		NLo:     0,
		NHi:     e.cloud.Size(),
		Lo:      0,
		Hi:      nChunks,
		Inputs:  inputs,
		Outputs: outputs,
	}

	reply, err := e.RunOnNode(ctx, env)
	if err != nil {
		e.logger.LogInvoke(ctx, env.TaskID.String(), nChunks, err)
		return nil, translateError(err)
	}

	for _, in := range inputs {
		if av, ok := in.(*vector.AppendableVec); ok {
			av.Finalize()
		}
	}
	for _, out := range outputs {
		out.Finalize()
	}

	e.logger.LogInvoke(ctx, env.TaskID.String(), nChunks, nil)

	if reply.Empty {
		return nil, nil
	}
	return reply.Task, nil
}

func shapeChunks(inputs []vector.Vector, outputs []*vector.AppendableVec) int {
	for _, v := range inputs {
		if v != nil {
			return v.NChunks()
		}
	}
	for _, v := range outputs {
		if v != nil {
			return v.NChunks()
		}
	}
	return 0
}

// RunOnNode executes the distributed-fan-out step for one node: it runs
// Init exactly once for this Engine's lifetime (spec.md §4.D, §5
// ordering guarantee "init happens-before any map"), splits env's node
// range around this node's index, dispatches the two halves as RPCs,
// executes this node's local chunk share, and runs postLocal to collect
// remote sub-results. This is what a real transport's request handler
// would call, and what cluster/local.Handler is bound to.
func (e *Engine) RunOnNode(ctx context.Context, env Envelope) (Reply, error) {
	if err := e.runInit(ctx, env.Task); err != nil {
		return Reply{}, translateError(err)
	}

	nd := &node{
		self:    env.Task,
		nlo:     env.NLo,
		nhi:     env.NHi,
		lo:      env.Lo,
		hi:      env.Hi,
		inputs:  env.Inputs,
		outputs: env.Outputs,
	}
	nd.state.set(StateSetup)

	s := e.self.Index()
	nd.state.set(StateFannedOut)

	var nleft, nrite rpc.Call[Reply]
	leftPeer, ritePeer := -1, -1
	if nd.nhi-nd.nlo > 1 {
		if nd.nlo < s {
			mid := (nd.nlo + s) / 2
			leftPeer = mid
			nleft = e.dispatcher.Dispatch(ctx, mid, Envelope{
				TaskID: env.TaskID, Task: env.Task.Clone(),
				NLo: nd.nlo, NHi: s, Lo: nd.lo, Hi: nd.hi,
				Inputs: env.Inputs, Outputs: env.Outputs,
			})
		}
		if s+1 < nd.nhi {
			mid := (s + 1 + nd.nhi) / 2
			ritePeer = mid
			nrite = e.dispatcher.Dispatch(ctx, mid, Envelope{
				TaskID: env.TaskID, Task: env.Task.Clone(),
				NLo: s + 1, NHi: nd.nhi, Lo: nd.lo, Hi: nd.hi,
				Inputs: env.Inputs, Outputs: env.Outputs,
			})
		}
	}
	e.logger.LogFanout(ctx, nd.nlo, nd.nhi, leftPeer, ritePeer)

	localResult, futures, err := e.runLocal(ctx, nd)
	if err != nil {
		e.cancelBoth(ctx, err, nleft, nrite)
		nd.state.cancel()
		return Reply{}, translateError(err)
	}
	nd.result = localResult
	nd.pendingFutures = append(nd.pendingFutures, futures...)

	return e.postLocal(ctx, nd, nleft, nrite)
}

// cancelBoth cancels whichever of a/b are outstanding after reason has
// failed the fan-out tree elsewhere, and logs why.
func (e *Engine) cancelBoth(ctx context.Context, reason error, a, b rpc.Call[Reply]) {
	e.logger.LogCancel(ctx, reason)
	if a != nil {
		a.Cancel()
	}
	if b != nil {
		b.Cancel()
	}
}

func (e *Engine) runInit(ctx context.Context, t Task) error {
	initializer, ok := t.(Initializer)
	if !ok {
		return nil
	}
	e.initOnce.Do(func() {
		e.initErr = initializer.Init(ctx)
	})
	return e.initErr
}

func validate(t Task, inputs []vector.Vector) error {
	if t == nil {
		return fmt.Errorf("task: nil task")
	}
	if len(inputs) > 2 {
		return &ErrTooManyVectors{Count: len(inputs)}
	}
	return vector.CheckCompatible(inputs)
}
