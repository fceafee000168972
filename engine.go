package mrengine

import (
	"context"

	"github.com/distcol/mrengine/cluster"
	"github.com/distcol/mrengine/cluster/local"
	"github.com/distcol/mrengine/fjpool"
	"github.com/distcol/mrengine/rpc"
	"github.com/distcol/mrengine/task"
	"github.com/distcol/mrengine/vector"
)

// Engine is the facade over task.Engine: one per physical node, bound
// to the pool, cluster handles, and dispatcher that node runs with.
type Engine struct {
	inner *task.Engine
	pool  *fjpool.Pool
	opts  options
}

// New creates an Engine for one node, building its own local fork/join
// pool sized by WithWorkers (runtime.GOMAXPROCS(0) if unset). self/cloud
// are this node's cluster membership handles; dispatcher reaches peer
// nodes. Call Close when the node is done to stop the pool's workers.
func New(self cluster.Self, cloud cluster.Cloud, dispatcher rpc.Dispatcher[task.Envelope, task.Reply], optFns ...Option) *Engine {
	o := applyOptions(optFns)
	pool := fjpool.New(o.numWorkers)
	return &Engine{inner: task.New(pool, self, cloud, dispatcher, o.logger), pool: pool, opts: o}
}

// Close stops this Engine's local fork/join pool, blocking until its
// workers drain.
func (e *Engine) Close() {
	e.pool.Close()
}

// Invoke runs t across the whole cluster from this node and blocks for
// the coalesced result (spec.md §5 suspension point 1).
func (e *Engine) Invoke(ctx context.Context, t task.Task, inputs []vector.Vector, outputs []*vector.AppendableVec) (task.Task, error) {
	result, err := e.inner.Invoke(ctx, t, inputs, outputs)
	if err != nil {
		return nil, translateError(err)
	}
	return result, nil
}

// RunOnNode runs one dispatched Envelope on this node. Install it as
// this node's rpc.Dispatcher handler (cluster/local.SetHandler, or the
// equivalent request handler of a real transport).
func (e *Engine) RunOnNode(ctx context.Context, env task.Envelope) (task.Reply, error) {
	return e.inner.RunOnNode(ctx, env)
}

// NewLocalCluster builds an in-process n-node cluster (cluster/local)
// and one Engine per node, each with its own local fork/join pool sized
// by WithWorkers, with every node's handler already wired to its own
// Engine.RunOnNode. This is the single-binary/test setup described in
// doc.go; a real multi-process deployment instead builds its own
// rpc.Dispatcher against a network transport and calls New directly per
// node. Call CloseLocalCluster when done to stop every node's pool.
func NewLocalCluster(n int, optFns ...Option) (*local.Cluster[task.Envelope, task.Reply], []*Engine) {
	clus := local.New[task.Envelope, task.Reply](n)
	engines := make([]*Engine, n)
	for i := 0; i < n; i++ {
		eng := New(clus.Node(i), clus, clus, optFns...)
		engines[i] = eng
		clus.SetHandler(i, eng.RunOnNode)
	}
	return clus, engines
}

// CloseLocalCluster stops every engine's pool returned by NewLocalCluster.
func CloseLocalCluster(engines []*Engine) {
	for _, eng := range engines {
		eng.Close()
	}
}
