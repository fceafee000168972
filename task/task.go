// Package task implements the map/reduce execution core: distributed
// fan-out across cluster nodes, local fan-out across chunks via a
// work-stealing fork/join pool, pairwise reduction, and the completion
// state machine, grounded in the H2O MRTask2 design this system
// distills.
package task

import (
	"context"

	"github.com/distcol/mrengine/vector"
	"github.com/google/uuid"
)

// Task is the user-supplied computation descriptor. Clone produces the
// per-fork copy the scheduler owns while a split or remote dispatch is
// outstanding: a shallow copy of user fields, with no scheduling state
// carried over (spec.md §9 "per-instance clone semantics" — exposed
// here as Clone rather than a general copy operator, per that design
// note's explicit preference).
//
// Any subset of Initializer, Mapper1, Mapper2, and Reducer may also be
// implemented; unimplemented hooks are no-ops. This models the user's
// polymorphic map/reduce/init as a capability set rather than deep
// inheritance (spec.md §9).
type Task interface {
	Clone() Task
}

// Initializer runs once per node before any local chunk is touched.
type Initializer interface {
	Init(ctx context.Context) error
}

// Mapper1 is the single-input-vector map overload.
type Mapper1 interface {
	Map(ctx context.Context, startRow int64, length int, a vector.ChunkView) error
}

// Mapper2 is the two-input-vector map overload.
type Mapper2 interface {
	Map2(ctx context.Context, startRow int64, length int, a, b vector.ChunkView) error
}

// Reducer combines two task results, called pairwise in an unspecified
// order (spec.md §4.G "ordering & tie-breaks"). Implementations must be
// associative; other is guaranteed non-nil and of the same dynamic type.
type Reducer interface {
	Reduce(other Task) error
}

// Producer is implemented by map hooks that emit a new output chunk for
// the chunk they were invoked on, closed into the matching output
// AppendableVec by the scheduler after Map/Map2 returns.
type Producer interface {
	Produced() (vector.NewChunk, bool)
}

// Envelope is the value that crosses the distributed-fan-out boundary:
// a cloned Task, the node and chunk ranges it covers, its input/output
// vector handles, and a correlation id for logging. cluster/local
// passes it as a Go value directly since its "wire" is an in-process
// channel; rpc.Dispatcher is the only cross-process contract this core
// defines (consumed-only — see rpc/cluster), so a real transport's wire
// format is that implementation's own concern, not this package's.
type Envelope struct {
	TaskID     uuid.UUID
	Task       Task
	NLo, NHi   int
	Lo, Hi     int
	Inputs     []vector.Vector
	Outputs    []*vector.AppendableVec
}

// Reply is what a node sends back after running its share of an
// Envelope: the task carrying that node's (and its remote sub-tree's)
// combined result, or Empty if the node produced no result at all
// (spec.md §4.G's "no local result" sentinel, nlo=-1 in the source).
type Reply struct {
	Task  Task
	Empty bool
}
