package task

import (
	"github.com/distcol/mrengine/vector"
)

// node is the internal scheduling wrapper around one Task clone: the
// node and chunk ranges it covers, the local fork/join children it
// owns, and the accumulated result. Spec.md §9's cyclic parent/child
// link is realized as a parent-owning-children arena: left/rite are
// only ever reachable through their parent, and are nulled out once
// reduced to release their state promptly.
type node struct {
	self Task

	nlo, nhi int // cluster node range this instance covers
	lo, hi   int // local chunk range this instance covers

	inputs  []vector.Vector
	outputs []*vector.AppendableVec

	state stateBox

	left, rite *node // local fork/join children, nil after reduce2

	result         Task
	pendingFutures []*vector.Future
}
