package task

import "sync/atomic"

// State is a task instance's position in the completion lifecycle
// (spec.md §4.G). Transitions are driven entirely by the scheduler;
// user code never observes or sets a State directly.
type State int32

const (
	StateNew State = iota
	StateSetup
	StateFannedOut
	StateMapped  // leaf instances only
	StateSplit   // interior instances only
	StateReduced
	StatePostLocalDone // top-local instance only
	StateComplete
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSetup:
		return "SETUP"
	case StateFannedOut:
		return "FANNED_OUT"
	case StateMapped:
		return "MAPPED"
	case StateSplit:
		return "SPLIT"
	case StateReduced:
		return "REDUCED"
	case StatePostLocalDone:
		return "POST_LOCAL_DONE"
	case StateComplete:
		return "COMPLETE"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// stateBox holds a node's State for atomic reads from any goroutine;
// writes happen only from the goroutine that owns the node at the time
// (the forking worker, the continuation goroutine, or the cancelling
// path), so a plain atomic value is enough — no CAS loop is needed.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) set(s State)  { b.v.Store(int32(s)) }
func (b *stateBox) get() State   { return State(b.v.Load()) }
func (b *stateBox) cancel()      { b.v.Store(int32(StateCancelled)) }
func (b *stateBox) cancelled() bool {
	return b.get() == StateCancelled
}
