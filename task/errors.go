package task

import (
	"context"
	"errors"
	"fmt"
)

// ErrValidation wraps a pre-fan-out validation failure: a nil task,
// too many input vectors, or incompatible vector shapes. Chunk keys are
// not validated. The invoker sees this before any map runs (spec.md §8
// invariant 3).
type ErrValidation struct {
	cause error
}

func (e *ErrValidation) Error() string { return fmt.Sprintf("task: validation: %v", e.cause) }
func (e *ErrValidation) Unwrap() error { return e.cause }

func newValidationError(cause error) error {
	return &ErrValidation{cause: cause}
}

// ErrTooManyVectors is returned when a task is invoked with more input
// vectors than any map overload supports (spec.md §4.D: "three or more
// is a configuration error").
type ErrTooManyVectors struct {
	Count int
}

func (e *ErrTooManyVectors) Error() string {
	return fmt.Sprintf("task: %d input vectors, at most 2 are supported", e.Count)
}

// ErrCancelled is returned by Invoke, wrapping the context's own error,
// when the task tree was cancelled by the caller's context (spec.md §8
// invariant 5). An error raised by a hook elsewhere in the tree reaches
// the invoker as that error itself.
var ErrCancelled = errors.New("task: cancelled")

// translateError normalizes errors surfacing from map/reduce/init hooks
// and from the RPC layer into the typed taxonomy above, following the
// teacher's errors.go boundary-function convention. User errors pass
// through unchanged; only context cancellation and deadline errors are
// rewrapped, in ErrCancelled.
func translateError(err error) error {
	if err != nil && !errors.Is(err, ErrCancelled) &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return err
}
