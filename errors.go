package mrengine

import (
	"errors"
	"fmt"

	"github.com/distcol/mrengine/objectstore"
	"github.com/distcol/mrengine/task"
	"github.com/distcol/mrengine/vector"
)

// ErrNotFound is the unified not-found sentinel the facade normalizes
// object-store and chunk lookup failures into.
var ErrNotFound = errors.New("mrengine: not found")

// ErrIncompatibleVectors re-exports vector.ErrIncompatibleVectors under
// the facade's own name for callers that only import the root package.
type ErrIncompatibleVectors = vector.ErrIncompatibleVectors

// translateError normalizes errors surfacing from the task and
// objectstore packages into the facade's own taxonomy, following the
// teacher's errors.go boundary-function convention (translateError).
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, objectstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var val *task.ErrValidation
	if errors.As(err, &val) {
		return err
	}
	if errors.Is(err, task.ErrCancelled) {
		return err
	}

	return err
}
