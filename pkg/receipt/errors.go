package receipt

import (
	"errors"
	"fmt"
)

// ErrNoItems is returned when no items can be extracted from the line set,
// even after the known-template fallback pass.
var ErrNoItems = errors.New("no items found in receipt")

// ValidationError reports a review-step submission whose totals do not
// reconcile. Recoverable: the caller re-prompts with the same partial data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
