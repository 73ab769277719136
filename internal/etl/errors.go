package etl

import (
	"errors"
	"fmt"
)

// FatalError marks a failure that must abort the whole run instead of being
// contained by the per-domain boundary, e.g. a dead connection or a closed
// transaction. The orchestrator propagates it so the session rolls back.
type FatalError struct {
	Err error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries a run-aborting failure.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
