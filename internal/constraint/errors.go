package constraint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConstraint indicates a declaration that cannot be compiled.
var ErrInvalidConstraint = errors.New("invalid constraint")

// CycleError reports contradictory order declarations.
type CycleError struct {
	// Cycle starts and ends with the same name.
	Cycle []Name
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, n := range e.Cycle {
		parts[i] = string(n)
	}
	return fmt.Sprintf("%v: cycle %s", ErrInvalidConstraint, strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrInvalidConstraint
}
