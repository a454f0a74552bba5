package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProgram indicates a program that cannot be executed safely.
	ErrInvalidProgram = errors.New("invalid program")

	// ErrBudgetExceeded indicates a run that hit its step budget.
	ErrBudgetExceeded = errors.New("step budget exceeded")
)

// ProgramError describes why a program failed validation.
type ProgramError struct {
	PC     int
	Reason string
}

func (e *ProgramError) Error() string {
	if e.PC < 0 {
		return fmt.Sprintf("%v: %s", ErrInvalidProgram, e.Reason)
	}
	return fmt.Sprintf("%v: pc %d: %s", ErrInvalidProgram, e.PC, e.Reason)
}

func (e *ProgramError) Unwrap() error {
	return ErrInvalidProgram
}
