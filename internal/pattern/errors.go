package pattern

import (
	"errors"
	"fmt"
)

// ErrSyntax indicates a malformed pattern.
var ErrSyntax = errors.New("pattern syntax error")

// SyntaxError locates a syntax error in the pattern source.
type SyntaxError struct {
	Position int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", ErrSyntax, e.Position, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
