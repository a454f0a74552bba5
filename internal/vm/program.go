package vm

import (
	"fmt"
	"strings"
)

// Program is an immutable, validated list of instructions.
type Program[T any] struct {
	insts []Inst[T]
}

// NewProgram validates insts and returns a program over a private copy.
//
// Every Jump and Split target must be in range, no consuming instruction may
// sit in the last slot (its successor would fall off the end), and the
// program must not be empty.
func NewProgram[T any](insts ...Inst[T]) (*Program[T], error) {
	if len(insts) == 0 {
		return nil, &ProgramError{PC: -1, Reason: "empty program"}
	}

	n := len(insts)
	inRange := func(t int) bool { return t >= 0 && t < n }

	for pc, in := range insts {
		switch in.Op {
		case OpUnit, OpUnitList, OpAnyUnit:
			if pc+1 >= n {
				return nil, &ProgramError{PC: pc, Reason: in.Op.String() + " has no successor"}
			}
		case OpMatch:
		case OpJump:
			if !inRange(in.X) {
				return nil, &ProgramError{PC: pc, Reason: fmt.Sprintf("jump target %d out of range", in.X)}
			}
		case OpSplit:
			if !inRange(in.X) || !inRange(in.Y) {
				return nil, &ProgramError{PC: pc, Reason: fmt.Sprintf("split targets (%d, %d) out of range", in.X, in.Y)}
			}
		default:
			return nil, &ProgramError{PC: pc, Reason: "unknown " + in.Op.String()}
		}
	}

	owned := make([]Inst[T], n)
	copy(owned, insts)
	return &Program[T]{insts: owned}, nil
}

// MustProgram is like NewProgram but panics on an invalid program.
func MustProgram[T any](insts ...Inst[T]) *Program[T] {
	p, err := NewProgram(insts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of instructions.
func (p *Program[T]) Len() int { return len(p.insts) }

// At returns the instruction at pc.
func (p *Program[T]) At(pc int) Inst[T] { return p.insts[pc] }

// String renders one instruction per line, prefixed by its address.
func (p *Program[T]) String() string {
	var sb strings.Builder
	width := len(fmt.Sprintf("%d", len(p.insts)-1))
	for pc, in := range p.insts {
		fmt.Fprintf(&sb, "%*d: %s\n", width, pc, in)
	}
	return sb.String()
}
