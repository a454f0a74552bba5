package vm

import (
	"fmt"
	"strings"
)

// Opcode identifies the kind of an instruction.
type Opcode uint8

const (
	OpUnit Opcode = iota + 1
	OpUnitList
	OpAnyUnit
	OpMatch
	OpJump
	OpSplit
)

func (op Opcode) String() string {
	switch op {
	case OpUnit:
		return "Unit"
	case OpUnitList:
		return "UnitList"
	case OpAnyUnit:
		return "AnyUnit"
	case OpMatch:
		return "Match"
	case OpJump:
		return "Jump"
	case OpSplit:
		return "Split"
	default:
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}
}

// consumes reports whether the opcode reads an input item.
func (op Opcode) consumes() bool {
	return op == OpUnit || op == OpUnitList || op == OpAnyUnit
}

// Inst is a single machine instruction. Which fields are meaningful depends
// on Op: Elem for OpUnit, Elems for OpUnitList, X for OpJump, X and Y for
// OpSplit. Build instructions with the constructor functions below.
type Inst[T any] struct {
	Op    Opcode
	Elem  T
	Elems []T
	X, Y  int
}

// Unit expects a single item equal to e.
func Unit[T any](e T) Inst[T] {
	return Inst[T]{Op: OpUnit, Elem: e}
}

// UnitList expects a single item equal to any of es.
func UnitList[T any](es ...T) Inst[T] {
	elems := make([]T, len(es))
	copy(elems, es)
	return Inst[T]{Op: OpUnitList, Elems: elems}
}

// AnyUnit matches any single item.
func AnyUnit[T any]() Inst[T] {
	return Inst[T]{Op: OpAnyUnit}
}

// Match is the zero-width accept marker.
func Match[T any]() Inst[T] {
	return Inst[T]{Op: OpMatch}
}

// Jump transfers control to target without consuming input.
func Jump[T any](target int) Inst[T] {
	return Inst[T]{Op: OpJump, X: target}
}

// Split continues at both t1 and t2, t1 first.
func Split[T any](t1, t2 int) Inst[T] {
	return Inst[T]{Op: OpSplit, X: t1, Y: t2}
}

func (in Inst[T]) String() string {
	switch in.Op {
	case OpUnit:
		return fmt.Sprintf("Unit(%v)", in.Elem)
	case OpUnitList:
		parts := make([]string, len(in.Elems))
		for i, e := range in.Elems {
			parts[i] = fmt.Sprintf("%v", e)
		}
		return "UnitList(" + strings.Join(parts, ", ") + ")"
	case OpJump:
		return fmt.Sprintf("Jump(%d)", in.X)
	case OpSplit:
		return fmt.Sprintf("Split(%d, %d)", in.X, in.Y)
	default:
		return in.Op.String()
	}
}
