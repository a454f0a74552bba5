package constraint

import (
	"fmt"
	"strings"
)

// Name is a leaf of a constraint tree: the name of a pattern fragment.
type Name string

func (Name) sibElem() {}
func (Name) ordElem() {}

// SibElem is an element of a Sib: a Name or a nested *Sib.
type SibElem interface {
	sibElem()
}

// Sib is a sibling-order constraint over the elements of one slot.
// It is immutable once built.
type Sib struct {
	loc   int
	elems []SibElem
}

func (*Sib) sibElem() {}

// NewSib builds the constraint for slot loc. Nested constraints for the same
// slot are spliced in place:
//
//	NewSib(x, A, NewSib(x, B, C)) == NewSib(x, A, B, C)
func NewSib(loc int, elems ...SibElem) *Sib {
	s := &Sib{loc: loc, elems: make([]SibElem, 0, len(elems))}
	for _, e := range elems {
		if nested, ok := e.(*Sib); ok && nested.loc == loc {
			s.elems = append(s.elems, nested.elems...)
			continue
		}
		s.elems = append(s.elems, e)
	}
	return s
}

// Loc returns the slot identifier.
func (s *Sib) Loc() int { return s.loc }

// Len returns the number of elements.
func (s *Sib) Len() int { return len(s.elems) }

// Elems returns a copy of the elements.
func (s *Sib) Elems() []SibElem {
	out := make([]SibElem, len(s.elems))
	copy(out, s.elems)
	return out
}

// Equal reports whether s and other have the same slot and pairwise equal
// elements. Constraints of different length are never equal.
func (s *Sib) Equal(other *Sib) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.loc != other.loc || len(s.elems) != len(other.elems) {
		return false
	}
	for i := range s.elems {
		if !sibElemEqual(s.elems[i], other.elems[i]) {
			return false
		}
	}
	return true
}

func sibElemEqual(a, b SibElem) bool {
	switch a := a.(type) {
	case Name:
		bn, ok := b.(Name)
		return ok && a == bn
	case *Sib:
		bs, ok := b.(*Sib)
		return ok && a.Equal(bs)
	}
	return false
}

// Constraints normalizes s into single-slot constraints.
//
// Every nested group (necessarily for another slot) is normalized on its own
// and appended to the result, and its place in the parent is taken by its
// entry element, the first element of the nested group. The first constraint
// returned is the normalized s. The receiver is left untouched.
//
//	Sib(x, A, Sib(y, B, C)) => [Sib(x, A, B), Sib(y, B, C)]
func (s *Sib) Constraints() ([]*Sib, error) {
	self := &Sib{loc: s.loc, elems: make([]SibElem, len(s.elems))}
	out := []*Sib{self}

	for i, e := range s.elems {
		nested, ok := e.(*Sib)
		if !ok {
			self.elems[i] = e
			continue
		}
		sub, err := nested.Constraints()
		if err != nil {
			return nil, err
		}
		if len(sub[0].elems) == 0 {
			return nil, fmt.Errorf("%w: empty sibling group for slot %d", ErrInvalidConstraint, nested.loc)
		}
		self.elems[i] = sub[0].elems[0]
		out = append(out, sub...)
	}
	return out, nil
}

func (s *Sib) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sib(%d", s.loc)
	for _, e := range s.elems {
		sb.WriteString(", ")
		sb.WriteString(elemString(e))
	}
	sb.WriteString(")")
	return sb.String()
}

func elemString(e any) string {
	switch e := e.(type) {
	case Name:
		return string(e)
	case fmt.Stringer:
		return e.String()
	default:
		return fmt.Sprintf("%v", e)
	}
}
