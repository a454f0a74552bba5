package pattern

import (
	"fmt"
	"strings"

	"github.com/gnolang/treematch/internal/constraint"
)

// Tree is a tree pattern. Branch is the only leaf; And, Then and Or fork
// the tree into sub-patterns.
type Tree[T any] interface {
	// canonical rewrites the tree into canonical normal form, where loc is
	// the depth the tree starts at and prefix the units leading to it.
	canonical(loc int, prefix []T) Tree[T]
	exprs(ids *idGen) []Expr[T]
	String() string
}

var (
	_ Tree[int] = (*Branch[int])(nil)
	_ Tree[int] = (*And[int])(nil)
	_ Tree[int] = (*Then[int])(nil)
	_ Tree[int] = (*Or[int])(nil)
)

// Expr is one alternative of a compiled tree pattern.
type Expr[T any] struct {
	// Aliases maps each branch id used below to its branch.
	Aliases map[constraint.Name]*Branch[T]
	Sib     constraint.SibElem
	Ord     constraint.OrdElem
}

// CompileTree brings t into canonical normal form and emits one Expr per
// top-level alternative. Branch ids (B0, B1, ...) are assigned in traversal
// order. The input tree is not modified.
//
// Canonical normal form rewrites, with f(x) = Branch(x) for units:
//
//	Branch(x..., Branch(y...))       => Branch(x..., y...)
//	Ta(Tb(x...))                     => Tb(x...)
//	Fa(x...)                         => Fa(f(x)...)
//	Fa(x)                            => Branch(x)
//	Fa(x..., Fb(y...))               => Fa(x..., y...)  same kind and depth
//	Branch(x..., Fa(y1, ..., yn))    => Fa(Branch(x..., y1), ..., Branch(x..., yn))
//	And(x, Or(y1, y2))               => Or(And(x, y1), And(x, y2))
//	Then(x, Or(y1, y2))              => Or(Then(x, y1), Then(x, y2))
func CompileTree[T any](t Tree[T]) []Expr[T] {
	return t.canonical(0, nil).exprs(&idGen{})
}

type idGen struct {
	next int
}

func (g *idGen) id() constraint.Name {
	n := constraint.Name(fmt.Sprintf("B%d", g.next))
	g.next++
	return n
}

// Branch is a path of units from the root downwards, optionally continued
// by a sub-tree.
type Branch[T any] struct {
	Units []T
	Tail  Tree[T]
}

// Br returns a branch over units.
func Br[T any](units ...T) *Branch[T] {
	return &Branch[T]{Units: units}
}

// BrTail returns a branch over units continued by tail.
func BrTail[T any](tail Tree[T], units ...T) *Branch[T] {
	return &Branch[T]{Units: units, Tail: tail}
}

func (b *Branch[T]) canonical(loc int, prefix []T) Tree[T] {
	units := concat(prefix, b.Units)
	if b.Tail != nil {
		return b.Tail.canonical(loc+len(b.Units), units)
	}
	return &Branch[T]{Units: units}
}

func (b *Branch[T]) exprs(ids *idGen) []Expr[T] {
	id := ids.id()
	return []Expr[T]{{
		Aliases: map[constraint.Name]*Branch[T]{id: b},
		Sib:     id,
		Ord:     id,
	}}
}

func (b *Branch[T]) String() string {
	parts := make([]string, 0, len(b.Units)+1)
	for _, u := range b.Units {
		parts = append(parts, fmt.Sprintf("%v", u))
	}
	if b.Tail != nil {
		parts = append(parts, b.Tail.String())
	}
	return "Branch(" + strings.Join(parts, ", ") + ")"
}

type forkKind int

const (
	forkAnd forkKind = iota
	forkThen
)

// fork is the shared body of And and Then.
type fork[T any] struct {
	loc      int
	children []Tree[T]
}

// And matches all children at the same depth, in any sibling order.
type And[T any] struct{ fork[T] }

// Then matches all children at the same depth, in the given sibling order.
type Then[T any] struct{ fork[T] }

// AllOf returns an And over children.
func AllOf[T any](children ...Tree[T]) *And[T] {
	return &And[T]{fork[T]{children: children}}
}

// InOrder returns a Then over children.
func InOrder[T any](children ...Tree[T]) *Then[T] {
	return &Then[T]{fork[T]{children: children}}
}

func newFork[T any](kind forkKind, loc int, children []Tree[T]) Tree[T] {
	f := fork[T]{loc: loc, children: children}
	if kind == forkThen {
		return &Then[T]{f}
	}
	return &And[T]{f}
}

// sameFork returns t's children when t is a fork of kind at depth loc.
func sameFork[T any](kind forkKind, loc int, t Tree[T]) ([]Tree[T], bool) {
	switch t := t.(type) {
	case *And[T]:
		return t.children, kind == forkAnd && t.loc == loc
	case *Then[T]:
		return t.children, kind == forkThen && t.loc == loc
	}
	return nil, false
}

func canonicalFork[T any](kind forkKind, children []Tree[T], loc int, prefix []T) Tree[T] {
	if len(children) == 1 {
		return children[0].canonical(loc, prefix)
	}

	norms := make([]Tree[T], len(children))
	for i, c := range children {
		norms[i] = c.canonical(loc, prefix)
	}
	flat := flattenFork(kind, loc, norms)

	hasOr := false
	for _, c := range flat {
		if _, ok := c.(*Or[T]); ok {
			hasOr = true
			break
		}
	}
	if !hasOr {
		return newFork(kind, loc, flat)
	}

	// distribute over every Or child
	combos := [][]Tree[T]{{}}
	for _, c := range flat {
		alts := []Tree[T]{c}
		if or, ok := c.(*Or[T]); ok {
			alts = or.children
		}
		next := make([][]Tree[T], 0, len(combos)*len(alts))
		for _, combo := range combos {
			for _, alt := range alts {
				next = append(next, append(append([]Tree[T]{}, combo...), alt))
			}
		}
		combos = next
	}
	out := make([]Tree[T], len(combos))
	for i, combo := range combos {
		out[i] = newFork(kind, loc, flattenFork(kind, loc, combo))
	}
	return &Or[T]{children: out}
}

func flattenFork[T any](kind forkKind, loc int, trees []Tree[T]) []Tree[T] {
	out := make([]Tree[T], 0, len(trees))
	for _, t := range trees {
		if children, ok := sameFork(kind, loc, t); ok {
			out = append(out, children...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// exprs expects canonical children, each of which yields exactly one Expr.
func forkExprs[T any](kind forkKind, f fork[T], ids *idGen) []Expr[T] {
	aliases := make(map[constraint.Name]*Branch[T])
	sibs := make([]constraint.SibElem, 0, len(f.children))
	ords := make([]constraint.OrdElem, 0, len(f.children))
	for _, c := range f.children {
		e := c.exprs(ids)[0]
		for k, v := range e.Aliases {
			aliases[k] = v
		}
		sibs = append(sibs, e.Sib)
		ords = append(ords, e.Ord)
	}

	var ord constraint.OrdElem = constraint.Partial(ords)
	if kind == forkThen {
		ord = constraint.Total(ords)
	}
	return []Expr[T]{{
		Aliases: aliases,
		Sib:     constraint.NewSib(f.loc, sibs...),
		Ord:     ord,
	}}
}

func (a *And[T]) canonical(loc int, prefix []T) Tree[T] {
	return canonicalFork(forkAnd, a.children, loc, prefix)
}

func (a *And[T]) exprs(ids *idGen) []Expr[T] { return forkExprs(forkAnd, a.fork, ids) }
func (a *And[T]) String() string             { return treeString("And", a.children) }

func (t *Then[T]) canonical(loc int, prefix []T) Tree[T] {
	return canonicalFork(forkThen, t.children, loc, prefix)
}

func (t *Then[T]) exprs(ids *idGen) []Expr[T] { return forkExprs(forkThen, t.fork, ids) }
func (t *Then[T]) String() string             { return treeString("Then", t.children) }

// Or matches any one of its children.
type Or[T any] struct {
	children []Tree[T]
}

// OneOf returns an Or over children.
func OneOf[T any](children ...Tree[T]) *Or[T] {
	return &Or[T]{children: children}
}

func (o *Or[T]) canonical(loc int, prefix []T) Tree[T] {
	norms := make([]Tree[T], 0, len(o.children))
	for _, c := range o.children {
		n := c.canonical(loc, prefix)
		if nested, ok := n.(*Or[T]); ok {
			norms = append(norms, nested.children...)
			continue
		}
		norms = append(norms, n)
	}
	if len(norms) == 1 {
		return norms[0]
	}
	return &Or[T]{children: norms}
}

func (o *Or[T]) exprs(ids *idGen) []Expr[T] {
	var out []Expr[T]
	for _, c := range o.children {
		out = append(out, c.exprs(ids)...)
	}
	return out
}

func (o *Or[T]) String() string { return treeString("Or", o.children) }

func treeString[T any](kind string, children []Tree[T]) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return kind + "(" + strings.Join(parts, ", ") + ")"
}

func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
