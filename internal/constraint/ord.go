package constraint

import "strings"

// OrdElem is an element of an order declaration: a Name or a nested Ord.
type OrdElem interface {
	ordElem()
}

// Ord is an order declaration. The only implementations are Total and
// Partial.
type Ord interface {
	OrdElem
	// findPaths yields, per group, the alternative sub-paths the group may
	// contribute to a linear extension.
	findPaths() [][]Path
	String() string
}

// Path is one linear extension, or a piece of one.
type Path []Name

// Total declares that its elements occur in the given left-to-right order.
type Total []OrdElem

// Partial declares that its elements co-occur in no particular order.
type Partial []OrdElem

var (
	_ Ord = Total(nil)
	_ Ord = Partial(nil)
)

func (Total) ordElem()   {}
func (Partial) ordElem() {}

// Every element is its own group and contributes only its own expansions;
// nothing interleaves across positions.
func (t Total) findPaths() [][]Path {
	groups := make([][]Path, 0, len(t))
	for _, e := range t {
		switch e := e.(type) {
		case Name:
			groups = append(groups, []Path{{e}})
		case Ord:
			groups = append(groups, Paths(e))
		}
	}
	return groups
}

// All elements form a single group, so each leaf and each extension of a
// nested declaration is one alternative.
func (p Partial) findPaths() [][]Path {
	var group []Path
	for _, e := range p {
		switch e := e.(type) {
		case Name:
			group = append(group, Path{e})
		case Ord:
			group = append(group, Paths(e)...)
		}
	}
	return [][]Path{group}
}

// Paths returns the Cartesian product of o's path groups, each combination
// concatenated into one flat linear extension. The first group varies
// slowest.
func Paths(o Ord) []Path {
	acc := []Path{{}}
	for _, group := range o.findPaths() {
		next := make([]Path, 0, len(acc)*len(group))
		for _, prefix := range acc {
			for _, alt := range group {
				p := make(Path, 0, len(prefix)+len(alt))
				p = append(p, prefix...)
				p = append(p, alt...)
				next = append(next, p)
			}
		}
		acc = next
	}
	return acc
}

// Leaves returns every name referenced in the tree rooted at e, in
// declaration order, without duplicates.
func Leaves(e OrdElem) []Name {
	var out []Name
	seen := make(map[Name]bool)
	var walk func(OrdElem)
	walk = func(e OrdElem) {
		switch e := e.(type) {
		case Name:
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		case Total:
			for _, c := range e {
				walk(c)
			}
		case Partial:
			for _, c := range e {
				walk(c)
			}
		}
	}
	walk(e)
	return out
}

// OrdEqual reports whether a and b are the same declaration: same kinds and
// pairwise equal elements.
func OrdEqual(a, b OrdElem) bool {
	switch a := a.(type) {
	case Name:
		bn, ok := b.(Name)
		return ok && a == bn
	case Total:
		bt, ok := b.(Total)
		return ok && elemsEqual(a, bt)
	case Partial:
		bp, ok := b.(Partial)
		return ok && elemsEqual(a, bp)
	}
	return false
}

func elemsEqual(a, b []OrdElem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !OrdEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (t Total) String() string   { return ordString("Total", t) }
func (p Partial) String() string { return ordString("Partial", p) }

func ordString(kind string, elems []OrdElem) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = elemString(e)
	}
	return kind + "(" + strings.Join(parts, ", ") + ")"
}
