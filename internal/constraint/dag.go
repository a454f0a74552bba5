package constraint

import (
	"sort"
	"strings"
)

// DAG maps each leaf name to the names that may immediately follow it in
// some linear extension of a declaration. Sinks map to an empty set.
type DAG map[Name]map[Name]struct{}

// Union builds the precedence graph of o without validating it: an edge
// a -> b exists iff some extension from Paths places b right after a. Every
// leaf of o is a key, even when no extension mentions it.
func Union(o Ord) DAG {
	d := make(DAG)
	for _, leaf := range Leaves(o) {
		d.ensure(leaf)
	}
	for _, p := range Paths(o) {
		if len(p) == 0 {
			continue
		}
		for i := 0; i < len(p)-1; i++ {
			d.ensure(p[i])[p[i+1]] = struct{}{}
		}
		d.ensure(p[len(p)-1])
	}
	return d
}

// ToDAG builds the precedence graph of o and rejects contradictory
// declarations, such as Total{a, b, a}, with a *CycleError.
func ToDAG(o Ord) (DAG, error) {
	d := Union(o)
	if cycle := d.Cycle(); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}
	return d, nil
}

func (d DAG) ensure(n Name) map[Name]struct{} {
	succ, ok := d[n]
	if !ok {
		succ = make(map[Name]struct{})
		d[n] = succ
	}
	return succ
}

// Nodes returns every key in sorted order.
func (d DAG) Nodes() []Name {
	nodes := make([]Name, 0, len(d))
	for n := range d {
		nodes = append(nodes, n)
	}
	sortNames(nodes)
	return nodes
}

// Successors returns the direct successors of n in sorted order.
func (d DAG) Successors(n Name) []Name {
	succ := make([]Name, 0, len(d[n]))
	for s := range d[n] {
		succ = append(succ, s)
	}
	sortNames(succ)
	return succ
}

// HasEdge reports whether b may immediately follow a.
func (d DAG) HasEdge(a, b Name) bool {
	_, ok := d[a][b]
	return ok
}

// Reaches reports whether a path of at least one edge leads from a to b.
func (d DAG) Reaches(a, b Name) bool {
	seen := make(map[Name]bool)
	stack := []Name{a}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for s := range d[n] {
			if s == b {
				return true
			}
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	return false
}

// Cycle returns one cycle of d, starting and ending with the same name, or
// nil when d is acyclic. Nodes are visited in sorted order so the result is
// deterministic.
func (d DAG) Cycle() []Name {
	const (
		white = iota
		grey
		black
	)
	color := make(map[Name]int, len(d))
	var stack []Name
	var found []Name

	var dfs func(n Name) bool
	dfs = func(n Name) bool {
		color[n] = grey
		stack = append(stack, n)
		for _, s := range d.Successors(n) {
			switch color[s] {
			case grey:
				start := indexOf(stack, s)
				found = append(append([]Name{}, stack[start:]...), s)
				return true
			case white:
				if dfs(s) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	for _, n := range d.Nodes() {
		if color[n] == white && dfs(n) {
			return found
		}
	}
	return nil
}

// Violation records two fragments observed in the opposite order of the
// declared precedence: Before must come first but After was seen earlier.
type Violation struct {
	Before Name
	After  Name
}

// Violations checks an observed order of names against d. A pair is
// reported when the later name is declared to precede the earlier one and
// not the other way round. Names unknown to d never violate.
func (d DAG) Violations(observed []Name) []Violation {
	var out []Violation
	for i := 0; i < len(observed); i++ {
		for j := i + 1; j < len(observed); j++ {
			early, late := observed[i], observed[j]
			if d.Reaches(late, early) && !d.Reaches(early, late) {
				out = append(out, Violation{Before: late, After: early})
			}
		}
	}
	return out
}

// String renders one "name -> {successors}" line per node, sorted.
func (d DAG) String() string {
	var sb strings.Builder
	for _, n := range d.Nodes() {
		succ := d.Successors(n)
		parts := make([]string, len(succ))
		for i, s := range succ {
			parts[i] = string(s)
		}
		sb.WriteString(string(n))
		sb.WriteString(" -> {")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("}\n")
	}
	return sb.String()
}

func sortNames(ns []Name) {
	sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
}

func indexOf(ns []Name, n Name) int {
	for i, v := range ns {
		if v == n {
			return i
		}
	}
	return -1
}
