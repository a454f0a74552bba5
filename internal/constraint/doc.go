// Package constraint models sibling and order declarations between named
// pattern fragments and compiles them into a precedence graph.
//
// A Sib groups the elements that occupy one slot (for example "the children
// of node X") in their declared left-to-right order. Nested groups sharing
// the slot are merged when constructed; groups for other slots are split out
// by Constraints.
//
// An Ord is either a Total (strict left-to-right chain) or a Partial
// (unordered bag). Paths enumerates every linear extension of an Ord and
// ToDAG unions the immediate-successor edges of all of them:
//
//	a, b, c := constraint.Name("a"), constraint.Name("b"), constraint.Name("c")
//	dag, err := constraint.ToDAG(constraint.Total{a, constraint.Partial{b, c}})
//	// a -> {b, c}, b -> {}, c -> {}
package constraint
