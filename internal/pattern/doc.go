/*
Package pattern provides the pattern languages that feed the matching
machine and the constraint compiler.

# Sequence patterns

A sequence pattern describes a run of consecutive units, such as the
statements of a block:

	alt  := cat ('|' cat)*
	cat  := post { post }
	post := atom { '*' | '+' | '?' }
	atom := '_' | IDENT | '`' source '`' | '[' unit {',' unit} ']' | '(' alt ')'
	unit := IDENT | '`' source '`'

'_' matches any unit, IDENT and backquoted source are opaque unit literals
whose meaning is decided by a Resolver, and a bracketed list matches any one
of its units. Compile performs a Thompson construction and returns a
validated vm.Program:

	prog, err := pattern.CompileString("Lock _* Unlock", resolve)

# Tree patterns

Branch, And, Then and Or build tree patterns. Compile brings a tree into
canonical normal form and emits, per alternative, the branch aliases
together with the sibling (constraint.Sib) and order (constraint.Ord)
declarations between them.
*/
package pattern
