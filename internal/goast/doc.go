// Package goast adapts go/ast to the matching machine.
//
// Items are ast.Node values, normally the statements of one block or case
// clause in source order. A pattern unit resolves to either a node kind,
// represented by a typed nil such as (*ast.ReturnStmt)(nil), or a statement
// template parsed from Go source. Templates compare structurally: positions,
// comments and resolver objects are ignored, and the blank identifier `_`
// matches any node.
//
//	prog, err := goast.Compile("`_.Lock()` _* `_.Unlock()`")
//	m := vm.New(prog, goast.Equiv)
//	for _, seq := range goast.Sequences(file) {
//		spans, err := m.FindAll(seq.Items())
//		...
//	}
package goast
