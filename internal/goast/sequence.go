package goast

import (
	"go/ast"

	"golang.org/x/tools/go/ast/inspector"
)

// Sequence is the statement list of one block or clause.
type Sequence struct {
	// Owner is the *ast.BlockStmt, *ast.CaseClause or *ast.CommClause
	// holding Stmts.
	Owner ast.Node
	Stmts []ast.Stmt
}

// Items returns the statements as machine items.
func (s Sequence) Items() []ast.Node {
	items := make([]ast.Node, len(s.Stmts))
	for i, st := range s.Stmts {
		items[i] = st
	}
	return items
}

var sequenceOwners = []ast.Node{
	(*ast.BlockStmt)(nil),
	(*ast.CaseClause)(nil),
	(*ast.CommClause)(nil),
}

// Sequences returns every non-empty statement list in files, in source
// order. Nested blocks yield their own sequences. The clause lists of
// switch and select bodies are not sequences; each clause body is.
func Sequences(files ...*ast.File) []Sequence {
	var out []Sequence
	inspector.New(files).Preorder(sequenceOwners, func(n ast.Node) {
		if stmts, ok := ownedStmts(n); ok && len(stmts) > 0 {
			out = append(out, Sequence{Owner: n, Stmts: stmts})
		}
	})
	return out
}

// ChildSequences returns the outermost non-empty sequences inside stmt, in
// source order. A block statement is its own child sequence.
func ChildSequences(stmt ast.Stmt) []Sequence {
	var out []Sequence
	ast.Inspect(stmt, func(n ast.Node) bool {
		stmts, ok := ownedStmts(n)
		if !ok {
			return true
		}
		if len(stmts) > 0 {
			out = append(out, Sequence{Owner: n, Stmts: stmts})
		}
		return false
	})
	return out
}

// ownedStmts returns the statement list n holds, and whether n holds one.
func ownedStmts(n ast.Node) ([]ast.Stmt, bool) {
	switch n := n.(type) {
	case *ast.BlockStmt:
		if isClauseList(n.List) {
			return nil, false
		}
		return n.List, true
	case *ast.CaseClause:
		return n.Body, true
	case *ast.CommClause:
		return n.Body, true
	}
	return nil, false
}

func isClauseList(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	switch stmts[0].(type) {
	case *ast.CaseClause, *ast.CommClause:
		return true
	}
	return false
}
