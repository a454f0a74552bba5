package goast

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"sort"
	"strings"

	"github.com/gnolang/treematch/internal/pattern"
	"github.com/gnolang/treematch/internal/vm"
)

// kinds maps unit identifiers to typed nil statements.
var kinds = map[string]ast.Node{
	"AssignStmt":     (*ast.AssignStmt)(nil),
	"BlockStmt":      (*ast.BlockStmt)(nil),
	"BranchStmt":     (*ast.BranchStmt)(nil),
	"DeclStmt":       (*ast.DeclStmt)(nil),
	"DeferStmt":      (*ast.DeferStmt)(nil),
	"EmptyStmt":      (*ast.EmptyStmt)(nil),
	"ExprStmt":       (*ast.ExprStmt)(nil),
	"ForStmt":        (*ast.ForStmt)(nil),
	"GoStmt":         (*ast.GoStmt)(nil),
	"IfStmt":         (*ast.IfStmt)(nil),
	"IncDecStmt":     (*ast.IncDecStmt)(nil),
	"LabeledStmt":    (*ast.LabeledStmt)(nil),
	"RangeStmt":      (*ast.RangeStmt)(nil),
	"ReturnStmt":     (*ast.ReturnStmt)(nil),
	"SelectStmt":     (*ast.SelectStmt)(nil),
	"SendStmt":       (*ast.SendStmt)(nil),
	"SwitchStmt":     (*ast.SwitchStmt)(nil),
	"TypeSwitchStmt": (*ast.TypeSwitchStmt)(nil),
}

// Kinds returns the identifiers accepted as kind units, sorted.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKind reports whether n is a kind unit rather than a template.
func IsKind(n ast.Node) bool {
	if n == nil {
		return false
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Resolve turns a pattern unit into a kind or a parsed template.
func Resolve(u *pattern.UnitNode) (ast.Node, error) {
	switch u.Kind {
	case pattern.UnitIdent:
		k, ok := kinds[u.Text]
		if !ok {
			return nil, fmt.Errorf("unknown statement kind %q", u.Text)
		}
		return k, nil
	case pattern.UnitTemplate:
		return ParseStmt(u.Text)
	default:
		return nil, fmt.Errorf("unsupported unit kind %d", u.Kind)
	}
}

// ParseStmt parses src as exactly one Go statement.
func ParseStmt(src string) (ast.Stmt, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty template")
	}
	wrapped := "package p\nfunc _() {\n" + src + "\n}\n"
	f, err := parser.ParseFile(token.NewFileSet(), "", wrapped, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", src, err)
	}

	body := f.Decls[0].(*ast.FuncDecl).Body.List
	if len(body) != 1 {
		return nil, fmt.Errorf("template %q: want 1 statement, got %d", src, len(body))
	}
	return body[0], nil
}

// Compile parses a sequence pattern and resolves its units against go/ast.
func Compile(src string) (*vm.Program[ast.Node], error) {
	return pattern.CompileString(src, Resolve)
}

// Equiv is the machine equivalence for go/ast items. A kind unit accepts
// any item of that node type; a template accepts items that Match it.
func Equiv(item, expected ast.Node) bool {
	if item == nil || expected == nil {
		return false
	}
	if IsKind(expected) {
		return reflect.TypeOf(item) == reflect.TypeOf(expected)
	}
	return Match(item, expected)
}
