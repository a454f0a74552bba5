// Package suppress reads //treematch:ignore directives from Go comments.
//
// A directive without rules silences every rule; a directive followed by a
// colon and a comma separated list silences only those rules:
//
//	//treematch:ignore
//	//treematch:ignore:double-unlock,unlock-before-lock
//
// Placed above the package clause it covers the whole file. At the end of a
// statement line it covers that statement. On a line of its own it covers
// the statement or function declaration starting on the next line, and
// otherwise only its own line.
package suppress

import (
	"errors"
	"go/ast"
	"go/token"
	"strings"
)

const directive = "//treematch:ignore"

var (
	errNotDirective = errors.New("not a suppression directive")
	errNoRules      = errors.New("no rules listed after colon")
)

// Set holds the suppressed line ranges of parsed files.
type Set struct {
	scopes map[string][]scope
}

type scope struct {
	// rules is empty when every rule is suppressed.
	rules     map[string]struct{}
	startLine int
	endLine   int
}

func (s scope) covers(line int, rule string) bool {
	if line < s.startLine || line > s.endLine {
		return false
	}
	if len(s.rules) == 0 {
		return true
	}
	_, ok := s.rules[rule]
	return ok
}

// Parse collects the directives of f. Malformed directives are ignored.
func Parse(f *ast.File, fset *token.FileSet) *Set {
	set := &Set{scopes: make(map[string][]scope)}
	p := &fileParser{
		f:           f,
		fset:        fset,
		stmts:       firstStmtPerLine(f, fset),
		packageLine: fset.Position(f.Package).Line,
	}

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			rules, err := parseDirective(c.Text)
			if err != nil {
				continue
			}
			filename, sc := p.scopeOf(c)
			sc.rules = rules
			set.scopes[filename] = append(set.scopes[filename], sc)
		}
	}
	return set
}

// Suppressed reports whether rule is silenced at pos.
func (s *Set) Suppressed(pos token.Position, rule string) bool {
	if s == nil {
		return false
	}
	for _, sc := range s.scopes[pos.Filename] {
		if sc.covers(pos.Line, rule) {
			return true
		}
	}
	return false
}

func parseDirective(text string) (map[string]struct{}, error) {
	rest, ok := strings.CutPrefix(text, directive)
	if !ok {
		return nil, errNotDirective
	}
	rules := make(map[string]struct{})
	if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
		return rules, nil
	}
	if rest[0] != ':' {
		return nil, errNotDirective
	}

	list := strings.TrimSpace(rest[1:])
	if list == "" {
		return nil, errNoRules
	}
	for _, r := range strings.Split(list, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rules[r] = struct{}{}
		}
	}
	return rules, nil
}

type fileParser struct {
	f           *ast.File
	fset        *token.FileSet
	stmts       map[int]ast.Stmt
	packageLine int
}

func (p *fileParser) scopeOf(c *ast.Comment) (string, scope) {
	pos := p.fset.Position(c.Slash)

	if pos.Line < p.packageLine {
		return pos.Filename, scope{
			startLine: p.fset.Position(p.f.Pos()).Line,
			endLine:   p.fset.Position(p.f.End()).Line,
		}
	}

	// trailing a statement on the same line
	if stmt, ok := p.stmts[pos.Line]; ok && pos.Offset > p.fset.Position(stmt.Pos()).Offset {
		return pos.Filename, scope{
			startLine: pos.Line,
			endLine:   p.fset.Position(stmt.End()).Line,
		}
	}

	if stmt, ok := p.stmts[pos.Line+1]; ok {
		return pos.Filename, scope{
			startLine: pos.Line,
			endLine:   p.fset.Position(stmt.End()).Line,
		}
	}

	for _, decl := range p.f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if ok && p.fset.Position(fn.Pos()).Line == pos.Line+1 {
			return pos.Filename, scope{
				startLine: pos.Line,
				endLine:   p.fset.Position(fn.End()).Line,
			}
		}
	}

	return pos.Filename, scope{startLine: pos.Line, endLine: pos.Line}
}

// firstStmtPerLine maps each line to the first statement starting on it.
func firstStmtPerLine(f *ast.File, fset *token.FileSet) map[int]ast.Stmt {
	stmts := make(map[int]ast.Stmt)
	ast.Inspect(f, func(n ast.Node) bool {
		stmt, ok := n.(ast.Stmt)
		if !ok {
			return true
		}
		line := fset.Position(stmt.Pos()).Line
		if _, seen := stmts[line]; !seen {
			stmts[line] = stmt
		}
		return true
	})
	return stmts
}
