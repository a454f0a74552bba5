package internal

import (
	"fmt"
	"go/ast"
	"go/token"
	"sort"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/gnolang/treematch/internal/constraint"
	"github.com/gnolang/treematch/internal/goast"
	"github.com/gnolang/treematch/internal/pattern"
	tt "github.com/gnolang/treematch/internal/types"
	"github.com/gnolang/treematch/internal/vm"
)

// LintRule defines the interface for all configured rules.
type LintRule interface {
	// Check runs the rule on the given file and returns a slice of Issues.
	Check(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error)

	// Name returns the name of the rule.
	Name() string

	Severity() tt.Severity
}

var (
	_ LintRule = (*PatternRule)(nil)
	_ LintRule = (*OrderRule)(nil)
	_ LintRule = (*TreeRule)(nil)
)

// newRule builds the rule kind selected by the fields set in cfg.
func newRule(name string, cfg tt.ConfigRule) (LintRule, error) {
	base := ruleBase{name: name, message: cfg.Message, note: cfg.Note, severity: cfg.Severity}

	set := 0
	for _, present := range []bool{cfg.Pattern != "", cfg.Order != nil, cfg.Tree != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("want exactly one of pattern, order or tree")
	}

	switch {
	case cfg.Pattern != "":
		base.category = tt.CategoryPattern
		return newPatternRule(base, cfg)
	case cfg.Order != nil:
		base.category = tt.CategoryOrder
		return newOrderRule(base, cfg)
	default:
		base.category = tt.CategoryTree
		return newTreeRule(base, cfg)
	}
}

func machineOptions(cfg tt.ConfigRule) []vm.Option {
	var opts []vm.Option
	if cfg.RequireEnd {
		opts = append(opts, vm.WithRequireEnd())
	}
	if cfg.StrictAny {
		opts = append(opts, vm.WithStrictAny())
	}
	if cfg.StepBudget > 0 {
		opts = append(opts, vm.WithStepBudget(cfg.StepBudget))
	}
	return opts
}

type ruleBase struct {
	name     string
	message  string
	note     string
	category string
	severity tt.Severity
}

func (r *ruleBase) Name() string          { return r.name }
func (r *ruleBase) Severity() tt.Severity { return r.severity }

func (r *ruleBase) issue(filename string, file *ast.File, fset *token.FileSet, start, end token.Pos, fallback string) tt.Issue {
	msg := r.message
	if msg == "" {
		msg = fallback
	}
	note := r.note
	if note == "" {
		note = enclosingFunc(file, start, end)
	}
	return tt.Issue{
		Rule:     r.name,
		Category: r.category,
		Filename: filename,
		Message:  msg,
		Note:     note,
		Start:    fset.Position(start),
		End:      fset.Position(end),
		Severity: r.severity,
	}
}

// enclosingFunc names the function declaration around [start, end).
func enclosingFunc(file *ast.File, start, end token.Pos) string {
	path, _ := astutil.PathEnclosingInterval(file, start, end)
	for _, n := range path {
		if fn, ok := n.(*ast.FuncDecl); ok {
			return "in function " + fn.Name.Name
		}
	}
	return ""
}

// PatternRule reports every match of a sequence pattern.
type PatternRule struct {
	ruleBase
	source  string
	machine *vm.Machine[ast.Node]
}

func newPatternRule(base ruleBase, cfg tt.ConfigRule) (*PatternRule, error) {
	prog, err := goast.Compile(cfg.Pattern)
	if err != nil {
		return nil, err
	}
	return &PatternRule{
		ruleBase: base,
		source:   cfg.Pattern,
		machine:  vm.New(prog, goast.Equiv, machineOptions(cfg)...),
	}, nil
}

func (r *PatternRule) Check(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error) {
	var issues []tt.Issue
	for _, seq := range goast.Sequences(node) {
		spans, err := r.machine.FindAll(seq.Items())
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.name, err)
		}
		for _, sp := range spans {
			start, end := seq.Stmts[sp.Start].Pos(), seq.Stmts[sp.End-1].End()
			issues = append(issues, r.issue(filename, node, fset, start, end, "matches "+r.source))
		}
	}
	return issues, nil
}

// OrderRule reports fragments of one sequence that appear in an order the
// declared precedence forbids. Only the first occurrence of each fragment
// in a sequence takes part.
type OrderRule struct {
	ruleBase
	fragments map[constraint.Name]*vm.Machine[ast.Node]
	order     constraint.Ord
	dag       constraint.DAG
}

func newOrderRule(base ruleBase, cfg tt.ConfigRule) (*OrderRule, error) {
	if len(cfg.Fragments) == 0 {
		return nil, fmt.Errorf("order without fragments")
	}

	fragments := make(map[constraint.Name]*vm.Machine[ast.Node], len(cfg.Fragments))
	for name, src := range cfg.Fragments {
		prog, err := goast.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("fragment %q: %w", name, err)
		}
		fragments[constraint.Name(name)] = vm.New(prog, goast.Equiv, machineOptions(cfg)...)
	}

	for _, leaf := range constraint.Leaves(cfg.Order.Ord) {
		if _, ok := fragments[leaf]; !ok {
			return nil, fmt.Errorf("order names unknown fragment %q", leaf)
		}
	}

	dag, err := constraint.ToDAG(cfg.Order.Ord)
	if err != nil {
		return nil, err
	}
	return &OrderRule{ruleBase: base, fragments: fragments, order: cfg.Order.Ord, dag: dag}, nil
}

// Precedence returns the compiled precedence graph.
func (r *OrderRule) Precedence() constraint.DAG { return r.dag }

type occurrence struct {
	name constraint.Name
	span vm.Span
}

func (r *OrderRule) Check(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error) {
	var issues []tt.Issue
	for _, seq := range goast.Sequences(node) {
		items := seq.Items()

		var found []occurrence
		for name, m := range r.fragments {
			sp, ok, err := m.Find(items, 0)
			if err != nil {
				return nil, fmt.Errorf("rule %q: fragment %q: %w", r.name, name, err)
			}
			if ok {
				found = append(found, occurrence{name: name, span: sp})
			}
		}
		if len(found) < 2 {
			continue
		}
		sort.Slice(found, func(i, j int) bool {
			if found[i].span.Start != found[j].span.Start {
				return found[i].span.Start < found[j].span.Start
			}
			return found[i].name < found[j].name
		})

		observed := make([]constraint.Name, len(found))
		spans := make(map[constraint.Name]vm.Span, len(found))
		for i, oc := range found {
			observed[i] = oc.name
			spans[oc.name] = oc.span
		}

		for _, v := range r.dag.Violations(observed) {
			first, second := spans[v.After], spans[v.Before]
			start := seq.Stmts[first.Start].Pos()
			end := seq.Stmts[max(first.End, second.End)-1].End()
			is := r.issue(filename, node, fset, start, end,
				fmt.Sprintf("%s appears before %s", v.After, v.Before))
			is.Suggestion = fmt.Sprintf("move %s before %s", v.Before, v.After)
			issues = append(issues, is)
		}
	}
	return issues, nil
}

// TreeRule reports sequences containing a tree pattern: every branch is a
// path of units descending through nested blocks, branches forked at the
// same depth are distinct siblings under a shared prefix, and Then forks
// keep their children in source order.
type TreeRule struct {
	ruleBase
	exprs []treeExpr
}

type treeExpr struct {
	ids      []constraint.Name
	branches map[constraint.Name][]ast.Node
	sibs     []*constraint.Sib
	dag      constraint.DAG
}

func newTreeRule(base ruleBase, cfg tt.ConfigRule) (*TreeRule, error) {
	tree, err := buildTree(cfg.Tree)
	if err != nil {
		return nil, err
	}

	rule := &TreeRule{ruleBase: base}
	for _, e := range pattern.CompileTree(tree) {
		te := treeExpr{branches: make(map[constraint.Name][]ast.Node, len(e.Aliases))}
		for id, br := range e.Aliases {
			te.ids = append(te.ids, id)
			te.branches[id] = br.Units
		}
		sort.Slice(te.ids, func(i, j int) bool { return te.ids[i] < te.ids[j] })

		if sib, ok := e.Sib.(*constraint.Sib); ok {
			if te.sibs, err = sib.Constraints(); err != nil {
				return nil, err
			}
		}
		te.dag = constraint.DAG{}
		if ord, ok := e.Ord.(constraint.Ord); ok {
			if te.dag, err = constraint.ToDAG(ord); err != nil {
				return nil, err
			}
		}
		rule.exprs = append(rule.exprs, te)
	}
	return rule, nil
}

func buildTree(spec *tt.TreeSpec) (pattern.Tree[ast.Node], error) {
	if spec == nil {
		return nil, fmt.Errorf("empty tree")
	}
	if spec.Kind == "branch" {
		units := make([]ast.Node, len(spec.Units))
		for i, src := range spec.Units {
			u, err := resolveTreeUnit(src)
			if err != nil {
				return nil, err
			}
			units[i] = u
		}
		if spec.Tail == nil {
			return pattern.Br(units...), nil
		}
		tail, err := buildTree(spec.Tail)
		if err != nil {
			return nil, err
		}
		return pattern.BrTail(tail, units...), nil
	}

	children := make([]pattern.Tree[ast.Node], len(spec.Children))
	for i, c := range spec.Children {
		child, err := buildTree(c)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	switch spec.Kind {
	case "and":
		return pattern.AllOf(children...), nil
	case "then":
		return pattern.InOrder(children...), nil
	case "or":
		return pattern.OneOf(children...), nil
	}
	return nil, fmt.Errorf("unknown tree kind %q", spec.Kind)
}

func resolveTreeUnit(src string) (ast.Node, error) {
	n, err := pattern.Parse(src)
	if err != nil {
		return nil, err
	}
	u, ok := n.(*pattern.UnitNode)
	if !ok {
		return nil, fmt.Errorf("tree unit %q must be a statement kind or template", src)
	}
	return goast.Resolve(u)
}

func (r *TreeRule) Check(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error) {
	var issues []tt.Issue
	for _, seq := range goast.Sequences(node) {
		for _, e := range r.exprs {
			chosen, ok := e.match(seq.Stmts)
			if !ok {
				continue
			}
			start, end := chosen.bounds()
			issues = append(issues, r.issue(filename, node, fset, start, end, "matches tree pattern"))
			break
		}
	}
	return issues, nil
}

// treePath is one statement per unit of a branch, each nested in the one
// before.
type treePath []ast.Stmt

type assignment map[constraint.Name]treePath

func (a assignment) bounds() (token.Pos, token.Pos) {
	var start, end token.Pos
	for _, p := range a {
		if start == token.NoPos || p[0].Pos() < start {
			start = p[0].Pos()
		}
		if p[0].End() > end {
			end = p[0].End()
		}
	}
	return start, end
}

func (e treeExpr) match(stmts []ast.Stmt) (assignment, bool) {
	candidates := make(map[constraint.Name][]treePath, len(e.ids))
	for _, id := range e.ids {
		paths := findPaths(stmts, e.branches[id])
		if len(paths) == 0 {
			return nil, false
		}
		candidates[id] = paths
	}

	chosen := make(assignment, len(e.ids))
	var try func(i int) bool
	try = func(i int) bool {
		if i == len(e.ids) {
			return true
		}
		id := e.ids[i]
		for _, p := range candidates[id] {
			chosen[id] = p
			if e.consistent(id, chosen) && try(i+1) {
				return true
			}
		}
		delete(chosen, id)
		return false
	}
	if !try(0) {
		return nil, false
	}
	return chosen, true
}

// consistent checks the sibling and order constraints between id and the
// branches chosen so far.
func (e treeExpr) consistent(id constraint.Name, chosen assignment) bool {
	p := chosen[id]
	for _, sib := range e.sibs {
		if !sibContains(sib, id) {
			continue
		}
		for _, el := range sib.Elems() {
			other, ok := el.(constraint.Name)
			if !ok || other == id {
				continue
			}
			q, ok := chosen[other]
			if ok && !siblings(p, q, sib.Loc()) {
				return false
			}
		}
	}

	for other, q := range chosen {
		if other == id {
			continue
		}
		if e.dag.HasEdge(id, other) && !precedes(p, q) {
			return false
		}
		if e.dag.HasEdge(other, id) && !precedes(q, p) {
			return false
		}
	}
	return true
}

func sibContains(s *constraint.Sib, id constraint.Name) bool {
	for _, el := range s.Elems() {
		if n, ok := el.(constraint.Name); ok && n == id {
			return true
		}
	}
	return false
}

// siblings reports whether p and q share their first loc statements and
// part at depth loc.
func siblings(p, q treePath, loc int) bool {
	if len(p) <= loc || len(q) <= loc {
		return false
	}
	for i := 0; i < loc; i++ {
		if p[i] != q[i] {
			return false
		}
	}
	return p[loc] != q[loc]
}

// precedes reports whether p comes before q where the two paths part.
func precedes(p, q treePath) bool {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			return p[i].Pos() < q[i].Pos()
		}
	}
	return false
}

func findPaths(stmts []ast.Stmt, units []ast.Node) []treePath {
	var out []treePath
	for _, s := range stmts {
		if !goast.Equiv(s, units[0]) {
			continue
		}
		if len(units) == 1 {
			out = append(out, treePath{s})
			continue
		}
		for _, child := range goast.ChildSequences(s) {
			for _, sub := range findPaths(child.Stmts, units[1:]) {
				out = append(out, append(treePath{s}, sub...))
			}
		}
	}
	return out
}
