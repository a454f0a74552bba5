package internal

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gnolang/treematch/internal/constraint"
	"github.com/gnolang/treematch/internal/suppress"
	tt "github.com/gnolang/treematch/internal/types"
)

// Engine manages the matching process.
type Engine struct {
	logger       *zap.Logger
	mu           sync.RWMutex
	ignoredRules map[string]bool
	rules        map[string]LintRule
}

// NewEngine compiles every configured rule. Rules with severity off are
// skipped; any other rule that fails to compile is an error.
func NewEngine(logger *zap.Logger, rules map[string]tt.ConfigRule) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		logger:       logger,
		ignoredRules: make(map[string]bool),
		rules:        make(map[string]LintRule, len(rules)),
	}

	for name, cfg := range rules {
		if cfg.Severity == tt.SeverityOff {
			logger.Debug("rule disabled", zap.String("rule", name))
			continue
		}
		r, err := newRule(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		engine.rules[name] = r
	}
	logger.Debug("engine ready", zap.Int("rules", len(engine.rules)))
	return engine, nil
}

// Rules returns the names of the compiled rules, sorted.
func (e *Engine) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for name := range e.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Precedence returns the precedence graph of an order rule.
func (e *Engine) Precedence(rule string) (constraint.DAG, error) {
	r, ok := e.rules[rule]
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", rule)
	}
	or, ok := r.(*OrderRule)
	if !ok {
		return nil, fmt.Errorf("rule %q has no order declaration", rule)
	}
	return or.Precedence(), nil
}

// Run applies all rules to the given file and returns a slice of Issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return e.check(filename, content)
}

// RunSource applies all rules to the given source and returns a slice of
// Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	return e.check("", source)
}

// IgnoreRule disables rule for subsequent runs.
func (e *Engine) IgnoreRule(rule string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ignoredRules[rule] = true
}

func (e *Engine) isIgnored(rule string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ignoredRules[rule]
}

func (e *Engine) check(filename string, source []byte) ([]tt.Issue, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", displayName(filename), err)
	}
	suppressed := suppress.Parse(node, fset)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		allIssues []tt.Issue
		errs      []error
	)
	for _, rule := range e.rules {
		if e.isIgnored(rule.Name()) {
			continue
		}
		wg.Add(1)
		go func(r LintRule) {
			defer wg.Done()
			issues, err := r.Check(filename, node, fset)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Warn("rule failed",
					zap.String("rule", r.Name()),
					zap.String("file", displayName(filename)),
					zap.Error(err))
				errs = append(errs, err)
				return
			}
			for _, is := range issues {
				if !suppressed.Suppressed(is.Start, is.Rule) {
					allIssues = append(allIssues, is)
				}
			}
		}(rule)
	}
	wg.Wait()

	sortIssues(allIssues)
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return allIssues, errors.Join(errs...)
	}
	return allIssues, nil
}

func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Start.Offset != b.Start.Offset {
			return a.Start.Offset < b.Start.Offset
		}
		return a.Rule < b.Rule
	})
}

func displayName(filename string) string {
	if filename == "" {
		return "<source>"
	}
	return filename
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a
// `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

// NewSourceCode splits content into lines.
func NewSourceCode(content []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(content), "\n")}
}
