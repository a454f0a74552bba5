// Package internal provides the rule engine behind treematch.
//
// Key components:
//
// Engine: compiles the configured rules and applies them to Go (or Gno)
// source files. Rules run concurrently per file and their issues are
// filtered through //treematch:ignore directives.
//
// LintRule: the contract of a compiled rule. PatternRule reports every
// match of a sequence pattern, OrderRule reports fragments observed against
// a declared precedence, and TreeRule reports tree patterns whose branches
// descend through nested blocks.
//
// Cache: remembers issues per file until the file or the configuration
// changes.
//
// Watch: reruns a callback whenever a source file under watched
// directories is written.
//
// Usage:
//
//	engine, err := internal.NewEngine(logger, config.Rules)
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("path/to/file.go")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("%s: %s at %s\n", issue.Rule, issue.Message, issue.Start)
//	}
package internal
