package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/treematch/internal"
	tt "github.com/gnolang/treematch/internal/types"
)

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
}

// Processor checks one file with engine.
type Processor func(LintEngine, string) ([]tt.Issue, error)

// New loads the configuration at configurationPath and compiles its rules.
// An empty path yields an engine without rules.
func New(logger *zap.Logger, configurationPath string) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(logger, config.Rules)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor Processor,
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath checks path, which is either a source file or a directory
// walked recursively. Directory files are checked by a bounded pool of
// workers; a failing file does not stop the others. The issues found so
// far are returned along with any error, including cancellation of ctx.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor Processor,
) ([]tt.Issue, error) {
	issues := make([]tt.Issue, 0)

	info, err := os.Stat(path)
	if err != nil {
		return issues, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !IsSourceFile(path) {
			return issues, nil
		}
		fileIssues, err := processor(engine, path)
		if err != nil {
			return issues, err
		}
		return append(issues, fileIssues...), nil
	}

	files, err := collectSourceFiles(path)
	if err != nil {
		return issues, err
	}
	if err := ctx.Err(); err != nil {
		return issues, err
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())
	bar := newProgressBar(len(files), path, logger == nil)

dispatch:
	for _, filePath := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			fileIssues, err := processor(engine, fp)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				errs = append(errs, fmt.Errorf("%s: %w", fp, err))
			} else {
				issues = append(issues, fileIssues...)
			}
			_ = bar.Add(1)
		}(filePath)
	}
	wg.Wait()
	_ = bar.Finish()

	sortIssues(issues)
	if err := ctx.Err(); err != nil {
		return issues, err
	}
	if len(errs) > 0 {
		return issues, errors.Join(errs...)
	}
	return issues, nil
}

func newProgressBar(total int, description string, silent bool) *progressbar.ProgressBar {
	var w io.Writer = os.Stderr
	if silent || !isatty.IsTerminal(os.Stderr.Fd()) {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// collectSourceFiles lists the source files under root, skipping hidden
// directories and vendor trees.
func collectSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSourceFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return files, nil
}

func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Filename != issues[j].Filename {
			return issues[i].Filename < issues[j].Filename
		}
		return issues[i].Start.Offset < issues[j].Start.Offset
	})
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

// WithCache serves processor results from cache while the file is
// unchanged and records fresh results.
func WithCache(cache *internal.Cache, processor Processor) Processor {
	return func(engine LintEngine, filePath string) ([]tt.Issue, error) {
		if issues, ok := cache.Get(filePath); ok {
			return issues, nil
		}
		issues, err := processor(engine, filePath)
		if err != nil {
			return nil, err
		}
		if err := cache.Set(filePath, issues); err != nil {
			return nil, err
		}
		return issues, nil
	}
}

// OpenCache opens the result cache in dir for a run that loads its rules
// from configPath and skips the ignored rules. When configPath does not
// exist the built-in rules are part of the key instead.
func OpenCache(dir, configPath string, ignored []string) (*internal.Cache, error) {
	var deps []string
	var scope []string
	if _, err := os.Stat(configPath); err == nil {
		deps = append(deps, configPath)
	} else {
		defaults, err := yaml.Marshal(DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("error encoding default rules: %w", err)
		}
		scope = append(scope, string(defaults))
	}

	cache, err := internal.NewCache(dir, 0, deps...)
	if err != nil {
		return nil, err
	}

	ignored = append([]string(nil), ignored...)
	sort.Strings(ignored)
	scope = append(scope, "ignore="+strings.Join(ignored, ","))
	cache.Scope(scope...)
	return cache, nil
}

var desiredExtensions = map[string]bool{
	".go":  true,
	".gno": true,
}

// IsSourceFile reports whether path has a Go or Gno extension.
func IsSourceFile(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}
