package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/treematch/formatter"
	"github.com/gnolang/treematch/internal"
	tt "github.com/gnolang/treematch/internal/types"
	"github.com/gnolang/treematch/lint"
)

var (
	ignoreRules     string
	matchJsonOutput bool
	outPath         string
	watchMode       bool
	cacheDir        string
)

var matchCmd = &cobra.Command{
	Use:   "match [paths...]",
	Short: "Report every place the configured rules match",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
	matchCmd.Flags().BoolVar(&matchJsonOutput, "json", false, "Output issues in JSON format")
	matchCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	matchCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Re-check files whenever they change")
	matchCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory of the result cache (disabled when empty)")
}

func runMatch(cmd *cobra.Command, paths []string) error {
	engine, err := newEngine(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	ignored := splitList(ignoreRules)
	for _, rule := range ignored {
		engine.IgnoreRule(rule)
	}

	processor := lint.Processor(lint.ProcessFile)
	if cacheDir != "" {
		cache, err := newCache(cacheDir, ignored)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Flush(); err != nil {
				logger.Warn("failed to write cache", zap.Error(err))
			}
		}()
		processor = lint.WithCache(cache, processor)
	}

	out := cmd.OutOrStdout()
	if watchMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return runWatchProcess(ctx, logger, engine, paths, processor, out)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return runMatchProcess(ctx, logger, engine, paths, processor, out, matchJsonOutput, outPath)
}

// newEngine loads the configured rules. A missing default configuration
// falls back to the built-in rules.
func newEngine(cmd *cobra.Command) (*internal.Engine, error) {
	if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		logger.Info("no configuration found, using default rules", zap.String("config", cfgFile))
		return internal.NewEngine(logger, lint.DefaultConfig().Rules)
	}
	return lint.New(logger, cfgFile)
}

func newCache(dir string, ignored []string) (*internal.Cache, error) {
	cache, err := lint.OpenCache(dir, cfgFile, ignored)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return cache, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func runMatchProcess(
	ctx context.Context,
	logger *zap.Logger,
	engine lint.LintEngine,
	paths []string,
	processor lint.Processor,
	out io.Writer,
	isJson bool,
	jsonOutput string,
) error {
	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, processor)
	if err != nil {
		return fmt.Errorf("error processing files: %w", err)
	}

	if err := printIssues(logger, out, issues, isJson, jsonOutput); err != nil {
		return err
	}

	if len(issues) > 0 {
		return ErrIssuesFound
	}
	return nil
}

// runWatchProcess checks paths once, then re-checks every source file
// written under them until ctx is done.
func runWatchProcess(
	ctx context.Context,
	logger *zap.Logger,
	engine lint.LintEngine,
	paths []string,
	processor lint.Processor,
	out io.Writer,
) error {
	err := runMatchProcess(ctx, logger, engine, paths, processor, out, false, "")
	if err != nil && !errors.Is(err, ErrIssuesFound) {
		return err
	}

	dirs := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			path = filepath.Dir(path)
		}
		dirs = append(dirs, path)
	}

	return internal.Watch(ctx, logger, dirs, lint.IsSourceFile, func(path string) {
		issues, err := processor(engine, path)
		if err != nil {
			logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
			return
		}
		if len(issues) == 0 {
			fmt.Fprintf(out, "%s: no issues\n", path)
			return
		}
		if err := printIssues(logger, out, issues, false, ""); err != nil {
			logger.Error("Error printing issues", zap.Error(err))
		}
	})
}

func printIssues(logger *zap.Logger, out io.Writer, issues []tt.Issue, isJson bool, jsonOutput string) error {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	if isJson {
		d, err := json.Marshal(issuesByFile)
		if err != nil {
			return fmt.Errorf("error marshalling issues to JSON: %w", err)
		}
		if jsonOutput == "" {
			_, err = fmt.Fprintln(out, string(d))
			return err
		}
		if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
			return fmt.Errorf("error writing JSON output file: %w", err)
		}
		return nil
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprint(out, formatter.GenerateFormattedIssue(issuesByFile[filename], sourceCode))
	}
	return nil
}
