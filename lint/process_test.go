package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/treematch/internal"
	tt "github.com/gnolang/treematch/internal/types"
)

const testConfig = `name: test
rules:
  double-unlock:
    severity: warning
    message: mutex unlocked twice
    pattern: "` + "`_.Unlock()` `_.Unlock()`" + `"
`

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultConfigPath)
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func writeSources(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		var b strings.Builder
		fmt.Fprintf(&b, "package main\n\nfunc f%d() {\n\tmu.Lock()\n", i)
		for j := 0; j <= i; j++ {
			b.WriteString("\tmu.Unlock()\n\tmu.Unlock()\n")
		}
		b.WriteString("}\n")
		filename := filepath.Join(dir, fmt.Sprintf("test%d.go", i))
		require.NoError(t, os.WriteFile(filename, []byte(b.String()), 0o644))
	}
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeSources(t, tempDir, 10)

	engine, err := New(zap.NewNop(), writeConfig(t, t.TempDir()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	issues, err := ProcessPath(ctx, nil, engine, tempDir, ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, issues)
}

func TestProcessPathRealEngine(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeSources(t, tempDir, 5)

	engine, err := New(zap.NewNop(), writeConfig(t, t.TempDir()))
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)

	// file i holds i+1 disjoint double unlocks
	require.Len(t, issues, 15)
	for i := 1; i < len(issues); i++ {
		prev, cur := issues[i-1], issues[i]
		if prev.Filename == cur.Filename {
			assert.Less(t, prev.Start.Offset, cur.Start.Offset)
		} else {
			assert.Less(t, prev.Filename, cur.Filename)
		}
	}
	for _, issue := range issues {
		assert.Equal(t, "double-unlock", issue.Rule)
		assert.Equal(t, tt.SeverityWarning, issue.Severity)
		assert.Equal(t, "mutex unlocked twice", issue.Message)
	}
}

func TestProcessPathErrorPropagation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeSources(t, tempDir, 2)
	invalid := filepath.Join(tempDir, "invalid.go")
	require.NoError(t, os.WriteFile(invalid, []byte("package main\n\nfunc {"), 0o644))

	engine, err := New(zap.NewNop(), writeConfig(t, t.TempDir()))
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), zap.NewNop(), engine, tempDir, ProcessFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid.go")
	// the valid files are still reported
	assert.Len(t, issues, 3)

	issues, err = ProcessPath(context.Background(), nil, engine, invalid, ProcessFile)
	assert.Error(t, err)
	assert.Equal(t, []tt.Issue{}, issues)
}

func TestIgnoreRule(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeSources(t, tempDir, 1)

	engine, err := New(zap.NewNop(), writeConfig(t, t.TempDir()))
	require.NoError(t, err)
	engine.IgnoreRule("double-unlock")

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestOpenCache_KeyedByRuleSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		withConfig bool
	}{
		{"config file", true},
		{"built-in rules", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srcDir := t.TempDir()
			writeSources(t, srcDir, 1)
			cfgDir := t.TempDir()
			configPath := filepath.Join(cfgDir, DefaultConfigPath)
			if tc.withConfig {
				configPath = writeConfig(t, cfgDir)
			}
			cacheDir := filepath.Join(t.TempDir(), "cache")

			run := func(ignored ...string) []tt.Issue {
				t.Helper()
				engine := testEngine(t, tc.withConfig, configPath)
				for _, rule := range ignored {
					engine.IgnoreRule(rule)
				}

				cache, err := OpenCache(cacheDir, configPath, ignored)
				require.NoError(t, err)
				issues, err := ProcessPath(context.Background(), nil, engine, srcDir, WithCache(cache, ProcessFile))
				require.NoError(t, err)
				require.NoError(t, cache.Flush())
				return issues
			}

			fresh := run()
			require.NotEmpty(t, fresh)
			assert.Empty(t, run(testEngine(t, tc.withConfig, configPath).Rules()...))
			assert.Equal(t, fresh, run())
		})
	}
}

func testEngine(t *testing.T, withConfig bool, configPath string) *internal.Engine {
	t.Helper()
	var engine *internal.Engine
	var err error
	if withConfig {
		engine, err = New(zap.NewNop(), configPath)
	} else {
		engine, err = internal.NewEngine(zap.NewNop(), DefaultConfig().Rules)
	}
	require.NoError(t, err)
	return engine
}

func TestOpenCache_BuiltInRulesDifferFromConfig(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	filename := filepath.Join(srcDir, "a.go")
	require.NoError(t, os.WriteFile(filename, []byte("package a\n"), 0o644))
	cacheDir := filepath.Join(t.TempDir(), "cache")
	cfgDir := t.TempDir()
	configPath := filepath.Join(cfgDir, DefaultConfigPath)

	withDefaults, err := OpenCache(cacheDir, configPath, nil)
	require.NoError(t, err)
	require.NoError(t, withDefaults.Set(filename, nil))
	require.NoError(t, withDefaults.Flush())

	writeConfig(t, cfgDir)
	withFile, err := OpenCache(cacheDir, configPath, nil)
	require.NoError(t, err)
	_, ok := withFile.Get(filename)
	assert.False(t, ok)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, config.Rules)

	config, err = LoadConfig(writeConfig(t, t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "test", config.Name)
	require.Contains(t, config.Rules, "double-unlock")
	assert.Equal(t, tt.SeverityWarning, config.Rules["double-unlock"].Severity)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	config, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, config.Rules)

	_, err = ParseConfig(strings.NewReader("rules:\n  r:\n    patern: ReturnStmt\n"))
	assert.Error(t, err)

	_, err = ParseConfig(strings.NewReader("rules:\n  r:\n    severity: loud\n"))
	assert.Error(t, err)

	_, err = ParseConfig(strings.NewReader("rules:\n  r:\n    tree: {branch: [IfStmt], tial: {branch: [ReturnStmt]}}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown tree key "tial"`)
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigPath)
	require.NoError(t, WriteConfig(path, DefaultConfig()))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	engine, err := New(zap.NewNop(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"double-unlock", "unlock-before-lock"}, engine.Rules())

	dag, err := engine.Precedence("unlock-before-lock")
	require.NoError(t, err)
	assert.NotEmpty(t, dag)
}
