package internal

import (
	"go/token"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/gnolang/treematch/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sampleIssues(filename string) []tt.Issue {
	return []tt.Issue{{
		Rule:     "double-unlock",
		Category: tt.CategoryPattern,
		Filename: filename,
		Message:  "mutex unlocked twice",
		Start:    token.Position{Filename: filename, Line: 4, Column: 2},
		End:      token.Position{Filename: filename, Line: 5, Column: 13},
		Severity: tt.SeverityWarning,
	}}
}

func TestCache(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	config := filepath.Join(tmpDir, ".treematch.yaml")
	writeFile(t, config, "rules: {}\n")

	cacheDir := filepath.Join(tmpDir, "cache")
	cache, err := NewCache(cacheDir, 0, config)
	require.NoError(t, err)

	t.Run("SetAndGet", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "a.go")
		writeFile(t, filename, "package a\n")

		require.NoError(t, cache.Set(filename, sampleIssues(filename)))
		got, ok := cache.Get(filename)
		require.True(t, ok)
		assert.Equal(t, sampleIssues(filename), got)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, ok := cache.Get(filepath.Join(tmpDir, "missing.go"))
		assert.False(t, ok)
	})

	t.Run("FileModified", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "b.go")
		writeFile(t, filename, "package b\n")
		require.NoError(t, cache.Set(filename, sampleIssues(filename)))

		writeFile(t, filename, "package b\n\nvar x = 1\n")
		_, ok := cache.Get(filename)
		assert.False(t, ok)
	})

	t.Run("SetMissingFile", func(t *testing.T) {
		assert.Error(t, cache.Set(filepath.Join(tmpDir, "gone.go"), nil))
	})
}

func TestCache_Persistence(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	config := filepath.Join(tmpDir, ".treematch.yaml")
	writeFile(t, config, "rules: {}\n")
	filename := filepath.Join(tmpDir, "a.go")
	writeFile(t, filename, "package a\n")
	cacheDir := filepath.Join(tmpDir, "cache")

	cache, err := NewCache(cacheDir, time.Hour, config)
	require.NoError(t, err)
	require.NoError(t, cache.Set(filename, sampleIssues(filename)))
	require.NoError(t, cache.Flush())

	reopened, err := NewCache(cacheDir, time.Hour, config)
	require.NoError(t, err)
	got, ok := reopened.Get(filename)
	require.True(t, ok)
	assert.Equal(t, sampleIssues(filename), got)

	// a configuration change invalidates every entry
	writeFile(t, config, "rules: {x: {pattern: ReturnStmt}}\n")
	changed, err := NewCache(cacheDir, time.Hour, config)
	require.NoError(t, err)
	_, ok = changed.Get(filename)
	assert.False(t, ok)

	require.NoError(t, reopened.InvalidateAll())
	_, err = os.Stat(filepath.Join(cacheDir, cacheFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestCache_MaxAge(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	filename := filepath.Join(tmpDir, "a.go")
	writeFile(t, filename, "package a\n")

	cache, err := NewCache(filepath.Join(tmpDir, "cache"), time.Nanosecond)
	require.NoError(t, err)
	require.NoError(t, cache.Set(filename, nil))

	time.Sleep(time.Millisecond)
	_, ok := cache.Get(filename)
	assert.False(t, ok)
}

func TestCache_MissingDependency(t *testing.T) {
	t.Parallel()

	_, err := NewCache(t.TempDir(), 0, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCache_Scope(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	filename := filepath.Join(tmpDir, "a.go")
	writeFile(t, filename, "package a\n")
	cacheDir := filepath.Join(tmpDir, "cache")

	open := func(scope ...string) *Cache {
		c, err := NewCache(cacheDir, 0)
		require.NoError(t, err)
		c.Scope(scope...)
		return c
	}

	first := open("ignore=")
	require.NoError(t, first.Set(filename, sampleIssues(filename)))
	require.NoError(t, first.Flush())

	tests := []struct {
		name  string
		scope []string
		hit   bool
	}{
		{"same scope", []string{"ignore="}, true},
		{"other ignore list", []string{"ignore=double-unlock"}, false},
		{"extra part", []string{"ignore=", "rules"}, false},
		{"no scope", nil, false},
	}
	for _, tc := range tests {
		// each case reopens the file written by first
		got, ok := open(tc.scope...).Get(filename)
		assert.Equal(t, tc.hit, ok, tc.name)
		if tc.hit {
			assert.Equal(t, sampleIssues(filename), got, tc.name)
		}
	}
}
