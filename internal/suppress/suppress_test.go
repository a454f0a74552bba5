package suppress

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Set {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)
	return Parse(f, fset)
}

func at(line int) token.Position {
	return token.Position{Filename: "test.go", Line: line, Column: 1}
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		text    string
		want    []string
		wantErr bool
	}{
		{text: "//treematch:ignore", want: []string{}},
		{text: "//treematch:ignore because reasons", want: []string{}},
		{text: "//treematch:ignore:a", want: []string{"a"}},
		{text: "//treematch:ignore:a, b ,c", want: []string{"a", "b", "c"}},
		{text: "//treematch:ignore:", wantErr: true},
		{text: "//treematch:ignored", wantErr: true},
		{text: "//nolint", wantErr: true},
		{text: "// treematch:ignore", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := parseDirective(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, len(tt.want))
			for _, r := range tt.want {
				assert.Contains(t, got, r)
			}
		})
	}
}

func TestSuppressed_Statements(t *testing.T) {
	set := parse(t, `package main

func main() {
	//treematch:ignore
	mu.Unlock()
	mu.Unlock()
	mu.Lock() //treematch:ignore:rule1
	//treematch:ignore:rule2
	if x {
		y()
	}
}
`)

	tests := []struct {
		rule string
		line int
		want bool
	}{
		{"any", 4, true},
		{"any", 5, true},
		{"any", 6, false},
		{"rule1", 7, true},
		{"rule2", 7, false},
		{"rule2", 9, true},
		{"rule2", 10, true},
		{"rule2", 11, true},
		{"rule3", 9, false},
		{"rule2", 12, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, set.Suppressed(at(tt.line), tt.rule), "line %d rule %s", tt.line, tt.rule)
	}
}

func TestSuppressed_WholeFile(t *testing.T) {
	set := parse(t, `//treematch:ignore:noisy
package main

func main() {
	a()
}
`)
	assert.True(t, set.Suppressed(at(5), "noisy"))
	assert.False(t, set.Suppressed(at(5), "other"))
	assert.False(t, set.Suppressed(token.Position{Filename: "other.go", Line: 5}, "noisy"))
}

func TestSuppressed_FunctionAndLoneComment(t *testing.T) {
	set := parse(t, `package main

//treematch:ignore
func f() {
	a()
}

var x = 1 //treematch:ignore:r
`)
	assert.True(t, set.Suppressed(at(5), "any"))
	assert.True(t, set.Suppressed(at(8), "r"))
	assert.False(t, set.Suppressed(at(8), "s"))
}

func TestSuppressed_NilSet(t *testing.T) {
	var set *Set
	assert.False(t, set.Suppressed(at(1), "any"))
}
