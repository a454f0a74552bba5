package formatter

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/treematch/internal"
	"github.com/gnolang/treematch/lint"
)

func TestGoldenReports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{
			name: "unlock_before_lock",
			source: `package main

func f() {
	mu.Unlock()
	mu.Lock()
}
`,
		},
		{
			name: "double_unlock",
			source: `package main

func g() {
	mu.Lock()
	if ok {
		mu.Unlock()
		mu.Unlock()
	}
}
`,
		},
	}

	engine, err := internal.NewEngine(zap.NewNop(), lint.DefaultConfig().Rules)
	require.NoError(t, err)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			issues, err := engine.RunSource([]byte(tc.source))
			require.NoError(t, err)
			require.NotEmpty(t, issues)

			report := GenerateFormattedIssue(issues, internal.NewSourceCode([]byte(tc.source)))

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tc.name, []byte(report))
		})
	}
}
