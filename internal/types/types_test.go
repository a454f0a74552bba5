package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/treematch/internal/constraint"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{in: "error", want: SeverityError},
		{in: "WARNING", want: SeverityWarning},
		{in: "Info", want: SeverityInfo},
		{in: "off", want: SeverityOff},
		{in: "fatal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeverity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "WARNING", SeverityWarning.String())
	assert.Equal(t, "Severity(9)", Severity(9).String())
}

func TestIssue_JSON(t *testing.T) {
	b, err := json.Marshal(Issue{Rule: "r", Severity: SeverityWarning})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"severity":"warning"`)
	assert.NotContains(t, string(b), "suggestion")
}

func TestConfigRule_YAML(t *testing.T) {
	src := `
severity: warning
message: unlock precedes lock
fragments:
  lock: "` + "`_.Lock()`" + `"
  unlock: "` + "`_.Unlock()`" + `"
  read: ReturnStmt
order:
  total:
    - lock
    - partial: [read, {total: [unlock]}]
require_end: true
`
	var rule ConfigRule
	require.NoError(t, yaml.Unmarshal([]byte(src), &rule))

	assert.Equal(t, SeverityWarning, rule.Severity)
	assert.True(t, rule.RequireEnd)
	assert.False(t, rule.StrictAny)
	assert.Len(t, rule.Fragments, 3)
	require.NotNil(t, rule.Order)

	want := constraint.Total{
		constraint.Name("lock"),
		constraint.Partial{constraint.Name("read"), constraint.Total{constraint.Name("unlock")}},
	}
	assert.True(t, constraint.OrdEqual(want, rule.Order.Ord), "got %s", rule.Order.Ord)
}

func TestOrderSpec_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"scalar", "order: lock"},
		{"unknown kind", "order: {sequence: [a]}"},
		{"two keys", "order: {total: [a], partial: [b]}"},
		{"not a list", "order: {total: a}"},
		{"nested list", "order: {total: [[a]]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rule ConfigRule
			assert.Error(t, yaml.Unmarshal([]byte(tt.src), &rule))
		})
	}
}

func TestOrderSpec_RoundTrip(t *testing.T) {
	in := OrderSpec{Ord: constraint.Total{constraint.Name("a"), constraint.Partial{constraint.Name("b"), constraint.Name("c")}}}
	b, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out OrderSpec
	require.NoError(t, yaml.Unmarshal(b, &out))
	assert.True(t, constraint.OrdEqual(in.Ord, out.Ord), "got %s", out.Ord)
}

func TestTreeSpec_YAML(t *testing.T) {
	src := `
tree:
  then:
    - branch: ["` + "`mu.Lock()`" + `"]
    - branch: [IfStmt]
      tail:
        or:
          - branch: [ReturnStmt]
          - branch: [BranchStmt]
`
	var rule ConfigRule
	require.NoError(t, yaml.Unmarshal([]byte(src), &rule))
	require.NotNil(t, rule.Tree)

	tree := rule.Tree
	assert.Equal(t, "then", tree.Kind)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, []string{"`mu.Lock()`"}, tree.Children[0].Units)

	second := tree.Children[1]
	assert.Equal(t, "branch", second.Kind)
	require.NotNil(t, second.Tail)
	assert.Equal(t, "or", second.Tail.Kind)
	assert.Len(t, second.Tail.Children, 2)
}

func TestTreeSpec_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"two kinds", "tree: {and: [{branch: [a]}], or: [{branch: [b]}]}"},
		{"none", "tree: {tail: {branch: [a]}}"},
		{"empty branch", "tree: {branch: []}"},
		{"empty children", "tree: {then: []}"},
		{"tail on fork", "tree: {then: [{branch: [a]}], tail: {branch: [b]}}"},
		{"scalar", "tree: IfStmt"},
		{"misspelled tail", "tree: {branch: [IfStmt], tial: {branch: [ReturnStmt]}}"},
		{"unknown key in child", "tree: {then: [{branch: [a]}, {brnch: [b]}]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rule ConfigRule
			assert.Error(t, yaml.Unmarshal([]byte(tt.src), &rule))
		})
	}
}
