package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockPair matches "lock _* unlock".
func lockPair(t *testing.T) *Program[string] {
	t.Helper()
	prog, err := NewProgram(
		Unit("lock"),
		Split[string](2, 4),
		AnyUnit[string](),
		Jump[string](1),
		Unit("unlock"),
		Match[string](),
	)
	require.NoError(t, err)
	return prog
}

func TestFind(t *testing.T) {
	t.Parallel()

	m := New(lockPair(t), strEq)
	seq := []string{"x", "lock", "y", "unlock", "unlock", "lock", "unlock"}

	span, ok, err := m.Find(seq, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 1, End: 4}, span)
	assert.Equal(t, 3, span.Len())

	span, ok, err = m.Find(seq, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 5, End: 7}, span)

	_, ok, err = m.Find(seq, 6)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFind_RequireEndExtendsToSuffix(t *testing.T) {
	t.Parallel()

	m := New(lockPair(t), strEq, WithRequireEnd())
	seq := []string{"lock", "unlock", "x", "unlock"}

	span, ok, err := m.Find(seq, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 0, End: 4}, span)
}

func TestFind_SkipsEmptyMatches(t *testing.T) {
	t.Parallel()

	// "a*" accepts the empty prefix everywhere under early accept
	prog := MustProgram(Split[string](1, 3), Unit("a"), Jump[string](0), Match[string]())
	_, ok, err := New(prog, strEq).Find([]string{"a", "a"}, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	span, ok, err := New(prog, strEq, WithRequireEnd()).Find([]string{"b", "a", "a"}, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 1, End: 3}, span)
}

func TestFindAll(t *testing.T) {
	t.Parallel()

	m := New(lockPair(t), strEq)
	tests := []struct {
		name string
		seq  []string
		want []Span
	}{
		{"none", []string{"lock", "x"}, nil},
		{"empty input", nil, nil},
		{
			name: "non-overlapping",
			seq:  []string{"lock", "unlock", "lock", "a", "unlock"},
			want: []Span{{0, 2}, {2, 5}},
		},
		{
			name: "nested locks",
			seq:  []string{"lock", "lock", "unlock", "unlock"},
			want: []Span{{0, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.FindAll(tt.seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindAll_Budget(t *testing.T) {
	t.Parallel()

	m := New(lockPair(t), strEq, WithStepBudget(3))
	_, err := m.FindAll([]string{"lock", "a", "b", "c", "unlock"})
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}
