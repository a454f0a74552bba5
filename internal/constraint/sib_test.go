package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSibFlattensSameSlot(t *testing.T) {
	t.Parallel()
	got := NewSib(1, Name("A"), NewSib(1, Name("B"), Name("C")))
	want := NewSib(1, Name("A"), Name("B"), Name("C"))

	assert.True(t, got.Equal(want))
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, "Sib(1, A, B, C)", got.String())
}

func TestNewSibKeepsOtherSlots(t *testing.T) {
	t.Parallel()
	nested := NewSib(2, Name("B"), Name("C"))
	s := NewSib(1, Name("A"), nested)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "Sib(1, A, Sib(2, B, C))", s.String())
}

func TestSibEqual(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b *Sib
		want bool
	}{
		{
			name: "identical",
			a:    NewSib(1, Name("A"), Name("B")),
			b:    NewSib(1, Name("A"), Name("B")),
			want: true,
		},
		{
			name: "different slot",
			a:    NewSib(1, Name("A")),
			b:    NewSib(2, Name("A")),
			want: false,
		},
		{
			name: "different length",
			a:    NewSib(1, Name("A"), Name("B")),
			b:    NewSib(1, Name("A")),
			want: false,
		},
		{
			name: "different element",
			a:    NewSib(1, Name("A"), Name("B")),
			b:    NewSib(1, Name("A"), Name("C")),
			want: false,
		},
		{
			name: "nested equal",
			a:    NewSib(1, Name("A"), NewSib(2, Name("B"))),
			b:    NewSib(1, Name("A"), NewSib(2, Name("B"))),
			want: true,
		},
		{
			name: "name against group",
			a:    NewSib(1, Name("A"), Name("B")),
			b:    NewSib(1, Name("A"), NewSib(2, Name("B"))),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestSibConstraints(t *testing.T) {
	t.Parallel()

	t.Run("single slot", func(t *testing.T) {
		s := NewSib(1, Name("A"), Name("B"))
		got, err := s.Constraints()
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Equal(s))
	})

	t.Run("nested slot", func(t *testing.T) {
		s := NewSib(1, Name("A"), NewSib(2, Name("B"), Name("C")))
		got, err := s.Constraints()
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Sib(1, A, B)", got[0].String())
		assert.Equal(t, "Sib(2, B, C)", got[1].String())
	})

	t.Run("deeply nested", func(t *testing.T) {
		s := NewSib(1,
			Name("A"),
			NewSib(2, NewSib(3, Name("X"), Name("Y")), Name("C")),
		)
		got, err := s.Constraints()
		require.NoError(t, err)

		var rendered []string
		for _, c := range got {
			rendered = append(rendered, c.String())
		}
		assert.Equal(t, []string{
			"Sib(1, A, X)",
			"Sib(2, X, C)",
			"Sib(3, X, Y)",
		}, rendered)
	})

	t.Run("receiver untouched", func(t *testing.T) {
		s := NewSib(1, Name("A"), NewSib(2, Name("B"), Name("C")))
		before := s.String()
		_, err := s.Constraints()
		require.NoError(t, err)
		assert.Equal(t, before, s.String())
	})

	t.Run("empty nested group", func(t *testing.T) {
		s := NewSib(1, Name("A"), NewSib(2))
		_, err := s.Constraints()
		assert.ErrorIs(t, err, ErrInvalidConstraint)
	})
}
