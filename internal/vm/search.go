package vm

// Span is a half-open range [Start, End) of sequence positions.
type Span struct {
	Start int
	End   int
}

// Len returns the number of items covered by s.
func (s Span) Len() int { return s.End - s.Start }

// Find returns the leftmost non-empty match in sequence at or after from.
// Each candidate start runs an anchored attempt over the remaining suffix,
// so the span ends where that attempt accepted: the shortest match under
// the default options, the whole suffix under WithRequireEnd.
func (m *Machine[T]) Find(sequence []T, from int) (Span, bool, error) {
	for start := max(from, 0); start < len(sequence); start++ {
		res, err := m.Run(sequence[start:])
		if err != nil {
			return Span{}, false, err
		}
		if res.Matched && res.End > 0 {
			return Span{Start: start, End: start + res.End}, true, nil
		}
	}
	return Span{}, false, nil
}

// FindAll returns the successive non-overlapping non-empty matches in
// sequence, left to right.
func (m *Machine[T]) FindAll(sequence []T) ([]Span, error) {
	var spans []Span
	for from := 0; from < len(sequence); {
		span, ok, err := m.Find(sequence, from)
		if err != nil {
			return spans, err
		}
		if !ok {
			break
		}
		spans = append(spans, span)
		from = span.End
	}
	return spans, nil
}
