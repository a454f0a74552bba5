package vm

// threadSet is a sparse set of program counters with O(1) insert, lookup
// and clear. Iteration order is insertion order.
type threadSet struct {
	sparse []int
	dense  []int
}

func newThreadSet(capacity int) *threadSet {
	return &threadSet{
		sparse: make([]int, capacity),
		dense:  make([]int, 0, capacity),
	}
}

func (s *threadSet) contains(pc int) bool {
	if pc < 0 || pc >= len(s.sparse) {
		return false
	}
	i := s.sparse[pc]
	return i < len(s.dense) && s.dense[i] == pc
}

// insert adds pc and reports whether it was absent.
func (s *threadSet) insert(pc int) bool {
	if s.contains(pc) {
		return false
	}
	s.sparse[pc] = len(s.dense)
	s.dense = append(s.dense, pc)
	return true
}

func (s *threadSet) clear() {
	s.dense = s.dense[:0]
}
