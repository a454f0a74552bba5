package vm

// Equiv reports whether an input item satisfies the unit a program expects.
// It need not be symmetric, transitive or cacheable.
type Equiv[T any] func(item, expected T) bool

// Outcome is the result of processing one input position.
type Outcome int

const (
	// Continue means some threads survived and the run goes on.
	Continue Outcome = iota
	// Accept means a thread reached Match.
	Accept
	// Reject means no thread survived.
	Reject
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Result describes a completed match attempt.
type Result struct {
	Matched bool
	// End is the number of real input items consumed when Match was
	// reached. It equals len(sequence) when acceptance happened on the
	// end-of-input step. Undefined when Matched is false.
	End int
}

type options struct {
	requireEnd bool
	strictAny  bool
	budget     int
}

// Option configures a Machine.
type Option func(*options)

// WithRequireEnd makes Match accept only once the whole input has been
// consumed. By default Match accepts as soon as any thread reaches it.
func WithRequireEnd() Option {
	return func(o *options) { o.requireEnd = true }
}

// WithStrictAny makes AnyUnit refuse the end-of-input position, so it always
// requires a real item. By default AnyUnit also steps over end of input.
func WithStrictAny() Option {
	return func(o *options) { o.strictAny = true }
}

// WithStepBudget bounds the number of instructions a single Run may
// execute. Zero or a negative n means unbounded.
func WithStepBudget(n int) Option {
	return func(o *options) { o.budget = n }
}

// Machine executes a program with a fixed equivalence. It keeps no state
// between runs and is safe for concurrent use.
type Machine[T any] struct {
	prog *Program[T]
	eq   Equiv[T]
	opts options
}

// New returns a machine for prog.
func New[T any](prog *Program[T], eq Equiv[T], opts ...Option) *Machine[T] {
	m := &Machine[T]{prog: prog, eq: eq}
	for _, opt := range opts {
		opt(&m.opts)
	}
	return m
}

// IsMatch reports whether prog accepts sequence under the default options.
func IsMatch[T any](prog *Program[T], sequence []T, eq Equiv[T]) bool {
	res, _ := New(prog, eq).Run(sequence)
	return res.Matched
}

// run holds the scratch space of a single attempt.
type run struct {
	visited *threadSet
	queued  *threadSet
	queue   []int
	steps   int
}

func (m *Machine[T]) newRun() *run {
	n := m.prog.Len()
	return &run{
		visited: newThreadSet(n),
		queued:  newThreadSet(n),
		queue:   make([]int, 0, n),
	}
}

// Run performs one complete, anchored match attempt. Threads start at
// address 0 and advance over sequence followed by a synthetic end-of-input
// position that no Unit or UnitList accepts. The only error is
// ErrBudgetExceeded.
func (m *Machine[T]) Run(sequence []T) (Result, error) {
	r := m.newRun()
	threads := []int{0}

	var zero T
	for pos := 0; pos <= len(sequence); pos++ {
		item, eoi := zero, true
		if pos < len(sequence) {
			item, eoi = sequence[pos], false
		}

		outcome, next, err := m.step(r, threads, item, eoi)
		if err != nil {
			return Result{}, err
		}
		switch outcome {
		case Accept:
			return Result{Matched: true, End: pos}, nil
		case Reject:
			return Result{}, nil
		}
		threads = next
	}

	// AnyUnit may have stepped over end of input; follow only epsilon
	// edges from there.
	matched, err := m.settle(r, threads)
	if err != nil || !matched {
		return Result{}, err
	}
	return Result{Matched: true, End: len(sequence)}, nil
}

// settle reports whether Match is reachable from threads through Jump and
// Split alone. Consuming instructions die.
func (m *Machine[T]) settle(r *run, threads []int) (bool, error) {
	r.visited.clear()
	queue := append(r.queue[:0], threads...)
	defer func() { r.queue = queue[:0] }()

	for i := 0; i < len(queue); i++ {
		pc := queue[i]
		if pc < 0 || pc >= m.prog.Len() || !r.visited.insert(pc) {
			continue
		}

		r.steps++
		if m.opts.budget > 0 && r.steps > m.opts.budget {
			return false, ErrBudgetExceeded
		}

		in := m.prog.insts[pc]
		switch in.Op {
		case OpMatch:
			return true, nil
		case OpJump:
			queue = append(queue, in.X)
		case OpSplit:
			queue = append(queue, in.X, in.Y)
		}
	}
	return false, nil
}

// Step processes one input position against threads. eoi marks the
// end-of-input position, in which case item is ignored. The returned thread
// set is only meaningful for Continue.
func (m *Machine[T]) Step(threads []int, item T, eoi bool) (Outcome, []int) {
	// a fresh run has no budget consumed, and a single step is bounded by
	// the program length anyway
	outcome, next, _ := m.step(m.newRun(), threads, item, eoi)
	return outcome, next
}

// step drains a FIFO worklist seeded with threads. Jump and Split extend the
// same worklist; consuming instructions feed the next set. Each address is
// processed at most once per step, which bounds epsilon cycles.
func (m *Machine[T]) step(r *run, threads []int, item T, eoi bool) (Outcome, []int, error) {
	r.visited.clear()
	r.queued.clear()
	queue := append(r.queue[:0], threads...)
	next := make([]int, 0, len(threads))

	advance := func(pc int) {
		if r.queued.insert(pc) {
			next = append(next, pc)
		}
	}

	for i := 0; i < len(queue); i++ {
		pc := queue[i]
		if pc < 0 || pc >= m.prog.Len() || !r.visited.insert(pc) {
			continue
		}

		r.steps++
		if m.opts.budget > 0 && r.steps > m.opts.budget {
			r.queue = queue
			return Reject, nil, ErrBudgetExceeded
		}

		in := m.prog.insts[pc]
		switch in.Op {
		case OpUnit:
			if eoi || !m.eq(item, in.Elem) {
				continue
			}
			advance(pc + 1)
		case OpUnitList:
			if eoi || !m.anyEqual(item, in.Elems) {
				continue
			}
			advance(pc + 1)
		case OpAnyUnit:
			if eoi && m.opts.strictAny {
				continue
			}
			advance(pc + 1)
		case OpMatch:
			if m.opts.requireEnd && !eoi {
				continue
			}
			r.queue = queue
			return Accept, nil, nil
		case OpJump:
			queue = append(queue, in.X)
		case OpSplit:
			queue = append(queue, in.X, in.Y)
		}
	}

	r.queue = queue
	if len(next) == 0 {
		return Reject, nil, nil
	}
	return Continue, next, nil
}

func (m *Machine[T]) anyEqual(item T, elems []T) bool {
	for _, e := range elems {
		if m.eq(item, e) {
			return true
		}
	}
	return false
}
