// Package vm implements a Thompson-construction matching virtual machine.
//
// A Program is an ordered list of instructions. The Machine simulates every
// live program counter ("thread") in lock step over an input sequence, so a
// match attempt costs O(len(program) * len(sequence)) and never backtracks.
//
// Instructions:
//
//	Unit(e)        consume one item equal to e
//	UnitList(es)   consume one item equal to any element of es
//	AnyUnit        consume any one item
//	Match          accept
//	Jump(x)        continue at x without consuming
//	Split(x, y)    continue at both x and y without consuming
//
// Item equality is decided by a caller supplied Equiv callback, which is the
// only way tree-node specific comparison reaches the machine.
//
// Usage:
//
//	prog, err := vm.NewProgram(
//		vm.Split[string](1, 3),
//		vm.Unit("a"),
//		vm.Jump[string](4),
//		vm.Unit("b"),
//		vm.Match[string](),
//	)
//	if err != nil {
//		// handle error
//	}
//	ok := vm.IsMatch(prog, []string{"b"}, func(a, b string) bool { return a == b })
package vm
