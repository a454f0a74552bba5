package pattern

import (
	"fmt"

	"github.com/gnolang/treematch/internal/vm"
)

// Resolver turns a unit literal into the value the machine compares input
// items against.
type Resolver[T any] func(u *UnitNode) (T, error)

// CompileString parses src and compiles it with resolve.
func CompileString[T any](src string, resolve Resolver[T]) (*vm.Program[T], error) {
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return Compile(root, resolve)
}

// Compile translates a pattern tree into a program by Thompson
// construction. The program ends with a single Match.
//
//	a | b    Split L1, L2; L1: a; Jump L3; L2: b; L3:
//	e*       L1: Split L2, L3; L2: e; Jump L1; L3:
//	e+       L1: e; Split L1, L2; L2:
//	e?       Split L1, L2; L1: e; L2:
func Compile[T any](root Node, resolve Resolver[T]) (*vm.Program[T], error) {
	c := &compiler[T]{resolve: resolve}
	if err := c.emit(root); err != nil {
		return nil, err
	}
	c.insts = append(c.insts, vm.Match[T]())
	return vm.NewProgram(c.insts...)
}

type compiler[T any] struct {
	resolve Resolver[T]
	insts   []vm.Inst[T]
}

func (c *compiler[T]) pc() int { return len(c.insts) }

// hole reserves an instruction slot to be patched once targets are known.
func (c *compiler[T]) hole() int {
	c.insts = append(c.insts, vm.Jump[T](0))
	return len(c.insts) - 1
}

func (c *compiler[T]) emit(n Node) error {
	switch n := n.(type) {
	case *AnyNode:
		c.insts = append(c.insts, vm.AnyUnit[T]())

	case *UnitNode:
		v, err := c.unit(n)
		if err != nil {
			return err
		}
		c.insts = append(c.insts, vm.Unit(v))

	case *SetNode:
		vals := make([]T, len(n.Units))
		for i, u := range n.Units {
			v, err := c.unit(u)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		c.insts = append(c.insts, vm.UnitList(vals...))

	case *ConcatNode:
		for _, it := range n.Items {
			if err := c.emit(it); err != nil {
				return err
			}
		}

	case *AltNode:
		var jumps []int
		for i, alt := range n.Alts {
			if i == len(n.Alts)-1 {
				if err := c.emit(alt); err != nil {
					return err
				}
				break
			}
			split := c.hole()
			if err := c.emit(alt); err != nil {
				return err
			}
			jumps = append(jumps, c.hole())
			c.insts[split] = vm.Split[T](split+1, c.pc())
		}
		end := c.pc()
		for _, j := range jumps {
			c.insts[j] = vm.Jump[T](end)
		}

	case *RepeatNode:
		return c.emitRepeat(n)

	default:
		return fmt.Errorf("pattern: unsupported node %T", n)
	}
	return nil
}

func (c *compiler[T]) emitRepeat(n *RepeatNode) error {
	switch n.Quant {
	case QuantStar:
		split := c.hole()
		if err := c.emit(n.Sub); err != nil {
			return err
		}
		c.insts = append(c.insts, vm.Jump[T](split))
		c.insts[split] = vm.Split[T](split+1, c.pc())
	case QuantPlus:
		start := c.pc()
		if err := c.emit(n.Sub); err != nil {
			return err
		}
		c.insts = append(c.insts, vm.Split[T](start, c.pc()+1))
	case QuantOptional:
		split := c.hole()
		if err := c.emit(n.Sub); err != nil {
			return err
		}
		c.insts[split] = vm.Split[T](split+1, c.pc())
	default:
		return fmt.Errorf("pattern: unsupported quantifier %s", n.Quant)
	}
	return nil
}

func (c *compiler[T]) unit(u *UnitNode) (T, error) {
	v, err := c.resolve(u)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("unit %s at offset %d: %w", u, u.Position(), err)
	}
	return v, nil
}
