package pattern

import (
	"fmt"
	"strings"
)

// Node is a node of a parsed sequence pattern.
type Node interface {
	Position() int
	String() string
}

var (
	_ Node = (*AnyNode)(nil)
	_ Node = (*UnitNode)(nil)
	_ Node = (*SetNode)(nil)
	_ Node = (*ConcatNode)(nil)
	_ Node = (*AltNode)(nil)
	_ Node = (*RepeatNode)(nil)
)

// AnyNode is the '_' wildcard.
type AnyNode struct {
	pos int
}

func (n *AnyNode) Position() int  { return n.pos }
func (n *AnyNode) String() string { return "_" }

// UnitKind tells identifier units from source templates.
type UnitKind int

const (
	UnitIdent UnitKind = iota
	UnitTemplate
)

// UnitNode is a unit literal.
type UnitNode struct {
	Kind UnitKind
	Text string
	pos  int
}

func (n *UnitNode) Position() int { return n.pos }
func (n *UnitNode) String() string {
	if n.Kind == UnitTemplate {
		return "`" + n.Text + "`"
	}
	return n.Text
}

// SetNode matches one unit out of Units.
type SetNode struct {
	Units []*UnitNode
	pos   int
}

func (n *SetNode) Position() int { return n.pos }
func (n *SetNode) String() string {
	parts := make([]string, len(n.Units))
	for i, u := range n.Units {
		parts[i] = u.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ConcatNode matches its items one after another.
type ConcatNode struct {
	Items []Node
	pos   int
}

func (n *ConcatNode) Position() int { return n.pos }
func (n *ConcatNode) String() string {
	parts := make([]string, len(n.Items))
	for i, it := range n.Items {
		parts[i] = it.String()
	}
	return strings.Join(parts, " ")
}

// AltNode matches any one of its alternatives, preferring earlier ones.
type AltNode struct {
	Alts []Node
	pos  int
}

func (n *AltNode) Position() int { return n.pos }
func (n *AltNode) String() string {
	parts := make([]string, len(n.Alts))
	for i, a := range n.Alts {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// Quantifier is a repetition operator.
type Quantifier int

const (
	QuantStar     Quantifier = iota // zero or more
	QuantPlus                       // one or more
	QuantOptional                   // zero or one
)

func (q Quantifier) String() string {
	switch q {
	case QuantStar:
		return "*"
	case QuantPlus:
		return "+"
	case QuantOptional:
		return "?"
	default:
		return fmt.Sprintf("Quantifier(%d)", int(q))
	}
}

// RepeatNode repeats Sub according to Quant.
type RepeatNode struct {
	Sub   Node
	Quant Quantifier
	pos   int
}

func (n *RepeatNode) Position() int { return n.pos }
func (n *RepeatNode) String() string {
	return wrap(n.Sub) + n.Quant.String()
}

func wrap(n Node) string {
	if c, ok := n.(*ConcatNode); ok && len(c.Items) > 1 {
		return "(" + c.String() + ")"
	}
	return n.String()
}
