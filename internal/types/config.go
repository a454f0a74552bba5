package types

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/treematch/internal/constraint"
)

// ConfigRule is one rule of the configuration file. Exactly one of
// Pattern, Order (with Fragments) or Tree is set.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
	Message  string   `yaml:"message"`
	Note     string   `yaml:"note,omitempty"`

	// Pattern is a sequence pattern reported wherever it matches.
	Pattern string `yaml:"pattern,omitempty"`

	// Fragments names sequence patterns referenced by Order.
	Fragments map[string]string `yaml:"fragments,omitempty"`
	Order     *OrderSpec        `yaml:"order,omitempty"`

	// Tree is a tree pattern reported wherever it matches.
	Tree *TreeSpec `yaml:"tree,omitempty"`

	RequireEnd bool `yaml:"require_end,omitempty"`
	StrictAny  bool `yaml:"strict_any,omitempty"`
	StepBudget int  `yaml:"step_budget,omitempty"`
}

// OrderSpec is an order declaration written as nested single-key maps:
//
//	total: [lock, {partial: [read, write]}, unlock]
type OrderSpec struct {
	Ord constraint.Ord
}

func (o *OrderSpec) UnmarshalYAML(node *yaml.Node) error {
	ord, err := decodeOrd(node)
	if err != nil {
		return err
	}
	o.Ord = ord
	return nil
}

func (o OrderSpec) MarshalYAML() (any, error) {
	return encodeOrd(o.Ord), nil
}

func decodeOrd(node *yaml.Node) (constraint.Ord, error) {
	key, items, err := singleKey(node)
	if err != nil {
		return nil, err
	}
	if items.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(items, "%s: expected a list", key)
	}

	elems := make([]constraint.OrdElem, 0, len(items.Content))
	for _, item := range items.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			if item.Value == "" {
				return nil, nodeErrorf(item, "empty fragment name")
			}
			elems = append(elems, constraint.Name(item.Value))
		case yaml.MappingNode:
			nested, err := decodeOrd(item)
			if err != nil {
				return nil, err
			}
			elems = append(elems, nested)
		default:
			return nil, nodeErrorf(item, "expected a fragment name or a nested order")
		}
	}

	switch key {
	case "total":
		return constraint.Total(elems), nil
	case "partial":
		return constraint.Partial(elems), nil
	default:
		return nil, nodeErrorf(node, "unknown order kind %q, want total or partial", key)
	}
}

func encodeOrd(o constraint.OrdElem) any {
	switch o := o.(type) {
	case constraint.Name:
		return string(o)
	case constraint.Total:
		return map[string][]any{"total": encodeOrdElems(o)}
	case constraint.Partial:
		return map[string][]any{"partial": encodeOrdElems(o)}
	}
	return nil
}

func encodeOrdElems(elems []constraint.OrdElem) []any {
	out := make([]any, len(elems))
	for i, e := range elems {
		out[i] = encodeOrd(e)
	}
	return out
}

// TreeSpec is a tree pattern written as nested single-key maps:
//
//	then:
//	  - branch: ["`mu.Lock()`"]
//	  - branch: [IfStmt]
//	    tail: {or: [{branch: [ReturnStmt]}, {branch: [BranchStmt]}]}
//
// Kind is one of branch, and, then, or. Units are sequence pattern units.
type TreeSpec struct {
	Kind     string
	Units    []string
	Tail     *TreeSpec
	Children []*TreeSpec
}

var treeKeys = map[string]bool{"branch": true, "tail": true, "and": true, "then": true, "or": true}

func (t *TreeSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nodeErrorf(node, "expected a tree mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !treeKeys[key.Value] {
			return nodeErrorf(key, "unknown tree key %q", key.Value)
		}
	}

	var raw struct {
		Branch []string    `yaml:"branch"`
		Tail   *TreeSpec   `yaml:"tail"`
		And    []*TreeSpec `yaml:"and"`
		Then   []*TreeSpec `yaml:"then"`
		Or     []*TreeSpec `yaml:"or"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	set := 0
	for _, present := range []bool{raw.Branch != nil, raw.And != nil, raw.Then != nil, raw.Or != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nodeErrorf(node, "want exactly one of branch, and, then, or")
	}

	switch {
	case raw.Branch != nil:
		if len(raw.Branch) == 0 {
			return nodeErrorf(node, "branch: empty unit list")
		}
		*t = TreeSpec{Kind: "branch", Units: raw.Branch, Tail: raw.Tail}
		return nil
	case raw.And != nil:
		*t = TreeSpec{Kind: "and", Children: raw.And}
	case raw.Then != nil:
		*t = TreeSpec{Kind: "then", Children: raw.Then}
	case raw.Or != nil:
		*t = TreeSpec{Kind: "or", Children: raw.Or}
	}
	if raw.Tail != nil {
		return nodeErrorf(node, "tail is only allowed on a branch")
	}
	if len(t.Children) == 0 {
		return nodeErrorf(node, "%s: empty child list", t.Kind)
	}
	return nil
}

func (t TreeSpec) MarshalYAML() (any, error) {
	if t.Kind == "branch" {
		m := map[string]any{"branch": t.Units}
		if t.Tail != nil {
			m["tail"] = t.Tail
		}
		return m, nil
	}
	return map[string][]*TreeSpec{t.Kind: t.Children}, nil
}

func singleKey(node *yaml.Node) (string, *yaml.Node, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return "", nil, nodeErrorf(node, "expected a single-key mapping")
	}
	return node.Content[0].Value, node.Content[1], nil
}

func nodeErrorf(node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", node.Line, fmt.Sprintf(format, args...))
}
