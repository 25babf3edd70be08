// Package category evaluates the user-authored category tree against the
// ledger, producing one boolean selection mask per leaf category.
package category

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rule is the matching rule attached to a leaf category: one or more
// patterns matched case-insensitively against transaction descriptions.
// Multiple patterns are ANDed together.
type Rule struct {
	Patterns []string
}

// Node is one named node of the category tree: either a leaf carrying a Rule
// or a group carrying children.
type Node struct {
	Name     string
	Rule     *Rule
	Children []Node
}

// IsLeaf reports whether the node carries a matching rule.
func (n Node) IsLeaf() bool {
	return n.Rule != nil
}

// Tree is the parsed category tree in document order.
type Tree struct {
	Roots []Node
}

// ParseTree parses a YAML category tree, preserving document order. A scalar
// value is a single-pattern leaf, a sequence of scalars is an ANDed
// multi-pattern leaf, and a nested mapping is a group. Names must be unique
// across the whole tree because they become output columns.
func ParseTree(data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid category tree: %w", err)
	}
	if len(doc.Content) == 0 {
		return &Tree{}, nil
	}

	roots, err := parseMapping(doc.Content[0])
	if err != nil {
		return nil, err
	}

	tree := &Tree{Roots: roots}
	seen := make(map[string]struct{})
	for _, name := range tree.Names() {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("category name '%s' appears more than once in the tree", name)
		}
		seen[name] = struct{}{}
	}
	return tree, nil
}

func parseMapping(node *yaml.Node) ([]Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("category tree node must be a mapping, got %s", kindName(node.Kind))
	}

	var out []Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		value := node.Content[i+1]

		child := Node{Name: key.Value}
		switch value.Kind {
		case yaml.ScalarNode:
			child.Rule = &Rule{Patterns: []string{value.Value}}
		case yaml.SequenceNode:
			patterns := make([]string, 0, len(value.Content))
			for _, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("pattern list for category '%s' must contain only strings", key.Value)
				}
				patterns = append(patterns, item.Value)
			}
			child.Rule = &Rule{Patterns: patterns}
		case yaml.MappingNode:
			children, err := parseMapping(value)
			if err != nil {
				return nil, err
			}
			child.Children = children
		default:
			return nil, fmt.Errorf("category '%s' has an unsupported value kind %s", key.Value, kindName(value.Kind))
		}
		out = append(out, child)
	}
	return out, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

// Leaves returns the leaf category names in document order.
func (t *Tree) Leaves() []string {
	var out []string
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			if n.IsLeaf() {
				out = append(out, n.Name)
				continue
			}
			walk(n.Children)
		}
	}
	walk(t.Roots)
	return out
}

// Names returns every node name, leaves and groups, in document order.
func (t *Tree) Names() []string {
	var out []string
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			out = append(out, n.Name)
			walk(n.Children)
		}
	}
	walk(t.Roots)
	return out
}
