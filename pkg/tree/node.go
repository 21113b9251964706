// pkg/tree/node.go
package tree

import (
	"configx/pkg/types"
)

// Node is a single element of the configuration tree. A node is either a
// leaf carrying a scalar value or an interior node carrying children; it
// is never both. The walk creates missing intermediates as empty interior
// nodes (no value, no children). A leaf may carry the null scalar, which
// is distinct from carrying no value at all: hasValue records whether a
// value was ever assigned.
type Node struct {
	name     string
	value    types.Value
	hasValue bool
	children map[string]*Node
}

// NewNode creates an empty interior node.
func NewNode(name string) *Node {
	return &Node{
		name:     name,
		children: make(map[string]*Node),
	}
}

// Name returns the node's name, which equals the key under which it is
// stored in its parent's children.
func (n *Node) Name() string {
	return n.name
}

// Value returns the node's scalar value. Interior nodes report the null
// arm.
func (n *Node) Value() types.Value {
	return n.value
}

// TypeTag returns the persisted type label for the node's value, or the
// empty string when no value is present.
func (n *Node) TypeTag() string {
	return n.value.Type().Tag()
}

// HasChildren reports whether the node is interior.
func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

// IsLeaf reports whether the node carries a scalar value. A node that
// was never assigned one is an empty interior node, not a leaf, even
// though both report the null arm from Value.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0 && n.hasValue
}

// Child returns the named child, or nil.
func (n *Node) Child(name string) *Node {
	return n.children[name]
}

// Children returns the node's child mapping. Callers must not mutate it
// outside Tree operations or the snapshot codec.
func (n *Node) Children() map[string]*Node {
	return n.children
}

// AddChild installs c under its own name, clearing any value so the
// leaf/interior exclusivity holds.
func (n *Node) AddChild(c *Node) {
	n.value = types.NewNull()
	n.hasValue = false
	n.children[c.name] = c
}

// SetValue assigns a scalar (possibly the null scalar) and drops any
// children.
func (n *Node) SetValue(v types.Value) {
	n.value = v
	n.hasValue = true
	n.children = make(map[string]*Node)
}

// Primitive converts the subtree rooted at n to its dynamically typed
// view: the scalar for a leaf (nil for a null-valued one), a nested map
// for an interior node. An empty interior node yields an empty map.
func (n *Node) Primitive() interface{} {
	if n.IsLeaf() {
		return n.value.Primitive()
	}
	m := make(map[string]interface{}, len(n.children))
	for name, child := range n.children {
		m[name] = child.Primitive()
	}
	return m
}

// NodeFromPrimitive builds a subtree from a dynamically typed view: a
// nested map becomes an interior node, a scalar becomes a leaf. Anything
// outside the scalar taxonomy fails with cfgerr.ErrInvalidFormat.
func NodeFromPrimitive(name string, raw interface{}) (*Node, error) {
	node := NewNode(name)

	if m, ok := raw.(map[string]interface{}); ok {
		for key, sub := range m {
			child, err := NodeFromPrimitive(key, sub)
			if err != nil {
				return nil, err
			}
			node.children[key] = child
		}
		return node, nil
	}

	val, err := types.FromAny(raw)
	if err != nil {
		return nil, err
	}
	node.SetValue(val)
	return node, nil
}
