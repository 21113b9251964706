// pkg/tree/tree.go
// Package tree implements the in-memory configuration tree: a hierarchy
// of named nodes addressed by dotted paths. The tree is the single entry
// point for mutations and enforces the structural invariants (leaf vs.
// interior exclusivity, root indelibility). Every externally originated
// mutation follows validate -> log -> mutate: an operation rejected by
// validation (path, value, strict mode, structure) never reaches the
// attached mutation hooks and never changes the tree. A hook error aborts
// the assignment, but nodes the walk already created stay in place.
package tree

import (
	"strings"

	"configx/pkg/cfgerr"
	"configx/pkg/types"
)

// RootName is the fixed name of the tree's root node.
const RootName = "root"

// MutationHooks is the capability a storage runtime injects to intercept
// mutations before they are applied. A hook error aborts the mutation.
type MutationHooks interface {
	BeforeSet(path string, value types.Value) error
	BeforeDelete(path string) error
}

// Tree manages all nodes and exposes path-addressed operations.
type Tree struct {
	root       *Node
	strictMode bool
	hooks      MutationHooks
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{root: NewNode(RootName)}
}

// AttachHooks installs the mutation hooks invoked before every set and
// delete. A nil value detaches them; mutations then skip logging.
func (t *Tree) AttachHooks(h MutationHooks) {
	t.hooks = h
}

// SetStrictMode toggles strict path creation. When enabled, a set whose
// walk would have to create nodes fails instead.
func (t *Tree) SetStrictMode(enabled bool) {
	t.strictMode = enabled
}

// StrictMode reports whether strict mode is enabled.
func (t *Tree) StrictMode() bool {
	return t.strictMode
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// SetRoot replaces the root wholesale. Used by the snapshot codec.
func (t *Tree) SetRoot(n *Node) {
	t.root = n
}

// Reset reinstalls a fresh empty root.
func (t *Tree) Reset() {
	t.root = NewNode(RootName)
}

// splitPath normalizes a dotted path: the whole string is trimmed, then
// split on ".", dropping empty segments. "a..b" therefore splits to
// ["a","b"], while interior whitespace is left to the caller ("a. .b"
// yields a literal " " segment). An empty result is an invalid path.
func splitPath(path string) ([]string, error) {
	raw := strings.Split(strings.TrimSpace(path), ".")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, cfgerr.Pathf(cfgerr.ErrInvalidPath, path)
	}
	return parts, nil
}

// walk descends from the root along parts. With createMissing, missing
// nodes are created as empty interior nodes unless strict mode is on, in
// which case the walk fails. Without createMissing, a missing node
// returns nil.
func (t *Tree) walk(path string, parts []string, createMissing bool) (*Node, error) {
	node := t.root
	for _, part := range parts {
		next := node.Child(part)
		if next == nil {
			if !createMissing {
				return nil, nil
			}
			if t.strictMode {
				return nil, cfgerr.Pathf(cfgerr.ErrStrictMode, path)
			}
			next = NewNode(part)
			node.AddChild(next)
		}
		node = next
	}
	return node, nil
}

// Get returns the primitive view of the node at path: the scalar for a
// leaf, a nested map for an interior node.
func (t *Tree) Get(path string) (interface{}, error) {
	parts, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	node, _ := t.walk(path, parts, false)
	if node == nil {
		return nil, cfgerr.Pathf(cfgerr.ErrPathNotFound, path)
	}
	return node.Primitive(), nil
}

// Set assigns a scalar value at path, creating intermediate nodes where
// permitted, and returns the stored value's primitive view.
func (t *Tree) Set(path string, value interface{}) (interface{}, error) {
	return t.set(path, value, false)
}

// ApplySet is Set with mutation hooks suppressed. It exists for WAL
// replay, which must not re-log the operations it re-applies.
func (t *Tree) ApplySet(path string, value interface{}) (interface{}, error) {
	return t.set(path, value, true)
}

func (t *Tree) set(path string, value interface{}, internal bool) (interface{}, error) {
	parts, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	// Infer the value up front: a rejected value must leave no WAL
	// record and no auto-created intermediates.
	val, err := types.FromAny(value)
	if err != nil {
		return nil, err
	}

	node, err := t.walk(path, parts, true)
	if err != nil {
		return nil, err
	}

	if node.HasChildren() {
		return nil, cfgerr.Reasonf(cfgerr.ErrNodeStructure,
			"cannot assign value to interior node %q", path)
	}

	if !internal && t.hooks != nil {
		if err := t.hooks.BeforeSet(path, val); err != nil {
			return nil, err
		}
	}

	node.SetValue(val)
	return val.Primitive(), nil
}

// Delete removes the subtree rooted at path. It returns true if a node
// was removed and false if the path does not resolve. Deleting the root
// is forbidden.
func (t *Tree) Delete(path string) (bool, error) {
	return t.delete(path, false)
}

// ApplyDelete is Delete with mutation hooks suppressed, for WAL replay.
func (t *Tree) ApplyDelete(path string) (bool, error) {
	return t.delete(path, true)
}

func (t *Tree) delete(path string, internal bool) (bool, error) {
	parts, err := splitPath(path)
	if err != nil {
		return false, err
	}

	if len(parts) == 1 && parts[0] == RootName {
		return false, cfgerr.Reasonf(cfgerr.ErrNodeStructure,
			"cannot delete root node")
	}

	parent := t.root
	if len(parts) > 1 {
		parent, _ = t.walk(path, parts[:len(parts)-1], false)
		if parent == nil {
			return false, nil
		}
	}

	name := parts[len(parts)-1]
	if parent.Child(name) == nil {
		return false, nil
	}

	if !internal && t.hooks != nil {
		if err := t.hooks.BeforeDelete(path); err != nil {
			return false, err
		}
	}

	delete(parent.Children(), name)
	return true, nil
}

// ToMap converts the whole tree to a nested map of primitives. An empty
// tree yields an empty map.
func (t *Tree) ToMap() map[string]interface{} {
	if !t.root.HasChildren() {
		return map[string]interface{}{}
	}
	return t.root.Primitive().(map[string]interface{})
}

// LoadMap replaces the tree contents with nodes built from a nested map.
// This is destructive and is not itself logged; it serves bulk ingest.
func (t *Tree) LoadMap(data map[string]interface{}) error {
	if data == nil {
		return cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"top-level configuration must be a map")
	}

	root := NewNode(RootName)
	for key, raw := range data {
		child, err := NodeFromPrimitive(key, raw)
		if err != nil {
			return err
		}
		root.children[key] = child
	}
	t.root = root
	return nil
}
