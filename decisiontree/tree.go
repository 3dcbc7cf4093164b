// Package decisiontree implements a small categorical decision tree used to
// tally binary outcomes (made/missed shots) along fixed category paths.
//
// A tree is built once from a taxonomy, fed attribute sequences one record at
// a time and then queried for the best and worst performing paths. Trees are
// not safe for concurrent mutation; partitioned ingestion builds one tree per
// partition and combines them with Merge.
package decisiontree

import (
	"errors"
	"strings"
)

var (
	ErrEmptyTree     = errors.New("decisiontree: tree is empty")
	ErrNoLeafPairs   = errors.New("decisiontree: tree has no leaf-pairs")
	ErrShortSequence = errors.New("decisiontree: attribute sequence too short")
	ErrBadOutcome    = errors.New("decisiontree: terminal element is not an outcome")
	ErrShapeMismatch = errors.New("decisiontree: tree shapes differ")

	ErrNoCategories    = errors.New("decisiontree: at least one category is required")
	ErrInvalidCategory = errors.New("decisiontree: invalid category label")
	ErrInvalidLevels   = errors.New("decisiontree: levels must not be negative")
)

// Node is a single tree item. Child order is significant: outcome splits are
// stored true-then-false and leaf-pairs made-then-missed.
type Node struct {
	Value    Value
	Children []*Node
}

// NewNode creates a node holding v with the given children.
func NewNode(v Value, children ...*Node) *Node {
	return &Node{Value: v, Children: children}
}

func (n *Node) isEmpty() bool { return n == nil || n.Value.IsEmpty() }

// isLeafPair reports whether n is the parent of a (made, missed) tally.
func (n *Node) isLeafPair() bool {
	return len(n.Children) == 2 &&
		n.Children[0].Value.IsCounter() &&
		n.Children[1].Value.IsCounter()
}

// Tree is a rooted categorical decision tree.
type Tree struct {
	root *Node
}

// New wraps an existing node hierarchy. A nil root yields an empty tree.
func New(root *Node) *Tree {
	if root == nil {
		root = &Node{}
	}
	return &Tree{root: root}
}

// Root exposes the root node for read-only traversal.
func (t *Tree) Root() *Node { return t.root }

// IsEmpty reports whether the tree holds no items.
func (t *Tree) IsEmpty() bool { return t.root.isEmpty() }

// Len returns the number of items stored in the tree.
func (t *Tree) Len() int {
	return nodeLen(t.root)
}

func nodeLen(n *Node) int {
	if n.isEmpty() {
		return 0
	}
	size := 1
	for _, c := range n.Children {
		size += nodeLen(c)
	}
	return size
}

// Contains reports whether any node holds v.
func (t *Tree) Contains(v Value) bool {
	return contains(t.root, v)
}

func contains(n *Node, v Value) bool {
	if n.isEmpty() {
		return false
	}
	if n.Value.Equal(v) {
		return true
	}
	for _, c := range n.Children {
		if contains(c, v) {
			return true
		}
	}
	return false
}

// String renders the tree pre-order, indenting two spaces per level.
func (t *Tree) String() string {
	var sb strings.Builder
	writeIndented(&sb, t.root, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func writeIndented(sb *strings.Builder, n *Node, depth int) {
	if n.isEmpty() {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Value.String())
	sb.WriteByte('\n')
	for _, c := range n.Children {
		writeIndented(sb, c, depth+1)
	}
}
