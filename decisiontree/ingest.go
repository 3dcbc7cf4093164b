package decisiontree

import "fmt"

// Ingest routes one record's attribute sequence down the tree and tallies its
// outcome.
//
// Every element but the last selects the first child holding an equal value.
// The last element must be an Outcome and picks the leaf-pair counter by
// position: index 0 for true (made), index 1 for false (missed).
//
// A record whose attributes leave the taxonomy is dropped: Ingest returns
// false with a nil error and the tree is untouched. Sequences that do not fit
// the tree's depth or lack an outcome are caller errors and are reported.
func (t *Tree) Ingest(seq []Value) (bool, error) {
	if t.IsEmpty() {
		return false, ErrEmptyTree
	}
	if len(seq) == 0 {
		return false, ErrShortSequence
	}
	made, ok := seq[len(seq)-1].AsOutcome()
	if !ok {
		return false, fmt.Errorf("%w: got %s %q", ErrBadOutcome, seq[len(seq)-1].Kind(), seq[len(seq)-1])
	}

	node := t.root
	for _, v := range seq[:len(seq)-1] {
		node = matchChild(node, v)
		if node == nil {
			return false, nil
		}
	}

	if !node.isLeafPair() {
		return false, fmt.Errorf("%w: %d attributes end above the leaf-pairs", ErrShortSequence, len(seq)-1)
	}

	idx := 1
	if made {
		idx = 0
	}
	leaf := node.Children[idx]
	n, _ := leaf.Value.AsCounter()
	leaf.Value = Counter(n + 1)
	return true, nil
}

func matchChild(n *Node, v Value) *Node {
	for _, c := range n.Children {
		if c.Value.Equal(v) {
			return c
		}
	}
	return nil
}
