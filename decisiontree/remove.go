package decisiontree

// Remove deletes the first node holding v, searching pre-order from the root.
// It reports whether a node was removed.
//
// A removed node is replaced by its last child, which keeps the remaining
// children as its own. A node with no children becomes empty and is then
// dropped from its parent's child list.
func (t *Tree) Remove(v Value) bool {
	return remove(t.root, v)
}

func remove(n *Node, v Value) bool {
	if n.isEmpty() {
		return false
	}
	if n.Value.Equal(v) {
		deleteRoot(n)
		return true
	}
	for i, c := range n.Children {
		if !remove(c, v) {
			continue
		}
		if c.isEmpty() {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
		}
		return true
	}
	return false
}

// deleteRoot promotes the last child of n into n's place.
func deleteRoot(n *Node) {
	if len(n.Children) == 0 {
		n.Value = Value{}
		return
	}
	last := n.Children[len(n.Children)-1]
	n.Children = n.Children[:len(n.Children)-1]
	n.Value = last.Value
	n.Children = append(n.Children, last.Children...)
}
