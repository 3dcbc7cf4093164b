package decisiontree

import "fmt"

// Merge adds every leaf-pair tally of src into the matching position of dst.
// Both trees must have been built from the same subject and taxonomy.
func Merge(dst, src *Tree) error {
	if dst.IsEmpty() || src.IsEmpty() {
		return ErrEmptyTree
	}
	if err := sameShape(dst.root, src.root, 0); err != nil {
		return err
	}
	mergeCounters(dst.root, src.root)
	return nil
}

func sameShape(a, b *Node, depth int) error {
	if a.Value.IsCounter() != b.Value.IsCounter() {
		return fmt.Errorf("%w: kind %s vs %s at depth %d", ErrShapeMismatch, a.Value.Kind(), b.Value.Kind(), depth)
	}
	if !a.Value.IsCounter() && !a.Value.Equal(b.Value) {
		return fmt.Errorf("%w: %q vs %q at depth %d", ErrShapeMismatch, a.Value, b.Value, depth)
	}
	if len(a.Children) != len(b.Children) {
		return fmt.Errorf("%w: %d vs %d children under %q", ErrShapeMismatch, len(a.Children), len(b.Children), a.Value)
	}
	for i := range a.Children {
		if err := sameShape(a.Children[i], b.Children[i], depth+1); err != nil {
			return err
		}
	}
	return nil
}

func mergeCounters(dst, src *Node) {
	if n, ok := dst.Value.AsCounter(); ok {
		m, _ := src.Value.AsCounter()
		dst.Value = Counter(n + m)
		return
	}
	for i := range dst.Children {
		mergeCounters(dst.Children[i], src.Children[i])
	}
}
