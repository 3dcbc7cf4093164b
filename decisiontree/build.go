package decisiontree

import "fmt"

// Build creates the tree skeleton for one subject.
//
// The root holds the subject label with one child per category. Each of the
// levels binary attributes then splits every current leaf into true/false
// children, and finally every leaf receives a (made, missed) counter pair
// initialised to zero.
func Build(subject string, categories []string, levels int) (*Tree, error) {
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	if levels < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevels, levels)
	}

	seen := make(map[string]struct{}, len(categories))
	root := NewNode(Label(subject))
	for _, c := range categories {
		if c == "" {
			return nil, fmt.Errorf("%w: empty label", ErrInvalidCategory)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: duplicate %q", ErrInvalidCategory, c)
		}
		seen[c] = struct{}{}
		root.Children = append(root.Children, NewNode(Label(c)))
	}

	leaves := root.Children
	for i := 0; i < levels; i++ {
		leaves = expand(leaves, Outcome(true), Outcome(false))
	}
	expand(leaves, Counter(0), Counter(0))

	return &Tree{root: root}, nil
}

// expand attaches a fresh (left, right) child pair to every node and returns
// the new leaves in order.
func expand(nodes []*Node, left, right Value) []*Node {
	next := make([]*Node, 0, len(nodes)*2)
	for _, n := range nodes {
		l, r := NewNode(left), NewNode(right)
		n.Children = append(n.Children, l, r)
		next = append(next, l, r)
	}
	return next
}
