package decisiontree

import "math"

// worstSentinel sits above any achievable ratio so the first leaf-pair always
// registers as the running worst.
const worstSentinel = 2.0

// PathRatio is the tally found at one leaf-pair together with the values on
// the way to it. Path excludes the root and ends at the leaf-pair parent.
type PathRatio struct {
	Ratio  float64
	Made   int
	Missed int
	Path   []Value
}

// Total is the number of attempts tallied at the leaf-pair.
func (p PathRatio) Total() int { return p.Made + p.Missed }

// Percent is the ratio expressed as a percentage with two decimals.
func (p PathRatio) Percent() float64 { return Percent(p.Ratio) }

// Percent converts a ratio in [0,1] to a percentage rounded to two decimals.
func Percent(ratio float64) float64 {
	return math.Round(ratio*10000) / 100
}

// BestRatioPath returns the leaf-pair with the highest made ratio. Ties keep
// the leaf-pair visited first in child order.
func (t *Tree) BestRatioPath() (PathRatio, error) {
	return t.search(-1, func(candidate, current float64) bool { return candidate > current })
}

// WorstRatioPath returns the leaf-pair with the lowest made ratio. Ties keep
// the leaf-pair visited first in child order.
func (t *Tree) WorstRatioPath() (PathRatio, error) {
	return t.search(worstSentinel, func(candidate, current float64) bool { return candidate < current })
}

// LeafPairs returns every leaf-pair in depth-first child order.
func (t *Tree) LeafPairs() []PathRatio {
	var out []PathRatio
	if t.IsEmpty() {
		return out
	}
	walkLeafPairs(t.root, nil, func(p PathRatio) { out = append(out, p) })
	return out
}

func (t *Tree) search(init float64, better func(candidate, current float64) bool) (PathRatio, error) {
	if t.IsEmpty() {
		return PathRatio{}, ErrEmptyTree
	}

	found := false
	best := PathRatio{Ratio: init}
	walkLeafPairs(t.root, nil, func(p PathRatio) {
		if better(p.Ratio, best.Ratio) {
			best = p
			found = true
		}
	})
	if !found {
		return PathRatio{}, ErrNoLeafPairs
	}
	return best, nil
}

func walkLeafPairs(n *Node, path []Value, visit func(PathRatio)) {
	if n.isLeafPair() {
		made, _ := n.Children[0].Value.AsCounter()
		missed, _ := n.Children[1].Value.AsCounter()
		ratio := 0.0
		if total := made + missed; total > 0 {
			ratio = float64(made) / float64(total)
		}
		visit(PathRatio{Ratio: ratio, Made: made, Missed: missed, Path: path})
		return
	}
	for _, c := range n.Children {
		walkLeafPairs(c, append(path[:len(path):len(path)], c.Value), visit)
	}
}
