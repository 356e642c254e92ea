package anomaly

import (
	"math"
	"math/rand"
)

// isolationTree is a randomized partition tree over feature vectors.
// Nodes live in an index-addressed slice rather than a pointer-linked
// structure; children reference their parent's slice by index.
type isolationTree struct {
	nodes []treeNode
}

// treeNode is one partition. Leaves have left == -1 and carry the count
// of samples that ended up in them.
type treeNode struct {
	feature   int
	threshold float64
	left      int32
	right     int32
	size      int
}

const leafChild = int32(-1)

// buildTree grows a tree over the sampled rows of the feature matrix.
// Splitting picks a random feature and a uniform threshold between that
// feature's min and max in the current partition, until a point is
// isolated, the depth limit is hit, or the partition is degenerate.
func buildTree(features [][]float64, sample []int, maxDepth int, rng *rand.Rand) *isolationTree {
	t := &isolationTree{}
	t.grow(features, sample, 0, maxDepth, rng)
	return t
}

// grow appends the subtree for the given partition and returns its root index.
func (t *isolationTree) grow(features [][]float64, sample []int, depth, maxDepth int, rng *rand.Rand) int32 {
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, treeNode{left: leafChild, right: leafChild, size: len(sample)})

	if len(sample) <= 1 || depth >= maxDepth {
		return idx
	}

	dims := len(features[sample[0]])
	feature, threshold, ok := pickSplit(features, sample, dims, rng)
	if !ok {
		// All points identical across every feature; nothing to split
		return idx
	}

	var left, right []int
	for _, i := range sample {
		if features[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	leftIdx := t.grow(features, left, depth+1, maxDepth, rng)
	rightIdx := t.grow(features, right, depth+1, maxDepth, rng)

	t.nodes[idx].feature = feature
	t.nodes[idx].threshold = threshold
	t.nodes[idx].left = leftIdx
	t.nodes[idx].right = rightIdx

	return idx
}

// pickSplit selects a random feature with spread in the partition and a
// uniform threshold strictly inside its range. Starts from a random
// feature and scans so degenerate columns are skipped deterministically.
func pickSplit(features [][]float64, sample []int, dims int, rng *rand.Rand) (int, float64, bool) {
	start := rng.Intn(dims)
	for d := 0; d < dims; d++ {
		feature := (start + d) % dims

		lo, hi := features[sample[0]][feature], features[sample[0]][feature]
		for _, i := range sample[1:] {
			v := features[i][feature]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}

		if hi > lo {
			return feature, lo + rng.Float64()*(hi-lo), true
		}
	}

	return 0, 0, false
}

// pathLength walks a point down the tree and returns its isolation
// depth, adjusted by the expected path length within the terminal leaf.
func (t *isolationTree) pathLength(point []float64) float64 {
	depth := 0.0
	idx := int32(0)

	for t.nodes[idx].left != leafChild {
		n := t.nodes[idx]
		if point[n.feature] < n.threshold {
			idx = n.left
		} else {
			idx = n.right
		}
		depth++
	}

	return depth + avgPathLength(t.nodes[idx].size)
}

// avgPathLength is c(n), the expected path length of an unsuccessful
// search in a binary search tree over n points. Used both to adjust
// leaf depths and to normalize scores.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		h := math.Log(float64(n-1)) + 0.5772156649015329 // harmonic number approximation
		return 2*h - 2*float64(n-1)/float64(n)
	}
}

// anomalyScore maps an average path length to the isolation forest
// score 2^(-E[h(x)] / c(m)) in (0, 1]; shorter paths score higher.
func anomalyScore(avgPath float64, subsampleSize int) float64 {
	c := avgPathLength(subsampleSize)
	if c == 0 {
		return 0
	}
	return math.Pow(2, -avgPath/c)
}
