package outlier

import (
	"math"
	"math/rand"
	"sort"
)

const (
	forestTrees      = 100
	forestSampleSize = 256
)

// isoNode is one node of an isolation tree over 1-D values.
type isoNode struct {
	split       float64
	left, right *isoNode
	size        int
}

// IsolationForest scores every point with an ensemble of random isolation
// trees and flags the top contamination fraction by score. The second
// return carries each flagged point's anomaly score.
func IsolationForest(data []float64, contamination float64, rng *rand.Rand) ([]int, []float64) {
	n := len(data)
	if n < 2 {
		return nil, nil
	}
	sampleSize := forestSampleSize
	if n < sampleSize {
		sampleSize = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))

	trees := make([]*isoNode, forestTrees)
	sample := make([]float64, sampleSize)
	for t := range trees {
		for i := range sample {
			sample[i] = data[rng.Intn(n)]
		}
		trees[t] = buildIsoTree(sample, 0, maxDepth, rng)
	}

	c := avgPathLength(sampleSize)
	scores := make([]float64, n)
	for i, x := range data {
		var pathSum float64
		for _, tree := range trees {
			pathSum += pathLength(tree, x, 0)
		}
		avg := pathSum / float64(forestTrees)
		scores[i] = math.Pow(2, -avg/c)
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	thresholdIdx := int((1 - contamination) * float64(n))
	if thresholdIdx >= n {
		thresholdIdx = n - 1
	}
	cutoff := sorted[thresholdIdx]

	var out []int
	var flaggedScores []float64
	for i, s := range scores {
		if s > cutoff {
			out = append(out, i)
			flaggedScores = append(flaggedScores, s)
		}
	}
	return out, flaggedScores
}

func buildIsoTree(values []float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(values) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(values)}
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &isoNode{size: len(values)}
	}
	split := lo + rng.Float64()*(hi-lo)

	var left, right []float64
	for _, v := range values {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	return &isoNode{
		split: split,
		left:  buildIsoTree(left, depth+1, maxDepth, rng),
		right: buildIsoTree(right, depth+1, maxDepth, rng),
		size:  len(values),
	}
}

func pathLength(node *isoNode, x float64, depth int) float64 {
	if node.left == nil && node.right == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if x < node.split {
		return pathLength(node.left, x, depth+1)
	}
	return pathLength(node.right, x, depth+1)
}

// avgPathLength is the expected unsuccessful BST search length c(n).
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	nf := float64(n)
	harmonic := math.Log(nf-1) + 0.5772156649
	return 2*harmonic - 2*(nf-1)/nf
}
