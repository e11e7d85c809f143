package outlier

import (
	"math"
	"sort"
)

// LOF computes Local Outlier Factor scores for 1-D data and flags points
// whose score exceeds threshold. Requires n > k. The second return carries
// each flagged point's LOF score.
func LOF(data []float64, k int, threshold float64) ([]int, []float64) {
	n := len(data)
	if k < 1 || n <= k {
		return nil, nil
	}

	kDistances := make([]float64, n)
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		type dist struct {
			idx int
			d   float64
		}
		dists := make([]dist, n)
		for j := 0; j < n; j++ {
			dists[j] = dist{j, math.Abs(data[i] - data[j])}
		}
		sort.Slice(dists, func(a, b int) bool { return dists[a].d < dists[b].d })
		// dists[0] is the point itself
		kDistances[i] = dists[k].d
		neighbors[i] = make([]int, k)
		for m := 1; m <= k; m++ {
			neighbors[i][m-1] = dists[m].idx
		}
	}

	// Local reachability density per point
	lrds := make([]float64, n)
	for i := 0; i < n; i++ {
		var reachSum float64
		for _, j := range neighbors[i] {
			reach := math.Max(kDistances[j], math.Abs(data[i]-data[j]))
			reachSum += reach
		}
		if reachSum > 0 {
			lrds[i] = float64(k) / reachSum
		}
	}

	var out []int
	var scores []float64
	for i := 0; i < n; i++ {
		if lrds[i] <= 0 {
			continue
		}
		var ratioSum float64
		for _, j := range neighbors[i] {
			ratioSum += lrds[j]
		}
		score := (ratioSum / float64(k)) / lrds[i]
		if score > threshold {
			out = append(out, i)
			scores = append(scores, score)
		}
	}
	return out, scores
}
