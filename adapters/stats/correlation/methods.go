package correlation

import (
	"math"
	"sort"

	"anastat/internal/errors"
)

// Pearson computes the product-moment correlation coefficient.
func Pearson(x, y []float64) (float64, error) {
	if err := checkPair(x, y); err != nil {
		return 0, err
	}
	n := float64(len(x))
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, errors.NumericDegenerate("correlation undefined for zero-variance data")
	}
	return clamp(cov/math.Sqrt(varX*varY), -1, 1), nil
}

// Spearman computes rank correlation using midranks for ties.
func Spearman(x, y []float64) (float64, error) {
	if err := checkPair(x, y); err != nil {
		return 0, err
	}
	return Pearson(Ranks(x), Ranks(y))
}

// Ranks converts values to 1-based ranks, assigning midranks to ties.
func Ranks(data []float64) []float64 {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return data[idx[a]] < data[idx[b]] })

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && data[idx[j+1]] == data[idx[i]] {
			j++
		}
		// Average rank across the tie group
		mid := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = mid
		}
		i = j + 1
	}
	return ranks
}

// KendallTauB computes Kendall's tau-b in O(n log n) using merge-sort
// inversion counting with tie corrections.
func KendallTauB(x, y []float64) (float64, error) {
	if err := checkPair(x, y); err != nil {
		return 0, err
	}
	n := len(x)

	type pair struct{ x, y float64 }
	pairs := make([]pair, n)
	for i := range x {
		pairs[i] = pair{x[i], y[i]}
	}
	// Sort by x then y so tie groups are contiguous
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].x != pairs[b].x {
			return pairs[a].x < pairs[b].x
		}
		return pairs[a].y < pairs[b].y
	})

	// n1: pairs tied in x; n3: pairs tied in both x and y
	var n1, n3 int64
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].x == pairs[i].x {
			j++
		}
		tie := int64(j - i)
		if tie > 1 {
			n1 += tie * (tie - 1) / 2
			k := i
			for k < j {
				l := k + 1
				for l < j && pairs[l].y == pairs[k].y {
					l++
				}
				sub := int64(l - k)
				if sub > 1 {
					n3 += sub * (sub - 1) / 2
				}
				k = l
			}
		}
		i = j
	}

	ysInXOrder := make([]float64, n)
	for i := range pairs {
		ysInXOrder[i] = pairs[i].y
	}

	// n2: pairs tied in y
	ysSorted := append([]float64(nil), ysInXOrder...)
	sort.Float64s(ysSorted)
	var n2 int64
	i = 0
	for i < n {
		j := i + 1
		for j < n && ysSorted[j] == ysSorted[i] {
			j++
		}
		tie := int64(j - i)
		if tie > 1 {
			n2 += tie * (tie - 1) / 2
		}
		i = j
	}

	tmp := make([]float64, n)
	swaps := mergeSortCount(ysInXOrder, tmp, 0, n-1)

	n0 := int64(n) * int64(n-1) / 2
	// concordant - discordant = n0 - n1 - n2 + n3 - 2*swaps
	s := n0 - n1 - n2 + n3 - 2*swaps

	denom := math.Sqrt(float64(n0-n1) * float64(n0-n2))
	if denom == 0 {
		return 0, errors.NumericDegenerate("tau undefined for fully tied data")
	}
	return clamp(float64(s)/denom, -1, 1), nil
}

func mergeSortCount(arr, tmp []float64, left, right int) int64 {
	var inv int64
	if left < right {
		mid := left + (right-left)/2
		inv += mergeSortCount(arr, tmp, left, mid)
		inv += mergeSortCount(arr, tmp, mid+1, right)
		inv += mergeCount(arr, tmp, left, mid+1, right)
	}
	return inv
}

func mergeCount(arr, tmp []float64, left, mid, right int) int64 {
	i, j, k := left, mid, left
	var inv int64
	for i < mid && j <= right {
		if arr[i] <= arr[j] {
			tmp[k] = arr[i]
			i++
		} else {
			tmp[k] = arr[j]
			j++
			inv += int64(mid - i)
		}
		k++
	}
	for i < mid {
		tmp[k] = arr[i]
		i++
		k++
	}
	for j <= right {
		tmp[k] = arr[j]
		j++
		k++
	}
	copy(arr[left:right+1], tmp[left:right+1])
	return inv
}

// BiweightMidcorrelation computes a robust correlation with the given tuning
// constant (9.0 is conventional). Points beyond the tuning radius get zero
// weight.
func BiweightMidcorrelation(x, y []float64, tuning float64) (float64, error) {
	if err := checkPair(x, y); err != nil {
		return 0, err
	}
	medX := median(x)
	medY := median(y)
	madX := medianAbsDev(x, medX)
	madY := medianAbsDev(y, medY)
	if madX == 0 || madY == 0 {
		return 0, nil
	}

	var wxy, wx2, wy2 float64
	for i := range x {
		ux := (x[i] - medX) / (tuning * madX)
		uy := (y[i] - medY) / (tuning * madY)
		if math.Abs(ux) >= 1 || math.Abs(uy) >= 1 {
			continue
		}
		wx := (1 - ux*ux) * (1 - ux*ux)
		wy := (1 - uy*uy) * (1 - uy*uy)
		w := wx * wy
		wxy += w * (x[i] - medX) * (y[i] - medY)
		wx2 += w * (x[i] - medX) * (x[i] - medX)
		wy2 += w * (y[i] - medY) * (y[i] - medY)
	}
	if wx2 == 0 || wy2 == 0 {
		return 0, nil
	}
	return wxy / math.Sqrt(wx2*wy2), nil
}

func checkPair(x, y []float64) error {
	if len(x) != len(y) {
		return errors.InvalidInputf("datasets must have equal length: %d vs %d", len(x), len(y))
	}
	if len(x) < 2 {
		return errors.InsufficientData("correlation requires at least 2 observations")
	}
	return nil
}

func median(data []float64) float64 {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func medianAbsDev(data []float64, med float64) float64 {
	dev := make([]float64, len(data))
	for i, v := range data {
		dev[i] = math.Abs(v - med)
	}
	return median(dev)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
