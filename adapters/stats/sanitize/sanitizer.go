package sanitize

import (
	"log"
	"math"
	"sort"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

// Sanitizer validates dataset shapes and applies the configured non-finite
// value policy before any engine sees the data.
type Sanitizer struct {
	policy stats.NaNPolicy
	paired bool
}

// New creates a sanitizer for the given policy.
func New(policy stats.NaNPolicy, paired bool) *Sanitizer {
	return &Sanitizer{policy: policy, paired: paired}
}

// Clean sanitizes every dataset and reports what was removed. Input slices
// are never mutated. Any dataset left empty fails the whole pipeline.
func (s *Sanitizer) Clean(datasets [][]float64) ([][]float64, stats.SanitizationReport, error) {
	report := stats.SanitizationReport{
		Original:  make([]int, len(datasets)),
		Remaining: make([]int, len(datasets)),
	}
	if len(datasets) == 0 {
		return nil, report, errors.InvalidInput("no datasets provided")
	}
	for i, d := range datasets {
		report.Original[i] = len(d)
		if len(d) == 0 {
			return nil, report, errors.InvalidInputf("dataset %d is empty", i)
		}
	}
	if s.paired {
		for i := 1; i < len(datasets); i++ {
			if len(datasets[i]) != len(datasets[0]) {
				return nil, report, errors.InvalidInputf(
					"paired datasets must have equal lengths: dataset %d has %d, dataset 0 has %d",
					i, len(datasets[i]), len(datasets[0]))
			}
		}
	}

	// Clamp infinities first so the NaN policy only sees NaN as non-finite
	clamped := make([][]float64, len(datasets))
	for i, d := range datasets {
		c, err := clampInfinities(d, i)
		if err != nil {
			return nil, report, err
		}
		clamped[i] = c
	}

	var cleaned [][]float64
	var err error
	if s.paired && s.policy == stats.NaNRemove {
		cleaned, err = removePairedRows(clamped)
	} else {
		cleaned = make([][]float64, len(clamped))
		for i, d := range clamped {
			cleaned[i], err = applyPolicy(d, s.policy, i)
			if err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, report, err
	}

	for i, d := range cleaned {
		report.Remaining[i] = len(d)
		report.RowsRemovedTotal += report.Original[i] - len(d)
		if len(d) == 0 {
			return nil, report, errors.InsufficientData("dataset became empty after sanitization")
		}
	}
	return cleaned, report, nil
}

// clampInfinities replaces ±Inf with 1.5x the finite extremum of the dataset.
func clampInfinities(data []float64, idx int) ([]float64, error) {
	hasInf := false
	minFinite := math.Inf(1)
	maxFinite := math.Inf(-1)
	for _, v := range data {
		if math.IsInf(v, 0) {
			hasInf = true
			continue
		}
		if !math.IsNaN(v) {
			if v < minFinite {
				minFinite = v
			}
			if v > maxFinite {
				maxFinite = v
			}
		}
	}
	if !hasInf {
		return data, nil
	}
	if math.IsInf(minFinite, 1) {
		return nil, errors.InvalidInputf("dataset %d contains only non-finite values", idx)
	}
	out := make([]float64, len(data))
	for i, v := range data {
		switch {
		case math.IsInf(v, 1):
			out[i] = 1.5 * maxFinite
		case math.IsInf(v, -1):
			out[i] = 1.5 * minFinite
		default:
			out[i] = v
		}
	}
	return out, nil
}

func applyPolicy(data []float64, policy stats.NaNPolicy, idx int) ([]float64, error) {
	nanCount := 0
	for _, v := range data {
		if math.IsNaN(v) {
			nanCount++
		}
	}
	if nanCount == 0 {
		return data, nil
	}

	switch policy {
	case stats.NaNError:
		return nil, errors.InvalidInputf("dataset %d contains %d NaN values", idx, nanCount)
	case stats.NaNIgnore:
		return data, nil
	case stats.NaNRemove:
		out := make([]float64, 0, len(data)-nanCount)
		for _, v := range data {
			if !math.IsNaN(v) {
				out = append(out, v)
			}
		}
		return out, nil
	case stats.NaNZero:
		return replaceNaN(data, func(int) float64 { return 0 }), nil
	case stats.NaNMeanImpute:
		mean, std := finiteMeanStd(data)
		// Tiny perturbation avoids degenerate ties between imputed points
		return replaceNaN(data, func(i int) float64 {
			return mean + std*0.001*math.Sin(float64(i))
		}), nil
	case stats.NaNMedianImpute:
		med := finiteMedian(data)
		return replaceNaN(data, func(int) float64 { return med }), nil
	case stats.NaNNearestImpute:
		return nearestNeighborImpute(data), nil
	}
	return nil, errors.UnsupportedConfig("unknown NaN policy " + string(policy))
}

// removePairedRows drops a row from every dataset when it is NaN in any.
func removePairedRows(datasets [][]float64) ([][]float64, error) {
	n := len(datasets[0])
	keep := make([]bool, n)
	kept := 0
	for i := 0; i < n; i++ {
		keep[i] = true
		for _, d := range datasets {
			if math.IsNaN(d[i]) {
				keep[i] = false
				break
			}
		}
		if keep[i] {
			kept++
		}
	}
	out := make([][]float64, len(datasets))
	for di, d := range datasets {
		out[di] = make([]float64, 0, kept)
		for i, v := range d {
			if keep[i] {
				out[di] = append(out[di], v)
			}
		}
	}
	if kept < n {
		log.Printf("[Sanitizer] paired removal dropped %d of %d rows", n-kept, n)
	}
	return out, nil
}

// nearestNeighborImpute averages the k=min(5, finite) index-nearest finite
// neighbors for each NaN.
func nearestNeighborImpute(data []float64) []float64 {
	finiteIdx := make([]int, 0, len(data))
	for i, v := range data {
		if !math.IsNaN(v) {
			finiteIdx = append(finiteIdx, i)
		}
	}
	k := 5
	if len(finiteIdx) < k {
		k = len(finiteIdx)
	}
	out := append([]float64(nil), data...)
	for i, v := range data {
		if !math.IsNaN(v) {
			continue
		}
		nearest := append([]int(nil), finiteIdx...)
		sort.Slice(nearest, func(a, b int) bool {
			da := abs(nearest[a] - i)
			db := abs(nearest[b] - i)
			if da != db {
				return da < db
			}
			return nearest[a] < nearest[b]
		})
		var sum float64
		for _, j := range nearest[:k] {
			sum += data[j]
		}
		out[i] = sum / float64(k)
	}
	return out
}

func replaceNaN(data []float64, fill func(i int) float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		if math.IsNaN(v) {
			out[i] = fill(i)
		} else {
			out[i] = v
		}
	}
	return out
}

func finiteMeanStd(data []float64) (float64, float64) {
	var sum float64
	count := 0
	for _, v := range data {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	mean := sum / float64(count)
	var ss float64
	for _, v := range data {
		if !math.IsNaN(v) {
			ss += (v - mean) * (v - mean)
		}
	}
	std := 0.0
	if count > 1 {
		std = math.Sqrt(ss / float64(count-1))
	}
	return mean, std
}

func finiteMedian(data []float64) float64 {
	finite := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0
	}
	sort.Float64s(finite)
	n := len(finite)
	if n%2 == 1 {
		return finite[n/2]
	}
	return (finite[n/2-1] + finite[n/2]) / 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ExpandUncertainties applies the expansion rules: one scalar per dataset is
// broadcast to per-point arrays; a per-point array matching a dataset's
// length is used directly; anything else is dropped with a warning.
// Confidence levels expand by the same rules, in step with the values.
func ExpandUncertainties(spec *stats.UncertaintySpec, datasets [][]float64) (values, confidences [][]float64) {
	if spec == nil || len(spec.Values) == 0 {
		return nil, nil
	}
	if len(spec.Values) == len(datasets) {
		values = make([][]float64, len(datasets))
		for i, d := range datasets {
			values[i] = broadcast(spec.Values[i], len(d))
		}
		if len(spec.ConfidenceLevels) == len(datasets) {
			confidences = make([][]float64, len(datasets))
			for i, d := range datasets {
				confidences[i] = broadcast(spec.ConfidenceLevels[i], len(d))
			}
		} else if len(spec.ConfidenceLevels) > 0 {
			log.Printf("[Sanitizer] %d confidence levels do not match %d datasets; dropped", len(spec.ConfidenceLevels), len(datasets))
		}
		return values, confidences
	}
	for i, d := range datasets {
		if len(spec.Values) == len(d) {
			values = make([][]float64, len(datasets))
			values[i] = append([]float64(nil), spec.Values...)
			if len(spec.ConfidenceLevels) == len(d) {
				confidences = make([][]float64, len(datasets))
				confidences[i] = append([]float64(nil), spec.ConfidenceLevels...)
			} else if len(spec.ConfidenceLevels) > 0 {
				log.Printf("[Sanitizer] %d confidence levels do not match dataset length %d; dropped", len(spec.ConfidenceLevels), len(d))
			}
			return values, confidences
		}
	}
	log.Printf("[Sanitizer] uncertainty spec with %d values matches neither dataset count nor any dataset length; dropped", len(spec.Values))
	return nil, nil
}

func broadcast(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
