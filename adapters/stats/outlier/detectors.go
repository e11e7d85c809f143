package outlier

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// confidenceToZ converts a two-tailed confidence level to its z critical
// value.
func confidenceToZ(confidence float64) float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	return norm.Quantile(1 - (1-confidence)/2)
}

// ZScore flags points whose z-score exceeds threshold. With uncertainties,
// a point is only flagged when its whole confidence interval falls outside
// the acceptable band. The second return carries each flagged point's
// z-score.
func ZScore(data, uncertainties, confidences []float64, threshold float64) ([]int, []float64) {
	if len(data) < 2 {
		return nil, nil
	}
	mean, _ := stats.Mean(data)
	std, _ := stats.StandardDeviationSample(data)
	if std == 0 {
		return nil, nil
	}

	var out []int
	var scores []float64
	for i, x := range data {
		flagged := false
		if i < len(uncertainties) && i < len(confidences) {
			zConf := confidenceToZ(confidences[i])
			lower := x - uncertainties[i]*zConf
			upper := x + uncertainties[i]*zConf
			okLower := mean - threshold*std
			okUpper := mean + threshold*std
			flagged = upper < okLower || lower > okUpper
		} else {
			flagged = math.Abs(x-mean)/std > threshold
		}
		if flagged {
			out = append(out, i)
			scores = append(scores, math.Abs(x-mean)/std)
		}
	}
	return out, scores
}

// IQR flags points outside [Q1 - m*IQR, Q3 + m*IQR]. The second return
// carries each flagged point's distance beyond the nearer fence.
func IQR(data, uncertainties, confidences []float64, multiplier float64) ([]int, []float64) {
	if len(data) < 4 {
		return nil, nil
	}
	q, err := stats.Quartile(data)
	if err != nil {
		return nil, nil
	}
	iqr := q.Q3 - q.Q1
	lowerBound := q.Q1 - multiplier*iqr
	upperBound := q.Q3 + multiplier*iqr

	var out []int
	var scores []float64
	for i, x := range data {
		flagged := false
		if i < len(uncertainties) && i < len(confidences) {
			zConf := confidenceToZ(confidences[i])
			lower := x - uncertainties[i]*zConf
			upper := x + uncertainties[i]*zConf
			flagged = upper < lowerBound || lower > upperBound
		} else {
			flagged = x < lowerBound || x > upperBound
		}
		if flagged {
			out = append(out, i)
			scores = append(scores, math.Max(lowerBound-x, x-upperBound))
		}
	}
	return out, scores
}

// ModifiedZ flags points by the MAD-based modified z-score
// 0.6745*(x-median)/MAD. The second return carries each flagged point's
// modified z-score.
func ModifiedZ(data, uncertainties, confidences []float64, threshold float64) ([]int, []float64) {
	if len(data) < 2 {
		return nil, nil
	}
	med := median(data)
	deviations := make([]float64, len(data))
	for i, x := range data {
		deviations[i] = math.Abs(x - med)
	}
	mad := median(deviations)
	if mad == 0 {
		return nil, nil
	}

	var out []int
	var scores []float64
	for i, x := range data {
		flagged := false
		if i < len(uncertainties) && i < len(confidences) {
			zConf := confidenceToZ(confidences[i])
			lower := x - uncertainties[i]*zConf
			upper := x + uncertainties[i]*zConf
			okLower := med - (threshold/0.6745)*mad
			okUpper := med + (threshold/0.6745)*mad
			flagged = upper < okLower || lower > okUpper
		} else {
			flagged = math.Abs(0.6745*(x-med)/mad) > threshold
		}
		if flagged {
			out = append(out, i)
			scores = append(scores, math.Abs(0.6745*(x-med)/mad))
		}
	}
	return out, scores
}

func median(data []float64) float64 {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
