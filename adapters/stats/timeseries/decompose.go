package timeseries

import (
	"math"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

const (
	loessSpan     = 0.3
	stlIterations = 5
)

// DecomposeAdditive splits data into trend + seasonal + residual using a
// centered moving average of width period. Residual is computed as the exact
// remainder, so trend+seasonal+residual reconstructs the input.
func DecomposeAdditive(data []float64, period int) (*stats.Decomposition, error) {
	if period < 2 {
		return nil, errors.InvalidInputf("seasonal period must be at least 2, got %d", period)
	}
	if len(data) < 2*period {
		return nil, errors.InsufficientData("series too short for decomposition: need at least two full periods")
	}

	trend := movingAverageTrend(data, period)

	detrended := make([]float64, len(data))
	for i := range data {
		detrended[i] = data[i] - trend[i]
	}
	pattern := seasonalPattern(detrended, period)

	seasonal := make([]float64, len(data))
	residual := make([]float64, len(data))
	for i := range data {
		seasonal[i] = pattern[i%period]
		residual[i] = data[i] - trend[i] - seasonal[i]
	}

	return &stats.Decomposition{
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
		Method:   "moving_average",
	}, nil
}

// DecomposeSTL iteratively refines LOESS-smoothed trend and a periodic
// seasonal pattern.
func DecomposeSTL(data []float64, period int) (*stats.Decomposition, error) {
	if period < 2 {
		return nil, errors.InvalidInputf("seasonal period must be at least 2, got %d", period)
	}
	if len(data) < 2*period {
		return nil, errors.InsufficientData("series too short for STL decomposition: need at least two full periods")
	}

	trend := loessSmooth(data, loessSpan)
	seasonal := make([]float64, len(data))
	detrended := make([]float64, len(data))
	deseasonalized := make([]float64, len(data))

	for iter := 0; iter < stlIterations; iter++ {
		for i := range data {
			detrended[i] = data[i] - trend[i]
		}
		smoothed := loessSmooth(detrended, loessSpan)
		pattern := seasonalPattern(smoothed, period)
		for i := range data {
			seasonal[i] = pattern[i%period]
			deseasonalized[i] = data[i] - seasonal[i]
		}
		trend = loessSmooth(deseasonalized, loessSpan)
	}

	residual := make([]float64, len(data))
	for i := range data {
		residual[i] = data[i] - trend[i] - seasonal[i]
	}

	return &stats.Decomposition{
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
		Method:   "stl",
	}, nil
}

// movingAverageTrend uses truncated windows at the edges so the trend covers
// every point.
func movingAverageTrend(data []float64, period int) []float64 {
	n := len(data)
	trend := make([]float64, n)
	for i := range trend {
		start := i - period/2
		if start < 0 {
			start = 0
		}
		end := i + period/2 + 1
		if end > n {
			end = n
		}
		var sum float64
		for _, v := range data[start:end] {
			sum += v
		}
		trend[i] = sum / float64(end-start)
	}
	return trend
}

// seasonalPattern averages each phase across periods, then centers the
// pattern to sum to zero.
func seasonalPattern(detrended []float64, period int) []float64 {
	pattern := make([]float64, period)
	for p := 0; p < period; p++ {
		var sum float64
		count := 0
		for i := p; i < len(detrended); i += period {
			sum += detrended[i]
			count++
		}
		if count > 0 {
			pattern[p] = sum / float64(count)
		}
	}
	var mean float64
	for _, v := range pattern {
		mean += v
	}
	mean /= float64(period)
	for i := range pattern {
		pattern[i] -= mean
	}
	return pattern
}

// loessSmooth runs locally weighted linear regression with a tricube kernel.
func loessSmooth(data []float64, span float64) []float64 {
	n := len(data)
	windowSize := int(math.Max(span*float64(n), 3))
	smoothed := make([]float64, n)

	for i := range data {
		start := i - windowSize/2
		if start < 0 {
			start = 0
		}
		end := i + windowSize/2 + 1
		if end > n {
			end = n
		}

		weights := make([]float64, end-start)
		for j := start; j < end; j++ {
			distance := math.Abs(float64(j-i)) / (float64(windowSize) / 2)
			if distance < 1 {
				w := 1 - distance*distance*distance
				weights[j-start] = w * w * w
			}
		}
		smoothed[i] = weightedLinearFit(start, data[start:end], weights)
	}
	return smoothed
}

// weightedLinearFit fits y = a + b*x over the window and evaluates at the
// window's weighted x center.
func weightedLinearFit(offset int, y, weights []float64) float64 {
	n := len(y)
	if n < 2 {
		return y[0]
	}

	var sumW, sumWX, sumWY, sumWXX, sumWXY, sumX float64
	for i := range y {
		x := float64(offset + i)
		w := weights[i]
		sumW += w
		sumWX += x * w
		sumWY += y[i] * w
		sumWXX += x * x * w
		sumWXY += x * y[i] * w
		sumX += x
	}
	xCenter := sumX / float64(n)

	denom := sumW*sumWXX - sumWX*sumWX
	if math.Abs(denom) < 1e-10 {
		return sumWY / sumW
	}
	b := (sumW*sumWXY - sumWX*sumWY) / denom
	a := (sumWY - b*sumWX) / sumW
	return a + b*xCenter
}
