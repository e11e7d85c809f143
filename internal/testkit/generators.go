package testkit

import (
	"math"
	"math/rand"
)

// GenerateLinearData creates y = slope*x + intercept + noise over x = 0..n-1.
func GenerateLinearData(n int, slope, intercept, noiseStd float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, n)
	for i := range data {
		data[i] = slope*float64(i) + intercept + rng.NormFloat64()*noiseStd
	}
	return data
}

// GenerateNormalData draws n values from N(mean, std).
func GenerateNormalData(n int, mean, std float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, n)
	for i := range data {
		data[i] = mean + rng.NormFloat64()*std
	}
	return data
}

// GenerateAR1 builds an AR(1) series x[t] = phi*x[t-1] + e[t] with unit
// innovation variance.
func GenerateAR1(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, n)
	prev := rng.NormFloat64()
	for i := range data {
		prev = phi*prev + rng.NormFloat64()
		data[i] = prev
	}
	return data
}

// GenerateSeasonal builds trend + sinusoidal seasonality + noise.
func GenerateSeasonal(n, period int, trendSlope, amplitude, noiseStd float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, n)
	for i := range data {
		seasonal := amplitude * math.Sin(2*math.Pi*float64(i)/float64(period))
		data[i] = trendSlope*float64(i) + seasonal + rng.NormFloat64()*noiseStd
	}
	return data
}

// WithOutliers copies data and plants the given value at each index.
func WithOutliers(data []float64, value float64, indices ...int) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	for _, idx := range indices {
		out[idx] = value
	}
	return out
}
