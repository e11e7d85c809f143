package descriptive

import (
	"math"

	montana "github.com/montanaflynn/stats"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

// Compute summarizes one dataset. Requires at least 2 observations so the
// sample spread is defined.
func Compute(data []float64) (stats.DescriptiveStats, error) {
	if len(data) < 2 {
		return stats.DescriptiveStats{}, errors.InsufficientData("descriptive statistics require at least 2 observations")
	}

	mean, _ := montana.Mean(data)
	median, _ := montana.Median(data)
	sd, _ := montana.StandardDeviationSample(data)
	variance, _ := montana.VarS(data)
	min, _ := montana.Min(data)
	max, _ := montana.Max(data)
	quartiles, _ := montana.Quartile(data)

	mode := median
	if modes, err := montana.Mode(data); err == nil && len(modes) > 0 {
		mode = modes[0]
	}

	cv := math.NaN()
	if mean != 0 {
		cv = sd / math.Abs(mean)
	}

	return stats.DescriptiveStats{
		N:          len(data),
		Mean:       mean,
		Median:     median,
		Mode:       mode,
		StdDev:     sd,
		Variance:   variance,
		Min:        min,
		Max:        max,
		Q1:         quartiles.Q1,
		Q3:         quartiles.Q3,
		Skewness:   Skewness(data, mean, sd),
		Kurtosis:   Kurtosis(data, mean, sd),
		CV:         cv,
		StdErrMean: sd / math.Sqrt(float64(len(data))),
	}, nil
}

// Skewness is the biased moment estimator; 0 for constant data.
func Skewness(data []float64, mean, sd float64) float64 {
	if sd == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		z := (v - mean) / sd
		sum += z * z * z
	}
	return sum / float64(len(data))
}

// Kurtosis is the excess kurtosis from the biased moment estimator; 0 for
// constant data.
func Kurtosis(data []float64, mean, sd float64) float64 {
	if sd == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		z := (v - mean) / sd
		sum += z * z * z * z
	}
	return sum/float64(len(data)) - 3
}
