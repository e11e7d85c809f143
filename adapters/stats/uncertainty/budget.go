package uncertainty

import (
	"math"

	montana "github.com/montanaflynn/stats"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

// DatasetBudget splits the uncertainty of a dataset's mean into a
// measurement component (the supplied per-point uncertainties) and a
// sampling component (the standard error of the mean). Contributions hold
// the squared component uncertainties, matching Propagate.
func DatasetBudget(label string, data, uncertainties []float64) (*stats.UncertaintyBudget, error) {
	if len(data) == 0 {
		return nil, errors.InvalidInput("uncertainty budget requires a non-empty dataset")
	}
	if len(data) != len(uncertainties) {
		return nil, errors.InvalidInputf("uncertainties must match data length: %d vs %d", len(uncertainties), len(data))
	}
	if len(data) < 2 {
		return nil, errors.InsufficientData("uncertainty budget requires at least 2 observations")
	}
	for i, u := range uncertainties {
		if u < 0 {
			return nil, errors.InvalidInputf("uncertainty at index %d is negative", i)
		}
	}

	mean, err := montana.Mean(data)
	if err != nil {
		return nil, errors.Wrap(err, "mean")
	}
	sd, err := montana.StandardDeviationSample(data)
	if err != nil {
		return nil, errors.Wrap(err, "standard deviation")
	}

	// Uncorrelated per-point uncertainties propagated through the mean:
	// sigma_meas = sqrt(sum u_i^2) / n
	var sumSq float64
	for _, u := range uncertainties {
		sumSq += u * u
	}
	n := float64(len(data))
	measurement := math.Sqrt(sumSq) / n
	sampling := sd / math.Sqrt(n)
	combined := math.Sqrt(measurement*measurement + sampling*sampling)

	return &stats.UncertaintyBudget{
		Formula:  label,
		Value:    mean,
		Combined: combined,
		Contributions: map[string]float64{
			"measurement": measurement * measurement,
			"sampling":    sampling * sampling,
		},
	}, nil
}
