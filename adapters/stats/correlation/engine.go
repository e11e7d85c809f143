package correlation

import (
	"context"
	"log"

	"anastat/adapters/stats/bootstrap"
	"anastat/domain/stats"
	"anastat/ports"
)

// Engine runs the full correlation analysis: matrix, partial matrix, pairwise
// significance, distance correlation and a bootstrap interval for the first
// pair's coefficient.
type Engine struct {
	rngPort ports.RNGPort
	boot    *bootstrap.Engine
}

// NewEngine creates a correlation engine sharing the bootstrap engine's
// resample budget.
func NewEngine(rngPort ports.RNGPort, boot *bootstrap.Engine) *Engine {
	return &Engine{rngPort: rngPort, boot: boot}
}

// Analyze computes the correlation slot for the given datasets.
func (e *Engine) Analyze(ctx context.Context, datasets [][]float64, opts stats.AnalysisOptions) (*stats.CorrelationAnalysis, error) {
	matrix, err := Matrix(datasets, opts.CorrelationMethod, opts.BiweightTuning)
	if err != nil {
		return nil, err
	}

	result := &stats.CorrelationAnalysis{
		Method: opts.CorrelationMethod,
		Matrix: matrix,
	}

	if len(datasets) >= 3 {
		partial, err := PartialMatrix(matrix)
		if err == nil {
			result.Partial = partial
		} else {
			log.Printf("[Correlation] partial correlations skipped: %v", err)
		}
	}

	tester := NewSignificanceTester(e.rngPort, opts.PermutationCount)
	for i := range datasets {
		for j := i + 1; j < len(datasets); j++ {
			coef := matrix[i][j]
			p, permuted, err := tester.PValue(ctx, datasets[i], datasets[j], coef, opts.CorrelationMethod, opts.BiweightTuning, opts.RandomSeed)
			if err != nil {
				return nil, err
			}
			result.Pairs = append(result.Pairs, stats.PairCorrelation{
				I:           i,
				J:           j,
				Coefficient: coef,
				PValue:      p,
				Permutation: permuted,
			})
		}
	}

	if len(datasets) == 2 {
		if dc, err := DistanceCorrelation(datasets[0], datasets[1]); err == nil {
			result.DistancePair = &dc
		}
	}

	// Resampling interval for the leading pair's coefficient
	if e.boot != nil && len(datasets) >= 2 {
		stat := func(x, y []float64) float64 {
			r, err := pairwise(x, y, opts.CorrelationMethod, opts.BiweightTuning)
			if err != nil {
				return 0
			}
			return r
		}
		br, err := e.boot.PairedCI(ctx, datasets[0], datasets[1], stat, "correlation", opts.ConfidenceLevel, opts.RandomSeed)
		if err == nil {
			result.Bootstrap = append(result.Bootstrap, br)
		} else {
			log.Printf("[Correlation] bootstrap interval skipped: %v", err)
		}
	}

	return result, nil
}
