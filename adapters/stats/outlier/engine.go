package outlier

import (
	"context"
	"log"
	"math"
	"sort"

	montana "github.com/montanaflynn/stats"

	"anastat/domain/stats"
	"anastat/ports"
)

// Engine runs every detector and unions the flagged indices.
type Engine struct {
	rngPort ports.RNGPort
}

// NewEngine creates an outlier detection engine.
func NewEngine(rngPort ports.RNGPort) *Engine {
	return &Engine{rngPort: rngPort}
}

// Detect runs all detectors over one dataset. Uncertainties and confidences
// may be nil; when present, the first three detectors use their
// uncertainty-aware variants. Empty and singleton inputs yield an empty
// result, never an error.
func (e *Engine) Detect(ctx context.Context, data, uncertainties, confidences []float64, opts stats.AnalysisOptions) (*stats.OutlierAnalysis, error) {
	if len(data) < 2 {
		result := &stats.OutlierAnalysis{CombinedIndices: []int{}}
		if len(data) == 1 {
			fillSummary(result, data, nil)
		}
		return result, nil
	}

	if len(uncertainties) > 0 && len(confidences) != len(uncertainties) {
		confidences = make([]float64, len(uncertainties))
		for i := range confidences {
			confidences[i] = opts.ConfidenceLevel
		}
	}

	result := &stats.OutlierAnalysis{}
	add := func(method string, indices []int, scores []float64) {
		result.ByMethod = append(result.ByMethod, stats.MethodOutliers{Method: method, Indices: indices, Scores: scores})
	}

	zIdx, zScores := ZScore(data, uncertainties, confidences, opts.ZScoreThreshold)
	add("zscore", zIdx, zScores)
	iqrIdx, iqrScores := IQR(data, uncertainties, confidences, opts.IQRMultiplier)
	add("iqr", iqrIdx, iqrScores)
	mzIdx, mzScores := ModifiedZ(data, uncertainties, confidences, opts.ModifiedZThreshold)
	add("modified_zscore", mzIdx, mzScores)

	if len(data) > opts.LOFNeighbors {
		lofIdx, lofScores := LOF(data, opts.LOFNeighbors, opts.LOFThreshold)
		add("lof", lofIdx, lofScores)
	} else {
		log.Printf("[Outliers] LOF skipped: need more than %d points, have %d", opts.LOFNeighbors, len(data))
	}

	rng, err := e.rngPort.SeededStream(ctx, "isolation-forest", opts.RandomSeed)
	if err != nil {
		return nil, err
	}
	isoIdx, isoScores := IsolationForest(data, opts.IsoForestContamined, rng)
	add("isolation_forest", isoIdx, isoScores)

	// Union across detectors
	seen := make(map[int]bool)
	for _, m := range result.ByMethod {
		for _, idx := range m.Indices {
			seen[idx] = true
		}
	}
	combined := make([]int, 0, len(seen))
	for idx := range seen {
		combined = append(combined, idx)
	}
	sort.Ints(combined)
	result.CombinedIndices = combined
	result.OutlierPercentage = 100 * float64(len(combined)) / float64(len(data))

	fillSummary(result, data, seen)
	return result, nil
}

// fillSummary records the mean and spread with and without flagged points.
func fillSummary(result *stats.OutlierAnalysis, data []float64, flagged map[int]bool) {
	result.MeanWithOutliers, _ = montana.Mean(data)

	clean := make([]float64, 0, len(data))
	for i, v := range data {
		if !flagged[i] {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		result.MeanWithout = math.NaN()
		result.StdDevWithout = math.NaN()
		return
	}
	result.MeanWithout, _ = montana.Mean(clean)
	if len(clean) > 1 {
		result.StdDevWithout, _ = montana.StandardDeviationSample(clean)
	}
}
