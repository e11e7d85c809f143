package timeseries

import (
	"log"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

// Engine assembles the time-series slot for one dataset.
type Engine struct{}

// NewEngine creates a time-series engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze computes ACF, Ljung-Box, the trend test and both decompositions
// when a seasonal period is available. Decomposition failures only log; the
// rest of the slot still fills.
func (e *Engine) Analyze(data []float64, opts stats.AnalysisOptions) (*stats.TimeSeriesAnalysis, error) {
	if len(data) < 3 {
		return nil, errors.InsufficientData("time series analysis requires at least 3 observations")
	}

	maxLag := opts.MaxLag
	if maxLag <= 0 {
		maxLag = len(data) / 4
		if maxLag > 40 {
			maxLag = 40
		}
		if maxLag < 1 {
			maxLag = 1
		}
	}

	result := &stats.TimeSeriesAnalysis{}

	acf, err := ACF(data, maxLag)
	if err != nil {
		return nil, err
	}
	result.ACF = acf

	if lb, err := LjungBox(data, maxLag); err == nil {
		result.LjungBox = lb
	} else {
		log.Printf("[TimeSeries] Ljung-Box skipped: %v", err)
	}

	if trend, err := TrendTest(data); err == nil {
		result.Trend = trend
	} else {
		return nil, err
	}

	period := opts.SeasonalPeriod
	if period == 0 {
		period = detectPeriod(acf)
	}
	if period >= 2 && len(data) >= 2*period {
		if add, err := DecomposeAdditive(data, period); err == nil {
			result.Additive = add
		} else {
			log.Printf("[TimeSeries] additive decomposition skipped: %v", err)
		}
		if stl, err := DecomposeSTL(data, period); err == nil {
			result.STL = stl
		} else {
			log.Printf("[TimeSeries] STL decomposition skipped: %v", err)
		}
	}

	return result, nil
}

// detectPeriod picks the lag >= 2 with the strongest positive
// autocorrelation, requiring at least a 0.3 peak. Returns 0 when no credible
// seasonality shows.
func detectPeriod(acf []float64) int {
	best := 0
	bestVal := 0.3
	for lag := 2; lag <= len(acf); lag++ {
		if v := acf[lag-1]; v > bestVal {
			best = lag
			bestVal = v
		}
	}
	return best
}
