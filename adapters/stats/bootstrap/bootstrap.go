package bootstrap

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"anastat/domain/stats"
	"anastat/internal/errors"
	"anastat/ports"
)

const (
	// blockCutoff is the observation count above which block resampling is
	// used to preserve local dependence.
	blockCutoff = 10000
	// jackknifeSubsample caps the jackknife loop for the BCa acceleration
	// constant on large inputs.
	jackknifeSubsample = 100
	jackknifeCutoff    = 1000
)

// Statistic maps a sample to a scalar.
type Statistic func([]float64) float64

// Mean is the sample mean Statistic.
func Mean(sample []float64) float64 {
	var sum float64
	for _, v := range sample {
		sum += v
	}
	return sum / float64(len(sample))
}

// Median is the sample median Statistic.
func Median(sample []float64) float64 {
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Engine produces resampling-based confidence intervals, standard errors and
// bias estimates for arbitrary statistics.
type Engine struct {
	rngPort    ports.RNGPort
	samples    int
	numWorkers int
}

// NewEngine creates a bootstrap engine with the given resample budget.
func NewEngine(rngPort ports.RNGPort, samples int) *Engine {
	if samples < 1 {
		samples = 1000
	}
	return &Engine{
		rngPort:    rngPort,
		samples:    samples,
		numWorkers: 4,
	}
}

// CI resamples data and returns percentile and BCa intervals for the
// statistic at the given confidence level.
func (e *Engine) CI(ctx context.Context, data []float64, stat Statistic, name string, confidence float64, seed int64) (stats.BootstrapResult, error) {
	if len(data) < 2 {
		return stats.BootstrapResult{}, errors.InsufficientData("bootstrap requires at least 2 observations")
	}
	if confidence <= 0 || confidence >= 1 {
		return stats.BootstrapResult{}, errors.InvalidInputf("confidence must be in (0,1), got %v", confidence)
	}

	observed := stat(data)
	useBlocks := len(data) > blockCutoff

	resamples, err := e.resample(ctx, data, stat, seed, useBlocks)
	if err != nil {
		return stats.BootstrapResult{}, err
	}

	sorted := append([]float64(nil), resamples...)
	sort.Float64s(sorted)

	lower, upper := percentileInterval(sorted, confidence)
	bcaLower, bcaUpper := bcaInterval(data, stat, sorted, observed, confidence)

	se, bias := seAndBias(resamples, observed)

	return stats.BootstrapResult{
		Statistic: name,
		Observed:  observed,
		CI: stats.ConfidenceInterval{
			Lower:      lower,
			Upper:      upper,
			Confidence: confidence,
		},
		BCa: stats.ConfidenceInterval{
			Lower:      bcaLower,
			Upper:      bcaUpper,
			Confidence: confidence,
		},
		StandardError: se,
		Bias:          bias,
		Resamples:     len(resamples),
		UsedBlocks:    useBlocks,
	}, nil
}

// PairedStatistic maps two aligned samples to a scalar.
type PairedStatistic func(x, y []float64) float64

// PairedCI resamples aligned (x, y) rows together, preserving pairing, and
// returns a percentile interval for the statistic.
func (e *Engine) PairedCI(ctx context.Context, x, y []float64, stat PairedStatistic, name string, confidence float64, seed int64) (stats.BootstrapResult, error) {
	if len(x) != len(y) {
		return stats.BootstrapResult{}, errors.InvalidInputf("paired bootstrap needs equal lengths: %d vs %d", len(x), len(y))
	}
	if len(x) < 2 {
		return stats.BootstrapResult{}, errors.InsufficientData("bootstrap requires at least 2 observations")
	}
	observed := stat(x, y)

	rng, err := e.rngPort.SeededStream(ctx, "bootstrap-paired", seed)
	if err != nil {
		return stats.BootstrapResult{}, err
	}

	n := len(x)
	resamples := make([]float64, 0, e.samples)
	rx := make([]float64, n)
	ry := make([]float64, n)
	for s := 0; s < e.samples; s++ {
		if s%256 == 0 {
			if err := ctx.Err(); err != nil {
				return stats.BootstrapResult{}, err
			}
		}
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			rx[i] = x[j]
			ry[i] = y[j]
		}
		resamples = append(resamples, stat(rx, ry))
	}

	sorted := append([]float64(nil), resamples...)
	sort.Float64s(sorted)
	lower, upper := percentileInterval(sorted, confidence)
	se, bias := seAndBias(resamples, observed)

	return stats.BootstrapResult{
		Statistic: name,
		Observed:  observed,
		CI: stats.ConfidenceInterval{
			Lower:      lower,
			Upper:      upper,
			Confidence: confidence,
		},
		BCa: stats.ConfidenceInterval{
			Lower:      lower,
			Upper:      upper,
			Confidence: confidence,
		},
		StandardError: se,
		Bias:          bias,
		Resamples:     len(resamples),
	}, nil
}

// resample fans the resample budget out over a small worker pool; each worker
// gets its own seeded stream.
func (e *Engine) resample(ctx context.Context, data []float64, stat Statistic, seed int64, useBlocks bool) ([]float64, error) {
	numWorkers := e.numWorkers
	if e.samples < 100 {
		numWorkers = 1
	}

	workChan := make(chan int, e.samples)
	resultChan := make(chan struct {
		index int
		value float64
	}, e.samples)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng, err := e.rngPort.SeededStream(ctx, "bootstrap-resample", seed+int64(worker))
			if err != nil {
				return
			}
			buf := make([]float64, len(data))
			for index := range workChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if useBlocks {
					blockResample(data, buf, rng)
				} else {
					for i := range buf {
						buf[i] = data[rng.Intn(len(data))]
					}
				}
				resultChan <- struct {
					index int
					value float64
				}{index, stat(buf)}
			}
		}(w)
	}

	go func() {
		for i := 0; i < e.samples; i++ {
			workChan <- i
		}
		close(workChan)
	}()
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	values := make([]float64, 0, e.samples)
	for r := range resultChan {
		values = append(values, r.value)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.InternalError("bootstrap produced no resamples")
	}
	return values, nil
}

// blockResample fills buf with contiguous blocks of size ceil(sqrt(n)),
// truncated to n.
func blockResample(data, buf []float64, rng *rand.Rand) {
	n := len(data)
	blockSize := int(math.Ceil(math.Sqrt(float64(n))))
	pos := 0
	for pos < n {
		start := rng.Intn(n - blockSize + 1)
		take := blockSize
		if pos+take > n {
			take = n - pos
		}
		copy(buf[pos:pos+take], data[start:start+take])
		pos += take
	}
}

// percentileInterval takes the (1±conf)/2 quantiles with clamped indices.
func percentileInterval(sorted []float64, confidence float64) (float64, float64) {
	n := len(sorted)
	alpha := (1 - confidence) / 2
	lowerIdx := clampIndex(int(alpha*float64(n)), n)
	upperIdx := clampIndex(int((1-alpha)*float64(n)), n)
	return sorted[lowerIdx], sorted[upperIdx]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// bcaInterval applies bias correction (z0 from the share of resamples below
// the observed value) and jackknife acceleration.
func bcaInterval(data []float64, stat Statistic, sorted []float64, observed, confidence float64) (float64, float64) {
	n := len(sorted)
	norm := distuv.Normal{Mu: 0, Sigma: 1}

	below := 0
	for _, v := range sorted {
		if v < observed {
			below++
		}
	}
	// Clamp away from 0 and 1 so the quantile stays finite
	p := (float64(below) + 0.5) / (float64(n) + 1)
	z0 := norm.Quantile(p)

	a := jackknifeAcceleration(data, stat)

	zAlpha := norm.Quantile((1 - confidence) / 2)
	a1 := norm.CDF(z0 + (z0+zAlpha)/(1-a*(z0+zAlpha)))
	a2 := norm.CDF(z0 + (z0-zAlpha)/(1-a*(z0-zAlpha)))

	lowerIdx := clampIndex(int(a1*float64(n)), n)
	upperIdx := clampIndex(int(a2*float64(n)), n)
	return sorted[lowerIdx], sorted[upperIdx]
}

// jackknifeAcceleration estimates the BCa acceleration constant from
// leave-one-out statistics, on a capped subsample for large inputs.
func jackknifeAcceleration(data []float64, stat Statistic) float64 {
	n := len(data)
	step := 1
	if n > jackknifeCutoff {
		step = n / jackknifeSubsample
	}

	var thetas []float64
	loo := make([]float64, 0, n-1)
	for i := 0; i < n; i += step {
		loo = loo[:0]
		loo = append(loo, data[:i]...)
		loo = append(loo, data[i+1:]...)
		thetas = append(thetas, stat(loo))
	}
	if len(thetas) < 2 {
		return 0
	}

	var mean float64
	for _, t := range thetas {
		mean += t
	}
	mean /= float64(len(thetas))

	var num, denom float64
	for _, t := range thetas {
		d := mean - t
		num += d * d * d
		denom += d * d
	}
	if denom == 0 {
		return 0
	}
	return num / (6 * math.Pow(denom, 1.5))
}

func seAndBias(resamples []float64, observed float64) (float64, float64) {
	n := float64(len(resamples))
	var mean float64
	for _, v := range resamples {
		mean += v
	}
	mean /= n

	var ss float64
	for _, v := range resamples {
		d := v - mean
		ss += d * d
	}
	se := 0.0
	if n > 1 {
		se = math.Sqrt(ss / (n - 1))
	}
	return se, mean - observed
}
