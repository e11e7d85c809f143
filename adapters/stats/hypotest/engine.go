package hypotest

import (
	"log"
	"math"

	montana "github.com/montanaflynn/stats"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

// Engine assembles the hypothesis-test and power slots.
type Engine struct{}

// NewEngine creates a hypothesis-testing engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Tests runs the applicable battery. With one dataset this is a one-sample
// t-test against zero; with two or more, the first two datasets get a Welch
// t-test and a variance F-test, plus a paired t-test when requested and the
// lengths match. Individual test failures log and drop that test.
func (e *Engine) Tests(datasets [][]float64, opts stats.AnalysisOptions) ([]stats.HypothesisTest, error) {
	if len(datasets) == 0 {
		return nil, errors.InsufficientData("hypothesis testing requires at least one dataset")
	}
	alpha := 1 - opts.ConfidenceLevel

	var results []stats.HypothesisTest
	add := func(t stats.HypothesisTest, err error, name string) {
		if err != nil {
			log.Printf("[HypothesisTests] %s skipped: %v", name, err)
			return
		}
		results = append(results, t)
	}

	if len(datasets) == 1 {
		t, err := OneSampleT(datasets[0], 0, alpha)
		add(t, err, "one-sample t")
		return results, nil
	}

	a, b := datasets[0], datasets[1]
	t, err := WelchT(a, b, alpha)
	add(t, err, "Welch t")
	f, err := VarianceF(a, b, alpha)
	add(f, err, "variance F")
	if opts.Paired && len(a) == len(b) {
		p, err := PairedT(a, b, alpha)
		add(p, err, "paired t")
	}
	return results, nil
}

// Power reports the achieved power at the observed effect and the sample
// size needed to reach 0.80 power at the same effect.
func (e *Engine) Power(datasets [][]float64, opts stats.AnalysisOptions) (*stats.PowerAnalysis, error) {
	if len(datasets) == 0 {
		return nil, errors.InsufficientData("power analysis requires at least one dataset")
	}
	alpha := 1 - opts.ConfidenceLevel

	if len(datasets) == 1 {
		data := datasets[0]
		if len(data) < 2 {
			return nil, errors.InsufficientData("power analysis requires at least 2 observations")
		}
		mean, _ := montana.Mean(data)
		sd, _ := montana.StandardDeviationSample(data)
		if sd == 0 {
			return nil, errors.NumericDegenerate("power analysis undefined for constant data")
		}
		effect := math.Abs(mean)
		power, err := PowerOneSampleT(effect, sd, len(data), alpha)
		if err != nil {
			return nil, err
		}
		required := requiredSampleSize(effect, sd, alpha)
		return &stats.PowerAnalysis{
			EffectSize:     effect / sd,
			Alpha:          alpha,
			SampleSize:     len(data),
			AchievedPower:  power,
			RequiredSample: required,
		}, nil
	}

	a, b := datasets[0], datasets[1]
	if len(a) < 2 || len(b) < 2 {
		return nil, errors.InsufficientData("power analysis requires at least 2 observations per group")
	}
	meanA, _ := montana.Mean(a)
	meanB, _ := montana.Mean(b)
	sdA, _ := montana.StandardDeviationSample(a)
	sdB, _ := montana.StandardDeviationSample(b)
	if sdA == 0 || sdB == 0 {
		return nil, errors.NumericDegenerate("power analysis undefined for constant group")
	}

	effect := math.Abs(meanA - meanB)
	power, err := PowerTwoSampleT(effect, sdA, sdB, len(a), len(b), alpha, false)
	if err != nil {
		return nil, err
	}

	na := float64(len(a))
	nb := float64(len(b))
	pooledSD := math.Sqrt(((na-1)*sdA*sdA + (nb-1)*sdB*sdB) / (na + nb - 2))
	required := requiredSampleSize(effect, pooledSD, alpha)

	return &stats.PowerAnalysis{
		EffectSize:     effect / pooledSD,
		Alpha:          alpha,
		SampleSize:     len(a) + len(b),
		AchievedPower:  power,
		RequiredSample: required,
	}, nil
}

// requiredSampleSize is best-effort: 0 when the search cannot converge.
func requiredSampleSize(effect, sigma, alpha float64) int {
	n, err := SampleSizeOneSampleT(effect, sigma, alpha, 0.80)
	if err != nil {
		log.Printf("[PowerAnalysis] required sample size unavailable: %v", err)
		return 0
	}
	return n
}
