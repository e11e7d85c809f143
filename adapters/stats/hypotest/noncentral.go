package hypotest

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"anastat/internal/errors"
)

const (
	nonCentralTTerms   = 200
	nonCentralSeriesN  = 50
	seriesConvergence  = 1e-20
	fSeriesConvergence = 1e-12
)

// NonCentralT is the non-central t distribution T'(delta, nu), evaluated by
// a Poisson-weighted series over central t distributions
// (Johnson, Kotz & Balakrishnan):
// F(t; nu, delta) = sum_j [e^{-d}/j! * d^j] * P(T_{nu+2j} <= t - delta),
// d = delta^2/2.
type NonCentralT struct {
	Delta float64
	Nu    float64
}

// NewNonCentralT validates the parameters.
func NewNonCentralT(delta, nu float64) (NonCentralT, error) {
	if nu <= 0 {
		return NonCentralT{}, errors.InvalidInputf("degrees of freedom must be positive, got %v", nu)
	}
	if math.IsInf(delta, 0) || math.IsNaN(delta) {
		return NonCentralT{}, errors.InvalidInput("non-centrality parameter must be finite")
	}
	return NonCentralT{Delta: delta, Nu: nu}, nil
}

// CDF evaluates the series with 200-term truncation.
func (d NonCentralT) CDF(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if math.IsInf(x, 1) {
		return 1
	}
	if math.IsInf(x, -1) {
		return 0
	}

	deltaSqHalf := d.Delta * d.Delta / 2
	expTerm := math.Exp(-deltaSqHalf)

	var cdf float64
	weight := expTerm // j = 0 term: e^{-d} * d^0 / 0!
	for j := 0; j < nonCentralTTerms; j++ {
		if j > 0 {
			weight *= deltaSqHalf / float64(j)
			if math.Abs(weight) < seriesConvergence {
				break
			}
		}
		adjustedNu := d.Nu + 2*float64(j)
		central := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: adjustedNu}
		cdf += weight * central.CDF(x-d.Delta)
	}
	return clamp01(cdf)
}

// Survival returns 1 - CDF.
func (d NonCentralT) Survival(x float64) float64 {
	return 1 - d.CDF(x)
}

// PowerTwoSided is P(|T'| > tCritical).
func (d NonCentralT) PowerTwoSided(tCritical float64) float64 {
	return clamp01(d.Survival(tCritical) + d.CDF(-tCritical))
}

// NonCentralF is the non-central F distribution F'(lambda, d1, d2):
// P(F' <= x) = sum_k [e^{-l/2} (l/2)^k / k!] * P(F_{d1+2k,d2} <= x*d1/(d1+2k)).
type NonCentralF struct {
	Lambda float64
	D1, D2 float64
}

// NewNonCentralF validates the parameters.
func NewNonCentralF(lambda, d1, d2 float64) (NonCentralF, error) {
	if d1 <= 0 || d2 <= 0 {
		return NonCentralF{}, errors.InvalidInput("degrees of freedom must be positive")
	}
	if lambda < 0 || math.IsInf(lambda, 0) || math.IsNaN(lambda) {
		return NonCentralF{}, errors.InvalidInput("non-centrality parameter must be finite and non-negative")
	}
	return NonCentralF{Lambda: lambda, D1: d1, D2: d2}, nil
}

// CDF evaluates the 50-term series.
func (d NonCentralF) CDF(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}

	var cdf float64
	term := math.Exp(-d.Lambda / 2)
	for k := 0; k < nonCentralSeriesN; k++ {
		if math.Abs(term) < fSeriesConvergence {
			break
		}
		adjustedD1 := d.D1 + 2*float64(k)
		scaledX := x * d.D1 / adjustedD1
		central := distuv.F{D1: adjustedD1, D2: d.D2}
		cdf += term * central.CDF(scaledX)
		term *= d.Lambda / (2 * float64(k+1))
	}
	return clamp01(cdf)
}

// Power is P(F' > fCritical).
func (d NonCentralF) Power(fCritical float64) float64 {
	return clamp01(1 - d.CDF(fCritical))
}

// NonCentralChiSquared is chi-squared with non-centrality lambda:
// P(X <= x) = sum_k [e^{-l/2} (l/2)^k / k!] * P(chi2_{df+2k} <= x).
type NonCentralChiSquared struct {
	Lambda float64
	DF     float64
}

// NewNonCentralChiSquared validates the parameters.
func NewNonCentralChiSquared(lambda, df float64) (NonCentralChiSquared, error) {
	if df <= 0 {
		return NonCentralChiSquared{}, errors.InvalidInput("degrees of freedom must be positive")
	}
	if lambda < 0 || math.IsInf(lambda, 0) || math.IsNaN(lambda) {
		return NonCentralChiSquared{}, errors.InvalidInput("non-centrality parameter must be finite and non-negative")
	}
	return NonCentralChiSquared{Lambda: lambda, DF: df}, nil
}

// CDF evaluates the 50-term series.
func (d NonCentralChiSquared) CDF(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 0
	}

	var cdf float64
	term := math.Exp(-d.Lambda / 2)
	for k := 0; k < nonCentralSeriesN; k++ {
		if math.Abs(term) < fSeriesConvergence {
			break
		}
		central := distuv.ChiSquared{K: d.DF + 2*float64(k)}
		cdf += term * central.CDF(x)
		term *= d.Lambda / (2 * float64(k+1))
	}
	return clamp01(cdf)
}

// Power is P(X > critical).
func (d NonCentralChiSquared) Power(critical float64) float64 {
	return clamp01(1 - d.CDF(critical))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
