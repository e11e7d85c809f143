package timeseries

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

// ACF computes the autocorrelation function for lags 1..maxLag using the
// standard biased estimator.
func ACF(data []float64, maxLag int) ([]float64, error) {
	if maxLag < 1 {
		return nil, errors.InvalidInputf("max lag must be positive, got %d", maxLag)
	}
	if len(data) < maxLag+1 {
		return nil, errors.InsufficientData("series too short for requested lag")
	}

	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	var variance float64
	for _, v := range data {
		variance += (v - mean) * (v - mean)
	}
	if variance == 0 {
		return nil, errors.NumericDegenerate("autocorrelation undefined for constant series")
	}

	acf := make([]float64, maxLag)
	for lag := 1; lag <= maxLag; lag++ {
		var cov float64
		for i := lag; i < len(data); i++ {
			cov += (data[i] - mean) * (data[i-lag] - mean)
		}
		acf[lag-1] = cov / variance
	}
	return acf, nil
}

// LjungBox tests the series for joint autocorrelation up to the given lag
// count: Q = n(n+2) * sum(rho_k^2 / (n-k)).
func LjungBox(data []float64, lags int) (*stats.LjungBoxTest, error) {
	if len(data) < 2 || lags < 1 {
		return nil, errors.InsufficientData("Ljung-Box test requires at least 2 observations and 1 lag")
	}
	m := lags
	if m > len(data)-1 {
		m = len(data) - 1
	}
	acf, err := ACF(data, m)
	if err != nil {
		return nil, err
	}

	n := float64(len(data))
	var q float64
	for k, rho := range acf {
		q += rho * rho / (n - float64(k+1))
	}
	q *= n * (n + 2)

	chi2 := distuv.ChiSquared{K: float64(m)}
	p := 1 - chi2.CDF(q)

	return &stats.LjungBoxTest{
		Statistic: q,
		PValue:    p,
		Lags:      m,
	}, nil
}

// TrendTest fits an OLS line over the index and tests slope significance at
// alpha 0.05.
func TrendTest(data []float64) (*stats.TrendTest, error) {
	if len(data) < 3 {
		return nil, errors.InsufficientData("trend test requires at least 3 observations")
	}
	n := float64(len(data))

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range data {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return nil, errors.NumericDegenerate("degenerate index range for trend test")
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	var ssRes float64
	for i, y := range data {
		fit := intercept + slope*float64(i)
		ssRes += (y - fit) * (y - fit)
	}
	seSlope := math.Sqrt(ssRes/(n-2)) / math.Sqrt(sumX2-sumX*sumX/n)
	if seSlope == 0 {
		// Perfect linear fit: slope significance is exact
		return &stats.TrendTest{
			Slope:     slope,
			Statistic: math.Inf(1),
			PValue:    0,
			HasTrend:  slope != 0,
		}, nil
	}

	t := slope / seSlope
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}
	p := 2 * (1 - tDist.CDF(math.Abs(t)))

	return &stats.TrendTest{
		Slope:     slope,
		Statistic: t,
		PValue:    p,
		HasTrend:  p < 0.05,
	}, nil
}
