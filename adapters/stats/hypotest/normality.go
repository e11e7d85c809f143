package hypotest

import (
	"math"
	"sort"

	montana "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

const shapiroMaxN = 5000

// NormalityBattery runs every normality test whose sample-size requirements
// the data meets, concurrently, keeping a fixed output order. Individual
// test failures drop that test from the battery rather than failing the
// whole run. Fewer than 3 unique values yields an empty battery.
func NormalityBattery(data []float64) ([]stats.NormalityTest, error) {
	if len(data) < 3 {
		return nil, errors.InsufficientData("normality tests require at least 3 observations")
	}
	if uniqueCount(data) < 3 {
		return nil, nil
	}

	n := len(data)
	battery := []struct {
		applies bool
		run     func([]float64) (stats.NormalityTest, error)
	}{
		{n <= shapiroMaxN, ShapiroWilk},
		{true, AndersonDarling},
		{true, JarqueBera},
		{n >= 4, Lilliefors},
		{n >= 8, DAgostinoPearson},
	}

	slots := make([]*stats.NormalityTest, len(battery))
	var group errgroup.Group
	for i, entry := range battery {
		if !entry.applies {
			continue
		}
		i, entry := i, entry
		group.Go(func() error {
			if r, err := entry.run(data); err == nil {
				slots[i] = &r
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var results []stats.NormalityTest
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}
	return results, nil
}

// ShapiroWilk computes the W statistic with Royston's (1995) weight
// approximation and p-value transformation. Valid for 3 <= n <= 5000.
func ShapiroWilk(data []float64) (stats.NormalityTest, error) {
	n := len(data)
	if n < 3 {
		return stats.NormalityTest{}, errors.InsufficientData("Shapiro-Wilk requires at least 3 observations")
	}
	if n > shapiroMaxN {
		return stats.NormalityTest{}, errors.UnsupportedConfig("Shapiro-Wilk is unreliable above 5000 observations")
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	if sorted[0] == sorted[n-1] {
		return stats.NormalityTest{}, errors.NumericDegenerate("Shapiro-Wilk undefined for constant data")
	}

	weights := shapiroWeights(n)

	var mean float64
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(n)

	var num, ss float64
	for i, v := range sorted {
		num += weights[i] * v
		ss += (v - mean) * (v - mean)
	}
	w := num * num / ss
	if w > 1 {
		w = 1
	}

	p := shapiroPValue(w, n)
	return stats.NormalityTest{
		TestName:  "shapiro_wilk",
		Statistic: w,
		PValue:    p,
		IsNormal:  p > 0.05,
	}, nil
}

// shapiroWeights builds the normalized a-vector from Blom scores with
// Royston's polynomial corrections to the two extreme weights.
func shapiroWeights(n int) []float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	m := make([]float64, n)
	var mss float64
	for i := range m {
		m[i] = norm.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		mss += m[i] * m[i]
	}

	weights := make([]float64, n)
	c := math.Sqrt(mss)
	for i := range weights {
		weights[i] = m[i] / c
	}
	if n <= 5 {
		return weights
	}

	u := 1 / math.Sqrt(float64(n))
	cn := weights[n-1]
	cn1 := weights[n-2]
	an := -2.706056*math.Pow(u, 5) + 4.434685*math.Pow(u, 4) - 2.071190*math.Pow(u, 3) - 0.147981*u*u + 0.221157*u + cn
	an1 := -3.582633*math.Pow(u, 5) + 5.682633*math.Pow(u, 4) - 1.752461*math.Pow(u, 3) - 0.293762*u*u + 0.042981*u + cn1

	phi := (mss - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
	scale := math.Sqrt(phi)

	weights[n-1] = an
	weights[n-2] = an1
	weights[0] = -an
	weights[1] = -an1
	for i := 2; i < n-2; i++ {
		weights[i] = m[i] / scale
	}
	return weights
}

// shapiroPValue applies Royston's normalizing transform of W.
func shapiroPValue(w float64, n int) float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	if n == 3 {
		// Exact for n=3.
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return clamp01(p)
	}

	nf := float64(n)
	var mu, sigma, g float64
	if n <= 11 {
		g = -2.273 + 0.459*nf
		mu = 0.5440 - 0.39978*nf + 0.025054*nf*nf - 0.0006714*nf*nf*nf
		sigma = math.Exp(1.3822 - 0.77857*nf + 0.062767*nf*nf - 0.0020322*nf*nf*nf)
		z := (-math.Log(g-math.Log(1-w)) - mu) / sigma
		return clamp01(1 - norm.CDF(z))
	}

	logN := math.Log(nf)
	mu = -1.5861 - 0.31082*logN - 0.083751*logN*logN + 0.0038915*logN*logN*logN
	sigma = math.Exp(-0.4803 - 0.082676*logN + 0.0030302*logN*logN)
	z := (math.Log(1-w) - mu) / sigma
	return clamp01(1 - norm.CDF(z))
}

// AndersonDarling computes A^2 against a normal fitted by sample mean and
// standard deviation, with the small-sample adjustment
// A* = A^2 (1 + 0.75/n + 2.25/n^2) and D'Agostino & Stephens p-value bands.
func AndersonDarling(data []float64) (stats.NormalityTest, error) {
	n := len(data)
	if n < 2 {
		return stats.NormalityTest{}, errors.InsufficientData("Anderson-Darling requires at least 2 observations")
	}

	mean, _ := montana.Mean(data)
	sd, _ := montana.StandardDeviationSample(data)
	if sd == 0 || math.IsNaN(sd) {
		return stats.NormalityTest{}, errors.NumericDegenerate("Anderson-Darling undefined for constant data")
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	nf := float64(n)
	var s float64
	for i, v := range sorted {
		z := (v - mean) / sd
		fi := norm.CDF(z)
		fi = clampProb(fi)
		fn := norm.CDF((sorted[n-1-i] - mean) / sd)
		fn = clampProb(fn)
		s += (2*float64(i+1) - 1) * (math.Log(fi) + math.Log(1-fn))
	}
	a2 := -nf - s/nf
	aStar := a2 * (1 + 0.75/nf + 2.25/(nf*nf))

	var p float64
	switch {
	case aStar >= 0.6:
		p = math.Exp(1.2937 - 5.709*aStar + 0.0186*aStar*aStar)
	case aStar >= 0.34:
		p = math.Exp(0.9177 - 4.279*aStar - 1.38*aStar*aStar)
	case aStar >= 0.2:
		p = 1 - math.Exp(-8.318+42.796*aStar-59.938*aStar*aStar)
	default:
		p = 1 - math.Exp(-13.436+101.14*aStar-223.73*aStar*aStar)
	}
	p = clamp01(p)

	return stats.NormalityTest{
		TestName:  "anderson_darling",
		Statistic: a2,
		PValue:    p,
		IsNormal:  p > 0.05,
	}, nil
}

// JarqueBera tests skewness and excess kurtosis jointly:
// JB = n/6 (S^2 + K^2/4), chi-squared with 2 df.
func JarqueBera(data []float64) (stats.NormalityTest, error) {
	n := len(data)
	if n < 2 {
		return stats.NormalityTest{}, errors.InsufficientData("Jarque-Bera requires at least 2 observations")
	}

	mean, _ := montana.Mean(data)
	nf := float64(n)
	var m2, m3, m4 float64
	for _, v := range data {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= nf
	m3 /= nf
	m4 /= nf
	if m2 == 0 {
		return stats.NormalityTest{}, errors.NumericDegenerate("Jarque-Bera undefined for constant data")
	}

	skew := m3 / math.Pow(m2, 1.5)
	exKurt := m4/(m2*m2) - 3
	jb := nf / 6 * (skew*skew + exKurt*exKurt/4)

	chi2 := distuv.ChiSquared{K: 2}
	p := 1 - chi2.CDF(jb)

	return stats.NormalityTest{
		TestName:  "jarque_bera",
		Statistic: jb,
		PValue:    p,
		IsNormal:  p > 0.05,
	}, nil
}

// Lilliefors is the Kolmogorov-Smirnov statistic against a normal with
// estimated parameters; the p-value uses the Dallal-Wilkinson (1986)
// approximation.
func Lilliefors(data []float64) (stats.NormalityTest, error) {
	n := len(data)
	if n < 4 {
		return stats.NormalityTest{}, errors.InsufficientData("Lilliefors requires at least 4 observations")
	}

	mean, _ := montana.Mean(data)
	sd, _ := montana.StandardDeviationSample(data)
	if sd == 0 || math.IsNaN(sd) {
		return stats.NormalityTest{}, errors.NumericDegenerate("Lilliefors undefined for constant data")
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	nf := float64(n)
	var d float64
	for i, v := range sorted {
		f := norm.CDF((v - mean) / sd)
		dPlus := float64(i+1)/nf - f
		dMinus := f - float64(i)/nf
		if dPlus > d {
			d = dPlus
		}
		if dMinus > d {
			d = dMinus
		}
	}

	p := lillieforsPValue(d, n)
	return stats.NormalityTest{
		TestName:  "lilliefors",
		Statistic: d,
		PValue:    p,
		IsNormal:  p > 0.05,
	}, nil
}

// lillieforsPValue follows Dallal & Wilkinson's approximation, extrapolating
// through the n=100 transformation for larger samples.
func lillieforsPValue(d float64, n int) float64 {
	nf := float64(n)
	if n > 100 {
		d *= math.Pow(nf/100, 0.49)
		nf = 100
	}
	p := math.Exp(-7.01256*d*d*(nf+2.78019) +
		2.99587*d*math.Sqrt(nf+2.78019) -
		0.122119 + 0.974598/math.Sqrt(nf) + 1.67997/nf)
	return clamp01(p)
}

// DAgostinoPearson is the K^2 omnibus test combining the D'Agostino skewness
// transform Z1 with the Anscombe-Glynn kurtosis transform Z2.
func DAgostinoPearson(data []float64) (stats.NormalityTest, error) {
	if len(data) < 8 {
		return stats.NormalityTest{}, errors.InsufficientData("D'Agostino-Pearson requires at least 8 observations")
	}
	n := float64(len(data))

	mean, _ := montana.Mean(data)
	sd, _ := montana.StandardDeviationSample(data)
	if sd == 0 || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return stats.NormalityTest{}, errors.NumericDegenerate("D'Agostino-Pearson undefined for constant data")
	}

	g1 := sampleSkewness(data, mean, sd)
	g2 := sampleKurtosis(data, mean, sd)

	// Skewness transform to Z1
	y := g1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := (3 * (n*n + 27*n - 70) * (n + 1) * (n + 3)) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	if w2 <= 0 {
		return stats.NormalityTest{}, errors.NumericDegenerate("skewness transform degenerate")
	}
	delta := 1 / math.Sqrt(math.Log(math.Sqrt(w2)))
	alpha := math.Sqrt(2 / (w2 - 1))
	ay := y / alpha
	z1 := delta * math.Log(ay+math.Sqrt(ay*ay+1))

	// Kurtosis transform to Z2 (Anscombe-Glynn), using total kurtosis
	e := 3 * (n - 1) / (n + 1)
	v := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	if v <= 0 {
		return stats.NormalityTest{}, errors.NumericDegenerate("kurtosis variance degenerate")
	}
	x := (g2 - e) / math.Sqrt(v)

	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	if a <= 4 {
		return stats.NormalityTest{}, errors.NumericDegenerate("kurtosis transform degenerate")
	}

	term := 1 - 2/(9*a)
	den := 1 + x*math.Sqrt(2/(a-4))
	if den <= 0 {
		// Invalid fractional power; the sample is decisively non-normal.
		return stats.NormalityTest{
			TestName:  "dagostino_pearson",
			Statistic: math.Inf(1),
			PValue:    0,
			IsNormal:  false,
		}, nil
	}
	z2 := (term - math.Pow((1-2/a)/den, 1.0/3.0)) / math.Sqrt(2/(9*a))

	k2 := z1*z1 + z2*z2
	chi2 := distuv.ChiSquared{K: 2}
	p := 1 - chi2.CDF(k2)

	return stats.NormalityTest{
		TestName:  "dagostino_pearson",
		Statistic: k2,
		PValue:    p,
		IsNormal:  p > 0.05,
	}, nil
}

// sampleSkewness is the biased moment estimator of skewness.
func sampleSkewness(data []float64, mean, sd float64) float64 {
	var sum float64
	for _, v := range data {
		z := (v - mean) / sd
		sum += z * z * z
	}
	return sum / float64(len(data))
}

// sampleKurtosis is the total (not excess) sample kurtosis, bias-corrected
// for n > 3.
func sampleKurtosis(data []float64, mean, sd float64) float64 {
	n := float64(len(data))
	var sum float64
	for _, v := range data {
		z := (v - mean) / sd
		sum += z * z * z * z
	}
	kurt := sum / n
	if n > 3 {
		correction := (n - 1) / ((n - 2) * (n - 3))
		kurt = kurt*correction + 6/(n+1)
	}
	return kurt
}

func uniqueCount(data []float64) int {
	seen := make(map[float64]struct{}, len(data))
	for _, v := range data {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func clampProb(p float64) float64 {
	const eps = 1e-300
	if p < eps {
		return eps
	}
	if p > 1-1e-16 {
		return 1 - 1e-16
	}
	return p
}
