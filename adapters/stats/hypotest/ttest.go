package hypotest

import (
	"math"

	montana "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

// OneSampleT tests the sample mean against mu0 with a two-sided alternative.
func OneSampleT(data []float64, mu0, alpha float64) (stats.HypothesisTest, error) {
	n := len(data)
	if n < 2 {
		return stats.HypothesisTest{}, errors.InsufficientData("one-sample t-test requires at least 2 observations")
	}

	mean, _ := montana.Mean(data)
	sd, _ := montana.StandardDeviationSample(data)
	if sd == 0 {
		return stats.HypothesisTest{}, errors.NumericDegenerate("one-sample t-test undefined for constant data")
	}

	se := sd / math.Sqrt(float64(n))
	t := (mean - mu0) / se
	df := float64(n - 1)

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - tDist.CDF(math.Abs(t)))

	return stats.HypothesisTest{
		TestName:  "one_sample_t",
		Statistic: t,
		PValue:    p,
		DF:        df,
		Reject:    p < alpha,
		Alpha:     alpha,
	}, nil
}

// WelchT is the two-sample t-test without the equal-variance assumption,
// using the Welch-Satterthwaite degrees of freedom.
func WelchT(a, b []float64, alpha float64) (stats.HypothesisTest, error) {
	if len(a) < 2 || len(b) < 2 {
		return stats.HypothesisTest{}, errors.InsufficientData("two-sample t-test requires at least 2 observations per group")
	}

	meanA, _ := montana.Mean(a)
	meanB, _ := montana.Mean(b)
	varA, _ := montana.VarS(a)
	varB, _ := montana.VarS(b)

	na := float64(len(a))
	nb := float64(len(b))
	seSq := varA/na + varB/nb
	if seSq == 0 {
		return stats.HypothesisTest{}, errors.NumericDegenerate("two-sample t-test undefined when both groups are constant")
	}

	t := (meanA - meanB) / math.Sqrt(seSq)
	df := seSq * seSq / ((varA/na)*(varA/na)/(na-1) + (varB/nb)*(varB/nb)/(nb-1))

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - tDist.CDF(math.Abs(t)))

	return stats.HypothesisTest{
		TestName:  "welch_t",
		Statistic: t,
		PValue:    p,
		DF:        df,
		Reject:    p < alpha,
		Alpha:     alpha,
	}, nil
}

// PairedT tests whether paired differences have zero mean.
func PairedT(a, b []float64, alpha float64) (stats.HypothesisTest, error) {
	if len(a) != len(b) {
		return stats.HypothesisTest{}, errors.InvalidInput("paired t-test requires equal-length samples")
	}
	diffs := make([]float64, len(a))
	for i := range a {
		diffs[i] = a[i] - b[i]
	}
	result, err := OneSampleT(diffs, 0, alpha)
	if err != nil {
		return stats.HypothesisTest{}, err
	}
	result.TestName = "paired_t"
	return result, nil
}

// VarianceF tests equality of variances with the two-sided F ratio; the
// larger variance goes in the numerator.
func VarianceF(a, b []float64, alpha float64) (stats.HypothesisTest, error) {
	if len(a) < 2 || len(b) < 2 {
		return stats.HypothesisTest{}, errors.InsufficientData("variance F-test requires at least 2 observations per group")
	}

	varA, _ := montana.VarS(a)
	varB, _ := montana.VarS(b)
	if varA == 0 && varB == 0 {
		return stats.HypothesisTest{}, errors.NumericDegenerate("variance F-test undefined when both groups are constant")
	}

	num, den := varA, varB
	d1, d2 := float64(len(a)-1), float64(len(b)-1)
	if varB > varA {
		num, den = varB, varA
		d1, d2 = d2, d1
	}
	if den == 0 {
		return stats.HypothesisTest{
			TestName:  "variance_f",
			Statistic: math.Inf(1),
			PValue:    0,
			DF:        d1,
			Reject:    true,
			Alpha:     alpha,
		}, nil
	}

	f := num / den
	fDist := distuv.F{D1: d1, D2: d2}
	p := 2 * (1 - fDist.CDF(f))
	p = clamp01(p)

	return stats.HypothesisTest{
		TestName:  "variance_f",
		Statistic: f,
		PValue:    p,
		DF:        d1,
		Reject:    p < alpha,
		Alpha:     alpha,
	}, nil
}
