package hypotest

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"anastat/internal/errors"
)

const (
	sampleSizeStart = 10
	sampleSizeMax   = 1000
)

// PowerOneSampleT is the achieved power of a two-sided one-sample t-test
// detecting a mean shift of effect (raw units) with noise sigma at size n.
// Power comes from the non-central t distribution with ncp = effect/(sigma/sqrt(n)).
func PowerOneSampleT(effect, sigma float64, n int, alpha float64) (float64, error) {
	if n < 2 {
		return 0, errors.InsufficientData("power analysis requires n >= 2")
	}
	if sigma <= 0 {
		return 0, errors.InvalidInput("sigma must be positive")
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, errors.InvalidInputf("alpha must be in (0, 1), got %v", alpha)
	}

	df := float64(n - 1)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	tCritical := tDist.Quantile(1 - alpha/2)

	ncp := effect / (sigma / math.Sqrt(float64(n)))
	nct, err := NewNonCentralT(ncp, df)
	if err != nil {
		return 0, err
	}
	return nct.PowerTwoSided(tCritical), nil
}

// PowerTwoSampleT is the achieved power of a two-sided two-sample t-test.
// With pooled=true the classic equal-variance formulation is used; otherwise
// Welch's standard error and degrees of freedom.
func PowerTwoSampleT(effect, sigma1, sigma2 float64, n1, n2 int, alpha float64, pooled bool) (float64, error) {
	if n1 < 2 || n2 < 2 {
		return 0, errors.InsufficientData("power analysis requires n >= 2 per group")
	}
	if sigma1 <= 0 || sigma2 <= 0 {
		return 0, errors.InvalidInput("sigmas must be positive")
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, errors.InvalidInputf("alpha must be in (0, 1), got %v", alpha)
	}

	f1 := float64(n1)
	f2 := float64(n2)
	var se, df float64
	if pooled {
		pooledVar := ((f1-1)*sigma1*sigma1 + (f2-1)*sigma2*sigma2) / (f1 + f2 - 2)
		se = math.Sqrt(pooledVar * (1/f1 + 1/f2))
		df = f1 + f2 - 2
	} else {
		v1 := sigma1 * sigma1 / f1
		v2 := sigma2 * sigma2 / f2
		se = math.Sqrt(v1 + v2)
		df = (v1 + v2) * (v1 + v2) / (v1*v1/(f1-1) + v2*v2/(f2-1))
	}
	if se == 0 {
		return 0, errors.NumericDegenerate("degenerate standard error in power analysis")
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	tCritical := tDist.Quantile(1 - alpha/2)

	nct, err := NewNonCentralT(effect/se, df)
	if err != nil {
		return 0, err
	}
	return nct.PowerTwoSided(tCritical), nil
}

// SampleSizeOneSampleT finds the smallest n achieving the target power for a
// two-sided one-sample t-test, scanning upward from n=10 with a 1000-step cap.
func SampleSizeOneSampleT(effect, sigma, alpha, targetPower float64) (int, error) {
	if targetPower <= 0 || targetPower >= 1 {
		return 0, errors.InvalidInputf("target power must be in (0, 1), got %v", targetPower)
	}
	if effect == 0 {
		return 0, errors.InvalidInput("zero effect size can never reach target power")
	}

	n := sampleSizeStart
	for iter := 0; iter < sampleSizeMax; iter++ {
		power, err := PowerOneSampleT(effect, sigma, n, alpha)
		if err != nil {
			return 0, err
		}
		if power >= targetPower {
			return n, nil
		}
		n++
	}
	return 0, errors.UnsupportedConfig("target power not reachable within the sample-size search cap")
}
