package correlation

import (
	"context"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"anastat/domain/stats"
	"anastat/ports"
)

// permutationCutoff is the sample size above which the asymptotic p-value is
// used instead of a permutation test.
const permutationCutoff = 50

// SignificanceTester computes p-values for correlation coefficients, by
// permutation for small samples and asymptotically above the cutoff.
type SignificanceTester struct {
	rngPort      ports.RNGPort
	permutations int
	numWorkers   int
}

// NewSignificanceTester creates a tester with the given permutation budget.
func NewSignificanceTester(rngPort ports.RNGPort, permutations int) *SignificanceTester {
	if permutations < 1 {
		permutations = 5000
	}
	return &SignificanceTester{
		rngPort:      rngPort,
		permutations: permutations,
		numWorkers:   4,
	}
}

// PValue returns the two-tailed p-value for an observed coefficient, plus
// whether permutation was used.
func (st *SignificanceTester) PValue(ctx context.Context, x, y []float64, observed float64, method stats.CorrelationMethod, tuning float64, seed int64) (float64, bool, error) {
	if len(x) <= permutationCutoff {
		p, err := st.permutationPValue(ctx, x, y, observed, method, tuning, seed)
		return p, true, err
	}
	return asymptoticPValue(observed, len(x), method), false, nil
}

// permutationPValue shuffles x against fixed y and counts coefficients at
// least as extreme as the observed one. Add-one smoothing keeps the p-value
// strictly positive: p = (count+1)/(n_perm+1).
func (st *SignificanceTester) permutationPValue(ctx context.Context, x, y []float64, observed float64, method stats.CorrelationMethod, tuning float64, seed int64) (float64, error) {
	numWorkers := st.numWorkers
	if st.permutations < 100 {
		numWorkers = 1
	}

	workChan := make(chan int, st.permutations)
	resultChan := make(chan float64, st.permutations)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			// One seeded stream per worker so the run is seed-influenced
			rng, err := st.rngPort.SeededStream(ctx, "correlation-permutation", seed+int64(worker))
			if err != nil {
				return
			}
			shuffled := make([]float64, len(x))
			for range workChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				copy(shuffled, x)
				for i := len(shuffled) - 1; i > 0; i-- {
					j := rng.Intn(i + 1)
					shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
				}
				r, err := pairwise(shuffled, y, method, tuning)
				if err != nil {
					r = 0
				}
				resultChan <- r
			}
		}(w)
	}

	go func() {
		for i := 0; i < st.permutations; i++ {
			workChan <- i
		}
		close(workChan)
	}()
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	count := 0
	total := 0
	for r := range resultChan {
		total++
		if math.Abs(r) >= math.Abs(observed) {
			count++
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return float64(count+1) / float64(total+1), nil
}

// asymptoticPValue uses the t reference distribution for Pearson-family
// coefficients and the normal approximation for Kendall's tau.
func asymptoticPValue(r float64, n int, method stats.CorrelationMethod) float64 {
	if n < 3 {
		return 1.0
	}
	if method == stats.CorrelationKendall {
		// z = 3*tau*sqrt(n(n-1)) / sqrt(2(2n+5))
		nf := float64(n)
		z := 3 * r * math.Sqrt(nf*(nf-1)) / math.Sqrt(2*(2*nf+5))
		norm := distuv.Normal{Mu: 0, Sigma: 1}
		return 2 * (1 - norm.CDF(math.Abs(z)))
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - tDist.CDF(math.Abs(t)))
}
