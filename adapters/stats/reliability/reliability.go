package reliability

import (
	"log"
	"math"

	montana "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"anastat/adapters/stats/correlation"
	"anastat/domain/stats"
	"anastat/internal/errors"
)

// Engine computes internal-consistency measures treating each dataset as one
// scale item and each index as one respondent.
type Engine struct{}

// NewEngine creates a reliability engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze requires at least 2 equal-length items with at least 2
// observations each.
func (e *Engine) Analyze(items [][]float64) (*stats.ReliabilityAnalysis, error) {
	if len(items) < 2 {
		return nil, errors.InsufficientData("reliability analysis requires at least 2 items")
	}
	n := len(items[0])
	if n < 2 {
		return nil, errors.InsufficientData("reliability analysis requires at least 2 observations per item")
	}
	for _, item := range items {
		if len(item) != n {
			return nil, errors.InvalidInput("reliability analysis requires equal-length items")
		}
	}

	alpha, err := CronbachAlpha(items)
	if err != nil {
		return nil, err
	}

	result := &stats.ReliabilityAnalysis{
		CronbachAlpha:         alpha,
		ItemTotalCorrelations: itemTotalCorrelations(items),
	}

	corrMatrix, avg, err := interItemCorrelation(items)
	if err != nil {
		log.Printf("[Reliability] inter-item correlations unavailable: %v", err)
	} else {
		result.AvgInterItemCorr = avg
		if omega, err := McDonaldOmega(corrMatrix); err == nil {
			result.McDonaldOmega = omega
		} else {
			log.Printf("[Reliability] omega unavailable: %v", err)
		}
	}
	return result, nil
}

// CronbachAlpha is k/(k-1) * (1 - sum(item variances)/variance(total)),
// clamped to [0, 1].
func CronbachAlpha(items [][]float64) (float64, error) {
	k := len(items)
	n := len(items[0])

	totals := make([]float64, n)
	var sumItemVar float64
	for _, item := range items {
		v, _ := montana.VarS(item)
		sumItemVar += v
		for i, x := range item {
			totals[i] += x
		}
	}
	totalVar, _ := montana.VarS(totals)
	if totalVar == 0 {
		return 0, errors.NumericDegenerate("total score has zero variance")
	}

	alpha := float64(k) / float64(k-1) * (1 - sumItemVar/totalVar)
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return alpha, nil
}

// itemTotalCorrelations correlates each item with the total score excluding
// that item. Degenerate pairs record zero.
func itemTotalCorrelations(items [][]float64) []float64 {
	n := len(items[0])
	totals := make([]float64, n)
	for _, item := range items {
		for i, x := range item {
			totals[i] += x
		}
	}

	corrs := make([]float64, len(items))
	rest := make([]float64, n)
	for j, item := range items {
		for i := range rest {
			rest[i] = totals[i] - item[i]
		}
		r, err := correlation.Pearson(item, rest)
		if err != nil {
			log.Printf("[Reliability] item %d total correlation degenerate: %v", j, err)
			continue
		}
		corrs[j] = r
	}
	return corrs
}

// interItemCorrelation builds the item correlation matrix and its
// off-diagonal average.
func interItemCorrelation(items [][]float64) ([][]float64, float64, error) {
	k := len(items)
	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
		matrix[i][i] = 1
	}

	var sum float64
	count := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r, err := correlation.Pearson(items[i], items[j])
			if err != nil {
				return nil, 0, err
			}
			matrix[i][j] = r
			matrix[j][i] = r
			sum += r
			count++
		}
	}
	return matrix, sum / float64(count), nil
}

// McDonaldOmega estimates omega-total from the loadings of the first
// principal component of the correlation matrix:
// omega = (sum |l|)^2 / ((sum |l|)^2 + k - sum l^2), clamped to [0, 1].
func McDonaldOmega(corrMatrix [][]float64) (float64, error) {
	k := len(corrMatrix)
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sym.SetSym(i, j, corrMatrix[i][j])
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return 0, errors.NumericDegenerate("eigendecomposition of correlation matrix failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// EigenSym returns ascending eigenvalues; the last is the first
	// principal component.
	lead := k - 1
	eigval := values[lead]
	if eigval <= 0 {
		return 0, errors.NumericDegenerate("leading eigenvalue is non-positive")
	}

	var sumAbs, sumSq float64
	scale := math.Sqrt(eigval)
	for i := 0; i < k; i++ {
		loading := vectors.At(i, lead) * scale
		sumAbs += math.Abs(loading)
		sumSq += loading * loading
	}

	denom := sumAbs*sumAbs + float64(k) - sumSq
	if denom <= 0 {
		return 0, errors.NumericDegenerate("degenerate omega denominator")
	}
	omega := sumAbs * sumAbs / denom
	if omega < 0 {
		omega = 0
	}
	if omega > 1 {
		omega = 1
	}
	return omega, nil
}
