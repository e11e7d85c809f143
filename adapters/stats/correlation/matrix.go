package correlation

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

// Matrix computes the symmetric correlation matrix for the given datasets
// using the selected method. Diagonal is exactly 1.
func Matrix(datasets [][]float64, method stats.CorrelationMethod, biweightTuning float64) ([][]float64, error) {
	k := len(datasets)
	if k < 2 {
		return nil, errors.InsufficientData("correlation matrix requires at least 2 datasets")
	}
	for i, d := range datasets {
		if len(d) < 2 {
			return nil, errors.InsufficientData("correlation matrix requires at least 2 observations per dataset")
		}
		if len(d) != len(datasets[0]) {
			return nil, errors.InvalidInputf("dataset %d length %d differs from %d", i, len(d), len(datasets[0]))
		}
	}

	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
		matrix[i][i] = 1.0
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r, err := pairwise(datasets[i], datasets[j], method, biweightTuning)
			if err != nil {
				return nil, errors.Wrapf(err, "correlating datasets %d and %d", i, j)
			}
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return matrix, nil
}

func pairwise(x, y []float64, method stats.CorrelationMethod, tuning float64) (float64, error) {
	switch method {
	case stats.CorrelationSpearman:
		return Spearman(x, y)
	case stats.CorrelationKendall:
		return KendallTauB(x, y)
	case stats.CorrelationBiweight:
		return BiweightMidcorrelation(x, y, tuning)
	default:
		return Pearson(x, y)
	}
}

// PartialMatrix computes partial correlations between each pair controlling
// for all other variables, via the precision matrix. Entries for a singular
// correlation matrix come back as 0.
func PartialMatrix(corr [][]float64) ([][]float64, error) {
	k := len(corr)
	if k < 3 {
		return nil, errors.InsufficientData("partial correlations require at least 3 variables")
	}

	dense := mat.NewDense(k, k, nil)
	for i := range corr {
		for j := range corr[i] {
			dense.Set(i, j, corr[i][j])
		}
	}

	var precision mat.Dense
	singular := precision.Inverse(dense) != nil

	partial := make([][]float64, k)
	for i := range partial {
		partial[i] = make([]float64, k)
		partial[i][i] = 1.0
	}
	if singular {
		return partial, nil
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			denom := math.Sqrt(precision.At(i, i) * precision.At(j, j))
			var r float64
			if denom != 0 {
				r = -precision.At(i, j) / denom
			}
			partial[i][j] = r
			partial[j][i] = r
		}
	}
	return partial, nil
}

// DistanceCorrelation computes the energy distance correlation between two
// series. Zero distance variance in either series yields 0.
func DistanceCorrelation(x, y []float64) (float64, error) {
	if err := checkPair(x, y); err != nil {
		return 0, err
	}
	ax := centeredDistances(x)
	ay := centeredDistances(y)

	dcov := distanceCovariance(ax, ay)
	dvarX := math.Sqrt(distanceCovariance(ax, ax))
	dvarY := math.Sqrt(distanceCovariance(ay, ay))
	if dvarX == 0 || dvarY == 0 {
		return 0, nil
	}
	return dcov / (dvarX * dvarY), nil
}

// centeredDistances builds the double-centered |xi-xj| distance matrix.
func centeredDistances(data []float64) [][]float64 {
	n := len(data)
	dist := make([][]float64, n)
	rowMeans := make([]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = math.Abs(data[i] - data[j])
			rowMeans[i] += dist[i][j]
		}
		rowMeans[i] /= float64(n)
	}
	var overall float64
	for _, m := range rowMeans {
		overall += m
	}
	overall /= float64(n)

	// Distances are symmetric, so column means equal row means
	centered := make([][]float64, n)
	for i := range centered {
		centered[i] = make([]float64, n)
		for j := range centered[i] {
			centered[i][j] = dist[i][j] - rowMeans[i] - rowMeans[j] + overall
		}
	}
	return centered
}

func distanceCovariance(a, b [][]float64) float64 {
	n := float64(len(a))
	var sum float64
	for i := range a {
		for j := range a[i] {
			sum += a[i][j] * b[i][j]
		}
	}
	return sum / (n * n)
}

// CrossCorrelation computes the correlation of x against y shifted by each
// lag in [-maxLag, maxLag], returned in lag order.
func CrossCorrelation(x, y []float64, maxLag int) ([]float64, error) {
	if err := checkPair(x, y); err != nil {
		return nil, err
	}
	if maxLag >= len(x)-1 {
		return nil, errors.InvalidInputf("max lag %d too large for series of length %d", maxLag, len(x))
	}
	out := make([]float64, 0, 2*maxLag+1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		var a, b []float64
		if lag < 0 {
			a = x[-lag:]
			b = y[:len(y)+lag]
		} else {
			a = x[:len(x)-lag]
			b = y[lag:]
		}
		r, err := Pearson(a, b)
		if err != nil {
			r = 0
		}
		out = append(out, r)
	}
	return out, nil
}
