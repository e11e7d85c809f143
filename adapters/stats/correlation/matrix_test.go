package correlation

import (
	"math"
	"testing"

	"anastat/domain/stats"
)

func TestMatrix_SymmetricWithUnitDiagonal(t *testing.T) {
	datasets := [][]float64{
		{1, 2, 3, 4, 5, 6},
		{2, 1, 4, 3, 6, 5},
		{6, 5, 4, 3, 2, 1},
	}
	for _, method := range []stats.CorrelationMethod{
		stats.CorrelationPearson,
		stats.CorrelationSpearman,
		stats.CorrelationKendall,
		stats.CorrelationBiweight,
	} {
		m, err := Matrix(datasets, method, 9.0)
		if err != nil {
			t.Fatalf("Matrix(%s) failed: %v", method, err)
		}
		for i := range m {
			if math.Abs(m[i][i]-1) > 1e-12 {
				t.Errorf("%s: diagonal[%d] = %v, want 1", method, i, m[i][i])
			}
			for j := range m {
				if math.Abs(m[i][j]-m[j][i]) > 1e-12 {
					t.Errorf("%s: matrix not symmetric at (%d,%d)", method, i, j)
				}
				if m[i][j] < -1-1e-12 || m[i][j] > 1+1e-12 {
					t.Errorf("%s: coefficient out of [-1,1]: %v", method, m[i][j])
				}
			}
		}
	}
}

func TestMatrix_SinglePointFails(t *testing.T) {
	if _, err := Matrix([][]float64{{1}, {2}}, stats.CorrelationPearson, 9.0); err == nil {
		t.Error("Expected error for single-observation datasets")
	}
}

func TestPartialMatrix_ThreeVariables(t *testing.T) {
	// z drives both x and y; partial correlation of x,y given z should be
	// much weaker than the raw correlation.
	n := 60
	z := make([]float64, n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		z[i] = float64(i)
		x[i] = z[i] + math.Sin(float64(i)*0.7)
		y[i] = z[i] + math.Cos(float64(i)*1.3)
	}
	raw, err := Matrix([][]float64{x, y, z}, stats.CorrelationPearson, 9.0)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	partial, err := PartialMatrix(raw)
	if err != nil {
		t.Fatalf("PartialMatrix failed: %v", err)
	}
	if math.Abs(partial[0][1]) >= math.Abs(raw[0][1]) {
		t.Errorf("Partial correlation %v should shrink below raw %v once z is controlled",
			partial[0][1], raw[0][1])
	}
	for i := range partial {
		if math.Abs(partial[i][i]-1) > 1e-9 {
			t.Errorf("Partial diagonal[%d] = %v, want 1", i, partial[i][i])
		}
	}
}

func TestDistanceCorrelation_DetectsNonlinearDependence(t *testing.T) {
	n := 50
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = (float64(i) - 24.5) / 5 // symmetric around zero
		y[i] = x[i] * x[i]             // dependent but linearly uncorrelated
	}
	dc, err := DistanceCorrelation(x, y)
	if err != nil {
		t.Fatalf("DistanceCorrelation failed: %v", err)
	}
	if dc < 0.2 {
		t.Errorf("Expected distance correlation to detect quadratic dependence, got %v", dc)
	}
	pearson, err := Pearson(x, y)
	if err != nil {
		t.Fatalf("Pearson failed: %v", err)
	}
	if math.Abs(pearson) > 0.2 {
		t.Fatalf("Fixture broken: Pearson should be near 0, got %v", pearson)
	}
}

func TestCrossCorrelation_FindsLag(t *testing.T) {
	n := 80
	lag := 3
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.5)
	}
	y := make([]float64, n)
	for i := range y {
		if i >= lag {
			y[i] = x[i-lag]
		}
	}
	cc, err := CrossCorrelation(x, y, 6)
	if err != nil {
		t.Fatalf("CrossCorrelation failed: %v", err)
	}
	// cc spans lags -6..6; the peak should sit at +3
	best := 0
	bestVal := math.Inf(-1)
	for i, v := range cc {
		if v > bestVal {
			bestVal = v
			best = i - 6
		}
	}
	if best != lag {
		t.Errorf("Expected peak cross-correlation at lag %d, got %d", lag, best)
	}
}
