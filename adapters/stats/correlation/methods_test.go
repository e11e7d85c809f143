package correlation

import (
	"math"
	"testing"
)

func TestPearson_PerfectCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}

	r, err := Pearson(x, []float64{2, 4, 6, 8, 10})
	if err != nil {
		t.Fatalf("Pearson failed: %v", err)
	}
	if math.Abs(r-1) > 1e-12 {
		t.Errorf("Expected r=1 for perfect positive relation, got %v", r)
	}

	r, err = Pearson(x, []float64{10, 8, 6, 4, 2})
	if err != nil {
		t.Fatalf("Pearson failed: %v", err)
	}
	if math.Abs(r+1) > 1e-12 {
		t.Errorf("Expected r=-1 for perfect negative relation, got %v", r)
	}
}

func TestPearson_ConstantInput(t *testing.T) {
	if _, err := Pearson([]float64{3, 3, 3, 3}, []float64{1, 2, 3, 4}); err == nil {
		t.Error("Expected error for zero-variance input")
	}
}

func TestSpearman_MonotoneNonlinear(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = math.Exp(v) // monotone but far from linear
	}
	rho, err := Spearman(x, y)
	if err != nil {
		t.Fatalf("Spearman failed: %v", err)
	}
	if math.Abs(rho-1) > 1e-12 {
		t.Errorf("Expected rho=1 for monotone relation, got %v", rho)
	}
}

func TestRanks_TiesGetAverageRank(t *testing.T) {
	ranks := Ranks([]float64{10, 20, 20, 30})
	want := []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if math.Abs(ranks[i]-want[i]) > 1e-12 {
			t.Errorf("rank[%d] = %v, want %v", i, ranks[i], want[i])
		}
	}
}

func TestKendallTauB_IdenticalWithTies(t *testing.T) {
	x := []float64{1, 2, 2, 3, 4, 4}
	tau, err := KendallTauB(x, x)
	if err != nil {
		t.Fatalf("KendallTauB failed: %v", err)
	}
	if math.Abs(tau-1) > 1e-12 {
		t.Errorf("Expected tau-b = 1 for identical tied data, got %v", tau)
	}
}

func TestKendallTauB_Reversed(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{5, 4, 3, 2, 1}
	tau, err := KendallTauB(x, y)
	if err != nil {
		t.Fatalf("KendallTauB failed: %v", err)
	}
	if math.Abs(tau+1) > 1e-12 {
		t.Errorf("Expected tau-b = -1 for reversed order, got %v", tau)
	}
}

func TestBiweightMidcorrelation_ResistsOutlier(t *testing.T) {
	n := 50
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		y[i] = 2 * float64(i)
	}
	y[n-1] = -1000 // single gross outlier

	pearson, err := Pearson(x, y)
	if err != nil {
		t.Fatalf("Pearson failed: %v", err)
	}
	biweight, err := BiweightMidcorrelation(x, y, 9.0)
	if err != nil {
		t.Fatalf("BiweightMidcorrelation failed: %v", err)
	}
	if biweight <= pearson {
		t.Errorf("Expected biweight (%v) to resist the outlier better than Pearson (%v)", biweight, pearson)
	}
	if biweight < 0.9 {
		t.Errorf("Expected biweight near 1 despite outlier, got %v", biweight)
	}
}
