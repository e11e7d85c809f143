package reliability

import (
	"math"
	"testing"

	"anastat/internal/errors"
	"anastat/internal/testkit"
)

// correlatedItems builds k items sharing a common factor plus small
// independent noise, the textbook high-reliability shape.
func correlatedItems(k, n int) [][]float64 {
	factor := testkit.GenerateNormalData(n, 0, 1, 11)
	items := make([][]float64, k)
	for j := range items {
		noise := testkit.GenerateNormalData(n, 0, 0.3, int64(100+j))
		item := make([]float64, n)
		for i := range item {
			item[i] = factor[i] + noise[i]
		}
		items[j] = item
	}
	return items
}

func TestAnalyze_HighConsistencyScale(t *testing.T) {
	items := correlatedItems(4, 100)
	result, err := NewEngine().Analyze(items)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.CronbachAlpha < 0.8 {
		t.Errorf("Common-factor items should give high alpha, got %v", result.CronbachAlpha)
	}
	if result.McDonaldOmega < 0.8 {
		t.Errorf("Common-factor items should give high omega, got %v", result.McDonaldOmega)
	}
	if result.AvgInterItemCorr < 0.6 {
		t.Errorf("Expected strong inter-item correlation, got %v", result.AvgInterItemCorr)
	}
	if len(result.ItemTotalCorrelations) != 4 {
		t.Fatalf("Expected 4 item-total correlations, got %d", len(result.ItemTotalCorrelations))
	}
	for i, r := range result.ItemTotalCorrelations {
		if r < 0.5 {
			t.Errorf("Item %d total correlation too low: %v", i, r)
		}
	}
}

func TestAnalyze_IndependentItemsLowAlpha(t *testing.T) {
	items := [][]float64{
		testkit.GenerateNormalData(100, 0, 1, 1),
		testkit.GenerateNormalData(100, 0, 1, 2),
		testkit.GenerateNormalData(100, 0, 1, 3),
	}
	result, err := NewEngine().Analyze(items)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.CronbachAlpha > 0.5 {
		t.Errorf("Independent items should give low alpha, got %v", result.CronbachAlpha)
	}
}

func TestAnalyze_InputValidation(t *testing.T) {
	if _, err := NewEngine().Analyze([][]float64{{1, 2, 3}}); !errors.HasCode(err, errors.CodeInsufficientData) {
		t.Errorf("Expected insufficient data for one item, got %v", err)
	}
	if _, err := NewEngine().Analyze([][]float64{{1, 2, 3}, {1, 2}}); !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Errorf("Expected invalid input for ragged items, got %v", err)
	}
}

func TestCronbachAlpha_Bounds(t *testing.T) {
	// Proportional items: alpha must land in [0, 1] and be high
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{2, 4, 6, 8, 10, 12}
	alpha, err := CronbachAlpha([][]float64{a, b})
	if err != nil {
		t.Fatalf("CronbachAlpha failed: %v", err)
	}
	if alpha < 0 || alpha > 1 {
		t.Errorf("Alpha out of [0,1]: %v", alpha)
	}
	if alpha < 0.8 {
		t.Errorf("Perfectly proportional items should give high alpha, got %v", alpha)
	}
}

func TestMcDonaldOmega_PerfectCorrelation(t *testing.T) {
	corr := [][]float64{
		{1, 1, 1},
		{1, 1, 1},
		{1, 1, 1},
	}
	omega, err := McDonaldOmega(corr)
	if err != nil {
		t.Fatalf("McDonaldOmega failed: %v", err)
	}
	if math.Abs(omega-1) > 1e-9 {
		t.Errorf("Unit correlation matrix should give omega=1, got %v", omega)
	}
}
