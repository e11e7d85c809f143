package bootstrap

import (
	"context"
	"testing"

	montana "github.com/montanaflynn/stats"

	"anastat/internal/testkit"
)

func meanStat(data []float64) float64 {
	m, _ := montana.Mean(data)
	return m
}

func TestCI_ContainsObservedMean(t *testing.T) {
	ctx := context.Background()
	data := testkit.GenerateNormalData(200, 10, 2, 7)
	engine := NewEngine(testkit.NewRNGAdapter(), 1000)

	result, err := engine.CI(ctx, data, meanStat, "mean", 0.95, 42)
	if err != nil {
		t.Fatalf("CI failed: %v", err)
	}
	if result.Resamples != 1000 {
		t.Errorf("Expected 1000 resamples, got %d", result.Resamples)
	}
	if result.CI.Lower > result.Observed || result.CI.Upper < result.Observed {
		t.Errorf("Percentile interval [%v, %v] excludes observed %v",
			result.CI.Lower, result.CI.Upper, result.Observed)
	}
	if result.BCa.Lower >= result.BCa.Upper {
		t.Errorf("Degenerate BCa interval [%v, %v]", result.BCa.Lower, result.BCa.Upper)
	}
	if result.StandardError <= 0 {
		t.Errorf("Expected positive standard error, got %v", result.StandardError)
	}
	if result.UsedBlocks {
		t.Error("Block resampling should not trigger below the cutoff")
	}
}

func TestCI_WidthGrowsWithConfidence(t *testing.T) {
	ctx := context.Background()
	data := testkit.GenerateNormalData(150, 0, 1, 11)
	engine := NewEngine(testkit.NewRNGAdapter(), 2000)

	narrow, err := engine.CI(ctx, data, meanStat, "mean", 0.80, 42)
	if err != nil {
		t.Fatalf("CI at 0.80 failed: %v", err)
	}
	wide, err := engine.CI(ctx, data, meanStat, "mean", 0.99, 42)
	if err != nil {
		t.Fatalf("CI at 0.99 failed: %v", err)
	}

	if wide.CI.Upper-wide.CI.Lower <= narrow.CI.Upper-narrow.CI.Lower {
		t.Errorf("99%% interval [%v, %v] not wider than 80%% interval [%v, %v]",
			wide.CI.Lower, wide.CI.Upper, narrow.CI.Lower, narrow.CI.Upper)
	}
}

func TestCI_InputValidation(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(testkit.NewRNGAdapter(), 100)

	if _, err := engine.CI(ctx, []float64{1}, meanStat, "mean", 0.95, 1); err == nil {
		t.Error("Expected error for single observation")
	}
	if _, err := engine.CI(ctx, []float64{1, 2, 3}, meanStat, "mean", 1.5, 1); err == nil {
		t.Error("Expected error for confidence outside (0,1)")
	}
}

func TestCI_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := NewEngine(testkit.NewRNGAdapter(), 5000)
	data := testkit.GenerateNormalData(100, 0, 1, 3)

	if _, err := engine.CI(ctx, data, meanStat, "mean", 0.95, 1); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func TestPairedCI_PreservesPairing(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(testkit.NewRNGAdapter(), 500)

	// y is exactly 2x, so any paired resample keeps the ratio statistic at 2
	x := testkit.GenerateNormalData(80, 10, 1, 5)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 2 * x[i]
	}
	ratio := func(a, b []float64) float64 {
		ma, _ := montana.Mean(a)
		mb, _ := montana.Mean(b)
		return mb / ma
	}

	result, err := engine.PairedCI(ctx, x, y, ratio, "ratio", 0.95, 9)
	if err != nil {
		t.Fatalf("PairedCI failed: %v", err)
	}
	if result.Observed != 2 {
		t.Errorf("Expected observed ratio 2, got %v", result.Observed)
	}
	const tol = 1e-9
	if result.CI.Lower < 2-tol || result.CI.Upper > 2+tol {
		t.Errorf("Pairing broken: interval [%v, %v] should collapse at 2",
			result.CI.Lower, result.CI.Upper)
	}
}

func TestPairedCI_LengthMismatch(t *testing.T) {
	engine := NewEngine(testkit.NewRNGAdapter(), 100)
	stat := func(a, b []float64) float64 { return 0 }
	if _, err := engine.PairedCI(context.Background(), []float64{1, 2}, []float64{1}, stat, "x", 0.95, 1); err == nil {
		t.Error("Expected error for mismatched lengths")
	}
}
