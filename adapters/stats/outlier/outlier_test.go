package outlier

import (
	"context"
	"testing"

	"anastat/domain/stats"
	"anastat/internal/testkit"
)

func TestDetect_FlagsGrossOutlier(t *testing.T) {
	data := []float64{10, 12, 11, 13, 12, 11, 10, 12, 11, 1000}
	engine := NewEngine(testkit.NewRNGAdapter())

	result, err := engine.Detect(context.Background(), data, nil, nil, stats.DefaultOptions())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	found := false
	for _, idx := range result.CombinedIndices {
		if idx == 9 {
			found = true
		}
	}
	if !found {
		t.Errorf("Combined indices %v should include the gross outlier at 9", result.CombinedIndices)
	}
	if result.OutlierPercentage <= 0 {
		t.Errorf("Expected positive outlier percentage, got %v", result.OutlierPercentage)
	}
	if result.MeanWithout >= result.MeanWithOutliers {
		t.Errorf("Removing a high outlier should lower the mean: %v vs %v",
			result.MeanWithout, result.MeanWithOutliers)
	}
	for _, m := range result.ByMethod {
		if len(m.Scores) != len(m.Indices) {
			t.Errorf("Method %s: %d scores for %d indices", m.Method, len(m.Scores), len(m.Indices))
		}
	}
	zscore := methodResult(result, "zscore")
	for i, idx := range zscore.Indices {
		if idx == 9 && zscore.Scores[i] <= stats.DefaultOptions().ZScoreThreshold {
			t.Errorf("Gross outlier z-score %v should exceed the threshold", zscore.Scores[i])
		}
	}
}

func TestDetect_ConstantDataFlagsNothing(t *testing.T) {
	data := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	engine := NewEngine(testkit.NewRNGAdapter())

	result, err := engine.Detect(context.Background(), data, nil, nil, stats.DefaultOptions())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.CombinedIndices) != 0 {
		t.Errorf("Constant data should flag no outliers, got %v", result.CombinedIndices)
	}
}

func TestDetect_TinyInputsNeverFail(t *testing.T) {
	engine := NewEngine(testkit.NewRNGAdapter())

	single, err := engine.Detect(context.Background(), []float64{42}, nil, nil, stats.DefaultOptions())
	if err != nil {
		t.Fatalf("Detect on a singleton failed: %v", err)
	}
	if len(single.CombinedIndices) != 0 {
		t.Errorf("Singleton should flag nothing, got %v", single.CombinedIndices)
	}
	if single.MeanWithOutliers != 42 || single.MeanWithout != 42 {
		t.Errorf("Singleton means should equal the point: %v, %v", single.MeanWithOutliers, single.MeanWithout)
	}

	empty, err := engine.Detect(context.Background(), nil, nil, nil, stats.DefaultOptions())
	if err != nil {
		t.Fatalf("Detect on empty data failed: %v", err)
	}
	if len(empty.CombinedIndices) != 0 || empty.OutlierPercentage != 0 {
		t.Errorf("Empty data should yield an empty result, got %+v", empty)
	}
}

func TestDetect_UncertaintyShieldsBorderlinePoint(t *testing.T) {
	// Index 9 sits outside the plain threshold but its uncertainty interval
	// overlaps the acceptable band, so the aware variants must not flag it.
	data := []float64{10, 12, 11, 13, 12, 11, 10, 12, 11, 30}
	uncertainties := make([]float64, len(data))
	uncertainties[9] = 50 // huge uncertainty: interval overlaps the band

	opts := stats.DefaultOptions()
	engine := NewEngine(testkit.NewRNGAdapter())

	plain, err := engine.Detect(context.Background(), data, nil, nil, opts)
	if err != nil {
		t.Fatalf("Detect without uncertainties failed: %v", err)
	}
	aware, err := engine.Detect(context.Background(), data, uncertainties, nil, opts)
	if err != nil {
		t.Fatalf("Detect with uncertainties failed: %v", err)
	}

	plainFlagged := containsIndex(findMethod(plain, "modified_zscore"), 9)
	awareFlagged := containsIndex(findMethod(aware, "modified_zscore"), 9)
	if !plainFlagged {
		t.Fatal("Fixture broken: point should be flagged without uncertainty")
	}
	if awareFlagged {
		t.Error("Large uncertainty should shield the point from the modified z-score detector")
	}
}

func TestDetect_ExplicitConfidencesUsed(t *testing.T) {
	// A near-certain confidence level widens each point's interval enough to
	// shield the borderline point that the default level would flag.
	data := []float64{10, 12, 11, 13, 12, 11, 10, 12, 11, 30}
	uncertainties := make([]float64, len(data))
	uncertainties[9] = 4
	confidences := make([]float64, len(data))
	for i := range confidences {
		confidences[i] = 0.9999999
	}

	opts := stats.DefaultOptions()
	engine := NewEngine(testkit.NewRNGAdapter())

	defaults, err := engine.Detect(context.Background(), data, uncertainties, nil, opts)
	if err != nil {
		t.Fatalf("Detect with default confidences failed: %v", err)
	}
	wide, err := engine.Detect(context.Background(), data, uncertainties, confidences, opts)
	if err != nil {
		t.Fatalf("Detect with explicit confidences failed: %v", err)
	}

	if !containsIndex(findMethod(defaults, "modified_zscore"), 9) {
		t.Fatal("Fixture broken: default confidence should still flag the point")
	}
	if containsIndex(findMethod(wide, "modified_zscore"), 9) {
		t.Error("Near-certain confidence should shield the point")
	}
}

func methodResult(result *stats.OutlierAnalysis, method string) stats.MethodOutliers {
	for _, m := range result.ByMethod {
		if m.Method == method {
			return m
		}
	}
	return stats.MethodOutliers{}
}

func findMethod(result *stats.OutlierAnalysis, method string) []int {
	return methodResult(result, method).Indices
}

func containsIndex(indices []int, want int) bool {
	for _, idx := range indices {
		if idx == want {
			return true
		}
	}
	return false
}

func TestZScore_ThresholdBoundary(t *testing.T) {
	data := []float64{0, 0, 0, 0, 10}
	// With a tiny threshold everything away from the mean gets flagged
	flagged, scores := ZScore(data, nil, nil, 0.1)
	if len(flagged) == 0 {
		t.Error("Expected flags at a 0.1 sigma threshold")
	}
	if len(scores) != len(flagged) {
		t.Errorf("Expected %d scores, got %d", len(flagged), len(scores))
	}
	for i, s := range scores {
		if s <= 0.1 {
			t.Errorf("Flagged point %d has score %v at or below the threshold", flagged[i], s)
		}
	}
	// ZScore on zero-variance data returns nothing
	if out, _ := ZScore([]float64{1, 1, 1}, nil, nil, 3); out != nil {
		t.Errorf("Expected nil for zero variance, got %v", out)
	}
}

func TestIQR_FlagsFenceViolations(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 100}
	flagged, scores := IQR(data, nil, nil, 1.5)
	if !containsIndex(flagged, 5) {
		t.Errorf("IQR should flag index 5, got %v", flagged)
	}
	for i, s := range scores {
		if s <= 0 {
			t.Errorf("Fence distance for flagged point %d should be positive, got %v", flagged[i], s)
		}
	}
}

func TestIsolationForest_RareExtremeScoresHigh(t *testing.T) {
	data := testkit.WithOutliers(testkit.GenerateNormalData(200, 0, 1, 13), 25, 50)
	rng, err := testkit.NewRNGAdapter().SeededStream(context.Background(), "isolation-forest", 42)
	if err != nil {
		t.Fatalf("SeededStream failed: %v", err)
	}
	flagged, scores := IsolationForest(data, 0.05, rng)
	if !containsIndex(flagged, 50) {
		t.Errorf("Isolation forest should isolate the planted extreme at 50, got %v", flagged)
	}
	for i, s := range scores {
		if s <= 0 || s > 1 {
			t.Errorf("Anomaly score for flagged point %d out of (0,1]: %v", flagged[i], s)
		}
	}
}
