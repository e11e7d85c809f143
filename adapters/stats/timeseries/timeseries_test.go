package timeseries

import (
	"math"
	"testing"

	"anastat/domain/stats"
	"anastat/internal/errors"
	"anastat/internal/testkit"
)

func TestACF_Lag1OfAR1IsPositive(t *testing.T) {
	data := testkit.GenerateAR1(300, 0.6, 17)
	acf, err := ACF(data, 5)
	if err != nil {
		t.Fatalf("ACF failed: %v", err)
	}
	if acf[0] < 0.3 {
		t.Errorf("Expected strong lag-1 autocorrelation for AR(1) phi=0.6, got %v", acf[0])
	}
	for lag, v := range acf {
		if v < -1 || v > 1 {
			t.Errorf("ACF at lag %d out of [-1,1]: %v", lag+1, v)
		}
	}
}

func TestACF_ConstantSeries(t *testing.T) {
	_, err := ACF([]float64{5, 5, 5, 5, 5}, 2)
	if !errors.HasCode(err, errors.CodeNumericDegenerate) {
		t.Errorf("Expected numeric degenerate error for constant series, got %v", err)
	}
}

func TestLjungBox_RejectsAR1(t *testing.T) {
	data := testkit.GenerateAR1(200, 0.6, 42)
	lb, err := LjungBox(data, 10)
	if err != nil {
		t.Fatalf("LjungBox failed: %v", err)
	}
	if lb.PValue >= 0.05 {
		t.Errorf("Expected Ljung-Box to reject whiteness for AR(1) data, p=%v", lb.PValue)
	}
	if lb.Lags != 10 {
		t.Errorf("Expected 10 lags, got %d", lb.Lags)
	}
}

func TestTrendTest(t *testing.T) {
	t.Run("too few observations", func(t *testing.T) {
		_, err := TrendTest([]float64{1, 2})
		if !errors.HasCode(err, errors.CodeInsufficientData) {
			t.Errorf("Expected insufficient data error, got %v", err)
		}
	})

	t.Run("clear upward trend", func(t *testing.T) {
		data := testkit.GenerateLinearData(100, 0.5, 10, 0.1, 23)
		trend, err := TrendTest(data)
		if err != nil {
			t.Fatalf("TrendTest failed: %v", err)
		}
		if !trend.HasTrend {
			t.Error("Expected significant trend for sloped data")
		}
		if math.Abs(trend.Slope-0.5) > 0.05 {
			t.Errorf("Expected slope near 0.5, got %v", trend.Slope)
		}
	})

	t.Run("perfect line", func(t *testing.T) {
		trend, err := TrendTest([]float64{1, 2, 3, 4, 5})
		if err != nil {
			t.Fatalf("TrendTest failed: %v", err)
		}
		if !trend.HasTrend || trend.PValue != 0 {
			t.Errorf("Perfect line should give exact significance, got %+v", trend)
		}
	})
}

func checkDecomposition(t *testing.T, data []float64, d *stats.Decomposition, period int) {
	t.Helper()
	if len(d.Trend) != len(data) || len(d.Seasonal) != len(data) || len(d.Residual) != len(data) {
		t.Fatalf("Component lengths differ from input length %d", len(data))
	}
	for i := range data {
		sum := d.Trend[i] + d.Seasonal[i] + d.Residual[i]
		if math.Abs(sum-data[i]) > 1e-10 {
			t.Fatalf("Reconstruction off at %d: %v vs %v", i, sum, data[i])
		}
	}
	for i := 0; i+period < len(data); i++ {
		if math.Abs(d.Seasonal[i]-d.Seasonal[i+period]) > 1e-10 {
			t.Fatalf("Seasonal component not periodic at %d: %v vs %v",
				i, d.Seasonal[i], d.Seasonal[i+period])
		}
	}
}

func TestDecomposeAdditive_ExactReconstruction(t *testing.T) {
	const period = 12
	data := testkit.GenerateSeasonal(120, period, 0.1, 5, 0.5, 31)

	d, err := DecomposeAdditive(data, period)
	if err != nil {
		t.Fatalf("DecomposeAdditive failed: %v", err)
	}
	if d.Period != period {
		t.Errorf("Expected period %d, got %d", period, d.Period)
	}
	checkDecomposition(t, data, d, period)
}

func TestDecomposeSTL_ExactReconstruction(t *testing.T) {
	const period = 12
	data := testkit.GenerateSeasonal(120, period, 0.1, 5, 0.5, 31)

	d, err := DecomposeSTL(data, period)
	if err != nil {
		t.Fatalf("DecomposeSTL failed: %v", err)
	}
	checkDecomposition(t, data, d, period)
}

func TestEngine_FullSlot(t *testing.T) {
	data := testkit.GenerateSeasonal(96, 12, 0.2, 4, 0.3, 8)
	opts := stats.DefaultOptions()
	opts.SeasonalPeriod = 12

	result, err := NewEngine().Analyze(data, opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.ACF) == 0 {
		t.Error("Expected ACF values")
	}
	if result.LjungBox == nil {
		t.Error("Expected Ljung-Box result")
	}
	if result.Trend == nil || !result.Trend.HasTrend {
		t.Error("Expected trend detection on sloped seasonal data")
	}
	if result.Additive == nil {
		t.Error("Expected additive decomposition with explicit period")
	}
	if result.STL == nil {
		t.Error("Expected STL decomposition with explicit period")
	}
}

func TestEngine_TooShort(t *testing.T) {
	_, err := NewEngine().Analyze([]float64{1, 2}, stats.DefaultOptions())
	if !errors.HasCode(err, errors.CodeInsufficientData) {
		t.Errorf("Expected insufficient data error, got %v", err)
	}
}
