package hypotest

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"anastat/domain/stats"
	"anastat/internal/testkit"
)

func TestNonCentralT_ZeroDeltaMatchesCentral(t *testing.T) {
	nct, err := NewNonCentralT(0, 10)
	if err != nil {
		t.Fatalf("NewNonCentralT failed: %v", err)
	}
	central := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 10}
	for _, x := range []float64{-2, -0.5, 0, 0.5, 2} {
		if got, want := nct.CDF(x), central.CDF(x); math.Abs(got-want) > 1e-9 {
			t.Errorf("CDF(%v) = %v, want central %v", x, got, want)
		}
	}
}

func TestNonCentralT_ShiftsRight(t *testing.T) {
	nct, err := NewNonCentralT(2, 20)
	if err != nil {
		t.Fatalf("NewNonCentralT failed: %v", err)
	}
	// With delta=2 most mass sits right of zero
	if p := nct.CDF(0); p > 0.1 {
		t.Errorf("CDF(0) with delta=2 should be small, got %v", p)
	}
	if !sorted(nct.CDF(-1), nct.CDF(0), nct.CDF(1), nct.CDF(3)) {
		t.Error("CDF must be non-decreasing")
	}
}

func sorted(vs ...float64) bool {
	for i := 1; i < len(vs); i++ {
		if vs[i] < vs[i-1] {
			return false
		}
	}
	return true
}

func TestPowerOneSampleT(t *testing.T) {
	t.Run("zero effect gives alpha", func(t *testing.T) {
		power, err := PowerOneSampleT(0, 1, 30, 0.05)
		if err != nil {
			t.Fatalf("PowerOneSampleT failed: %v", err)
		}
		if math.Abs(power-0.05) > 0.01 {
			t.Errorf("Power at zero effect should equal alpha, got %v", power)
		}
	})

	t.Run("power grows with n", func(t *testing.T) {
		small, err := PowerOneSampleT(0.5, 1, 10, 0.05)
		if err != nil {
			t.Fatalf("PowerOneSampleT failed: %v", err)
		}
		large, err := PowerOneSampleT(0.5, 1, 50, 0.05)
		if err != nil {
			t.Fatalf("PowerOneSampleT failed: %v", err)
		}
		if large <= small {
			t.Errorf("Power should grow with n: %v at 10 vs %v at 50", small, large)
		}
		if large < 0.9 {
			t.Errorf("d=0.5 at n=50 should have high power, got %v", large)
		}
	})

	t.Run("invalid inputs", func(t *testing.T) {
		if _, err := PowerOneSampleT(0.5, 0, 30, 0.05); err == nil {
			t.Error("Expected error for zero sigma")
		}
		if _, err := PowerOneSampleT(0.5, 1, 1, 0.05); err == nil {
			t.Error("Expected error for n < 2")
		}
	})
}

func TestSampleSizeOneSampleT(t *testing.T) {
	// The d=0.5, alpha=0.05, power=0.80 case has the textbook answer of ~34
	n, err := SampleSizeOneSampleT(0.5, 1, 0.05, 0.80)
	if err != nil {
		t.Fatalf("SampleSizeOneSampleT failed: %v", err)
	}
	if n < 30 || n > 38 {
		t.Errorf("Expected sample size near 34, got %d", n)
	}

	power, err := PowerOneSampleT(0.5, 1, n, 0.05)
	if err != nil {
		t.Fatalf("PowerOneSampleT failed: %v", err)
	}
	if power < 0.80 {
		t.Errorf("Returned n=%d does not reach target power: %v", n, power)
	}
}

func TestPowerTwoSampleT_Monotone(t *testing.T) {
	small, err := PowerTwoSampleT(1, 2, 2, 20, 20, 0.05, false)
	if err != nil {
		t.Fatalf("PowerTwoSampleT failed: %v", err)
	}
	large, err := PowerTwoSampleT(1, 2, 2, 80, 80, 0.05, false)
	if err != nil {
		t.Fatalf("PowerTwoSampleT failed: %v", err)
	}
	if large <= small {
		t.Errorf("Power should grow with group sizes: %v vs %v", small, large)
	}
}

func TestEnginePower_Slot(t *testing.T) {
	engine := NewEngine()
	opts := stats.DefaultOptions()

	data := testkit.GenerateNormalData(40, 1.0, 1, 21)
	power, err := engine.Power([][]float64{data}, opts)
	if err != nil {
		t.Fatalf("Power failed: %v", err)
	}
	if power.SampleSize != 40 {
		t.Errorf("Expected sample size 40, got %d", power.SampleSize)
	}
	if power.AchievedPower <= 0 || power.AchievedPower > 1 {
		t.Errorf("Achieved power out of range: %v", power.AchievedPower)
	}
	if math.Abs(power.Alpha-0.05) > 1e-9 {
		t.Errorf("Expected alpha 0.05, got %v", power.Alpha)
	}
}
