package uncertainty

import (
	"math"
	"testing"

	"anastat/internal/errors"
)

func TestDatasetBudget_KnownAnswer(t *testing.T) {
	// Two points with uncertainty 2 each: sigma_meas = sqrt(8)/2 = sqrt(2),
	// sample sd = sqrt(2), sigma_samp = sd/sqrt(2) = 1. Combined = sqrt(3).
	data := []float64{1, 3}
	uncertainties := []float64{2, 2}

	b, err := DatasetBudget("mean(dataset 0)", data, uncertainties)
	if err != nil {
		t.Fatalf("DatasetBudget failed: %v", err)
	}
	if b.Formula != "mean(dataset 0)" {
		t.Errorf("Formula = %q", b.Formula)
	}
	if math.Abs(b.Value-2) > 1e-12 {
		t.Errorf("Value = %v, want 2", b.Value)
	}
	if math.Abs(b.Contributions["measurement"]-2) > 1e-9 {
		t.Errorf("Measurement variance = %v, want 2", b.Contributions["measurement"])
	}
	if math.Abs(b.Contributions["sampling"]-1) > 1e-9 {
		t.Errorf("Sampling variance = %v, want 1", b.Contributions["sampling"])
	}
	if math.Abs(b.Combined-math.Sqrt(3)) > 1e-9 {
		t.Errorf("Combined = %v, want sqrt(3)", b.Combined)
	}
}

func TestDatasetBudget_ZeroUncertaintiesLeaveSamplingOnly(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	b, err := DatasetBudget("mean", data, make([]float64, len(data)))
	if err != nil {
		t.Fatalf("DatasetBudget failed: %v", err)
	}
	if b.Contributions["measurement"] != 0 {
		t.Errorf("Expected zero measurement variance, got %v", b.Contributions["measurement"])
	}
	if b.Combined <= 0 {
		t.Errorf("Sampling error alone should keep combined positive, got %v", b.Combined)
	}
}

func TestDatasetBudget_Validation(t *testing.T) {
	cases := []struct {
		name          string
		data          []float64
		uncertainties []float64
		code          string
	}{
		{"empty data", nil, nil, errors.CodeInvalidInput},
		{"length mismatch", []float64{1, 2, 3}, []float64{0.1}, errors.CodeInvalidInput},
		{"single point", []float64{1}, []float64{0.1}, errors.CodeInsufficientData},
		{"negative uncertainty", []float64{1, 2}, []float64{0.1, -0.1}, errors.CodeInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DatasetBudget("mean", tc.data, tc.uncertainties)
			if !errors.HasCode(err, tc.code) {
				t.Errorf("Expected %s, got %v", tc.code, err)
			}
		})
	}
}
