package qc

import (
	"math"
	"testing"

	"anastat/domain/stats"
	"anastat/internal/errors"
	"anastat/internal/testkit"
)

func TestAnalyze_StableProcess(t *testing.T) {
	// Alternating half-steps around 50: inside every zone, no runs
	data := make([]float64, 40)
	for i := range data {
		if i%2 == 0 {
			data[i] = 49.5
		} else {
			data[i] = 50.5
		}
	}
	result, err := NewEngine().Analyze(data, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Limits.Upper <= result.Limits.CenterLine || result.Limits.Lower >= result.Limits.CenterLine {
		t.Errorf("Control limits do not bracket the center line: %+v", result.Limits)
	}
	spread := result.Limits.Upper - result.Limits.CenterLine
	if math.Abs(spread-(result.Limits.CenterLine-result.Limits.Lower)) > 1e-9 {
		t.Errorf("Limits not symmetric around center: %+v", result.Limits)
	}
	if result.Capability != nil {
		t.Error("Capability should be nil without specification limits")
	}
	if result.Stability != "stable" {
		t.Errorf("In-control process should be stable, got %q", result.Stability)
	}
}

func TestAnalyze_ShiftedProcessUnstable(t *testing.T) {
	// A sustained shift after the midpoint trips the run-of-seven rule
	data := append(testkit.GenerateNormalData(30, 0, 1, 3), testkit.GenerateNormalData(30, 4, 1, 4)...)
	result, err := NewEngine().Analyze(data, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Stability != "unstable" {
		t.Error("Sustained mean shift should be flagged unstable")
	}
}

func TestAnalyze_RequiresVariation(t *testing.T) {
	_, err := NewEngine().Analyze([]float64{3, 3, 3, 3}, nil)
	if !errors.HasCode(err, errors.CodeNumericDegenerate) {
		t.Errorf("Expected degenerate error for constant data, got %v", err)
	}
	_, err = NewEngine().Analyze([]float64{1}, nil)
	if !errors.HasCode(err, errors.CodeInsufficientData) {
		t.Errorf("Expected insufficient data error, got %v", err)
	}
}

func TestCapability_CenteredProcess(t *testing.T) {
	capability, err := Capability(0, 1, -3, 3)
	if err != nil {
		t.Fatalf("Capability failed: %v", err)
	}
	if math.Abs(capability.Cp-1) > 1e-12 {
		t.Errorf("Cp = %v, want 1", capability.Cp)
	}
	if math.Abs(capability.Cpk-1) > 1e-12 {
		t.Errorf("Cpk = %v, want 1 for a centered process", capability.Cpk)
	}
	if capability.Assessment != "Adequate" {
		t.Errorf("Cpk=1 should assess Adequate, got %q", capability.Assessment)
	}
	// Centered at +/-3 sigma: about 2700 PPM defective
	if capability.PPMDefective < 2000 || capability.PPMDefective > 3500 {
		t.Errorf("PPM = %v, expected near 2700", capability.PPMDefective)
	}
}

func TestCapability_OffCenterDropsCpk(t *testing.T) {
	capability, err := Capability(2, 1, -3, 3)
	if err != nil {
		t.Fatalf("Capability failed: %v", err)
	}
	if capability.Cpk >= capability.Cp {
		t.Errorf("Off-center process should have Cpk (%v) below Cp (%v)", capability.Cpk, capability.Cp)
	}
	if capability.Assessment != "Inadequate" {
		t.Errorf("Cpk=%v should assess Inadequate, got %q", capability.Cpk, capability.Assessment)
	}
}

func TestCapability_InvalidLimits(t *testing.T) {
	if _, err := Capability(0, 1, 3, -3); err == nil {
		t.Error("Expected error for inverted specification limits")
	}
}

func TestAnalyze_WithSpecLimits(t *testing.T) {
	lower, upper := 40.0, 60.0
	data := testkit.GenerateNormalData(80, 50, 2, 9)
	result, err := NewEngine().Analyze(data, &stats.SpecLimits{Lower: &lower, Upper: &upper})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Capability == nil {
		t.Fatal("Expected capability with both limits set")
	}
	if result.Capability.Cp <= 0 {
		t.Errorf("Expected positive Cp, got %v", result.Capability.Cp)
	}
}

func TestAssessStability_RunRules(t *testing.T) {
	// Seven consecutive points above center with an otherwise balanced series
	data := []float64{-1, 1, -1, 1, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, -1, 1, -1}
	if got := assessStability(data, 0, 1); got != "unstable" {
		t.Errorf("Run of seven above center should be unstable, got %q", got)
	}

	alternating := make([]float64, 30)
	for i := range alternating {
		if i%2 == 0 {
			alternating[i] = 0.5
		} else {
			alternating[i] = -0.5
		}
	}
	if got := assessStability(alternating, 0, 1); got != "stable" {
		t.Errorf("Alternating half-sigma data should be stable, got %q", got)
	}
}
