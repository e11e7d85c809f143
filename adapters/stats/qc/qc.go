package qc

import (
	"math"

	montana "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"anastat/domain/stats"
	"anastat/internal/errors"
)

const outOfControlFraction = 0.05

// Engine runs individuals-chart quality control checks.
type Engine struct{}

// NewEngine creates a quality control engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze computes 3-sigma control limits, process capability against the
// optional specification limits and a stability verdict from the Western
// Electric run rules.
func (e *Engine) Analyze(data []float64, limits *stats.SpecLimits) (*stats.QualityControlAnalysis, error) {
	if len(data) < 2 {
		return nil, errors.InsufficientData("quality control requires at least 2 observations")
	}

	mean, _ := montana.Mean(data)
	sd, _ := montana.StandardDeviationSample(data)
	if sd == 0 {
		return nil, errors.NumericDegenerate("quality control undefined for constant data")
	}

	result := &stats.QualityControlAnalysis{
		Limits: stats.ControlLimits{
			CenterLine: mean,
			Upper:      mean + 3*sd,
			Lower:      mean - 3*sd,
		},
	}

	if limits != nil && limits.Lower != nil && limits.Upper != nil {
		capability, err := Capability(mean, sd, *limits.Lower, *limits.Upper)
		if err != nil {
			return nil, err
		}
		result.Capability = capability
	}

	result.Stability = assessStability(data, mean, sd)
	return result, nil
}

// Capability computes Cp, Cpk and expected defective parts per million for
// a normal process at the given mean and spread.
func Capability(mean, sd, lower, upper float64) (*stats.ProcessCapability, error) {
	if upper <= lower {
		return nil, errors.InvalidInput("upper specification limit must exceed the lower limit")
	}

	cp := (upper - lower) / (6 * sd)
	cpu := (upper - mean) / (3 * sd)
	cpl := (mean - lower) / (3 * sd)
	cpk := math.Min(cpu, cpl)

	norm := distuv.Normal{Mu: mean, Sigma: sd}
	belowLower := norm.CDF(lower)
	aboveUpper := 1 - norm.CDF(upper)
	ppm := (belowLower + aboveUpper) * 1e6

	return &stats.ProcessCapability{
		Cp:           cp,
		Cpk:          cpk,
		PPMDefective: ppm,
		Assessment:   assessCapability(cpk),
	}, nil
}

func assessCapability(cpk float64) string {
	switch {
	case cpk >= 1.67:
		return "Excellent"
	case cpk >= 1.33:
		return "Good"
	case cpk >= 1.0:
		return "Adequate"
	case cpk >= 0.67:
		return "Poor"
	default:
		return "Inadequate"
	}
}

// assessStability applies the control-limit fraction check plus the Western
// Electric run rules: 7 in a row on one side of center, 2 of 3 beyond 2
// sigma on the same side, 4 of 5 beyond 1 sigma on the same side.
func assessStability(data []float64, mean, sd float64) string {
	outCount := 0
	for _, v := range data {
		if v > mean+3*sd || v < mean-3*sd {
			outCount++
		}
	}
	if float64(outCount)/float64(len(data)) > outOfControlFraction {
		return "unstable"
	}
	if hasRunOfSeven(data, mean) {
		return "unstable"
	}
	if hasZoneViolation(data, mean, 2*sd, 3, 2) {
		return "unstable"
	}
	if hasZoneViolation(data, mean, sd, 5, 4) {
		return "unstable"
	}
	return "stable"
}

// hasRunOfSeven reports 7 consecutive points strictly on one side of center.
func hasRunOfSeven(data []float64, center float64) bool {
	run := 0
	side := 0
	for _, v := range data {
		s := 0
		if v > center {
			s = 1
		} else if v < center {
			s = -1
		}
		if s != 0 && s == side {
			run++
		} else {
			run = 1
			side = s
		}
		if s != 0 && run >= 7 {
			return true
		}
	}
	return false
}

// hasZoneViolation reports need-of-window points beyond the band on the same
// side within any window-sized stretch.
func hasZoneViolation(data []float64, center, band float64, window, need int) bool {
	if len(data) < window {
		return false
	}
	for start := 0; start+window <= len(data); start++ {
		above, below := 0, 0
		for _, v := range data[start : start+window] {
			if v > center+band {
				above++
			}
			if v < center-band {
				below++
			}
		}
		if above >= need || below >= need {
			return true
		}
	}
	return false
}
