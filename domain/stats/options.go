package stats

import (
	"fmt"
)

// CorrelationMethod selects the pairwise correlation estimator.
// Parsed and validated once at configuration time; engines switch on the
// closed set and never see raw strings.
type CorrelationMethod string

const (
	CorrelationPearson  CorrelationMethod = "pearson"
	CorrelationSpearman CorrelationMethod = "spearman"
	CorrelationKendall  CorrelationMethod = "kendall"
	CorrelationBiweight CorrelationMethod = "biweight"
)

// ParseCorrelationMethod validates a method name.
func ParseCorrelationMethod(s string) (CorrelationMethod, error) {
	switch CorrelationMethod(s) {
	case CorrelationPearson, CorrelationSpearman, CorrelationKendall, CorrelationBiweight:
		return CorrelationMethod(s), nil
	case "":
		return CorrelationPearson, nil
	}
	return "", fmt.Errorf("unknown correlation method %q", s)
}

// NaNPolicy controls how non-finite values are handled during sanitization.
type NaNPolicy string

const (
	NaNError           NaNPolicy = "error"
	NaNRemove          NaNPolicy = "remove"
	NaNMeanImpute      NaNPolicy = "mean_impute"
	NaNMedianImpute    NaNPolicy = "median_impute"
	NaNNearestImpute   NaNPolicy = "nearest_neighbor_impute"
	NaNZero            NaNPolicy = "zero"
	NaNIgnore          NaNPolicy = "ignore"
)

// ParseNaNPolicy validates a policy name.
func ParseNaNPolicy(s string) (NaNPolicy, error) {
	switch NaNPolicy(s) {
	case NaNError, NaNRemove, NaNMeanImpute, NaNMedianImpute, NaNNearestImpute, NaNZero, NaNIgnore:
		return NaNPolicy(s), nil
	case "":
		return NaNRemove, nil
	}
	return "", fmt.Errorf("unknown NaN policy %q", s)
}

// AnalysisKind names one independently-toggleable analysis.
type AnalysisKind string

const (
	KindDescriptive   AnalysisKind = "descriptive"
	KindDistribution  AnalysisKind = "distribution"
	KindOutliers      AnalysisKind = "outliers"
	KindCorrelation   AnalysisKind = "correlation"
	KindTimeSeries    AnalysisKind = "time_series"
	KindQualityCtl    AnalysisKind = "quality_control"
	KindReliability   AnalysisKind = "reliability"
	KindHypothesis    AnalysisKind = "hypothesis_tests"
	KindPower         AnalysisKind = "power_analysis"
	KindUncertainty   AnalysisKind = "uncertainty"
	KindVisualization AnalysisKind = "visualization"
)

// AllAnalysisKinds lists every analysis the orchestrator can run, in the
// order progress is reported.
var AllAnalysisKinds = []AnalysisKind{
	KindDescriptive,
	KindDistribution,
	KindOutliers,
	KindCorrelation,
	KindTimeSeries,
	KindQualityCtl,
	KindReliability,
	KindHypothesis,
	KindPower,
	KindUncertainty,
	KindVisualization,
}

// SpecLimits holds optional lower/upper specification limits for process
// capability analysis.
type SpecLimits struct {
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
}

// UncertaintySpec carries optional per-point standard uncertainties.
// Values may be supplied per-dataset (one scalar each, expanded to per-point)
// or per-point for a single dataset; expansion rules live in the sanitizer.
type UncertaintySpec struct {
	Values           []float64 `json:"values"`
	ConfidenceLevels []float64 `json:"confidence_levels,omitempty"`
}

// AnalysisOptions configures a full analysis run. Zero value is not usable;
// call DefaultOptions and override.
type AnalysisOptions struct {
	ConfidenceLevel   float64           `json:"confidence_level"`
	BootstrapSamples  int               `json:"bootstrap_samples"`
	PermutationCount  int               `json:"permutation_count"`
	CorrelationMethod CorrelationMethod `json:"correlation_method"`
	NaNPolicy         NaNPolicy         `json:"nan_policy"`
	Paired            bool              `json:"paired"`
	RandomSeed        int64             `json:"random_seed"`

	// Enabled selects which analyses run; empty means all.
	Enabled []AnalysisKind `json:"enabled,omitempty"`

	// Per-algorithm thresholds.
	ZScoreThreshold     float64 `json:"zscore_threshold"`
	IQRMultiplier       float64 `json:"iqr_multiplier"`
	ModifiedZThreshold  float64 `json:"modified_z_threshold"`
	LOFNeighbors        int     `json:"lof_neighbors"`
	LOFThreshold        float64 `json:"lof_threshold"`
	IsoForestContamined float64 `json:"isolation_forest_contamination"`
	BiweightTuning      float64 `json:"biweight_tuning"`
	MaxLag              int     `json:"max_lag"`
	SeasonalPeriod      int     `json:"seasonal_period"`

	SpecLimits  *SpecLimits      `json:"spec_limits,omitempty"`
	Uncertainty *UncertaintySpec `json:"uncertainty,omitempty"`

	// MaxParallel bounds concurrent analyses; 0 means runtime default.
	MaxParallel int `json:"max_parallel"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		ConfidenceLevel:     0.95,
		BootstrapSamples:    1000,
		PermutationCount:    5000,
		CorrelationMethod:   CorrelationPearson,
		NaNPolicy:           NaNRemove,
		RandomSeed:          42,
		ZScoreThreshold:     3.0,
		IQRMultiplier:       1.5,
		ModifiedZThreshold:  3.5,
		LOFNeighbors:        5,
		LOFThreshold:        1.5,
		IsoForestContamined: 0.1,
		BiweightTuning:      9.0,
		MaxLag:              0, // derived from data length when zero
		SeasonalPeriod:      0, // auto-detected when zero
	}
}

// Validate checks option ranges once, before any engine runs.
func (o *AnalysisOptions) Validate() error {
	if o.ConfidenceLevel <= 0 || o.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence level must be in (0,1), got %v", o.ConfidenceLevel)
	}
	if o.BootstrapSamples < 1 {
		return fmt.Errorf("bootstrap sample count must be positive, got %d", o.BootstrapSamples)
	}
	if o.PermutationCount < 1 {
		return fmt.Errorf("permutation count must be positive, got %d", o.PermutationCount)
	}
	if _, err := ParseCorrelationMethod(string(o.CorrelationMethod)); err != nil {
		return err
	}
	if _, err := ParseNaNPolicy(string(o.NaNPolicy)); err != nil {
		return err
	}
	if o.ZScoreThreshold <= 0 || o.IQRMultiplier <= 0 || o.ModifiedZThreshold <= 0 {
		return fmt.Errorf("outlier thresholds must be positive")
	}
	if o.LOFNeighbors < 1 {
		return fmt.Errorf("LOF neighbor count must be at least 1, got %d", o.LOFNeighbors)
	}
	if o.IsoForestContamined <= 0 || o.IsoForestContamined >= 0.5 {
		return fmt.Errorf("isolation forest contamination must be in (0,0.5), got %v", o.IsoForestContamined)
	}
	if o.BiweightTuning <= 0 {
		return fmt.Errorf("biweight tuning constant must be positive, got %v", o.BiweightTuning)
	}
	if o.MaxLag < 0 || o.SeasonalPeriod < 0 || o.MaxParallel < 0 {
		return fmt.Errorf("lag, period and parallelism must be non-negative")
	}
	if u := o.Uncertainty; u != nil {
		for i, v := range u.Values {
			if v < 0 {
				return fmt.Errorf("uncertainty[%d] is negative: %v", i, v)
			}
		}
		for i, cl := range u.ConfidenceLevels {
			if cl <= 0 || cl > 1 {
				return fmt.Errorf("uncertainty confidence level[%d] must be in (0,1], got %v", i, cl)
			}
		}
	}
	for _, k := range o.Enabled {
		if !validKind(k) {
			return fmt.Errorf("unknown analysis kind %q", k)
		}
	}
	return nil
}

// Wants reports whether the given analysis is enabled.
func (o *AnalysisOptions) Wants(kind AnalysisKind) bool {
	if len(o.Enabled) == 0 {
		return true
	}
	for _, k := range o.Enabled {
		if k == kind {
			return true
		}
	}
	return false
}

func validKind(k AnalysisKind) bool {
	for _, known := range AllAnalysisKinds {
		if k == known {
			return true
		}
	}
	return false
}
