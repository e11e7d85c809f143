package stats

import (
	"anastat/domain/core"
)

// SanitizationReport records what sanitization did to each dataset.
// Invariant: Remaining[i] <= Original[i] for all i.
type SanitizationReport struct {
	Original         []int `json:"original_counts"`
	Remaining        []int `json:"remaining_counts"`
	RowsRemovedTotal int   `json:"rows_removed_total"`
}

// DescriptiveStats summarizes a single dataset.
type DescriptiveStats struct {
	N           int     `json:"n"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Mode        float64 `json:"mode"`
	StdDev      float64 `json:"std_dev"`
	Variance    float64 `json:"variance"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Q1          float64 `json:"q1"`
	Q3          float64 `json:"q3"`
	Skewness    float64 `json:"skewness"`
	Kurtosis    float64 `json:"kurtosis"`
	CV          float64 `json:"cv"`
	StdErrMean  float64 `json:"std_err_mean"`
}

// NormalityTest is one member of the normality battery.
type NormalityTest struct {
	TestName  string  `json:"test_name"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	IsNormal  bool    `json:"is_normal"`
}

// TransformationSuggestion recommends a normalizing transform.
type TransformationSuggestion struct {
	Transformation   string  `json:"transformation"`
	ImprovementScore float64 `json:"improvement_score"`
	Rationale        string  `json:"rationale"`
}

// DistributionAnalysis groups normality tests and transform suggestions.
type DistributionAnalysis struct {
	NormalityTests  []NormalityTest            `json:"normality_tests"`
	Transformations []TransformationSuggestion `json:"transformation_suggestions,omitempty"`
}

// MethodOutliers holds the indices one detector flagged, with the detector's
// own score per flagged point (z-score, fence distance, LOF score, anomaly
// score) aligned to Indices.
type MethodOutliers struct {
	Method  string    `json:"method"`
	Indices []int     `json:"indices"`
	Scores  []float64 `json:"scores,omitempty"`
}

// OutlierAnalysis is the unioned result of all detectors.
type OutlierAnalysis struct {
	ByMethod          []MethodOutliers `json:"by_method"`
	CombinedIndices   []int            `json:"combined_indices"`
	OutlierPercentage float64          `json:"outlier_percentage"`
	MeanWithOutliers  float64          `json:"mean_with_outliers"`
	MeanWithout       float64          `json:"mean_without_outliers"`
	StdDevWithout     float64          `json:"std_dev_without_outliers"`
}

// ConfidenceInterval is a bootstrap or analytic interval.
type ConfidenceInterval struct {
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence float64 `json:"confidence"`
}

// BootstrapResult is the full output of a bootstrap run for one statistic.
type BootstrapResult struct {
	Statistic     string             `json:"statistic"`
	Observed      float64            `json:"observed"`
	CI            ConfidenceInterval `json:"ci"`
	BCa           ConfidenceInterval `json:"bca_ci"`
	StandardError float64            `json:"standard_error"`
	Bias          float64            `json:"bias"`
	Resamples     int                `json:"resamples"`
	UsedBlocks    bool               `json:"used_blocks"`
}

// PairCorrelation is the correlation between one pair of datasets.
type PairCorrelation struct {
	I           int     `json:"i"`
	J           int     `json:"j"`
	Coefficient float64 `json:"coefficient"`
	PValue      float64 `json:"p_value"`
	Permutation bool    `json:"permutation"`
}

// CorrelationAnalysis is the multi-dataset correlation result.
type CorrelationAnalysis struct {
	Method       CorrelationMethod  `json:"method"`
	Matrix       [][]float64        `json:"matrix"`
	Partial      [][]float64        `json:"partial_matrix,omitempty"`
	Pairs        []PairCorrelation  `json:"pairs"`
	DistancePair *float64           `json:"distance_correlation,omitempty"`
	Bootstrap    []BootstrapResult  `json:"bootstrap,omitempty"`
}

// Decomposition is an additive trend/seasonal/residual split.
// Invariant: Trend[i]+Seasonal[i]+Residual[i] == data[i] for all i.
type Decomposition struct {
	Trend    []float64 `json:"trend"`
	Seasonal []float64 `json:"seasonal"`
	Residual []float64 `json:"residual"`
	Period   int       `json:"period"`
	Method   string    `json:"method"`
}

// LjungBoxTest reports autocorrelation whiteness at a lag count.
type LjungBoxTest struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
}

// TrendTest reports monotonic trend significance.
type TrendTest struct {
	Slope     float64 `json:"slope"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	HasTrend  bool    `json:"has_trend"`
}

// TimeSeriesAnalysis aggregates the time-series slot.
type TimeSeriesAnalysis struct {
	Additive *Decomposition `json:"additive,omitempty"`
	STL      *Decomposition `json:"stl,omitempty"`
	ACF      []float64      `json:"acf"`
	LjungBox *LjungBoxTest  `json:"ljung_box,omitempty"`
	Trend    *TrendTest     `json:"trend,omitempty"`
}

// ControlLimits for an individuals control chart.
type ControlLimits struct {
	CenterLine float64 `json:"center_line"`
	Upper      float64 `json:"upper"`
	Lower      float64 `json:"lower"`
}

// ProcessCapability indices against specification limits.
type ProcessCapability struct {
	Cp           float64 `json:"cp"`
	Cpk          float64 `json:"cpk"`
	PPMDefective float64 `json:"ppm_defective"`
	Assessment   string  `json:"assessment"`
}

// QualityControlAnalysis is the QC slot.
type QualityControlAnalysis struct {
	Limits     ControlLimits      `json:"control_limits"`
	Capability *ProcessCapability `json:"capability,omitempty"`
	Stability  string             `json:"stability"`
}

// ReliabilityAnalysis covers internal-consistency measures across items.
type ReliabilityAnalysis struct {
	CronbachAlpha         float64   `json:"cronbach_alpha"`
	ItemTotalCorrelations []float64 `json:"item_total_correlations"`
	McDonaldOmega         float64   `json:"mcdonald_omega"`
	AvgInterItemCorr      float64   `json:"avg_interitem_correlation"`
}

// HypothesisTest is a generic named test result.
type HypothesisTest struct {
	TestName   string  `json:"test_name"`
	Statistic  float64 `json:"statistic"`
	PValue     float64 `json:"p_value"`
	DF         float64 `json:"df,omitempty"`
	Reject     bool    `json:"reject_null"`
	Alpha      float64 `json:"alpha"`
}

// PowerAnalysis reports achieved power and the sample size needed for the
// conventional 0.80 target at the same effect.
type PowerAnalysis struct {
	EffectSize     float64 `json:"effect_size"`
	Alpha          float64 `json:"alpha"`
	SampleSize     int     `json:"sample_size"`
	AchievedPower  float64 `json:"achieved_power"`
	RequiredSample int     `json:"required_sample_for_80"`
}

// UncertaintyBudget is the per-variable contribution breakdown from formula
// propagation.
type UncertaintyBudget struct {
	Formula       string             `json:"formula"`
	Value         float64            `json:"value"`
	Combined      float64            `json:"combined_uncertainty"`
	Contributions map[string]float64 `json:"contributions"`
}

// PlotSuggestion recommends one visualization.
type PlotSuggestion struct {
	PlotType  string `json:"plot_type"`
	Variables []int  `json:"variables"`
	Rationale string `json:"rationale"`
}

// VisualizationSuggestions is the viz slot.
type VisualizationSuggestions struct {
	Plots           []PlotSuggestion           `json:"plots"`
	Transformations []TransformationSuggestion `json:"transformations,omitempty"`
}

// AnalysisResults aggregates independently-optional sub-results. A nil slot
// means the analysis was disabled, inapplicable for the input shape, or
// failed; failures carry their reason in Failures keyed by AnalysisKind.
type AnalysisResults struct {
	RunID        core.RunID          `json:"run_id"`
	Sanitization SanitizationReport  `json:"sanitization"`

	Descriptive   []DescriptiveStats        `json:"descriptive,omitempty"`
	Bootstrap     [][]BootstrapResult       `json:"bootstrap,omitempty"`
	Distribution  *DistributionAnalysis     `json:"distribution,omitempty"`
	Outliers      []OutlierAnalysis         `json:"outliers,omitempty"`
	Correlation   *CorrelationAnalysis      `json:"correlation,omitempty"`
	TimeSeries    []TimeSeriesAnalysis      `json:"time_series,omitempty"`
	QualityCtl    []QualityControlAnalysis  `json:"quality_control,omitempty"`
	Reliability   *ReliabilityAnalysis      `json:"reliability,omitempty"`
	Hypothesis    []HypothesisTest          `json:"hypothesis_tests,omitempty"`
	Power         *PowerAnalysis            `json:"power,omitempty"`
	Uncertainty   []UncertaintyBudget       `json:"uncertainty,omitempty"`
	Visualization *VisualizationSuggestions `json:"visualization,omitempty"`

	Failures  map[AnalysisKind]string `json:"failures,omitempty"`
	StartedAt core.Timestamp          `json:"started_at"`
	Elapsed   float64                 `json:"elapsed_seconds"`
}
