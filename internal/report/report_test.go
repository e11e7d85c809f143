package report

import (
	"strings"
	"testing"
	"time"

	"anastat/domain/core"
	"anastat/domain/stats"
)

func sampleResults() *stats.AnalysisResults {
	dcor := 0.42
	return &stats.AnalysisResults{
		RunID:     core.NewRunID(),
		StartedAt: core.NewTimestamp(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Elapsed:   1.25,
		Sanitization: stats.SanitizationReport{
			Original:         []int{100, 100},
			Remaining:        []int{98, 98},
			RowsRemovedTotal: 2,
		},
		Descriptive: []stats.DescriptiveStats{
			{N: 98, Mean: 5.1, Median: 5.0, StdDev: 1.2, Min: 2, Max: 9},
			{N: 98, Mean: 3.3, Median: 3.1, StdDev: 0.8, Min: 1, Max: 6},
		},
		Bootstrap: [][]stats.BootstrapResult{
			{
				{
					Statistic: "mean",
					Observed:  5.1,
					CI:        stats.ConfidenceInterval{Lower: 4.9, Upper: 5.3, Confidence: 0.95},
					BCa:       stats.ConfidenceInterval{Lower: 4.88, Upper: 5.29, Confidence: 0.95},
				},
			},
		},
		Distribution: &stats.DistributionAnalysis{
			NormalityTests: []stats.NormalityTest{
				{TestName: "shapiro_wilk", Statistic: 0.98, PValue: 0.4, IsNormal: true},
			},
			Transformations: []stats.TransformationSuggestion{
				{Transformation: "log", ImprovementScore: 0.8, Rationale: "reduces right skew"},
			},
		},
		Outliers: []stats.OutlierAnalysis{
			{
				ByMethod:          []stats.MethodOutliers{{Method: "zscore", Indices: []int{9}}},
				CombinedIndices:   []int{9},
				OutlierPercentage: 1.0,
			},
		},
		Correlation: &stats.CorrelationAnalysis{
			Method:       stats.CorrelationPearson,
			Pairs:        []stats.PairCorrelation{{I: 0, J: 1, Coefficient: 0.9, PValue: 0.001}},
			DistancePair: &dcor,
		},
		QualityCtl: []stats.QualityControlAnalysis{
			{Limits: stats.ControlLimits{CenterLine: 5, Upper: 8, Lower: 2}, Stability: "stable"},
		},
		Hypothesis: []stats.HypothesisTest{
			{TestName: "welch_t", Statistic: 2.5, PValue: 0.015, DF: 95, Reject: true, Alpha: 0.05},
		},
		Power: &stats.PowerAnalysis{EffectSize: 0.5, Alpha: 0.05, SampleSize: 98, AchievedPower: 0.99},
		Uncertainty: []stats.UncertaintyBudget{
			{Formula: "x*y", Value: 6, Combined: 0.5, Contributions: map[string]float64{"x": 0.09, "y": 0.16}},
		},
		Visualization: &stats.VisualizationSuggestions{
			Plots: []stats.PlotSuggestion{{PlotType: "histogram", Variables: []int{0, 1}, Rationale: "shape"}},
		},
		Failures: map[stats.AnalysisKind]string{
			stats.KindTimeSeries: "time series analysis requires at least 3 observations",
		},
	}
}

func TestMarkdown_Sections(t *testing.T) {
	results := sampleResults()
	md := Markdown(results)

	wantSections := []string{
		"# Analysis Report " + results.RunID.String(),
		"## Sanitization",
		"## Descriptive Statistics",
		"## Bootstrap Intervals",
		"## Distribution",
		"## Outliers",
		"## Correlation (pearson)",
		"## Quality Control",
		"## Hypothesis Tests",
		"## Power Analysis",
		"## Uncertainty Budgets",
		"## Suggested Visualizations",
		"## Failures",
	}
	for _, section := range wantSections {
		if !strings.Contains(md, section) {
			t.Errorf("Markdown missing %q", section)
		}
	}

	if strings.Contains(md, "## Time Series") {
		t.Error("Empty time-series slot should not render a section")
	}
	if strings.Contains(md, "## Reliability") {
		t.Error("Nil reliability slot should not render a section")
	}
	if !strings.Contains(md, "reject H0") {
		t.Error("Rejected test should read 'reject H0'")
	}
	if !strings.Contains(md, "Distance correlation: 0.4200") {
		t.Error("Distance correlation line missing")
	}
}

func TestMarkdown_EmptyRun(t *testing.T) {
	results := &stats.AnalysisResults{
		RunID:     core.NewRunID(),
		StartedAt: core.Now(),
	}
	md := Markdown(results)
	if !strings.Contains(md, "## Sanitization") {
		t.Error("Sanitization always renders")
	}
	if strings.Contains(md, "## Descriptive Statistics") {
		t.Error("Empty slots should be omitted")
	}
}

func TestHTML_RendersTables(t *testing.T) {
	out := string(HTML(sampleResults()))
	if !strings.Contains(out, "<h2") {
		t.Error("Expected rendered headings")
	}
	if !strings.Contains(out, "<table") {
		t.Error("Expected markdown tables to render as HTML tables")
	}
}
