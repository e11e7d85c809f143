package viz

import (
	"testing"

	"anastat/domain/stats"
)

func plotTypes(s *stats.VisualizationSuggestions) map[string]bool {
	types := make(map[string]bool)
	for _, p := range s.Plots {
		types[p.PlotType] = true
	}
	return types
}

func TestSuggest_BaselinePlots(t *testing.T) {
	s := Suggest(1, nil, nil, nil)
	types := plotTypes(s)
	if !types["histogram"] || !types["box_plot"] {
		t.Errorf("Histogram and box plot should always be suggested, got %v", types)
	}
	if types["scatter"] || types["correlation_heatmap"] || types["qq_plot"] {
		t.Errorf("Single well-behaved variable should not get pair plots, got %v", types)
	}
}

func TestSuggest_PairAndMultivariate(t *testing.T) {
	two := plotTypes(Suggest(2, nil, nil, nil))
	if !two["scatter"] {
		t.Error("Two variables should suggest a scatter plot")
	}
	if two["correlation_heatmap"] {
		t.Error("Two variables should not get a heatmap")
	}

	many := plotTypes(Suggest(4, nil, nil, nil))
	if !many["correlation_heatmap"] {
		t.Error("More than two variables should suggest a heatmap")
	}
	if many["scatter"] {
		t.Error("Heatmap replaces the pairwise scatter for many variables")
	}
}

func TestSuggest_QQPlotOnRejectedNormality(t *testing.T) {
	dist := &stats.DistributionAnalysis{
		NormalityTests: []stats.NormalityTest{
			{TestName: "shapiro_wilk", IsNormal: false},
			{TestName: "jarque_bera", IsNormal: true},
		},
	}
	if !plotTypes(Suggest(1, nil, dist, nil))["qq_plot"] {
		t.Error("Rejected normality should suggest a Q-Q plot")
	}

	allPass := &stats.DistributionAnalysis{
		NormalityTests: []stats.NormalityTest{{TestName: "shapiro_wilk", IsNormal: true}},
	}
	if plotTypes(Suggest(1, nil, allPass, nil))["qq_plot"] {
		t.Error("Passing battery should not suggest a Q-Q plot")
	}
}

func TestSuggest_TransformationHints(t *testing.T) {
	descriptive := []stats.DescriptiveStats{
		{Skewness: 2.4},
		{Skewness: -1.8},
		{Skewness: 0.1},
	}
	outliers := []stats.OutlierAnalysis{
		{OutlierPercentage: 15, CombinedIndices: []int{1, 2}},
	}

	s := Suggest(3, descriptive, nil, outliers)
	hints := make(map[string]bool)
	for _, h := range s.Transformations {
		hints[h.Transformation] = true
	}
	if !hints["log"] {
		t.Error("Right skew should hint a log transform")
	}
	if !hints["square"] {
		t.Error("Left skew should hint a square transform")
	}
	if !hints["rank"] {
		t.Error("Heavy outlier contamination should hint rank methods")
	}
	if len(s.Transformations) != 3 {
		t.Errorf("Expected 3 hints, got %d", len(s.Transformations))
	}
}
