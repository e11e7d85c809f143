package viz

import (
	"fmt"

	"anastat/domain/stats"
)

// Suggest derives plot recommendations from the already-computed slots. All
// inputs are optional; suggestions degrade gracefully when a slot is missing.
func Suggest(numDatasets int, descriptive []stats.DescriptiveStats, distribution *stats.DistributionAnalysis, outliers []stats.OutlierAnalysis) *stats.VisualizationSuggestions {
	result := &stats.VisualizationSuggestions{}

	all := allVariables(numDatasets)
	add := func(plotType string, vars []int, rationale string) {
		result.Plots = append(result.Plots, stats.PlotSuggestion{
			PlotType:  plotType,
			Variables: vars,
			Rationale: rationale,
		})
	}

	add("histogram", all, "always useful for inspecting the shape of each distribution")

	if distribution != nil && !batteryNormal(distribution.NormalityTests) {
		add("qq_plot", all, "normality tests reject; a Q-Q plot shows where the tails depart")
	}

	if anyOutliers(outliers) {
		add("box_plot", all, "outliers were flagged; box plots show them against the quartile spread")
	} else {
		add("box_plot", all, "compact five-number summary per variable")
	}

	switch {
	case numDatasets == 2:
		add("scatter", []int{0, 1}, "two variables; a scatter plot shows their joint relationship")
	case numDatasets > 2:
		add("correlation_heatmap", all, "more than two variables; a heatmap summarizes all pairwise relationships")
	}

	result.Transformations = transformationHints(descriptive, outliers)
	return result
}

// transformationHints flags heavy skew and high outlier contamination.
func transformationHints(descriptive []stats.DescriptiveStats, outliers []stats.OutlierAnalysis) []stats.TransformationSuggestion {
	var hints []stats.TransformationSuggestion
	for i, d := range descriptive {
		if d.Skewness > 1 {
			hints = append(hints, stats.TransformationSuggestion{
				Transformation: "log",
				Rationale:      fmt.Sprintf("variable %d is right-skewed (skewness %.2f)", i, d.Skewness),
			})
		} else if d.Skewness < -1 {
			hints = append(hints, stats.TransformationSuggestion{
				Transformation: "square",
				Rationale:      fmt.Sprintf("variable %d is left-skewed (skewness %.2f)", i, d.Skewness),
			})
		}
	}
	for i, o := range outliers {
		if o.OutlierPercentage > 10 {
			hints = append(hints, stats.TransformationSuggestion{
				Transformation: "rank",
				Rationale:      fmt.Sprintf("variable %d has %.1f%% outliers; rank-based methods resist them", i, o.OutlierPercentage),
			})
		}
	}
	return hints
}

func allVariables(n int) []int {
	vars := make([]int, n)
	for i := range vars {
		vars[i] = i
	}
	return vars
}

func batteryNormal(tests []stats.NormalityTest) bool {
	if len(tests) == 0 {
		return true
	}
	for _, t := range tests {
		if !t.IsNormal {
			return false
		}
	}
	return true
}

func anyOutliers(outliers []stats.OutlierAnalysis) bool {
	for _, o := range outliers {
		if len(o.CombinedIndices) > 0 {
			return true
		}
	}
	return false
}
