package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"anastat/domain/stats"
)

// Markdown renders a completed run as a markdown document.
func Markdown(results *stats.AnalysisResults) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Report %s\n\n", results.RunID)
	fmt.Fprintf(&b, "Started %s, finished in %.2fs.\n\n",
		results.StartedAt.Time().Format("2006-01-02 15:04:05 UTC"), results.Elapsed)

	writeSanitization(&b, results.Sanitization)
	writeDescriptive(&b, results.Descriptive)
	writeBootstrap(&b, results.Bootstrap)
	writeDistribution(&b, results.Distribution)
	writeOutliers(&b, results.Outliers)
	writeCorrelation(&b, results.Correlation)
	writeTimeSeries(&b, results.TimeSeries)
	writeQuality(&b, results.QualityCtl)
	writeReliability(&b, results.Reliability)
	writeHypothesis(&b, results.Hypothesis)
	writePower(&b, results.Power)
	writeUncertainty(&b, results.Uncertainty)
	writeVisualization(&b, results.Visualization)
	writeFailures(&b, results.Failures)

	return b.String()
}

// HTML renders the markdown report to an HTML fragment.
func HTML(results *stats.AnalysisResults) []byte {
	md := Markdown(results)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func writeSanitization(b *strings.Builder, report stats.SanitizationReport) {
	b.WriteString("## Sanitization\n\n")
	fmt.Fprintf(b, "| Dataset | Original | Remaining |\n|---|---|---|\n")
	for i := range report.Original {
		fmt.Fprintf(b, "| %d | %d | %d |\n", i, report.Original[i], report.Remaining[i])
	}
	fmt.Fprintf(b, "\nRows removed: %d\n\n", report.RowsRemovedTotal)
}

func writeDescriptive(b *strings.Builder, descriptive []stats.DescriptiveStats) {
	if len(descriptive) == 0 {
		return
	}
	b.WriteString("## Descriptive Statistics\n\n")
	b.WriteString("| Dataset | N | Mean | Median | StdDev | Min | Max | Skewness | Kurtosis |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for i, d := range descriptive {
		fmt.Fprintf(b, "| %d | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %.3f | %.3f |\n",
			i, d.N, d.Mean, d.Median, d.StdDev, d.Min, d.Max, d.Skewness, d.Kurtosis)
	}
	b.WriteString("\n")
}

func writeBootstrap(b *strings.Builder, intervals [][]stats.BootstrapResult) {
	nonEmpty := false
	for _, row := range intervals {
		if len(row) > 0 {
			nonEmpty = true
		}
	}
	if !nonEmpty {
		return
	}
	b.WriteString("## Bootstrap Intervals\n\n")
	b.WriteString("| Dataset | Statistic | Observed | CI | BCa | SE |\n|---|---|---|---|---|---|\n")
	for i, row := range intervals {
		for _, r := range row {
			fmt.Fprintf(b, "| %d | %s | %.4g | [%.4g, %.4g] | [%.4g, %.4g] | %.4g |\n",
				i, r.Statistic, r.Observed, r.CI.Lower, r.CI.Upper, r.BCa.Lower, r.BCa.Upper, r.StandardError)
		}
	}
	b.WriteString("\n")
}

func writeDistribution(b *strings.Builder, dist *stats.DistributionAnalysis) {
	if dist == nil {
		return
	}
	b.WriteString("## Distribution\n\n")
	if len(dist.NormalityTests) > 0 {
		b.WriteString("| Test | Statistic | p | Normal |\n|---|---|---|---|\n")
		for _, t := range dist.NormalityTests {
			fmt.Fprintf(b, "| %s | %.4g | %.4g | %v |\n", t.TestName, t.Statistic, t.PValue, t.IsNormal)
		}
		b.WriteString("\n")
	}
	for _, s := range dist.Transformations {
		fmt.Fprintf(b, "- Suggested transform `%s` (+%.3f): %s\n", s.Transformation, s.ImprovementScore, s.Rationale)
	}
	if len(dist.Transformations) > 0 {
		b.WriteString("\n")
	}
}

func writeOutliers(b *strings.Builder, outliers []stats.OutlierAnalysis) {
	if len(outliers) == 0 {
		return
	}
	b.WriteString("## Outliers\n\n")
	for i, o := range outliers {
		fmt.Fprintf(b, "Dataset %d: %.1f%% flagged, combined indices %v\n\n", i, o.OutlierPercentage, o.CombinedIndices)
		for _, m := range o.ByMethod {
			fmt.Fprintf(b, "- %s: %v\n", m.Method, m.Indices)
		}
		b.WriteString("\n")
	}
}

func writeCorrelation(b *strings.Builder, corr *stats.CorrelationAnalysis) {
	if corr == nil {
		return
	}
	fmt.Fprintf(b, "## Correlation (%s)\n\n", corr.Method)
	b.WriteString("| Pair | r | p | Permutation |\n|---|---|---|---|\n")
	for _, p := range corr.Pairs {
		fmt.Fprintf(b, "| %d-%d | %.4f | %.4g | %v |\n", p.I, p.J, p.Coefficient, p.PValue, p.Permutation)
	}
	b.WriteString("\n")
	if corr.DistancePair != nil {
		fmt.Fprintf(b, "Distance correlation: %.4f\n\n", *corr.DistancePair)
	}
}

func writeTimeSeries(b *strings.Builder, series []stats.TimeSeriesAnalysis) {
	if len(series) == 0 {
		return
	}
	b.WriteString("## Time Series\n\n")
	for i, ts := range series {
		fmt.Fprintf(b, "### Dataset %d\n\n", i)
		if ts.Trend != nil {
			fmt.Fprintf(b, "- Trend: slope %.4g, p %.4g, present: %v\n", ts.Trend.Slope, ts.Trend.PValue, ts.Trend.HasTrend)
		}
		if ts.LjungBox != nil {
			fmt.Fprintf(b, "- Ljung-Box: Q %.4g, p %.4g over %d lags\n", ts.LjungBox.Statistic, ts.LjungBox.PValue, ts.LjungBox.Lags)
		}
		if ts.Additive != nil {
			fmt.Fprintf(b, "- Additive decomposition at period %d\n", ts.Additive.Period)
		}
		if ts.STL != nil {
			fmt.Fprintf(b, "- STL decomposition at period %d\n", ts.STL.Period)
		}
		b.WriteString("\n")
	}
}

func writeQuality(b *strings.Builder, qcs []stats.QualityControlAnalysis) {
	if len(qcs) == 0 {
		return
	}
	b.WriteString("## Quality Control\n\n")
	for i, q := range qcs {
		fmt.Fprintf(b, "Dataset %d: center %.4g, limits [%.4g, %.4g], %s",
			i, q.Limits.CenterLine, q.Limits.Lower, q.Limits.Upper, q.Stability)
		if q.Capability != nil {
			fmt.Fprintf(b, "; Cp %.3f, Cpk %.3f (%s), %.0f ppm",
				q.Capability.Cp, q.Capability.Cpk, q.Capability.Assessment, q.Capability.PPMDefective)
		}
		b.WriteString("\n\n")
	}
}

func writeReliability(b *strings.Builder, rel *stats.ReliabilityAnalysis) {
	if rel == nil {
		return
	}
	b.WriteString("## Reliability\n\n")
	fmt.Fprintf(b, "- Cronbach alpha: %.4f\n", rel.CronbachAlpha)
	fmt.Fprintf(b, "- McDonald omega: %.4f\n", rel.McDonaldOmega)
	fmt.Fprintf(b, "- Average inter-item correlation: %.4f\n", rel.AvgInterItemCorr)
	fmt.Fprintf(b, "- Item-total correlations: %v\n\n", rel.ItemTotalCorrelations)
}

func writeHypothesis(b *strings.Builder, tests []stats.HypothesisTest) {
	if len(tests) == 0 {
		return
	}
	b.WriteString("## Hypothesis Tests\n\n")
	b.WriteString("| Test | Statistic | df | p | Verdict |\n|---|---|---|---|---|\n")
	for _, t := range tests {
		verdict := "retain H0"
		if t.Reject {
			verdict = "reject H0"
		}
		fmt.Fprintf(b, "| %s | %.4g | %.2f | %.4g | %s |\n", t.TestName, t.Statistic, t.DF, t.PValue, verdict)
	}
	b.WriteString("\n")
}

func writePower(b *strings.Builder, power *stats.PowerAnalysis) {
	if power == nil {
		return
	}
	b.WriteString("## Power Analysis\n\n")
	fmt.Fprintf(b, "- Effect size (d): %.3f\n", power.EffectSize)
	fmt.Fprintf(b, "- Achieved power at n=%d: %.3f\n", power.SampleSize, power.AchievedPower)
	if power.RequiredSample > 0 {
		fmt.Fprintf(b, "- Required n for 0.80 power: %d\n", power.RequiredSample)
	}
	b.WriteString("\n")
}

func writeUncertainty(b *strings.Builder, budgets []stats.UncertaintyBudget) {
	if len(budgets) == 0 {
		return
	}
	b.WriteString("## Uncertainty Budgets\n\n")
	for _, budget := range budgets {
		fmt.Fprintf(b, "`%s` = %.6g ± %.3g\n\n", budget.Formula, budget.Value, budget.Combined)
		names := make([]string, 0, len(budget.Contributions))
		for name := range budget.Contributions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(b, "- %s: variance share %.3g\n", name, budget.Contributions[name])
		}
		b.WriteString("\n")
	}
}

func writeVisualization(b *strings.Builder, viz *stats.VisualizationSuggestions) {
	if viz == nil {
		return
	}
	b.WriteString("## Suggested Visualizations\n\n")
	for _, p := range viz.Plots {
		fmt.Fprintf(b, "- **%s** %v: %s\n", p.PlotType, p.Variables, p.Rationale)
	}
	for _, t := range viz.Transformations {
		fmt.Fprintf(b, "- transform `%s`: %s\n", t.Transformation, t.Rationale)
	}
	b.WriteString("\n")
}

func writeFailures(b *strings.Builder, failures map[stats.AnalysisKind]string) {
	if len(failures) == 0 {
		return
	}
	b.WriteString("## Failures\n\n")
	kinds := make([]string, 0, len(failures))
	for k := range failures {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(b, "- %s: %s\n", k, failures[stats.AnalysisKind(k)])
	}
	b.WriteString("\n")
}
