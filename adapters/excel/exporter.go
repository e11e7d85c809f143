package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"anastat/domain/stats"
	"anastat/ports"
)

// ResultWriter exports a completed analysis run as an Excel workbook, one
// sheet per populated result slot.
type ResultWriter struct{}

// NewResultWriter creates an Excel exporter.
func NewResultWriter() ports.ResultExporter {
	return &ResultWriter{}
}

// Export writes the workbook to path. Empty slots produce no sheet.
func (w *ResultWriter) Export(ctx context.Context, results *stats.AnalysisResults, path string) error {
	if results == nil {
		return fmt.Errorf("no results to export")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []func(*excelize.File, int) error{
		func(f *excelize.File, style int) error { return writeSummarySheet(f, style, results) },
	}
	if len(results.Descriptive) > 0 {
		sheets = append(sheets, func(f *excelize.File, style int) error {
			return writeDescriptiveSheet(f, style, results.Descriptive)
		})
	}
	if results.Correlation != nil {
		sheets = append(sheets, func(f *excelize.File, style int) error {
			return writeCorrelationSheet(f, style, results.Correlation)
		})
	}
	if len(results.Outliers) > 0 {
		sheets = append(sheets, func(f *excelize.File, style int) error {
			return writeOutlierSheet(f, style, results.Outliers)
		})
	}
	if len(results.Hypothesis) > 0 || results.Distribution != nil {
		sheets = append(sheets, func(f *excelize.File, style int) error {
			return writeTestsSheet(f, style, results)
		})
	}
	if len(results.QualityCtl) > 0 {
		sheets = append(sheets, func(f *excelize.File, style int) error {
			return writeQualitySheet(f, style, results.QualityCtl)
		})
	}
	if len(results.Uncertainty) > 0 {
		sheets = append(sheets, func(f *excelize.File, style int) error {
			return writeUncertaintySheet(f, style, results.Uncertainty)
		})
	}

	for _, write := range sheets {
		if err := write(f, headerStyle); err != nil {
			return err
		}
	}
	// The default sheet is replaced by Summary.
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func newSheet(f *excelize.File, name string, style int, headers []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	if len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(name, "A1", last, style); err != nil {
			return err
		}
		// Generous fixed width beats measuring every cell.
		endCol, _ := excelize.ColumnNumberToName(len(headers))
		if err := f.SetColWidth(name, "A", endCol, 18); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, style int, results *stats.AnalysisResults) error {
	const sheet = "Summary"
	if err := newSheet(f, sheet, style, []string{"Field", "Value"}); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Run ID", results.RunID.String()},
		{"Started", results.StartedAt.Time().Format("2006-01-02 15:04:05")},
		{"Elapsed (s)", results.Elapsed},
		{"Datasets", len(results.Sanitization.Original)},
		{"Rows removed", results.Sanitization.RowsRemovedTotal},
		{"Failures", len(results.Failures)},
	}
	for kind, msg := range results.Failures {
		rows = append(rows, []interface{}{fmt.Sprintf("Failure: %s", kind), msg})
	}
	for i, r := range rows {
		if err := setRow(f, sheet, i+2, r...); err != nil {
			return err
		}
	}
	return nil
}

func writeDescriptiveSheet(f *excelize.File, style int, descriptive []stats.DescriptiveStats) error {
	const sheet = "Descriptive"
	headers := []string{"Dataset", "N", "Mean", "Median", "StdDev", "Variance", "Min", "Max", "Q1", "Q3", "Skewness", "Kurtosis", "CV", "SE Mean"}
	if err := newSheet(f, sheet, style, headers); err != nil {
		return err
	}
	for i, d := range descriptive {
		if err := setRow(f, sheet, i+2,
			i, d.N, d.Mean, d.Median, d.StdDev, d.Variance,
			d.Min, d.Max, d.Q1, d.Q3, d.Skewness, d.Kurtosis, d.CV, d.StdErrMean,
		); err != nil {
			return err
		}
	}
	return nil
}

func writeCorrelationSheet(f *excelize.File, style int, corr *stats.CorrelationAnalysis) error {
	const sheet = "Correlation"
	if err := newSheet(f, sheet, style, []string{"Pair", "Coefficient", "P-Value", "Permutation"}); err != nil {
		return err
	}
	row := 2
	for _, p := range corr.Pairs {
		if err := setRow(f, sheet, row,
			fmt.Sprintf("%d-%d", p.I, p.J), p.Coefficient, p.PValue, p.Permutation,
		); err != nil {
			return err
		}
		row++
	}

	// Matrix block below the pair table.
	row++
	if err := setRow(f, sheet, row, fmt.Sprintf("Matrix (%s)", corr.Method)); err != nil {
		return err
	}
	for i, matrixRow := range corr.Matrix {
		values := make([]interface{}, len(matrixRow))
		for j, v := range matrixRow {
			values[j] = v
		}
		if err := setRow(f, sheet, row+1+i, values...); err != nil {
			return err
		}
	}
	return nil
}

func writeOutlierSheet(f *excelize.File, style int, outliers []stats.OutlierAnalysis) error {
	const sheet = "Outliers"
	if err := newSheet(f, sheet, style, []string{"Dataset", "Method", "Flagged Indices", "Combined %"}); err != nil {
		return err
	}
	row := 2
	for i, o := range outliers {
		for _, m := range o.ByMethod {
			if err := setRow(f, sheet, row, i, m.Method, fmt.Sprint(m.Indices), o.OutlierPercentage); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeTestsSheet(f *excelize.File, style int, results *stats.AnalysisResults) error {
	const sheet = "Tests"
	if err := newSheet(f, sheet, style, []string{"Test", "Statistic", "P-Value", "Verdict"}); err != nil {
		return err
	}
	row := 2
	if results.Distribution != nil {
		for _, t := range results.Distribution.NormalityTests {
			verdict := "non-normal"
			if t.IsNormal {
				verdict = "normal"
			}
			if err := setRow(f, sheet, row, t.TestName, t.Statistic, t.PValue, verdict); err != nil {
				return err
			}
			row++
		}
	}
	for _, t := range results.Hypothesis {
		verdict := "retain H0"
		if t.Reject {
			verdict = "reject H0"
		}
		if err := setRow(f, sheet, row, t.TestName, t.Statistic, t.PValue, verdict); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeQualitySheet(f *excelize.File, style int, qcs []stats.QualityControlAnalysis) error {
	const sheet = "QualityControl"
	if err := newSheet(f, sheet, style, []string{"Dataset", "Center", "UCL", "LCL", "Cp", "Cpk", "PPM", "Assessment", "Stability"}); err != nil {
		return err
	}
	for i, q := range qcs {
		values := []interface{}{i, q.Limits.CenterLine, q.Limits.Upper, q.Limits.Lower}
		if q.Capability != nil {
			values = append(values, q.Capability.Cp, q.Capability.Cpk, q.Capability.PPMDefective, q.Capability.Assessment)
		} else {
			values = append(values, "", "", "", "")
		}
		values = append(values, q.Stability)
		if err := setRow(f, sheet, i+2, values...); err != nil {
			return err
		}
	}
	return nil
}

func writeUncertaintySheet(f *excelize.File, style int, budgets []stats.UncertaintyBudget) error {
	const sheet = "Uncertainty"
	if err := newSheet(f, sheet, style, []string{"Formula", "Value", "Combined", "Variable", "Variance Share"}); err != nil {
		return err
	}
	row := 2
	for _, b := range budgets {
		if err := setRow(f, sheet, row, b.Formula, b.Value, b.Combined); err != nil {
			return err
		}
		row++
		for name, contribution := range b.Contributions {
			if err := setRow(f, sheet, row, "", "", "", name, contribution); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
