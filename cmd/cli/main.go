package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"anastat/adapters/excel"
	"anastat/app"
	"anastat/domain/stats"
	"anastat/internal/report"
	"anastat/internal/testkit"
	"anastat/ports"
)

// consoleProgress prints unordered best-effort progress lines.
type consoleProgress struct{}

func (consoleProgress) Report(current, total int, message string) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, total, message)
}

func main() {
	var (
		inPath  = flag.String("in", "", "input CSV file, one dataset per column")
		outPath = flag.String("out", "", "output Excel workbook (optional)")
		mdPath  = flag.String("md", "", "output markdown report (optional)")
		seed    = flag.Int64("seed", 42, "random seed")
		method  = flag.String("method", "pearson", "correlation method: pearson, spearman, kendall, biweight")
		policy  = flag.String("nan", "remove", "NaN policy: error, remove, mean_impute, median_impute, nearest_neighbor_impute, zero, ignore")
		boots   = flag.Int("bootstrap", 1000, "bootstrap sample count")
		perms   = flag.Int("permutations", 5000, "permutation count")
		confid  = flag.Float64("confidence", 0.95, "confidence level")
		verbose = flag.Bool("v", false, "progress output")
	)
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	datasets, err := readInput(*inPath)
	if err != nil {
		log.Fatalf("[CLI] Failed to read input: %v", err)
	}

	opts := stats.DefaultOptions()
	opts.RandomSeed = *seed
	opts.BootstrapSamples = *boots
	opts.PermutationCount = *perms
	opts.ConfidenceLevel = *confid
	if opts.CorrelationMethod, err = stats.ParseCorrelationMethod(*method); err != nil {
		log.Fatalf("[CLI] %v", err)
	}
	if opts.NaNPolicy, err = stats.ParseNaNPolicy(*policy); err != nil {
		log.Fatalf("[CLI] %v", err)
	}

	var progress ports.ProgressReporter = ports.NopProgress{}
	if *verbose {
		progress = consoleProgress{}
	}

	service := app.NewAnalysisService(testkit.NewRNGAdapter())
	results, err := service.Analyze(context.Background(), datasets, opts, progress)
	if err != nil {
		log.Fatalf("[CLI] Analysis failed: %v", err)
	}

	if *outPath != "" {
		writer := excel.NewResultWriter()
		if err := writer.Export(context.Background(), results, *outPath); err != nil {
			log.Fatalf("[CLI] Export failed: %v", err)
		}
		log.Printf("[CLI] Workbook written to %s", *outPath)
	}
	if *mdPath != "" {
		if err := os.WriteFile(*mdPath, []byte(report.Markdown(results)), 0o644); err != nil {
			log.Fatalf("[CLI] Report write failed: %v", err)
		}
		log.Printf("[CLI] Report written to %s", *mdPath)
	}
	if *outPath == "" && *mdPath == "" {
		fmt.Print(report.Markdown(results))
	}
}

// readInput dispatches on file extension: Excel workbooks go through the
// excelize-backed reader, everything else is parsed as CSV.
func readInput(path string) ([][]float64, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" || ext == ".xlsm" {
		_, columns, err := excel.NewDatasetReader(path).Read()
		return columns, err
	}
	return readCSVColumns(path)
}

// readCSVColumns parses the file into one dataset per column. A first row of
// non-numeric cells is treated as a header and skipped. Blank cells become
// NaN so the configured policy decides their fate.
func readCSVColumns(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	start := 0
	if isHeader(rows[0]) {
		start = 1
	}
	if start >= len(rows) {
		return nil, fmt.Errorf("%s has no data rows", path)
	}

	cols := len(rows[start])
	datasets := make([][]float64, cols)
	for _, row := range rows[start:] {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged row in %s: expected %d columns, got %d", path, cols, len(row))
		}
		for j, cell := range row {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", j, err)
			}
			datasets[j] = append(datasets[j], v)
		}
	}
	return datasets, nil
}

func isHeader(row []string) bool {
	for _, cell := range row {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return false
		}
	}
	return true
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a number", cell)
	}
	return v, nil
}
