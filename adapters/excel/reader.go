package excel

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DatasetReader loads numeric columns from an Excel workbook.
type DatasetReader struct {
	filePath string
}

// NewDatasetReader creates a reader for the given workbook path.
func NewDatasetReader(filePath string) *DatasetReader {
	return &DatasetReader{filePath: filePath}
}

// Read returns one dataset per column from the first sheet. A first row of
// non-numeric cells names the columns; otherwise columns get positional
// names. Blank or non-numeric cells become NaN so the sanitization policy
// decides how to treat them.
func (r *DatasetReader) Read() ([]string, [][]float64, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("workbook not found: %s", r.filePath)
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheet)
	}
	log.Printf("[DatasetReader] Read %d rows from %s", len(rows), sheet)

	var names []string
	start := 0
	if isHeaderRow(rows[0]) {
		names = rows[0]
		start = 1
	} else {
		for i := range rows[0] {
			names = append(names, "col"+strconv.Itoa(i+1))
		}
	}
	if start >= len(rows) {
		return nil, nil, fmt.Errorf("sheet %s has no data rows", sheet)
	}

	columns := make([][]float64, len(names))
	for _, row := range rows[start:] {
		for j := range names {
			var cell string
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				v = math.NaN()
			}
			columns[j] = append(columns[j], v)
		}
	}
	return names, columns, nil
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return false
		}
	}
	return true
}
