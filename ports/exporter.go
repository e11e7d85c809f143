package ports

import (
	"context"

	"anastat/domain/stats"
)

// ResultExporter writes a completed analysis to an external representation
// (workbook, report file). Implementations decide the format.
type ResultExporter interface {
	Export(ctx context.Context, results *stats.AnalysisResults, path string) error
}
