package ports

import (
	"context"

	"anastat/domain/core"
	"anastat/domain/stats"
)

// RunRepository persists completed analysis runs so the report surface can
// render them later.
type RunRepository interface {
	Save(ctx context.Context, datasetIDs []core.DatasetID, opts stats.AnalysisOptions, results *stats.AnalysisResults) error
	Get(ctx context.Context, id core.RunID) (*stats.AnalysisResults, error)
	ListRecent(ctx context.Context, limit int) ([]core.RunID, error)
}
