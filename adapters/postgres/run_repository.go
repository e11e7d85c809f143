package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"anastat/domain/core"
	"anastat/domain/stats"
	apperrors "anastat/internal/errors"
	"anastat/ports"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new analysis run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Save stores a completed run with its options and results as JSONB
func (r *runRepository) Save(ctx context.Context, datasetIDs []core.DatasetID, opts stats.AnalysisOptions, results *stats.AnalysisResults) error {
	optionsJSON, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	ids := make([]string, len(datasetIDs))
	for i, id := range datasetIDs {
		ids[i] = id.String()
	}

	query := `INSERT INTO analysis_runs (
		id, dataset_ids, options, results, started_at, elapsed_seconds
	) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		results.RunID, pq.StringArray(ids), optionsJSON, resultsJSON,
		results.StartedAt.Time(), results.Elapsed,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Get loads the stored results for one run
func (r *runRepository) Get(ctx context.Context, id core.RunID) (*stats.AnalysisResults, error) {
	var resultsJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT results FROM analysis_runs WHERE id = $1`, id).Scan(&resultsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound(fmt.Sprintf("run %s", id))
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var results stats.AnalysisResults
	if err := json.Unmarshal(resultsJSON, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	return &results, nil
}

// ListRecent returns the newest run IDs, most recent first
func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]core.RunID, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM analysis_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	ids := make([]core.RunID, 0, limit)
	for rows.Next() {
		var id core.RunID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
