package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"anastat/domain/core"
	"anastat/domain/dataset"
	apperrors "anastat/internal/errors"
	"anastat/ports"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// Create inserts a new dataset into the library
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	if err := ds.Validate(); err != nil {
		return apperrors.Wrap(err, "invalid dataset")
	}

	query := `INSERT INTO datasets (
		id, name, values, uncertainties, unit, source, tags, pinned, created_at, modified_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	)`

	_, err := r.db.ExecContext(ctx, query,
		ds.ID, ds.Name,
		pq.Float64Array(ds.Values), pq.Float64Array(ds.Uncertainties),
		ds.Unit, ds.Source, pq.StringArray(ds.Tags), ds.Pinned,
		ds.CreatedAt, ds.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID retrieves a dataset by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	query := `SELECT
		id, name, values, uncertainties, unit, source, tags, pinned, created_at, modified_at
	FROM datasets WHERE id = $1`

	var ds dataset.Dataset
	var values, uncertainties pq.Float64Array
	var tags pq.StringArray

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ds.ID, &ds.Name, &values, &uncertainties,
		&ds.Unit, &ds.Source, &tags, &ds.Pinned,
		&ds.CreatedAt, &ds.ModifiedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound(fmt.Sprintf("dataset %s", id))
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	ds.Values = []float64(values)
	ds.Uncertainties = []float64(uncertainties)
	ds.Tags = []string(tags)
	return &ds, nil
}

// Update replaces a dataset's mutable fields
func (r *datasetRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	if err := ds.Validate(); err != nil {
		return apperrors.Wrap(err, "invalid dataset")
	}
	ds.Touch()

	query := `UPDATE datasets SET
		name = $2, values = $3, uncertainties = $4, unit = $5,
		source = $6, tags = $7, pinned = $8, modified_at = $9
	WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		ds.ID, ds.Name,
		pq.Float64Array(ds.Values), pq.Float64Array(ds.Uncertainties),
		ds.Unit, ds.Source, pq.StringArray(ds.Tags), ds.Pinned, ds.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	return requireRow(result, ds.ID)
}

// Delete removes a dataset from the library
func (r *datasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	return requireRow(result, id)
}

// List returns datasets matching the filter, pinned first, newest first
func (r *datasetRepository) List(ctx context.Context, filter dataset.SearchFilter) ([]*dataset.Dataset, error) {
	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		p := arg("%" + q + "%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR source ILIKE %s)", p, p))
	}
	if len(filter.Tags) > 0 {
		conditions = append(conditions, fmt.Sprintf("tags @> %s", arg(pq.StringArray(filter.Tags))))
	}
	if filter.PinnedOnly {
		conditions = append(conditions, "pinned = TRUE")
	}

	query := `SELECT
		id, name, values, uncertainties, unit, source, tags, pinned, created_at, modified_at
	FROM datasets`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY pinned DESC, modified_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]*dataset.Dataset, 0) // Initialize as empty slice, not nil
	for rows.Next() {
		var ds dataset.Dataset
		var values, uncertainties pq.Float64Array
		var tags pq.StringArray
		if err := rows.Scan(
			&ds.ID, &ds.Name, &values, &uncertainties,
			&ds.Unit, &ds.Source, &tags, &ds.Pinned,
			&ds.CreatedAt, &ds.ModifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		ds.Values = []float64(values)
		ds.Uncertainties = []float64(uncertainties)
		ds.Tags = []string(tags)
		datasets = append(datasets, &ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate datasets: %w", err)
	}
	return datasets, nil
}

// SetPinned toggles the pin flag
func (r *datasetRepository) SetPinned(ctx context.Context, id core.DatasetID, pinned bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE datasets SET pinned = $2, modified_at = NOW() WHERE id = $1`, id, pinned)
	if err != nil {
		return fmt.Errorf("failed to update pin: %w", err)
	}
	return requireRow(result, id)
}

func requireRow(result sql.Result, id core.DatasetID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound(fmt.Sprintf("dataset %s", id))
	}
	return nil
}
