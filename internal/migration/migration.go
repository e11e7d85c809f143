package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"anastat/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDatasetsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create datasets table")
	}
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create analysis_runs table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createDatasetsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS datasets (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			values FLOAT8[] NOT NULL,
			uncertainties FLOAT8[],
			unit VARCHAR(64) DEFAULT '',
			source VARCHAR(255) DEFAULT '',
			tags TEXT[] DEFAULT '{}',
			pinned BOOLEAN DEFAULT false,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			modified_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id UUID PRIMARY KEY,
			dataset_ids UUID[] NOT NULL,
			options JSONB NOT NULL,
			results JSONB,
			started_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			elapsed_seconds DOUBLE PRECISION
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_datasets_name ON datasets (name);
		CREATE INDEX IF NOT EXISTS idx_datasets_pinned ON datasets (pinned) WHERE pinned;
		CREATE INDEX IF NOT EXISTS idx_datasets_tags ON datasets USING GIN (tags);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON analysis_runs (started_at DESC)
	`)
	return err
}
