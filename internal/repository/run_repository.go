package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/fplpanel/internal/database"
	"github.com/yourusername/fplpanel/internal/models"
)

const runColumns = `id, kind, status, model_type, season, gw, rows_in, rows_out, metrics, error, started_at, finished_at`

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db database.Querier
}

// NewPostgresRunRepository creates a new run repository
func NewPostgresRunRepository(db database.Querier) RunRepository {
	return &PostgresRunRepository{db: db}
}

// Create inserts a new run
func (r *PostgresRunRepository) Create(ctx context.Context, run *models.PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		run.ID, run.Kind, run.Status, run.ModelType, run.Season, run.Gameweek, run.RowsIn, run.RowsOut,
		nullableJSON(run.Metrics), run.Error, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// Update stores the outcome of a run
func (r *PostgresRunRepository) Update(ctx context.Context, run *models.PipelineRun) error {
	query := `
		UPDATE pipeline_runs SET
			status = $2, model_type = $3, season = $4, gw = $5, rows_in = $6, rows_out = $7,
			metrics = $8, error = $9, finished_at = $10
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		run.ID, run.Status, run.ModelType, run.Season, run.Gameweek, run.RowsIn, run.RowsOut,
		nullableJSON(run.Metrics), run.Error, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetByID retrieves a run by ID
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetLatest retrieves the most recently started run of a kind
func (r *PostgresRunRepository) GetLatest(ctx context.Context, kind string) (*models.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE kind = $1 ORDER BY started_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRow(ctx, query, kind))
}

// List retrieves the most recent runs of any kind
func (r *PostgresRunRepository) List(ctx context.Context, limit int) ([]*models.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *PostgresRunRepository) scanOne(row pgx.Row) (*models.PipelineRun, error) {
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func scanRun(row pgx.Row) (*models.PipelineRun, error) {
	run := &models.PipelineRun{}
	err := row.Scan(
		&run.ID, &run.Kind, &run.Status, &run.ModelType, &run.Season, &run.Gameweek, &run.RowsIn,
		&run.RowsOut, &run.Metrics, &run.Error, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// nullableJSON stores an empty metrics document as NULL
func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
