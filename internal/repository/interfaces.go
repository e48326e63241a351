package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/fplpanel/internal/models"
)

// PanelRepository stores identity-resolved panel rows keyed by
// (player_key, season, gw)
type PanelRepository interface {
	// UpsertRecords inserts or replaces rows atomically and returns how
	// many were written
	UpsertRecords(ctx context.Context, records []models.PlayerRecord) (int, error)
	GetBySeason(ctx context.Context, season int) ([]models.PlayerRecord, error)
	CountBySeason(ctx context.Context) (map[int]int, error)
}

// RunRepository stores the run history
type RunRepository interface {
	Create(ctx context.Context, run *models.PipelineRun) error
	Update(ctx context.Context, run *models.PipelineRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error)
	GetLatest(ctx context.Context, kind string) (*models.PipelineRun, error)
	List(ctx context.Context, limit int) ([]*models.PipelineRun, error)
}
