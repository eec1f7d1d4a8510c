package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/floorgang/floorscanner/internal/models"
)

// PickRepository defines the interface for pick data access
type PickRepository interface {
	Create(ctx context.Context, pick *models.Pick) error
	CreateBatch(ctx context.Context, picks []*models.Pick) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error)
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.Pick, error)
	GetByGameDate(ctx context.Context, gameDate time.Time) ([]*models.Pick, error)
	GetUnsettled(ctx context.Context, gameDate time.Time) ([]*models.Pick, error)
	SettleResult(ctx context.Context, id uuid.UUID, actual float64, result models.PickResult) error
}

// ScanRunRepository defines the interface for scan run data access
type ScanRunRepository interface {
	Create(ctx context.Context, run *models.ScanRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ScanRun, error)
	GetByScanDate(ctx context.Context, scanDate time.Time) ([]*models.ScanRun, error)
	Latest(ctx context.Context) (*models.ScanRun, error)
}
