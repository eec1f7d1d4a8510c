package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floorgang/floorscanner/internal/database"
	"github.com/floorgang/floorscanner/internal/models"
)

// PostgresScanRunRepository implements ScanRunRepository for PostgreSQL
type PostgresScanRunRepository struct {
	db *database.DB
}

// NewPostgresScanRunRepository creates a new scan run repository
func NewPostgresScanRunRepository(db *database.DB) ScanRunRepository {
	return &PostgresScanRunRepository{db: db}
}

// Create inserts a new scan run record
func (s *PostgresScanRunRepository) Create(ctx context.Context, run *models.ScanRun) error {
	query := `
		INSERT INTO scanner_runs (id, sport, scan_date, game_date, total_picks, player_picks,
		                          team_picks, entities_analyzed, entities_skipped, api_requests_remaining)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.GetPool().Exec(ctx, query,
		run.ID, run.Sport, run.ScanDate, run.GameDate, run.TotalPicks, run.PlayerPicks,
		run.TeamPicks, run.EntitiesAnalyzed, run.EntitiesSkipped, run.APIRequestsRemaining,
	)
	if err != nil {
		return fmt.Errorf("failed to create scan run: %w", err)
	}

	return nil
}

// GetByID retrieves a scan run by ID
func (s *PostgresScanRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ScanRun, error) {
	query := `
		SELECT id, sport, scan_date, game_date, total_picks, player_picks, team_picks,
		       entities_analyzed, entities_skipped, api_requests_remaining, created_at
		FROM scanner_runs WHERE id = $1
	`

	run := &models.ScanRun{}
	err := s.db.GetPool().QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Sport, &run.ScanDate, &run.GameDate, &run.TotalPicks, &run.PlayerPicks,
		&run.TeamPicks, &run.EntitiesAnalyzed, &run.EntitiesSkipped, &run.APIRequestsRemaining, &run.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan run: %w", err)
	}

	return run, nil
}

// GetByScanDate retrieves every run recorded for a scan date, newest first
func (s *PostgresScanRunRepository) GetByScanDate(ctx context.Context, scanDate time.Time) ([]*models.ScanRun, error) {
	query := `
		SELECT id, sport, scan_date, game_date, total_picks, player_picks, team_picks,
		       entities_analyzed, entities_skipped, api_requests_remaining, created_at
		FROM scanner_runs
		WHERE scan_date = $1::date
		ORDER BY created_at DESC
	`

	rows, err := s.db.GetPool().Query(ctx, query, scanDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs by date: %w", err)
	}
	defer rows.Close()

	var runs []*models.ScanRun
	for rows.Next() {
		run := &models.ScanRun{}
		err := rows.Scan(
			&run.ID, &run.Sport, &run.ScanDate, &run.GameDate, &run.TotalPicks, &run.PlayerPicks,
			&run.TeamPicks, &run.EntitiesAnalyzed, &run.EntitiesSkipped, &run.APIRequestsRemaining, &run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Latest retrieves the most recently recorded scan run
func (s *PostgresScanRunRepository) Latest(ctx context.Context) (*models.ScanRun, error) {
	query := `
		SELECT id, sport, scan_date, game_date, total_picks, player_picks, team_picks,
		       entities_analyzed, entities_skipped, api_requests_remaining, created_at
		FROM scanner_runs
		ORDER BY created_at DESC
		LIMIT 1
	`

	run := &models.ScanRun{}
	err := s.db.GetPool().QueryRow(ctx, query).Scan(
		&run.ID, &run.Sport, &run.ScanDate, &run.GameDate, &run.TotalPicks, &run.PlayerPicks,
		&run.TeamPicks, &run.EntitiesAnalyzed, &run.EntitiesSkipped, &run.APIRequestsRemaining, &run.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest scan run: %w", err)
	}

	return run, nil
}
