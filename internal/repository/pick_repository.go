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

// PostgresPickRepository implements PickRepository for PostgreSQL
type PostgresPickRepository struct {
	db *database.DB
}

// NewPostgresPickRepository creates a new pick repository
func NewPostgresPickRepository(db *database.DB) PickRepository {
	return &PostgresPickRepository{db: db}
}

// Create inserts a new pick
func (p *PostgresPickRepository) Create(ctx context.Context, pick *models.Pick) error {
	query := `
		INSERT INTO picks (id, run_id, sport, scan_date, game_date, entity_type, entity_name, team_abbr,
		                   stat_type, bet_type, line, odds, floor, ceiling, games_analyzed, hit_rate,
		                   season, actual_value, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := p.db.GetPool().Exec(ctx, query,
		pick.ID, pick.RunID, pick.Sport, pick.ScanDate, pick.GameDate, pick.Kind, pick.EntityName,
		pick.TeamAbbr, pick.Stat, pick.Side, pick.Line, pick.Odds, pick.Floor, pick.Ceiling,
		pick.GamesAnalyzed, pick.HitRate, pick.Season, pick.ActualValue, pick.Result,
	)
	if err != nil {
		return fmt.Errorf("failed to create pick: %w", err)
	}

	return nil
}

// CreateBatch inserts a full scan's picks in one round trip
func (p *PostgresPickRepository) CreateBatch(ctx context.Context, picks []*models.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	columns := []string{
		"id", "run_id", "sport", "scan_date", "game_date", "entity_type", "entity_name", "team_abbr",
		"stat_type", "bet_type", "line", "odds", "floor", "ceiling", "games_analyzed", "hit_rate",
		"season", "actual_value", "result",
	}

	rows := make([][]interface{}, len(picks))
	for i, pick := range picks {
		rows[i] = []interface{}{
			pick.ID, pick.RunID, pick.Sport, pick.ScanDate, pick.GameDate, pick.Kind, pick.EntityName,
			pick.TeamAbbr, pick.Stat, pick.Side, pick.Line, pick.Odds, pick.Floor, pick.Ceiling,
			pick.GamesAnalyzed, pick.HitRate, pick.Season, pick.ActualValue, pick.Result,
		}
	}

	count, err := p.db.GetPool().CopyFrom(ctx, pgx.Identifier{"picks"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to batch insert picks: %w", err)
	}

	if count != int64(len(picks)) {
		return fmt.Errorf("inserted %d picks, expected %d", count, len(picks))
	}

	return nil
}

// GetByID retrieves a pick by ID
func (p *PostgresPickRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	query := `
		SELECT id, run_id, sport, scan_date, game_date, entity_type, entity_name, team_abbr, stat_type,
		       bet_type, line, odds, floor, ceiling, games_analyzed, hit_rate, season, actual_value,
		       result, created_at
		FROM picks WHERE id = $1
	`

	pick := &models.Pick{}
	err := p.db.GetPool().QueryRow(ctx, query, id).Scan(
		&pick.ID, &pick.RunID, &pick.Sport, &pick.ScanDate, &pick.GameDate, &pick.Kind, &pick.EntityName,
		&pick.TeamAbbr, &pick.Stat, &pick.Side, &pick.Line, &pick.Odds, &pick.Floor, &pick.Ceiling,
		&pick.GamesAnalyzed, &pick.HitRate, &pick.Season, &pick.ActualValue, &pick.Result, &pick.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}

	return pick, nil
}

// GetByRunID retrieves all picks recorded for one scan run, best priced first
func (p *PostgresPickRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.Pick, error) {
	query := `
		SELECT id, run_id, sport, scan_date, game_date, entity_type, entity_name, team_abbr, stat_type,
		       bet_type, line, odds, floor, ceiling, games_analyzed, hit_rate, season, actual_value,
		       result, created_at
		FROM picks
		WHERE run_id = $1
		ORDER BY odds DESC
	`

	rows, err := p.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks by run: %w", err)
	}
	defer rows.Close()

	return scanPicks(rows)
}

// GetByGameDate retrieves all picks for games played on the given date
func (p *PostgresPickRepository) GetByGameDate(ctx context.Context, gameDate time.Time) ([]*models.Pick, error) {
	query := `
		SELECT id, run_id, sport, scan_date, game_date, entity_type, entity_name, team_abbr, stat_type,
		       bet_type, line, odds, floor, ceiling, games_analyzed, hit_rate, season, actual_value,
		       result, created_at
		FROM picks
		WHERE game_date = $1::date
		ORDER BY odds DESC
	`

	rows, err := p.db.GetPool().Query(ctx, query, gameDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks by game date: %w", err)
	}
	defer rows.Close()

	return scanPicks(rows)
}

// GetUnsettled retrieves picks for the given game date that have no recorded result
func (p *PostgresPickRepository) GetUnsettled(ctx context.Context, gameDate time.Time) ([]*models.Pick, error) {
	query := `
		SELECT id, run_id, sport, scan_date, game_date, entity_type, entity_name, team_abbr, stat_type,
		       bet_type, line, odds, floor, ceiling, games_analyzed, hit_rate, season, actual_value,
		       result, created_at
		FROM picks
		WHERE game_date = $1::date AND result IS NULL
		ORDER BY odds DESC
	`

	rows, err := p.db.GetPool().Query(ctx, query, gameDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query unsettled picks: %w", err)
	}
	defer rows.Close()

	return scanPicks(rows)
}

// SettleResult records the actual stat value and graded outcome for a pick
func (p *PostgresPickRepository) SettleResult(ctx context.Context, id uuid.UUID, actual float64, result models.PickResult) error {
	query := `
		UPDATE picks SET actual_value = $2, result = $3
		WHERE id = $1
	`

	commandTag, err := p.db.GetPool().Exec(ctx, query, id, actual, result)
	if err != nil {
		return fmt.Errorf("failed to settle pick: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// scanPicks drains a pick result set
func scanPicks(rows pgx.Rows) ([]*models.Pick, error) {
	var picks []*models.Pick
	for rows.Next() {
		pick := &models.Pick{}
		err := rows.Scan(
			&pick.ID, &pick.RunID, &pick.Sport, &pick.ScanDate, &pick.GameDate, &pick.Kind, &pick.EntityName,
			&pick.TeamAbbr, &pick.Stat, &pick.Side, &pick.Line, &pick.Odds, &pick.Floor, &pick.Ceiling,
			&pick.GamesAnalyzed, &pick.HitRate, &pick.Season, &pick.ActualValue, &pick.Result, &pick.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, pick)
	}

	return picks, rows.Err()
}
