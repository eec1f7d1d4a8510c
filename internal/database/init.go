package database

import (
	"context"
	"fmt"

	"github.com/floorgang/floorscanner/internal/config"
)

// schemaStatements is the scanner's schema, safe to re-run on every start
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS scanner_runs (
		id UUID PRIMARY KEY,
		sport TEXT NOT NULL,
		scan_date DATE NOT NULL,
		game_date DATE,
		total_picks INT NOT NULL DEFAULT 0,
		player_picks INT NOT NULL DEFAULT 0,
		team_picks INT NOT NULL DEFAULT 0,
		entities_analyzed INT NOT NULL DEFAULT 0,
		entities_skipped INT NOT NULL DEFAULT 0,
		api_requests_remaining INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS picks (
		id UUID PRIMARY KEY,
		run_id UUID REFERENCES scanner_runs(id) ON DELETE CASCADE,
		sport TEXT NOT NULL,
		scan_date DATE NOT NULL,
		game_date DATE,
		entity_type TEXT NOT NULL,
		entity_name TEXT NOT NULL,
		team_abbr TEXT,
		stat_type TEXT NOT NULL,
		bet_type TEXT NOT NULL,
		line DOUBLE PRECISION NOT NULL,
		odds INT NOT NULL,
		floor DOUBLE PRECISION,
		ceiling DOUBLE PRECISION,
		games_analyzed INT NOT NULL DEFAULT 0,
		hit_rate TEXT,
		season TEXT,
		actual_value DOUBLE PRECISION,
		result TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scanner_runs_scan_date ON scanner_runs (scan_date)`,
	`CREATE INDEX IF NOT EXISTS idx_picks_run_id ON picks (run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_picks_game_date ON picks (game_date)`,
	`CREATE INDEX IF NOT EXISTS idx_picks_unsettled ON picks (game_date) WHERE result IS NULL`,
}

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	// Create connection pool
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema applies the scanner schema idempotently
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
