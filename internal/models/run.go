package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanRun represents one scanner execution recorded in the database
type ScanRun struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	Sport                string     `db:"sport" json:"sport"`
	ScanDate             time.Time  `db:"scan_date" json:"scan_date"`
	GameDate             *time.Time `db:"game_date" json:"game_date"`
	TotalPicks           int        `db:"total_picks" json:"total_picks"`
	PlayerPicks          int        `db:"player_picks" json:"player_picks"`
	TeamPicks            int        `db:"team_picks" json:"team_picks"`
	EntitiesAnalyzed     int        `db:"entities_analyzed" json:"entities_analyzed"`
	EntitiesSkipped      int        `db:"entities_skipped" json:"entities_skipped"`
	APIRequestsRemaining *int       `db:"api_requests_remaining" json:"api_requests_remaining"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}
