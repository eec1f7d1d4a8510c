package provider

import (
	"context"
	"time"

	"github.com/floorgang/floorscanner/internal/models"
)

// HistorySource defines the interface for fetching recent game history
type HistorySource interface {
	// PlayerHistory retrieves the full current-season game log for a player,
	// most recent game first
	PlayerHistory(ctx context.Context, playerName string) (*PlayerHistory, error)

	// TeamHistory retrieves the full current-season scoring log for a team,
	// most recent game first
	TeamHistory(ctx context.Context, teamName string) (*TeamHistory, error)

	// PlayerActual returns the player's stat value for the game played on
	// gameDate, for scoring settled picks
	PlayerActual(ctx context.Context, playerName string, stat models.StatKey, gameDate time.Time) (float64, error)

	// TeamActual returns the team's points scored in the game played on gameDate
	TeamActual(ctx context.Context, teamName string, gameDate time.Time) (float64, error)

	// Name returns the name of the history source
	Name() string
}

// MarketSource defines the interface for fetching the day's betting board
type MarketSource interface {
	// TodaysEvents retrieves the day's scheduled games
	TodaysEvents(ctx context.Context) ([]models.Event, error)

	// EventPlayerLines retrieves alternate player prop lines for one event,
	// keyed by player name
	EventPlayerLines(ctx context.Context, eventID string) (map[string]models.PlayerLines, error)

	// EventTeamTotals retrieves alternate team total lines for one event,
	// keyed by team name
	EventTeamTotals(ctx context.Context, eventID string) (map[string]models.TeamTotalLines, error)

	// RequestsRemaining returns the provider quota left after the last call,
	// or -1 when unknown
	RequestsRemaining() int

	// Name returns the name of the market source
	Name() string
}

// PlayerHistory represents a player's raw game log, most recent game first
type PlayerHistory struct {
	PlayerName string                       `json:"player_name"`
	PlayerID   int64                        `json:"player_id"`
	TeamAbbr   *string                      `json:"team_abbr"` // from the most recent matchup
	Season     string                       `json:"season"`
	Samples    map[models.StatKey][]float64 `json:"samples"`
}

// GameCount returns the number of games in the log
func (h *PlayerHistory) GameCount() int {
	for _, vals := range h.Samples {
		return len(vals)
	}
	return 0
}

// TeamHistory represents a team's raw scoring log, most recent game first
type TeamHistory struct {
	TeamName string    `json:"team_name"`
	TeamID   int64     `json:"team_id"`
	Abbr     string    `json:"abbr"`
	Season   string    `json:"season"`
	Points   []float64 `json:"points"`
}

// ProviderError represents errors from provider operations
type ProviderError struct {
	Provider string // Provider name
	Code     string // Error code (e.g., "rate_limit_exceeded")
	Message  string // Error message
	Err      error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error so callers can use errors.Is
func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}
