package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityKind discriminates player props from team totals
type EntityKind string

const (
	EntityPlayer EntityKind = "player"
	EntityTeam   EntityKind = "team"
)

// BetSide represents the side of a pick (OVER or UNDER)
type BetSide string

const (
	SideOver  BetSide = "OVER"
	SideUnder BetSide = "UNDER"
)

// PickResult represents the settled outcome of a pick
type PickResult string

const (
	ResultHit  PickResult = "HIT"
	ResultMiss PickResult = "MISS"
)

// Pick represents a single betting recommendation produced by a scan
type Pick struct {
	ID            uuid.UUID   `db:"id" json:"id" validate:"required,uuid4"`
	RunID         uuid.UUID   `db:"run_id" json:"run_id"`
	Sport         string      `db:"sport" json:"sport"`
	ScanDate      time.Time   `db:"scan_date" json:"scan_date"`
	GameDate      *time.Time  `db:"game_date" json:"game_date"`
	Kind          EntityKind  `db:"entity_type" json:"entity_type" validate:"required,oneof=player team"`
	EntityName    string      `db:"entity_name" json:"entity_name" validate:"required"`
	TeamAbbr      *string     `db:"team_abbr" json:"team_abbr"`
	Stat          StatKey     `db:"stat_type" json:"stat_type" validate:"required"`
	Side          BetSide     `db:"bet_type" json:"bet_type" validate:"required,oneof=OVER UNDER"`
	Line          float64     `db:"line" json:"line"`
	Odds          int         `db:"odds" json:"odds"`
	Floor         *float64    `db:"floor" json:"floor"`   // set for OVER picks
	Ceiling       *float64    `db:"ceiling" json:"ceiling"` // set for team UNDER picks
	GamesAnalyzed int         `db:"games_analyzed" json:"games_analyzed"`
	HitRate       string      `db:"hit_rate" json:"hit_rate"`
	Season        string      `db:"season" json:"season"`
	ActualValue   *float64    `db:"actual_value" json:"actual_value"`
	Result        *PickResult `db:"result" json:"result"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// NewPlayerPick builds a player prop pick from a history profile and the matched
// alternate line. Player picks are always OVER and carry the observed floor.
func NewPlayerPick(profile HistoryProfile, offer MarketOffer) Pick {
	floor := profile.Floor
	return Pick{
		ID:            uuid.New(),
		Kind:          EntityPlayer,
		EntityName:    profile.Entity,
		TeamAbbr:      profile.TeamAbbr,
		Stat:          profile.Stat,
		Side:          SideOver,
		Line:          offer.Line,
		Odds:          offer.Odds,
		Floor:         &floor,
		GamesAnalyzed: profile.Games,
		HitRate:       profile.HitRateLabel(),
		Season:        profile.Season,
	}
}

// NewTeamPick builds a team total pick from a history profile and the matched
// alternate line. OVER picks carry the floor, UNDER picks the ceiling.
func NewTeamPick(profile HistoryProfile, side BetSide, offer MarketOffer) Pick {
	pick := Pick{
		ID:            uuid.New(),
		Kind:          EntityTeam,
		EntityName:    profile.Entity,
		TeamAbbr:      profile.TeamAbbr,
		Stat:          StatPoints,
		Side:          side,
		Line:          offer.Line,
		Odds:          offer.Odds,
		GamesAnalyzed: profile.Games,
		HitRate:       profile.HitRateLabel(),
		Season:        profile.Season,
	}
	if side == SideUnder {
		ceiling := profile.Ceiling
		pick.Ceiling = &ceiling
	} else {
		floor := profile.Floor
		pick.Floor = &floor
	}
	return pick
}

// Label returns a short human-readable description of the pick
func (p *Pick) Label() string {
	if p.Kind == EntityPlayer {
		return fmt.Sprintf("%s %s %g %s %s", p.EntityName, p.Stat, p.Line, sideWord(p.Side), FormatAmerican(p.Odds))
	}
	return fmt.Sprintf("%s Total %g %s %s", p.EntityName, p.Line, sideWord(p.Side), FormatAmerican(p.Odds))
}

// IsSettled checks if the pick has a recorded result
func (p *Pick) IsSettled() bool {
	return p.Result != nil && p.ActualValue != nil
}

// Bound returns the history bound the pick was matched against (floor for
// OVER, ceiling for UNDER) and false when the value is missing.
func (p *Pick) Bound() (float64, bool) {
	if p.Side == SideUnder {
		if p.Ceiling == nil {
			return 0, false
		}
		return *p.Ceiling, true
	}
	if p.Floor == nil {
		return 0, false
	}
	return *p.Floor, true
}

func sideWord(s BetSide) string {
	if s == SideUnder {
		return "Under"
	}
	return "Over"
}
