package models

import "time"

// Event represents one scheduled game on the odds board
type Event struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

// MarketOffer is a single alternate strike quoted by the bookmaker
type MarketOffer struct {
	Line float64 `json:"line"`
	Odds int     `json:"odds"`
}

// PlayerLines groups one player's alternate offers by stat
type PlayerLines map[StatKey][]MarketOffer

// TeamTotalLines holds one team's alternate total offers by side
type TeamTotalLines struct {
	Over  []MarketOffer
	Under []MarketOffer
}

// Slate is the full day's board: events plus the alternate lines they expose,
// keyed by player and team name respectively.
type Slate struct {
	Events      []Event
	PlayerProps map[string]PlayerLines
	TeamTotals  map[string]TeamTotalLines
}

// FirstCommence returns the earliest commence time across the slate's events
// and false when the slate is empty.
func (s *Slate) FirstCommence() (time.Time, bool) {
	if len(s.Events) == 0 {
		return time.Time{}, false
	}
	first := s.Events[0].CommenceTime
	for _, e := range s.Events[1:] {
		if e.CommenceTime.Before(first) {
			first = e.CommenceTime
		}
	}
	return first, true
}
