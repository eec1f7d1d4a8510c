package models

import "fmt"

// HistoryProfile summarizes an entity's recent history for one stat. Floor and
// Ceiling are the minimum and maximum values observed across the retained
// window of Games samples.
type HistoryProfile struct {
	Entity   string
	Kind     EntityKind
	TeamAbbr *string
	Stat     StatKey
	Floor    float64
	Ceiling  float64
	Games    int
	Season   string
}

// HitRateLabel returns the window record label. The floor is met in every
// retained game by construction, so the label is always N/N.
func (p HistoryProfile) HitRateLabel() string {
	return fmt.Sprintf("%d/%d", p.Games, p.Games)
}
