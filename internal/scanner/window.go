// Package scanner implements the floor scan: profiling recent history,
// matching profiles against alternate lines and ranking what clears the
// price threshold.
package scanner

import (
	"fmt"

	"github.com/floorgang/floorscanner/internal/models"
)

// Truncate caps a game log at the most recent maxGames samples. Logs arrive
// most recent game first, so the head of the slice is kept. A maxGames of
// zero or less leaves the log untouched.
func Truncate(samples []float64, maxGames int) []float64 {
	if maxGames > 0 && len(samples) > maxGames {
		return samples[:maxGames]
	}
	return samples
}

// Bounds returns the minimum and maximum value across the retained window.
// An empty window yields (0, 0).
func Bounds(window []float64) (floor, ceiling float64) {
	if len(window) == 0 {
		return 0, 0
	}
	floor, ceiling = window[0], window[0]
	for _, v := range window[1:] {
		if v < floor {
			floor = v
		}
		if v > ceiling {
			ceiling = v
		}
	}
	return floor, ceiling
}

// ProfileSpec identifies the entity and stat a sample series belongs to.
type ProfileSpec struct {
	Entity   string
	Kind     models.EntityKind
	TeamAbbr *string
	Stat     models.StatKey
	Season   string
}

// BuildProfile gates a game log on the minimum history requirement and folds
// the retained window into a profile. The minimum is judged against the full
// log, before the window is truncated.
func BuildProfile(spec ProfileSpec, samples []float64, minGames, maxGames int) (*models.HistoryProfile, error) {
	if len(samples) < minGames {
		return nil, fmt.Errorf("%s: %d games played, need %d: %w",
			spec.Entity, len(samples), minGames, models.ErrInsufficientHistory)
	}

	window := Truncate(samples, maxGames)
	floor, ceiling := Bounds(window)

	return &models.HistoryProfile{
		Entity:   spec.Entity,
		Kind:     spec.Kind,
		TeamAbbr: spec.TeamAbbr,
		Stat:     spec.Stat,
		Floor:    floor,
		Ceiling:  ceiling,
		Games:    len(window),
		Season:   spec.Season,
	}, nil
}
