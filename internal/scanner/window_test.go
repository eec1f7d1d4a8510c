package scanner

import (
	"errors"
	"testing"

	"github.com/floorgang/floorscanner/internal/models"
)

func TestTruncateKeepsMostRecent(t *testing.T) {
	samples := []float64{31, 25, 28, 33, 27}
	window := Truncate(samples, 3)
	if len(window) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(window))
	}
	if window[0] != 31 || window[2] != 28 {
		t.Fatalf("expected head of the log kept, got %v", window)
	}
}

func TestTruncateShortLogUntouched(t *testing.T) {
	samples := []float64{31, 25, 28}
	window := Truncate(samples, 20)
	if len(window) != 3 {
		t.Fatalf("expected all 3 samples, got %d", len(window))
	}
}

func TestTruncateZeroCapUntouched(t *testing.T) {
	samples := []float64{31, 25, 28}
	if got := Truncate(samples, 0); len(got) != 3 {
		t.Fatalf("expected cap of 0 to keep the log, got %d samples", len(got))
	}
}

func TestBoundsEmptyWindow(t *testing.T) {
	floor, ceiling := Bounds(nil)
	if floor != 0 || ceiling != 0 {
		t.Fatalf("expected (0, 0) for empty window, got (%g, %g)", floor, ceiling)
	}
}

func TestBounds(t *testing.T) {
	floor, ceiling := Bounds([]float64{31, 18, 44, 25})
	if floor != 18 {
		t.Fatalf("expected floor 18, got %g", floor)
	}
	if ceiling != 44 {
		t.Fatalf("expected ceiling 44, got %g", ceiling)
	}
}

func TestBoundsSingleSample(t *testing.T) {
	floor, ceiling := Bounds([]float64{30})
	if floor != 30 || ceiling != 30 {
		t.Fatalf("expected (30, 30), got (%g, %g)", floor, ceiling)
	}
}

func TestBuildProfileMinimumJudgedOnFullLog(t *testing.T) {
	// 25 games played clears a 6-game minimum even though only 20 are kept
	samples := make([]float64, 25)
	for i := range samples {
		samples[i] = float64(20 + i%6)
	}
	profile, err := BuildProfile(ProfileSpec{Entity: "Nikola Jokic", Kind: models.EntityPlayer, Stat: models.StatPoints}, samples, 6, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Games != 20 {
		t.Fatalf("expected 20 retained games, got %d", profile.Games)
	}
}

func TestBuildProfileRejectsThinLog(t *testing.T) {
	samples := []float64{12, 15, 9, 14, 11}
	_, err := BuildProfile(ProfileSpec{Entity: "Rookie Guard", Kind: models.EntityPlayer, Stat: models.StatPoints}, samples, 6, 20)
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected insufficient history, got %v", err)
	}
}

func TestBuildProfileExactMinimum(t *testing.T) {
	samples := []float64{12, 15, 9, 14, 11, 13}
	profile, err := BuildProfile(ProfileSpec{Entity: "Jamal Murray", Kind: models.EntityPlayer, Stat: models.StatPoints}, samples, 6, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Games != 6 {
		t.Fatalf("expected 6 games, got %d", profile.Games)
	}
	if profile.Floor != 9 || profile.Ceiling != 15 {
		t.Fatalf("expected bounds (9, 15), got (%g, %g)", profile.Floor, profile.Ceiling)
	}
}

func TestBuildProfileBoundsFromRetainedWindow(t *testing.T) {
	// the 8 and the 30 fall outside the retained window and must not widen it
	samples := []float64{10, 12, 8, 30}
	profile, err := BuildProfile(ProfileSpec{Entity: "Aaron Gordon", Kind: models.EntityPlayer, Stat: models.StatPoints}, samples, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Floor != 10 || profile.Ceiling != 12 {
		t.Fatalf("expected bounds (10, 12), got (%g, %g)", profile.Floor, profile.Ceiling)
	}
	if profile.Games != 2 {
		t.Fatalf("expected 2 retained games, got %d", profile.Games)
	}
}

func TestBuildProfileCarriesIdentity(t *testing.T) {
	abbr := "DEN"
	spec := ProfileSpec{
		Entity:   "Nikola Jokic",
		Kind:     models.EntityPlayer,
		TeamAbbr: &abbr,
		Stat:     models.StatRebounds,
		Season:   "2025-26",
	}
	profile, err := BuildProfile(spec, []float64{12, 9, 14, 11, 10, 13}, 6, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Entity != "Nikola Jokic" || profile.Kind != models.EntityPlayer {
		t.Fatalf("expected identity carried, got %s/%s", profile.Entity, profile.Kind)
	}
	if profile.TeamAbbr == nil || *profile.TeamAbbr != "DEN" {
		t.Fatalf("expected team abbr DEN, got %v", profile.TeamAbbr)
	}
	if profile.Stat != models.StatRebounds || profile.Season != "2025-26" {
		t.Fatalf("expected REB for 2025-26, got %s for %s", profile.Stat, profile.Season)
	}
	if profile.HitRateLabel() != "6/6" {
		t.Fatalf("expected hit rate 6/6, got %s", profile.HitRateLabel())
	}
}
