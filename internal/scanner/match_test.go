package scanner

import (
	"testing"

	"github.com/floorgang/floorscanner/internal/models"
)

func TestFindBestOverPicksHighestBelowFloor(t *testing.T) {
	offers := []models.MarketOffer{
		{Line: 18.5, Odds: -750},
		{Line: 20.5, Odds: -450},
		{Line: 22.5, Odds: -180},
		{Line: 24.5, Odds: 120},
	}
	best, ok := FindBestOver(offers, 23)
	if !ok {
		t.Fatalf("expected a qualifying offer")
	}
	if best.Line != 22.5 || best.Odds != -180 {
		t.Fatalf("expected 22.5 at -180, got %g at %d", best.Line, best.Odds)
	}
}

func TestFindBestOverStrikeAtFloorExcluded(t *testing.T) {
	offers := []models.MarketOffer{
		{Line: 20.5, Odds: -450},
		{Line: 22.5, Odds: -180},
	}
	best, ok := FindBestOver(offers, 22.5)
	if !ok {
		t.Fatalf("expected a qualifying offer")
	}
	if best.Line != 20.5 {
		t.Fatalf("expected strike at the floor excluded, got %g", best.Line)
	}
}

func TestFindBestOverNoQualifier(t *testing.T) {
	offers := []models.MarketOffer{
		{Line: 18.5, Odds: -750},
		{Line: 20.5, Odds: -450},
	}
	if _, ok := FindBestOver(offers, 18); ok {
		t.Fatalf("expected no offer below a floor of 18")
	}
}

func TestFindBestOverEmptyOffers(t *testing.T) {
	if _, ok := FindBestOver(nil, 20); ok {
		t.Fatalf("expected no offer from an empty board")
	}
}

func TestFindBestOverTieKeepsFirst(t *testing.T) {
	offers := []models.MarketOffer{
		{Line: 20.5, Odds: -450},
		{Line: 20.5, Odds: -430},
	}
	best, ok := FindBestOver(offers, 22)
	if !ok {
		t.Fatalf("expected a qualifying offer")
	}
	if best.Odds != -450 {
		t.Fatalf("expected first offer kept on a tied line, got %d", best.Odds)
	}
}

func TestFindBestUnderPicksLowestAboveCeiling(t *testing.T) {
	offers := []models.MarketOffer{
		{Line: 115.5, Odds: 180},
		{Line: 118.5, Odds: -210},
		{Line: 120.5, Odds: -390},
	}
	best, ok := FindBestUnder(offers, 118)
	if !ok {
		t.Fatalf("expected a qualifying offer")
	}
	if best.Line != 118.5 || best.Odds != -210 {
		t.Fatalf("expected 118.5 at -210, got %g at %d", best.Line, best.Odds)
	}
}

func TestFindBestUnderStrikeAtCeilingExcluded(t *testing.T) {
	offers := []models.MarketOffer{
		{Line: 118.5, Odds: -210},
		{Line: 120.5, Odds: -390},
	}
	best, ok := FindBestUnder(offers, 118.5)
	if !ok {
		t.Fatalf("expected a qualifying offer")
	}
	if best.Line != 120.5 {
		t.Fatalf("expected strike at the ceiling excluded, got %g", best.Line)
	}
}

func TestFindBestUnderNoQualifier(t *testing.T) {
	offers := []models.MarketOffer{
		{Line: 115.5, Odds: 180},
		{Line: 118.5, Odds: -210},
	}
	if _, ok := FindBestUnder(offers, 121); ok {
		t.Fatalf("expected no offer above a ceiling of 121")
	}
}

func TestFindBestUnderEmptyOffers(t *testing.T) {
	if _, ok := FindBestUnder(nil, 110); ok {
		t.Fatalf("expected no offer from an empty board")
	}
}

func TestFindBestUnderTieKeepsFirst(t *testing.T) {
	offers := []models.MarketOffer{
		{Line: 124.5, Odds: -340},
		{Line: 124.5, Odds: -360},
	}
	best, ok := FindBestUnder(offers, 120)
	if !ok {
		t.Fatalf("expected a qualifying offer")
	}
	if best.Odds != -340 {
		t.Fatalf("expected first offer kept on a tied line, got %d", best.Odds)
	}
}
