package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorgang/floorscanner/internal/models"
)

const testEventID = "evt-20260411-denlal"

func newOddsClient(t *testing.T, handler http.HandlerFunc) (*OddsAPIClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := NewOddsAPIClient(newTestHTTPClient(), server.URL, "test-key", "basketball_nba", "us", "draftkings", nil)
	return client, server
}

func writeOddsJSON(t *testing.T, w http.ResponseWriter, remaining string, payload interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if remaining != "" {
		w.Header().Set("x-requests-remaining", remaining)
	}
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

func floatPtr(v float64) *float64 {
	return &v
}

// TestTodaysEvents tests event listing from the h2h board with quota tracking
func TestTodaysEvents(t *testing.T) {
	commence := time.Date(2026, time.April, 11, 23, 10, 0, 0, time.UTC)

	client, server := newOddsClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v4/sports/basketball_nba/odds", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		require.Equal(t, "us", r.URL.Query().Get("regions"))
		require.Equal(t, "h2h", r.URL.Query().Get("markets"))

		writeOddsJSON(t, w, "487", []oddsEvent{
			{
				ID:           testEventID,
				SportKey:     "basketball_nba",
				CommenceTime: commence,
				HomeTeam:     "Denver Nuggets",
				AwayTeam:     "Los Angeles Lakers",
			},
			{
				ID:           "evt-20260411-boschi",
				SportKey:     "basketball_nba",
				CommenceTime: commence.Add(30 * time.Minute),
				HomeTeam:     "Boston Celtics",
				AwayTeam:     "Chicago Bulls",
			},
		})
	})
	defer server.Close()

	require.Equal(t, -1, client.RequestsRemaining())

	events, err := client.TodaysEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, testEventID, events[0].ID)
	assert.Equal(t, "Denver Nuggets", events[0].HomeTeam)
	assert.Equal(t, "Los Angeles Lakers", events[0].AwayTeam)
	assert.True(t, events[0].CommenceTime.Equal(commence))

	assert.Equal(t, 487, client.RequestsRemaining())
}

// TestEventPlayerLinesOverOnly tests that only Over outcomes from the
// configured bookmaker's alternate prop ladders are kept
func TestEventPlayerLinesOverOnly(t *testing.T) {
	client, server := newOddsClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v4/sports/basketball_nba/events/"+testEventID+"/odds", r.URL.Path)
		require.Equal(t, "american", r.URL.Query().Get("oddsFormat"))
		require.Equal(t, playerMarketKeys(), r.URL.Query().Get("markets"))

		writeOddsJSON(t, w, "486", oddsEvent{
			ID: testEventID,
			Bookmakers: []oddsBookmaker{
				{
					Key: "fanduel",
					Markets: []oddsMarket{
						{Key: "player_points_alternate", Outcomes: []oddsOutcome{
							{Name: "Over", Description: "Jamal Murray", Point: floatPtr(19.5), Price: -475},
						}},
					},
				},
				{
					Key: "draftkings",
					Markets: []oddsMarket{
						{Key: "player_points_alternate", Outcomes: []oddsOutcome{
							{Name: "Over", Description: "Jamal Murray", Point: floatPtr(22.5), Price: -255},
							{Name: "Under", Description: "Jamal Murray", Point: floatPtr(22.5), Price: 190},
							{Name: "Over", Description: "Jamal Murray", Point: floatPtr(24.5), Price: -130},
						}},
						{Key: "player_rebounds_alternate", Outcomes: []oddsOutcome{
							{Name: "Over", Description: "Nikola Jokic", Point: floatPtr(8.5), Price: -380},
						}},
						// Market the scanner does not track
						{Key: "player_turnovers_alternate", Outcomes: []oddsOutcome{
							{Name: "Over", Description: "Nikola Jokic", Point: floatPtr(2.5), Price: -150},
						}},
					},
				},
			},
		})
	})
	defer server.Close()

	lines, err := client.EventPlayerLines(context.Background(), testEventID)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	murray := lines["Jamal Murray"][models.StatPoints]
	require.Len(t, murray, 2)
	assert.Equal(t, models.MarketOffer{Line: 22.5, Odds: -255}, murray[0])
	assert.Equal(t, models.MarketOffer{Line: 24.5, Odds: -130}, murray[1])

	jokic := lines["Nikola Jokic"]
	require.Len(t, jokic[models.StatRebounds], 1)
	assert.Empty(t, jokic[models.StatPoints])

	assert.Equal(t, 486, client.RequestsRemaining())
}

// TestEventPlayerLinesBookmakerMissing tests that an event without the
// configured bookmaker yields no lines rather than an error
func TestEventPlayerLinesBookmakerMissing(t *testing.T) {
	client, server := newOddsClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeOddsJSON(t, w, "485", oddsEvent{
			ID: testEventID,
			Bookmakers: []oddsBookmaker{
				{Key: "fanduel", Markets: []oddsMarket{
					{Key: "player_points_alternate", Outcomes: []oddsOutcome{
						{Name: "Over", Description: "Jamal Murray", Point: floatPtr(22.5), Price: -255},
					}},
				}},
			},
		})
	})
	defer server.Close()

	lines, err := client.EventPlayerLines(context.Background(), testEventID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

// TestEventTeamTotalsSplit tests that alternate team totals are split into
// Over and Under ladders per team
func TestEventTeamTotalsSplit(t *testing.T) {
	client, server := newOddsClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, teamTotalsMarket, r.URL.Query().Get("markets"))

		writeOddsJSON(t, w, "484", oddsEvent{
			ID: testEventID,
			Bookmakers: []oddsBookmaker{
				{Key: "draftkings", Markets: []oddsMarket{
					{Key: teamTotalsMarket, Outcomes: []oddsOutcome{
						{Name: "Over", Description: "Denver Nuggets", Point: floatPtr(110.5), Price: -450},
						{Name: "Over", Description: "Denver Nuggets", Point: floatPtr(115.5), Price: -260},
						{Name: "Under", Description: "Denver Nuggets", Point: floatPtr(130.5), Price: -380},
						{Name: "Over", Description: "Los Angeles Lakers", Point: floatPtr(105.5), Price: -500},
					}},
				}},
			},
		})
	})
	defer server.Close()

	totals, err := client.EventTeamTotals(context.Background(), testEventID)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	den := totals["Denver Nuggets"]
	require.Len(t, den.Over, 2)
	require.Len(t, den.Under, 1)
	assert.Equal(t, models.MarketOffer{Line: 110.5, Odds: -450}, den.Over[0])
	assert.Equal(t, models.MarketOffer{Line: 130.5, Odds: -380}, den.Under[0])

	lal := totals["Los Angeles Lakers"]
	assert.Len(t, lal.Over, 1)
	assert.Empty(t, lal.Under)
}

// TestOddsAuthenticationFailed tests that a 401 maps to an auth error
func TestOddsAuthenticationFailed(t *testing.T) {
	client, server := newOddsClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid api key"}`, http.StatusUnauthorized)
	})
	defer server.Close()

	_, err := client.TodaysEvents(context.Background())
	require.Error(t, err)

	var provErr ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, ErrCodeAuthenticationFailed, provErr.Code)
}

// TestOddsEventNotFound tests that a 404 for a stale event id maps to not found
func TestOddsEventNotFound(t *testing.T) {
	client, server := newOddsClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Event not found"}`, http.StatusNotFound)
	})
	defer server.Close()

	_, err := client.EventPlayerLines(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

// TestPlayerMarketKeysStable tests the joined market list sent to the API
func TestPlayerMarketKeysStable(t *testing.T) {
	expected := "player_assists_alternate,player_blocks_alternate,player_points_alternate," +
		"player_rebounds_alternate,player_steals_alternate,player_threes_alternate"
	assert.Equal(t, expected, playerMarketKeys())
}
