package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/floorgang/floorscanner/internal/models"
)

const oddsAPISourceName = "odds_api"

// playerMarkets maps The Odds API alternate prop markets to stat keys
var playerMarkets = map[string]models.StatKey{
	"player_points_alternate":   models.StatPoints,
	"player_rebounds_alternate": models.StatRebounds,
	"player_assists_alternate":  models.StatAssists,
	"player_threes_alternate":   models.StatThrees,
	"player_steals_alternate":   models.StatSteals,
	"player_blocks_alternate":   models.StatBlocks,
}

const teamTotalsMarket = "alternate_team_totals"

// OddsAPIClient implements MarketSource against The Odds API v4
type OddsAPIClient struct {
	httpClient        *RateLimitedHTTPClient
	baseURL           string
	apiKey            string
	sport             string
	region            string
	bookmaker         string
	logger            *log.Logger
	requestsRemaining int
}

// oddsEvent is one event as the odds API returns it
type oddsEvent struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	CommenceTime time.Time       `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Point       *float64 `json:"point"`
	Price       int      `json:"price"`
}

// NewOddsAPIClient creates a new odds API client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, sport, region, bookmaker string, logger *log.Logger) *OddsAPIClient {
	if baseURL == "" {
		baseURL = "https://api.the-odds-api.com"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &OddsAPIClient{
		httpClient:        httpClient,
		baseURL:           baseURL,
		apiKey:            apiKey,
		sport:             sport,
		region:            region,
		bookmaker:         bookmaker,
		logger:            logger,
		requestsRemaining: -1,
	}
}

// Name returns the market source name
func (c *OddsAPIClient) Name() string {
	return oddsAPISourceName
}

// RequestsRemaining returns the quota left after the last call, -1 when unknown
func (c *OddsAPIClient) RequestsRemaining() int {
	return c.requestsRemaining
}

// TodaysEvents retrieves the day's scheduled games from the h2h board
func (c *OddsAPIClient) TodaysEvents(ctx context.Context) ([]models.Event, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", c.region)
	params.Set("markets", "h2h")

	reqURL := fmt.Sprintf("%s/v4/sports/%s/odds?%s", c.baseURL, c.sport, params.Encode())

	var events []oddsEvent
	if err := c.fetchJSON(ctx, reqURL, &events); err != nil {
		return nil, err
	}

	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		out = append(out, models.Event{
			ID:           e.ID,
			SportKey:     e.SportKey,
			CommenceTime: e.CommenceTime,
			HomeTeam:     e.HomeTeam,
			AwayTeam:     e.AwayTeam,
		})
	}
	return out, nil
}

// EventPlayerLines retrieves alternate player prop lines for one event. Only
// the configured bookmaker's Over outcomes are kept: the alternate ladders
// quote each strike as an Over with the player in the description.
func (c *OddsAPIClient) EventPlayerLines(ctx context.Context, eventID string) (map[string]models.PlayerLines, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", c.region)
	params.Set("markets", playerMarketKeys())
	params.Set("oddsFormat", "american")

	reqURL := fmt.Sprintf("%s/v4/sports/%s/events/%s/odds?%s", c.baseURL, c.sport, eventID, params.Encode())

	var event oddsEvent
	if err := c.fetchJSON(ctx, reqURL, &event); err != nil {
		return nil, err
	}

	lines := make(map[string]models.PlayerLines)
	book, ok := c.findBookmaker(&event)
	if !ok {
		return lines, nil
	}

	for _, market := range book.Markets {
		stat, tracked := playerMarkets[market.Key]
		if !tracked {
			continue
		}
		for _, outcome := range market.Outcomes {
			if outcome.Name != "Over" {
				continue
			}
			player := strings.TrimSpace(outcome.Description)
			if player == "" || outcome.Point == nil {
				continue
			}
			if _, seen := lines[player]; !seen {
				lines[player] = make(models.PlayerLines)
			}
			lines[player][stat] = append(lines[player][stat], models.MarketOffer{
				Line: *outcome.Point,
				Odds: outcome.Price,
			})
		}
	}

	return lines, nil
}

// EventTeamTotals retrieves alternate team total lines for one event, split
// into Over and Under ladders per team
func (c *OddsAPIClient) EventTeamTotals(ctx context.Context, eventID string) (map[string]models.TeamTotalLines, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", c.region)
	params.Set("markets", teamTotalsMarket)
	params.Set("oddsFormat", "american")

	reqURL := fmt.Sprintf("%s/v4/sports/%s/events/%s/odds?%s", c.baseURL, c.sport, eventID, params.Encode())

	var event oddsEvent
	if err := c.fetchJSON(ctx, reqURL, &event); err != nil {
		return nil, err
	}

	totals := make(map[string]models.TeamTotalLines)
	book, ok := c.findBookmaker(&event)
	if !ok {
		return totals, nil
	}

	for _, market := range book.Markets {
		if market.Key != teamTotalsMarket {
			continue
		}
		for _, outcome := range market.Outcomes {
			team := strings.TrimSpace(outcome.Description)
			if team == "" || outcome.Point == nil {
				continue
			}
			entry := totals[team]
			offer := models.MarketOffer{Line: *outcome.Point, Odds: outcome.Price}
			if outcome.Name == "Over" {
				entry.Over = append(entry.Over, offer)
			} else {
				entry.Under = append(entry.Under, offer)
			}
			totals[team] = entry
		}
	}

	return totals, nil
}

// findBookmaker locates the configured bookmaker in an event payload
func (c *OddsAPIClient) findBookmaker(event *oddsEvent) (*oddsBookmaker, bool) {
	for i := range event.Bookmakers {
		if event.Bookmakers[i].Key == c.bookmaker {
			return &event.Bookmakers[i], true
		}
	}
	return nil, false
}

// fetchJSON executes one odds API request, records the quota header and
// decodes the payload
func (c *OddsAPIClient) fetchJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NewProviderError(oddsAPISourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewProviderError(oddsAPISourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	c.recordQuota(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewProviderError(oddsAPISourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewProviderError(oddsAPISourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewProviderError(oddsAPISourceName, ErrCodeNotFound, "event not found", models.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return NewProviderError(oddsAPISourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncateBody(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(oddsAPISourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

// recordQuota keeps the x-requests-remaining header from the last response
func (c *OddsAPIClient) recordQuota(resp *http.Response) {
	header := resp.Header.Get("x-requests-remaining")
	if header == "" {
		return
	}
	if remaining, err := strconv.ParseFloat(header, 64); err == nil {
		c.requestsRemaining = int(remaining)
	}
}

// playerMarketKeys joins the tracked prop market keys for the request URL
func playerMarketKeys() string {
	keys := make([]string, 0, len(playerMarkets))
	for k := range playerMarkets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
