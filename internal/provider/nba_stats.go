package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/floorgang/floorscanner/internal/models"
)

const nbaStatsSourceName = "nba_stats"

// NBAStatsClient implements HistorySource against the stats.nba.com API
type NBAStatsClient struct {
	httpClient   *RateLimitedHTTPClient
	baseURL      string
	season       string
	seasonType   string
	trackedStats []models.StatKey
	logger       *log.Logger

	// lazily built lowercased full name -> person id index
	playerIndex map[string]int64
}

// statsResponse is the stats.nba.com envelope: named result sets of
// header/row tables
type statsResponse struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// columnIndex finds a header position, -1 when absent
func (rs *resultSet) columnIndex(name string) int {
	for i, h := range rs.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// NewNBAStatsClient creates a new stats.nba.com client
func NewNBAStatsClient(httpClient *RateLimitedHTTPClient, baseURL, season, seasonType string, trackedStats []models.StatKey, logger *log.Logger) *NBAStatsClient {
	if baseURL == "" {
		baseURL = "https://stats.nba.com/stats"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &NBAStatsClient{
		httpClient:   httpClient,
		baseURL:      baseURL,
		season:       season,
		seasonType:   seasonType,
		trackedStats: trackedStats,
		logger:       logger,
	}
}

// Name returns the history source name
func (c *NBAStatsClient) Name() string {
	return nbaStatsSourceName
}

// PlayerHistory retrieves the full current-season game log for a player,
// most recent game first
func (c *NBAStatsClient) PlayerHistory(ctx context.Context, playerName string) (*PlayerHistory, error) {
	playerID, err := c.FindPlayerID(ctx, playerName)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("PlayerID", fmt.Sprintf("%d", playerID))
	params.Set("Season", c.season)
	params.Set("SeasonType", c.seasonType)

	data, err := c.fetchStats(ctx, "playergamelog", params)
	if err != nil {
		return nil, err
	}

	gameLog, err := findResultSet(data, "PlayerGameLog")
	if err != nil {
		return nil, NewProviderError(nbaStatsSourceName, ErrCodeInvalidData, "game log result set missing", err)
	}

	history := &PlayerHistory{
		PlayerName: playerName,
		PlayerID:   playerID,
		Season:     c.season,
		Samples:    make(map[models.StatKey][]float64, len(c.trackedStats)),
	}

	for _, stat := range c.trackedStats {
		col := gameLog.columnIndex(string(stat))
		if col < 0 {
			return nil, NewProviderError(nbaStatsSourceName, ErrCodeInvalidData, fmt.Sprintf("column %s missing from game log", stat), nil)
		}
		values := make([]float64, 0, len(gameLog.RowSet))
		for _, row := range gameLog.RowSet {
			v, ok := cellFloat(row, col)
			if !ok {
				continue
			}
			values = append(values, v)
		}
		history.Samples[stat] = values
	}

	// The player's team comes from the most recent matchup, which reads
	// like "NYK vs. BOS" or "NYK @ BOS" with the player's team first
	if matchupCol := gameLog.columnIndex("MATCHUP"); matchupCol >= 0 && len(gameLog.RowSet) > 0 {
		if matchup := cellString(gameLog.RowSet[0], matchupCol); matchup != "" {
			fields := strings.Fields(matchup)
			if len(fields) > 0 {
				abbr := fields[0]
				history.TeamAbbr = &abbr
			}
		}
	}

	return history, nil
}

// TeamHistory retrieves the full current-season scoring log for a team,
// most recent game first
func (c *NBAStatsClient) TeamHistory(ctx context.Context, teamName string) (*TeamHistory, error) {
	team, ok := LookupTeam(teamName)
	if !ok {
		return nil, NewProviderError(nbaStatsSourceName, ErrCodeNotFound, fmt.Sprintf("unknown team %q", teamName), models.ErrNotFound)
	}

	gameLog, err := c.teamGameLog(ctx, team.StatsID)
	if err != nil {
		return nil, err
	}

	ptsCol := gameLog.columnIndex("PTS")
	if ptsCol < 0 {
		return nil, NewProviderError(nbaStatsSourceName, ErrCodeInvalidData, "PTS column missing from team game log", nil)
	}

	points := make([]float64, 0, len(gameLog.RowSet))
	for _, row := range gameLog.RowSet {
		if v, ok := cellFloat(row, ptsCol); ok {
			points = append(points, v)
		}
	}

	return &TeamHistory{
		TeamName: teamName,
		TeamID:   team.StatsID,
		Abbr:     team.Abbr,
		Season:   c.season,
		Points:   points,
	}, nil
}

// PlayerActual returns the player's stat value for the game played on gameDate
func (c *NBAStatsClient) PlayerActual(ctx context.Context, playerName string, stat models.StatKey, gameDate time.Time) (float64, error) {
	playerID, err := c.FindPlayerID(ctx, playerName)
	if err != nil {
		return 0, err
	}

	params := url.Values{}
	params.Set("PlayerID", fmt.Sprintf("%d", playerID))
	params.Set("Season", c.season)
	params.Set("SeasonType", c.seasonType)

	data, err := c.fetchStats(ctx, "playergamelog", params)
	if err != nil {
		return 0, err
	}

	gameLog, err := findResultSet(data, "PlayerGameLog")
	if err != nil {
		return 0, NewProviderError(nbaStatsSourceName, ErrCodeInvalidData, "game log result set missing", err)
	}

	return valueOnDate(gameLog, string(stat), gameDate, nbaStatsSourceName)
}

// TeamActual returns the team's points scored in the game played on gameDate
func (c *NBAStatsClient) TeamActual(ctx context.Context, teamName string, gameDate time.Time) (float64, error) {
	team, ok := LookupTeam(teamName)
	if !ok {
		return 0, NewProviderError(nbaStatsSourceName, ErrCodeNotFound, fmt.Sprintf("unknown team %q", teamName), models.ErrNotFound)
	}

	gameLog, err := c.teamGameLog(ctx, team.StatsID)
	if err != nil {
		return 0, err
	}

	return valueOnDate(gameLog, "PTS", gameDate, nbaStatsSourceName)
}

// FindPlayerID resolves a full player name to the stats API person id
func (c *NBAStatsClient) FindPlayerID(ctx context.Context, playerName string) (int64, error) {
	if c.playerIndex == nil {
		if err := c.loadPlayerIndex(ctx); err != nil {
			return 0, err
		}
	}

	id, ok := c.playerIndex[strings.ToLower(strings.TrimSpace(playerName))]
	if !ok {
		return 0, NewProviderError(nbaStatsSourceName, ErrCodeNotFound, fmt.Sprintf("player %q not in index", playerName), models.ErrNotFound)
	}
	return id, nil
}

// loadPlayerIndex fetches the league player directory once per process
func (c *NBAStatsClient) loadPlayerIndex(ctx context.Context) error {
	params := url.Values{}
	params.Set("IsOnlyCurrentSeason", "1")
	params.Set("LeagueID", "00")
	params.Set("Season", c.season)

	data, err := c.fetchStats(ctx, "commonallplayers", params)
	if err != nil {
		return err
	}

	playerSet, err := findResultSet(data, "CommonAllPlayers")
	if err != nil {
		return NewProviderError(nbaStatsSourceName, ErrCodeInvalidData, "player directory result set missing", err)
	}

	idCol := playerSet.columnIndex("PERSON_ID")
	nameCol := playerSet.columnIndex("DISPLAY_FIRST_LAST")
	if idCol < 0 || nameCol < 0 {
		return NewProviderError(nbaStatsSourceName, ErrCodeInvalidData, "player directory columns missing", nil)
	}

	index := make(map[string]int64, len(playerSet.RowSet))
	for _, row := range playerSet.RowSet {
		id, ok := cellFloat(row, idCol)
		if !ok {
			continue
		}
		name := cellString(row, nameCol)
		if name == "" {
			continue
		}
		index[strings.ToLower(name)] = int64(id)
	}

	c.logger.Printf("Loaded %d players into the stats index", len(index))
	c.playerIndex = index
	return nil
}

// teamGameLog fetches the teamgamelog result set for one team
func (c *NBAStatsClient) teamGameLog(ctx context.Context, teamID int64) (*resultSet, error) {
	params := url.Values{}
	params.Set("TeamID", fmt.Sprintf("%d", teamID))
	params.Set("Season", c.season)
	params.Set("SeasonType", c.seasonType)

	data, err := c.fetchStats(ctx, "teamgamelog", params)
	if err != nil {
		return nil, err
	}

	gameLog, err := findResultSet(data, "TeamGameLog")
	if err != nil {
		return nil, NewProviderError(nbaStatsSourceName, ErrCodeInvalidData, "team game log result set missing", err)
	}
	return gameLog, nil
}

// fetchStats executes one stats.nba.com request and decodes the envelope
func (c *NBAStatsClient) fetchStats(ctx context.Context, endpoint string, params url.Values) (*statsResponse, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewProviderError(nbaStatsSourceName, ErrCodeNetworkError, "failed to create request", err)
	}

	// The stats API rejects requests without browser-looking headers
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(nbaStatsSourceName, ErrCodeNetworkError, fmt.Sprintf("failed to fetch %s", endpoint), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewProviderError(nbaStatsSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(nbaStatsSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncateBody(body)), nil)
	}

	var data statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, NewProviderError(nbaStatsSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return &data, nil
}

// findResultSet locates a named result set in the stats envelope
func findResultSet(data *statsResponse, name string) (*resultSet, error) {
	for i := range data.ResultSets {
		if data.ResultSets[i].Name == name {
			return &data.ResultSets[i], nil
		}
	}
	return nil, fmt.Errorf("result set %q not found", name)
}

// valueOnDate scans a game log for the row played on gameDate and returns
// the named column. The stats API formats dates like "APR 01, 2026".
func valueOnDate(gameLog *resultSet, column string, gameDate time.Time, source string) (float64, error) {
	dateCol := gameLog.columnIndex("GAME_DATE")
	valCol := gameLog.columnIndex(column)
	if dateCol < 0 || valCol < 0 {
		return 0, NewProviderError(source, ErrCodeInvalidData, "game log columns missing", nil)
	}

	want := strings.ToUpper(gameDate.Format("Jan 02, 2006"))
	for _, row := range gameLog.RowSet {
		if strings.ToUpper(cellString(row, dateCol)) != want {
			continue
		}
		if v, ok := cellFloat(row, valCol); ok {
			return v, nil
		}
		return 0, NewProviderError(source, ErrCodeInvalidData, fmt.Sprintf("no %s value on %s", column, want), nil)
	}

	return 0, NewProviderError(source, ErrCodeNotFound, fmt.Sprintf("no game on %s", want), models.ErrNotFound)
}

// cellFloat extracts a numeric cell, tolerating nulls
func cellFloat(row []interface{}, col int) (float64, bool) {
	if col < 0 || col >= len(row) {
		return 0, false
	}
	v, ok := row[col].(float64)
	return v, ok
}

// cellString extracts a string cell, tolerating nulls
func cellString(row []interface{}, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	s, _ := row[col].(string)
	return s
}

// truncateBody keeps error payloads log-sized
func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
