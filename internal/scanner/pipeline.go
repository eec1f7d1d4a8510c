package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/floorgang/floorscanner/internal/cache"
	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/logger"
	"github.com/floorgang/floorscanner/internal/metrics"
	"github.com/floorgang/floorscanner/internal/models"
	"github.com/floorgang/floorscanner/internal/provider"
)

// Scanner walks the day's board and turns history profiles into ranked picks.
type Scanner struct {
	cfg      *config.Config
	history  provider.HistorySource
	market   provider.MarketSource
	profiles *cache.ProfileCache
	log      *logger.ScanLogger
	tracked  []models.StatKey
}

// NewScanner creates a scanner over the given sources. The profile cache is
// required; pass a freshly constructed one when caching across runs is not
// wanted.
func NewScanner(cfg *config.Config, history provider.HistorySource, market provider.MarketSource, profiles *cache.ProfileCache, scanLog *logger.ScanLogger) *Scanner {
	return &Scanner{
		cfg:      cfg,
		history:  history,
		market:   market,
		profiles: profiles,
		log:      scanLog,
		tracked:  models.ParseStatKeys(cfg.Scanner.PlayerStats),
	}
}

// ScanResult bundles everything one scan produced.
type ScanResult struct {
	Run   *models.ScanRun
	Picks []models.Pick
	Slate *models.Slate
	Stats *RunStats
}

// Scan runs the full pipeline for scanDate: fetch the board, profile every
// entity quoted on it, match profiles against the alternate strikes and rank
// whatever clears the price threshold. fresh drops the day's cached profiles
// before scanning. A day with no games is not an error; the result carries an
// empty pick list.
func (s *Scanner) Scan(ctx context.Context, scanDate time.Time, fresh bool) (*ScanResult, error) {
	start := time.Now()
	stats := newRunStats()
	day := cache.DayKey(scanDate)

	if fresh {
		s.profiles.InvalidateDay(ctx, day)
	}

	slate, err := s.buildSlate(ctx, stats)
	if err != nil {
		metrics.RecordScanError()
		return nil, err
	}

	if len(slate.Events) == 0 {
		s.log.LogSlateEmpty(s.cfg.OddsAPI.Sport, day)
		s.finishStats(stats, start)
		metrics.RecordScan(stats.Duration.Seconds(), 0)
		return &ScanResult{
			Run:   s.buildRun(scanDate, stats),
			Slate: slate,
			Stats: stats,
		}, nil
	}

	stats.PlayersSeen = len(slate.PlayerProps)
	stats.TeamsSeen = len(slate.TeamTotals)
	s.log.LogScanStart(s.cfg.OddsAPI.Sport, day, len(slate.Events), stats.PlayersSeen, stats.TeamsSeen)

	var picks []models.Pick

	// Players first, then teams, both in name order so reruns walk the board
	// the same way.
	for _, name := range sortedKeys(slate.PlayerProps) {
		if err := ctx.Err(); err != nil {
			metrics.RecordScanError()
			return nil, err
		}
		playerPicks, err := s.scanPlayer(ctx, day, name, slate.PlayerProps[name])
		if err != nil {
			s.skipEntity(stats, models.EntityPlayer, name, err)
			continue
		}
		stats.EntitiesAnalyzed++
		stats.PlayerPicks += len(playerPicks)
		picks = append(picks, playerPicks...)
	}

	for _, name := range sortedKeys(slate.TeamTotals) {
		if err := ctx.Err(); err != nil {
			metrics.RecordScanError()
			return nil, err
		}
		teamPicks, err := s.scanTeam(ctx, day, name, slate.TeamTotals[name])
		if err != nil {
			s.skipEntity(stats, models.EntityTeam, name, err)
			continue
		}
		stats.EntitiesAnalyzed++
		stats.TeamPicks += len(teamPicks)
		picks = append(picks, teamPicks...)
	}

	Rank(picks)
	s.finishStats(stats, start)

	run := s.buildRun(scanDate, stats)
	for i := range picks {
		picks[i].RunID = run.ID
		picks[i].Sport = run.Sport
		picks[i].ScanDate = run.ScanDate
		picks[i].GameDate = run.GameDate
	}

	metrics.RecordScan(stats.Duration.Seconds(), len(picks))
	s.log.LogScanComplete(len(picks), stats.PlayerPicks, stats.TeamPicks,
		stats.EntitiesAnalyzed, stats.EntitiesSkipped, stats.Duration, stats.RequestsRemaining)

	return &ScanResult{Run: run, Picks: picks, Slate: slate, Stats: stats}, nil
}

// buildSlate fetches the day's events and merges each event's alternate lines
// into one board. An event whose odds cannot be fetched is logged and skipped;
// only the event list itself is fatal.
func (s *Scanner) buildSlate(ctx context.Context, stats *RunStats) (*models.Slate, error) {
	events, err := s.market.TodaysEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching today's events: %w", err)
	}

	slate := &models.Slate{
		Events:      events,
		PlayerProps: make(map[string]models.PlayerLines),
		TeamTotals:  make(map[string]models.TeamTotalLines),
	}
	stats.EventsFound = len(events)

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		playerLines, err := s.market.EventPlayerLines(ctx, event.ID)
		if err != nil {
			stats.EventsFailed++
			s.log.LogEventFailed(event.ID, event.HomeTeam, event.AwayTeam, err)
			continue
		}
		for name, lines := range playerLines {
			existing, ok := slate.PlayerProps[name]
			if !ok {
				slate.PlayerProps[name] = lines
				continue
			}
			for stat, offers := range lines {
				existing[stat] = append(existing[stat], offers...)
			}
		}

		teamTotals, err := s.market.EventTeamTotals(ctx, event.ID)
		if err != nil {
			stats.EventsFailed++
			s.log.LogEventFailed(event.ID, event.HomeTeam, event.AwayTeam, err)
			continue
		}
		for name, lines := range teamTotals {
			slate.TeamTotals[name] = lines
		}
	}

	return slate, nil
}

// scanPlayer profiles one player and matches every quoted stat against the
// profile floor. Player picks are always overs.
func (s *Scanner) scanPlayer(ctx context.Context, day, name string, lines models.PlayerLines) ([]models.Pick, error) {
	started := time.Now()
	defer func() { metrics.RecordEntityAnalysis(time.Since(started).Seconds()) }()

	quoted := make([]models.StatKey, 0, len(s.tracked))
	for _, stat := range s.tracked {
		if len(lines[stat]) > 0 {
			quoted = append(quoted, stat)
		}
	}
	if len(quoted) == 0 {
		return nil, nil
	}

	profiles := make(map[models.StatKey]*models.HistoryProfile, len(quoted))
	var missing []models.StatKey
	for _, stat := range quoted {
		key := cache.ProfileKey{Kind: models.EntityPlayer, Entity: name, Stat: stat, Day: day}
		if p := s.profiles.Get(ctx, key); p != nil {
			profiles[stat] = p
			continue
		}
		missing = append(missing, stat)
	}

	// One game log fetch covers every missing stat.
	if len(missing) > 0 {
		history, err := s.history.PlayerHistory(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, stat := range missing {
			profile, err := BuildProfile(ProfileSpec{
				Entity:   name,
				Kind:     models.EntityPlayer,
				TeamAbbr: history.TeamAbbr,
				Stat:     stat,
				Season:   history.Season,
			}, history.Samples[stat], s.cfg.Scanner.MinGames, s.cfg.Scanner.MaxGames)
			if err != nil {
				return nil, err
			}
			profiles[stat] = profile
			s.profiles.Set(ctx, cache.ProfileKey{Kind: models.EntityPlayer, Entity: name, Stat: stat, Day: day}, profile)
		}
	}

	var picks []models.Pick
	for _, stat := range quoted {
		profile := profiles[stat]
		offer, ok := FindBestOver(lines[stat], profile.Floor)
		if !ok || !AdmitPlayer(offer.Odds, s.cfg.Scanner.OddsThreshold) {
			continue
		}
		picks = append(picks, models.NewPlayerPick(*profile, offer))
		s.log.LogPickFound(string(models.EntityPlayer), name, string(stat),
			string(models.SideOver), offer.Line, offer.Odds, profile.Floor, profile.Games)
		metrics.RecordPick(string(models.EntityPlayer), string(stat))
	}
	return picks, nil
}

// scanTeam profiles one team's scoring and matches both sides of its
// alternate total board.
func (s *Scanner) scanTeam(ctx context.Context, day, name string, lines models.TeamTotalLines) ([]models.Pick, error) {
	started := time.Now()
	defer func() { metrics.RecordEntityAnalysis(time.Since(started).Seconds()) }()

	key := cache.ProfileKey{Kind: models.EntityTeam, Entity: name, Stat: models.StatPoints, Day: day}
	profile := s.profiles.Get(ctx, key)
	if profile == nil {
		history, err := s.history.TeamHistory(ctx, name)
		if err != nil {
			return nil, err
		}
		var teamAbbr *string
		if history.Abbr != "" {
			teamAbbr = &history.Abbr
		}
		profile, err = BuildProfile(ProfileSpec{
			Entity:   name,
			Kind:     models.EntityTeam,
			TeamAbbr: teamAbbr,
			Stat:     models.StatPoints,
			Season:   history.Season,
		}, history.Points, s.cfg.Scanner.MinGames, s.cfg.Scanner.MaxGames)
		if err != nil {
			return nil, err
		}
		s.profiles.Set(ctx, key, profile)
	}

	var picks []models.Pick
	if offer, ok := FindBestOver(lines.Over, profile.Floor); ok && AdmitTeam(offer.Odds, s.cfg.Scanner.OddsThreshold) {
		picks = append(picks, models.NewTeamPick(*profile, models.SideOver, offer))
		s.log.LogPickFound(string(models.EntityTeam), name, string(models.StatPoints),
			string(models.SideOver), offer.Line, offer.Odds, profile.Floor, profile.Games)
		metrics.RecordPick(string(models.EntityTeam), string(models.StatPoints))
	}
	if offer, ok := FindBestUnder(lines.Under, profile.Ceiling); ok && AdmitTeam(offer.Odds, s.cfg.Scanner.OddsThreshold) {
		picks = append(picks, models.NewTeamPick(*profile, models.SideUnder, offer))
		s.log.LogPickFound(string(models.EntityTeam), name, string(models.StatPoints),
			string(models.SideUnder), offer.Line, offer.Odds, profile.Ceiling, profile.Games)
		metrics.RecordPick(string(models.EntityTeam), string(models.StatPoints))
	}
	return picks, nil
}

func (s *Scanner) skipEntity(stats *RunStats, kind models.EntityKind, name string, err error) {
	reason := classifySkip(err)
	stats.recordSkip(reason)
	metrics.RecordSkip(string(reason))
	s.log.LogEntitySkipped(string(kind), name, string(reason))
}

func (s *Scanner) finishStats(stats *RunStats, start time.Time) {
	stats.Duration = time.Since(start)
	stats.RequestsRemaining = s.market.RequestsRemaining()
	if stats.RequestsRemaining >= 0 {
		metrics.UpdateRequestsRemaining(stats.RequestsRemaining)
	}
}

func (s *Scanner) buildRun(scanDate time.Time, stats *RunStats) *models.ScanRun {
	gameDate := scanDate
	run := &models.ScanRun{
		ID:               uuid.New(),
		Sport:            s.cfg.OddsAPI.Sport,
		ScanDate:         scanDate,
		GameDate:         &gameDate,
		TotalPicks:       stats.TotalPicks(),
		PlayerPicks:      stats.PlayerPicks,
		TeamPicks:        stats.TeamPicks,
		EntitiesAnalyzed: stats.EntitiesAnalyzed,
		EntitiesSkipped:  stats.EntitiesSkipped,
	}
	if stats.RequestsRemaining >= 0 {
		remaining := stats.RequestsRemaining
		run.APIRequestsRemaining = &remaining
	}
	return run
}

// classifySkip maps an entity analysis error onto a skip reason.
func classifySkip(err error) SkipReason {
	switch {
	case errors.Is(err, models.ErrInsufficientHistory):
		return SkipInsufficientHistory
	case errors.Is(err, models.ErrNotFound):
		return SkipNotFound
	default:
		return SkipRetrievalError
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
