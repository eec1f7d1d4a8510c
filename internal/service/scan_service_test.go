package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/floorgang/floorscanner/internal/cache"
	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/logger"
	"github.com/floorgang/floorscanner/internal/models"
	"github.com/floorgang/floorscanner/internal/notify"
	"github.com/floorgang/floorscanner/internal/provider"
	"github.com/floorgang/floorscanner/internal/repository"
	"github.com/floorgang/floorscanner/internal/scanner"
)

var serviceScanDate = time.Date(2026, time.April, 11, 0, 0, 0, 0, time.UTC)

type stubHistory struct {
	players map[string]*provider.PlayerHistory
}

func (s *stubHistory) PlayerHistory(ctx context.Context, name string) (*provider.PlayerHistory, error) {
	if h, ok := s.players[name]; ok {
		return h, nil
	}
	return nil, provider.NewProviderError("stub-stats", provider.ErrCodeNotFound, "unknown player", models.ErrNotFound)
}

func (s *stubHistory) TeamHistory(ctx context.Context, name string) (*provider.TeamHistory, error) {
	return nil, provider.NewProviderError("stub-stats", provider.ErrCodeNotFound, "unknown team", models.ErrNotFound)
}

func (s *stubHistory) PlayerActual(ctx context.Context, name string, stat models.StatKey, gameDate time.Time) (float64, error) {
	return 0, models.ErrNotFound
}

func (s *stubHistory) TeamActual(ctx context.Context, name string, gameDate time.Time) (float64, error) {
	return 0, models.ErrNotFound
}

func (s *stubHistory) Name() string { return "stub-stats" }

type stubMarket struct {
	events []models.Event
	props  map[string]map[string]models.PlayerLines
}

func (s *stubMarket) TodaysEvents(ctx context.Context) ([]models.Event, error) {
	return s.events, nil
}

func (s *stubMarket) EventPlayerLines(ctx context.Context, eventID string) (map[string]models.PlayerLines, error) {
	return s.props[eventID], nil
}

func (s *stubMarket) EventTeamTotals(ctx context.Context, eventID string) (map[string]models.TeamTotalLines, error) {
	return nil, nil
}

func (s *stubMarket) RequestsRemaining() int { return 480 }

func (s *stubMarket) Name() string { return "stub-odds" }

type fakeRunStore struct {
	runs []*models.ScanRun
	err  error
}

func (f *fakeRunStore) Create(ctx context.Context, run *models.ScanRun) error {
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRunStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ScanRun, error) {
	return nil, models.ErrNotFound
}

func (f *fakeRunStore) GetByScanDate(ctx context.Context, scanDate time.Time) ([]*models.ScanRun, error) {
	return nil, nil
}

func (f *fakeRunStore) Latest(ctx context.Context) (*models.ScanRun, error) {
	return nil, models.ErrNotFound
}

type fakePickStore struct {
	batches [][]*models.Pick
	err     error
}

func (f *fakePickStore) Create(ctx context.Context, pick *models.Pick) error { return f.err }

func (f *fakePickStore) CreateBatch(ctx context.Context, picks []*models.Pick) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, picks)
	return nil
}

func (f *fakePickStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	return nil, models.ErrNotFound
}

func (f *fakePickStore) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.Pick, error) {
	return nil, nil
}

func (f *fakePickStore) GetByGameDate(ctx context.Context, gameDate time.Time) ([]*models.Pick, error) {
	return nil, nil
}

func (f *fakePickStore) GetUnsettled(ctx context.Context, gameDate time.Time) ([]*models.Pick, error) {
	return nil, nil
}

func (f *fakePickStore) SettleResult(ctx context.Context, id uuid.UUID, actual float64, result models.PickResult) error {
	return nil
}

func oneGameMarket() *stubMarket {
	return &stubMarket{
		events: []models.Event{{
			ID:           "evt-1",
			SportKey:     "basketball_nba",
			CommenceTime: serviceScanDate.Add(19 * time.Hour),
			HomeTeam:     "Denver Nuggets",
			AwayTeam:     "Los Angeles Lakers",
		}},
		props: map[string]map[string]models.PlayerLines{
			"evt-1": {
				"Nikola Jokic": models.PlayerLines{
					models.StatPoints: []models.MarketOffer{
						{Line: 24.5, Odds: -255},
						{Line: 26.5, Odds: -120},
					},
				},
			},
		},
	}
}

func jokicHistory() *stubHistory {
	abbr := "DEN"
	return &stubHistory{players: map[string]*provider.PlayerHistory{
		"Nikola Jokic": {
			PlayerName: "Nikola Jokic",
			TeamAbbr:   &abbr,
			Season:     "2025-26",
			Samples: map[models.StatKey][]float64{
				models.StatPoints: {31, 25, 28, 33, 27, 29, 26, 30},
			},
		},
	}}
}

func newTestService(t *testing.T, history provider.HistorySource, market provider.MarketSource, runs *fakeRunStore, picks *fakePickStore, outputDir string) *ScanService {
	t.Helper()
	cfg := &config.Config{
		OddsAPI: config.OddsAPIConfig{Sport: "basketball_nba"},
		Scanner: config.ScannerConfig{
			MinGames:      6,
			MaxGames:      20,
			OddsThreshold: -500,
			PlayerStats:   []string{"PTS"},
			OutputDir:     outputDir,
		},
	}
	base := logrus.New()
	base.SetOutput(io.Discard)
	profiles := cache.NewProfileCache(time.Minute, 100)
	sc := scanner.NewScanner(cfg, history, market, profiles, logger.NewScanLogger(base))
	repos := &repository.Repositories{Picks: picks, ScanRuns: runs}
	notifier := notify.NewNotifier(config.NotifyConfig{Enabled: false}, nil)
	return NewScanService(cfg, sc, repos, notifier, logger.NewAuditLogger(base), base)
}

func TestExecutePersistsRunAndPicks(t *testing.T) {
	runs := &fakeRunStore{}
	picks := &fakePickStore{}
	dir := t.TempDir()
	svc := newTestService(t, jokicHistory(), oneGameMarket(), runs, picks, dir)

	result, err := svc.Execute(context.Background(), serviceScanDate, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs.runs) != 1 {
		t.Fatalf("expected one persisted run, got %d", len(runs.runs))
	}
	if len(picks.batches) != 1 || len(picks.batches[0]) != 1 {
		t.Fatalf("expected one persisted pick batch of one, got %v", picks.batches)
	}
	stored := picks.batches[0][0]
	if stored.RunID != runs.runs[0].ID {
		t.Fatalf("pick run id %s does not match run %s", stored.RunID, runs.runs[0].ID)
	}
	if stored.EntityName != "Nikola Jokic" || stored.Line != 24.5 {
		t.Fatalf("unexpected pick persisted: %+v", stored)
	}
	if result.Run.TotalPicks != 1 {
		t.Fatalf("expected run with one pick, got %d", result.Run.TotalPicks)
	}

	cardPath := filepath.Join(dir, "picks_card_2026-04-11.txt")
	card, err := os.ReadFile(cardPath)
	if err != nil {
		t.Fatalf("expected card file at %s: %v", cardPath, err)
	}
	if !strings.Contains(string(card), "Nikola Jokic") {
		t.Fatalf("card file missing pick:\n%s", card)
	}
}

func TestExecuteEmptySlatePersistsRunOnly(t *testing.T) {
	runs := &fakeRunStore{}
	picks := &fakePickStore{}
	svc := newTestService(t, jokicHistory(), &stubMarket{}, runs, picks, t.TempDir())

	result, err := svc.Execute(context.Background(), serviceScanDate, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs.runs) != 1 {
		t.Fatalf("expected the empty run persisted, got %d", len(runs.runs))
	}
	if len(picks.batches) != 0 {
		t.Fatalf("expected no pick batches, got %d", len(picks.batches))
	}
	if len(result.Picks) != 0 {
		t.Fatalf("expected no picks, got %d", len(result.Picks))
	}
}

func TestExecuteRunPersistFailure(t *testing.T) {
	runs := &fakeRunStore{err: errors.New("connection refused")}
	picks := &fakePickStore{}
	svc := newTestService(t, jokicHistory(), oneGameMarket(), runs, picks, t.TempDir())

	_, err := svc.Execute(context.Background(), serviceScanDate, false)
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if !strings.Contains(err.Error(), "persisting scan run") {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(picks.batches) != 0 {
		t.Fatalf("picks should not be written after a failed run insert, got %d batches", len(picks.batches))
	}
}

func TestExecuteCardFailureIsNotFatal(t *testing.T) {
	runs := &fakeRunStore{}
	picks := &fakePickStore{}
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := newTestService(t, jokicHistory(), oneGameMarket(), runs, picks, blocked)

	_, err := svc.Execute(context.Background(), serviceScanDate, false)
	if err != nil {
		t.Fatalf("card write failure should not fail the scan: %v", err)
	}
	if len(runs.runs) != 1 || len(picks.batches) != 1 {
		t.Fatalf("expected run and picks persisted despite card failure")
	}
}
