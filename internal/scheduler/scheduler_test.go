package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/models"
	"github.com/floorgang/floorscanner/internal/notify"
)

type fakeBoard struct {
	events    []models.Event
	eventsErr error
}

func (f *fakeBoard) TodaysEvents(ctx context.Context) ([]models.Event, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events, nil
}

func (f *fakeBoard) EventPlayerLines(ctx context.Context, eventID string) (map[string]models.PlayerLines, error) {
	return nil, nil
}

func (f *fakeBoard) EventTeamTotals(ctx context.Context, eventID string) (map[string]models.TeamTotalLines, error) {
	return nil, nil
}

func (f *fakeBoard) RequestsRemaining() int { return -1 }
func (f *fakeBoard) Name() string           { return "fake-board" }

type scanRecorder struct {
	mu    sync.Mutex
	calls int
}

func (r *scanRecorder) run(ctx context.Context, scanDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return nil
}

func (r *scanRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func schedulerConfig() *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{
			DailyCron:              "0 8 * * *",
			LeadTimeMinutes:        180,
			ImmediateWindowMinutes: 10,
			Timezone:               "America/Los_Angeles",
		},
	}
}

func silentLogger() *logrus.Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return base
}

func disabledNotifier() *notify.Notifier {
	return notify.NewNotifier(config.NotifyConfig{Enabled: false}, nil)
}

func newTestScheduler(t *testing.T, board *fakeBoard, notifier *notify.Notifier, rec *scanRecorder) *Scheduler {
	t.Helper()
	s, err := NewScheduler(schedulerConfig(), board, notifier, rec.run, silentLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestPlanTodayArmsFutureScan(t *testing.T) {
	commence := time.Now().Add(5 * time.Hour)
	board := &fakeBoard{events: []models.Event{
		{ID: "evt-late", CommenceTime: commence.Add(2 * time.Hour), HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat"},
		{ID: "evt-first", CommenceTime: commence, HomeTeam: "Denver Nuggets", AwayTeam: "Los Angeles Lakers"},
	}}
	rec := &scanRecorder{}
	s := newTestScheduler(t, board, disabledNotifier(), rec)
	defer s.Stop()

	if err := s.PlanToday(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := commence.Add(-3 * time.Hour)
	got := s.NextScan()
	if got.IsZero() {
		t.Fatal("expected an armed scan time")
	}
	if diff := got.Sub(want); diff < -time.Second || diff > time.Second {
		t.Fatalf("expected scan armed near %v, got %v", want, got)
	}
	if rec.count() != 0 {
		t.Fatalf("expected no scan yet, got %d runs", rec.count())
	}
}

func TestPlanTodayScansImmediatelyWhenTipIsClose(t *testing.T) {
	board := &fakeBoard{events: []models.Event{
		{ID: "evt-1", CommenceTime: time.Now().Add(time.Hour), HomeTeam: "Denver Nuggets", AwayTeam: "Phoenix Suns"},
	}}
	rec := &scanRecorder{}
	s := newTestScheduler(t, board, disabledNotifier(), rec)
	defer s.Stop()

	if err := s.PlanToday(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.count() != 1 {
		t.Fatalf("expected an immediate scan, got %d runs", rec.count())
	}
	if !s.NextScan().IsZero() {
		t.Fatalf("expected no armed timer after an immediate scan, got %v", s.NextScan())
	}
}

func TestPlanTodayNoGames(t *testing.T) {
	rec := &scanRecorder{}
	s := newTestScheduler(t, &fakeBoard{}, disabledNotifier(), rec)
	defer s.Stop()

	if err := s.PlanToday(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.count() != 0 || !s.NextScan().IsZero() {
		t.Fatal("expected an idle scheduler on an empty slate")
	}
}

func TestPlanTodayEventsFetchFailure(t *testing.T) {
	board := &fakeBoard{eventsErr: errors.New("status 503")}
	rec := &scanRecorder{}
	s := newTestScheduler(t, board, disabledNotifier(), rec)
	defer s.Stop()

	if err := s.PlanToday(context.Background()); err == nil {
		t.Fatal("expected an error when the events fetch fails")
	}
	if rec.count() != 0 {
		t.Fatalf("expected no scan after a failed plan, got %d runs", rec.count())
	}
}

func TestPlanTodayNotifiesSchedule(t *testing.T) {
	var messages []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		messages = append(messages, payload.Text)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := notify.NewNotifier(config.NotifyConfig{Enabled: true, SlackWebhookURL: server.URL}, nil)
	board := &fakeBoard{events: []models.Event{
		{ID: "evt-1", CommenceTime: time.Now().Add(6 * time.Hour), HomeTeam: "Denver Nuggets", AwayTeam: "Utah Jazz"},
	}}
	rec := &scanRecorder{}
	s := newTestScheduler(t, board, notifier, rec)
	defer s.Stop()

	if err := s.PlanToday(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(messages) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(messages))
	}
	if !strings.Contains(messages[0], "Denver Nuggets vs Utah Jazz") {
		t.Fatalf("expected the first game in the notification, got %q", messages[0])
	}
	if !strings.Contains(messages[0], "Games today: 1") {
		t.Fatalf("expected the game count, got %q", messages[0])
	}
}

func TestStopDisarmsPendingScan(t *testing.T) {
	board := &fakeBoard{events: []models.Event{
		{ID: "evt-1", CommenceTime: time.Now().Add(8 * time.Hour), HomeTeam: "Denver Nuggets", AwayTeam: "Dallas Mavericks"},
	}}
	rec := &scanRecorder{}
	s := newTestScheduler(t, board, disabledNotifier(), rec)

	if err := s.PlanToday(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.NextScan().IsZero() {
		t.Fatal("expected an armed scan time")
	}

	s.Stop()
	if !s.NextScan().IsZero() {
		t.Fatalf("expected nothing armed after Stop, got %v", s.NextScan())
	}
}

func TestStartStop(t *testing.T) {
	rec := &scanRecorder{}
	s := newTestScheduler(t, &fakeBoard{}, disabledNotifier(), rec)

	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("expected a running scheduler after Start")
	}
	if err := s.Start(); err == nil {
		t.Fatal("expected an error starting twice")
	}

	s.Stop()
	if s.IsRunning() {
		t.Fatal("expected a stopped scheduler after Stop")
	}
	s.Stop()
}
