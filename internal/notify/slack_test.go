package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/logger"
	"github.com/floorgang/floorscanner/internal/models"
)

func newWebhookServer(t *testing.T, status int) (*httptest.Server, *[]string) {
	t.Helper()
	messages := &[]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding webhook payload: %v", err)
		}
		*messages = append(*messages, payload.Text)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, messages
}

func newTestNotifier(url string) *Notifier {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return NewNotifier(config.NotifyConfig{Enabled: true, SlackWebhookURL: url}, logger.NewAuditLogger(base))
}

func summaryRun(totalPicks int) *models.ScanRun {
	remaining := 480
	return &models.ScanRun{
		Sport:                "basketball_nba",
		ScanDate:             time.Date(2026, time.April, 11, 0, 0, 0, 0, time.UTC),
		TotalPicks:           totalPicks,
		PlayerPicks:          totalPicks,
		EntitiesAnalyzed:     40,
		EntitiesSkipped:      5,
		APIRequestsRemaining: &remaining,
	}
}

func summaryPick(name string, odds int) models.Pick {
	floor := 25.0
	return models.Pick{
		Kind:          models.EntityPlayer,
		EntityName:    name,
		Stat:          models.StatPoints,
		Side:          models.SideOver,
		Line:          24.5,
		Odds:          odds,
		Floor:         &floor,
		GamesAnalyzed: 20,
		HitRate:       "20/20",
	}
}

func TestSendScanSummary(t *testing.T) {
	server, messages := newWebhookServer(t, http.StatusOK)
	n := newTestNotifier(server.URL)

	picks := []models.Pick{summaryPick("Nikola Jokic", -255), summaryPick("Jamal Murray", -310)}
	run := summaryRun(len(picks))

	if err := n.SendScanSummary(context.Background(), run, picks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*messages) != 1 {
		t.Fatalf("expected 1 webhook call, got %d", len(*messages))
	}

	msg := (*messages)[0]
	for _, want := range []string{
		"*Floor scan 2026-04-11*",
		"2 picks (2 player, 0 team) from 40 entities",
		"1. Nikola Jokic PTS 24.5 Over -255  (20/20)",
		"2. Jamal Murray PTS 24.5 Over -310  (20/20)",
		"API requests remaining: 480",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected message to contain %q, got:\n%s", want, msg)
		}
	}
}

func TestSendScanSummaryCapsTopPicks(t *testing.T) {
	server, messages := newWebhookServer(t, http.StatusOK)
	n := newTestNotifier(server.URL)

	var picks []models.Pick
	for i := 0; i < 12; i++ {
		picks = append(picks, summaryPick(fmt.Sprintf("Player %02d", i), -200-i))
	}

	if err := n.SendScanSummary(context.Background(), summaryRun(len(picks)), picks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := (*messages)[0]
	if !strings.Contains(msg, "10. Player 09") {
		t.Fatalf("expected the tenth pick listed, got:\n%s", msg)
	}
	if strings.Contains(msg, "11. ") {
		t.Fatalf("expected the list capped at ten, got:\n%s", msg)
	}
	if !strings.Contains(msg, "...and 2 more on the card") {
		t.Fatalf("expected overflow note, got:\n%s", msg)
	}
}

func TestSendScanSummaryNoPicks(t *testing.T) {
	server, messages := newWebhookServer(t, http.StatusOK)
	n := newTestNotifier(server.URL)

	run := summaryRun(0)
	run.PlayerPicks = 0

	if err := n.SendScanSummary(context.Background(), run, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains((*messages)[0], "No picks cleared the scan (40 analyzed, 5 skipped).") {
		t.Fatalf("expected no-picks summary, got:\n%s", (*messages)[0])
	}
}

func TestSendNoGames(t *testing.T) {
	server, messages := newWebhookServer(t, http.StatusOK)
	n := newTestNotifier(server.URL)

	if err := n.SendNoGames(context.Background(), "2026-04-11"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains((*messages)[0], "No games on the board today.") {
		t.Fatalf("expected no-games note, got:\n%s", (*messages)[0])
	}
}

func TestSendResultsRecap(t *testing.T) {
	server, messages := newWebhookServer(t, http.StatusOK)
	n := newTestNotifier(server.URL)

	recap := ResultsRecap{
		GameDate:  "2026-04-11",
		Settled:   12,
		Hits:      10,
		Misses:    2,
		NetUnits:  decimal.NewFromFloat(3.42),
		BestHit:   "Nikola Jokic PTS 24.5 Over (cleared by 6.5)",
		WorstMiss: "Denver Nuggets Total 104.5 Over (short by 2.5)",
	}
	if err := n.SendResultsRecap(context.Background(), recap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := (*messages)[0]
	for _, want := range []string{
		"*Floor scan results 2026-04-11*",
		"Settled 12: 10 HIT / 2 MISS",
		"Net: +3.42u",
		"Best hit: Nikola Jokic",
		"Worst miss: Denver Nuggets",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected message to contain %q, got:\n%s", want, msg)
		}
	}
}

func TestSendResultsRecapNothingSettled(t *testing.T) {
	server, messages := newWebhookServer(t, http.StatusOK)
	n := newTestNotifier(server.URL)

	if err := n.SendResultsRecap(context.Background(), ResultsRecap{GameDate: "2026-04-11"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains((*messages)[0], "Nothing to settle.") {
		t.Fatalf("expected empty recap note, got:\n%s", (*messages)[0])
	}
}

func TestNotifierDisabled(t *testing.T) {
	server, messages := newWebhookServer(t, http.StatusOK)

	n := NewNotifier(config.NotifyConfig{Enabled: false, SlackWebhookURL: server.URL}, nil)
	if n.Enabled() {
		t.Fatalf("expected notifier disabled")
	}
	if err := n.SendNoGames(context.Background(), "2026-04-11"); err != nil {
		t.Fatalf("expected disabled send to be a no-op, got %v", err)
	}
	if len(*messages) != 0 {
		t.Fatalf("expected no webhook calls, got %d", len(*messages))
	}
}

func TestWebhookFailure(t *testing.T) {
	server, _ := newWebhookServer(t, http.StatusInternalServerError)
	n := newTestNotifier(server.URL)

	if err := n.SendNoGames(context.Background(), "2026-04-11"); err == nil {
		t.Fatalf("expected an error on webhook status 500")
	}
}

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{3.42, "+3.42u"},
		{0.5, "+0.50u"},
		{0, "+0.00u"},
		{-1.5, "-1.50u"},
	}
	for _, tc := range cases {
		if got := formatUnits(decimal.NewFromFloat(tc.value)); got != tc.want {
			t.Errorf("formatUnits(%v): expected %s, got %s", tc.value, tc.want, got)
		}
	}
}
