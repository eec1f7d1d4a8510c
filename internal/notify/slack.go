// Package notify delivers scan output to Slack.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/logger"
	"github.com/floorgang/floorscanner/internal/metrics"
	"github.com/floorgang/floorscanner/internal/models"
)

// topPickLimit caps how many picks a summary message lists.
const topPickLimit = 10

// Notifier posts scan summaries to a Slack incoming webhook. A notifier
// without a webhook URL is disabled and every send is a no-op.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	audit      *logger.AuditLogger
}

// NewNotifier creates a Slack notifier from config.
func NewNotifier(cfg config.NotifyConfig, audit *logger.AuditLogger) *Notifier {
	url := ""
	if cfg.Enabled {
		url = cfg.SlackWebhookURL
	}
	return &Notifier{
		webhookURL: url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		audit:      audit,
	}
}

// Enabled reports whether sends will actually deliver.
func (n *Notifier) Enabled() bool {
	return n.webhookURL != ""
}

// SendScanSummary posts the day's ranked picks, capped at topPickLimit.
func (n *Notifier) SendScanSummary(ctx context.Context, run *models.ScanRun, picks []models.Pick) error {
	if !n.Enabled() {
		return nil
	}
	if err := n.post(ctx, formatScanSummary(run, picks)); err != nil {
		return err
	}
	n.delivered("scan_summary", len(picks))
	return nil
}

// SendNoGames posts a short note for a day with an empty board.
func (n *Notifier) SendNoGames(ctx context.Context, scanDate string) error {
	if !n.Enabled() {
		return nil
	}
	message := fmt.Sprintf("*Floor scan %s*\nNo games on the board today.", scanDate)
	if err := n.post(ctx, message); err != nil {
		return err
	}
	n.delivered("no_games", 0)
	return nil
}

// SendTest posts a short message to verify webhook wiring. Unlike the other
// senders it fails when notifications are disabled, since a test that
// silently does nothing is useless.
func (n *Notifier) SendTest(ctx context.Context) error {
	if !n.Enabled() {
		return fmt.Errorf("notifications are disabled")
	}
	if err := n.post(ctx, "Floor scanner webhook test. If you can read this, notifications are wired."); err != nil {
		return err
	}
	n.delivered("test", 0)
	return nil
}

// SchedulePlan summarizes the morning planning pass for notification. Times
// arrive pre-formatted in the scheduler's timezone.
type SchedulePlan struct {
	FirstGame string
	GameTime  string
	ScanTime  string
	Games     int
	Immediate bool
}

// SendSchedulePlanned posts where the day's scan landed.
func (n *Notifier) SendSchedulePlanned(ctx context.Context, plan SchedulePlan) error {
	if !n.Enabled() {
		return nil
	}
	if err := n.post(ctx, formatSchedulePlan(plan)); err != nil {
		return err
	}
	n.delivered("schedule_planned", 0)
	return nil
}

// SendScheduleError posts a planning failure so a dead morning job gets noticed.
func (n *Notifier) SendScheduleError(ctx context.Context, scanDate string, planErr error) error {
	if !n.Enabled() {
		return nil
	}
	message := fmt.Sprintf("*Floor scan scheduling failed %s*\n%v", scanDate, planErr)
	if err := n.post(ctx, message); err != nil {
		return err
	}
	n.delivered("schedule_error", 0)
	return nil
}

// ResultsRecap summarizes a settlement run for notification.
type ResultsRecap struct {
	GameDate  string
	Settled   int
	Hits      int
	Misses    int
	NetUnits  decimal.Decimal
	BestHit   string
	WorstMiss string
}

// SendResultsRecap posts the settled record for a game date.
func (n *Notifier) SendResultsRecap(ctx context.Context, recap ResultsRecap) error {
	if !n.Enabled() {
		return nil
	}
	if err := n.post(ctx, formatResultsRecap(recap)); err != nil {
		return err
	}
	n.delivered("results_recap", recap.Settled)
	return nil
}

func (n *Notifier) delivered(kind string, picks int) {
	metrics.RecordNotificationSent()
	if n.audit != nil {
		n.audit.LogNotificationSent("slack", kind, picks, time.Now())
	}
}

func (n *Notifier) post(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]interface{}{"text": message})
	if err != nil {
		return fmt.Errorf("marshaling slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("creating slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func formatScanSummary(run *models.ScanRun, picks []models.Pick) string {
	var sb strings.Builder
	date := run.ScanDate.Format("2006-01-02")

	if len(picks) == 0 {
		fmt.Fprintf(&sb, "*Floor scan %s*\nNo picks cleared the scan (%d analyzed, %d skipped).",
			date, run.EntitiesAnalyzed, run.EntitiesSkipped)
		return sb.String()
	}

	fmt.Fprintf(&sb, "*Floor scan %s*\n%d picks (%d player, %d team) from %d entities\n\n",
		date, run.TotalPicks, run.PlayerPicks, run.TeamPicks, run.EntitiesAnalyzed)

	shown := len(picks)
	if shown > topPickLimit {
		shown = topPickLimit
	}
	for i := 0; i < shown; i++ {
		fmt.Fprintf(&sb, "%d. %s  (%s)\n", i+1, picks[i].Label(), picks[i].HitRate)
	}
	if rest := len(picks) - shown; rest > 0 {
		fmt.Fprintf(&sb, "...and %d more on the card\n", rest)
	}
	if run.APIRequestsRemaining != nil {
		fmt.Fprintf(&sb, "\nAPI requests remaining: %d", *run.APIRequestsRemaining)
	}
	return sb.String()
}

func formatSchedulePlan(plan SchedulePlan) string {
	var b strings.Builder
	b.WriteString("*Floor scan scheduled*\n")
	fmt.Fprintf(&b, "First game: %s at %s\n", plan.FirstGame, plan.GameTime)
	fmt.Fprintf(&b, "Games today: %d\n", plan.Games)
	if plan.Immediate {
		b.WriteString("First tip is close, scanning now.")
	} else {
		fmt.Fprintf(&b, "Scan at %s.", plan.ScanTime)
	}
	return b.String()
}

func formatResultsRecap(recap ResultsRecap) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Floor scan results %s*\n", recap.GameDate)
	if recap.Settled == 0 {
		sb.WriteString("Nothing to settle.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Settled %d: %d HIT / %d MISS\n", recap.Settled, recap.Hits, recap.Misses)
	fmt.Fprintf(&sb, "Net: %s\n", formatUnits(recap.NetUnits))
	if recap.BestHit != "" {
		fmt.Fprintf(&sb, "Best hit: %s\n", recap.BestHit)
	}
	if recap.WorstMiss != "" {
		fmt.Fprintf(&sb, "Worst miss: %s\n", recap.WorstMiss)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatUnits(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Sign() >= 0 {
		return "+" + s + "u"
	}
	return s + "u"
}
