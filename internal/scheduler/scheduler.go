// Package scheduler runs the morning planning pass and fires the day's scan
// ahead of the first tip-off.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/metrics"
	"github.com/floorgang/floorscanner/internal/models"
	"github.com/floorgang/floorscanner/internal/notify"
	"github.com/floorgang/floorscanner/internal/provider"
)

const (
	planTimeout = 2 * time.Minute
	scanTimeout = 30 * time.Minute
	timeLayout  = "3:04 PM MST"
)

// ScanFunc runs a full scan for the given date. The scheduler owns the
// context deadline.
type ScanFunc func(ctx context.Context, scanDate time.Time) error

// Scheduler plans each day from the slate and arms a one-shot scan timer.
// The daily cron only decides WHEN to scan; the scan itself runs at first
// tip-off minus the configured lead time.
type Scheduler struct {
	cfg      *config.Config
	market   provider.MarketSource
	notifier *notify.Notifier
	runScan  ScanFunc
	log      *logrus.Entry

	cron     *cron.Cron
	location *time.Location

	mu        sync.Mutex
	isRunning bool
	timer     *time.Timer
	nextScan  time.Time
}

// NewScheduler creates a scheduler in the configured timezone.
func NewScheduler(cfg *config.Config, market provider.MarketSource, notifier *notify.Notifier, runScan ScanFunc, baseLogger *logrus.Logger) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	return &Scheduler{
		cfg:      cfg,
		market:   market,
		notifier: notifier,
		runScan:  runScan,
		log:      baseLogger.WithField("component", "scheduler"),
		cron:     cron.New(cron.WithLocation(location)),
		location: location,
	}, nil
}

// Start registers the daily planning job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	_, err := s.cron.AddFunc(s.cfg.Scheduler.DailyCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), planTimeout)
		defer cancel()

		if err := s.PlanToday(ctx); err != nil {
			s.log.WithError(err).Error("Daily planning failed")
		}
	})
	if err != nil {
		return fmt.Errorf("registering daily planning job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	s.log.WithField("cron", s.cfg.Scheduler.DailyCron).Info("Scheduler started")

	return nil
}

// Stop disarms any pending scan and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.nextScan = time.Time{}
		metrics.UpdateNextScan(0)
	}
	wasRunning := s.isRunning
	s.isRunning = false
	s.mu.Unlock()

	if !wasRunning {
		return
	}

	select {
	case <-s.cron.Stop().Done():
	case <-time.After(30 * time.Second):
		s.log.Warn("Timed out waiting for running jobs")
	}
	s.log.Info("Scheduler stopped")
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// NextScan returns the armed scan time, or a zero time when nothing is armed.
func (s *Scheduler) NextScan() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextScan
}

// PlanToday reads the day's slate and decides when the scan runs. A first
// tip inside the lead time, or a target inside the immediate window, scans
// right away; otherwise a one-shot timer is armed. Planning failures are
// pushed to the notifier so a dead morning job gets noticed.
func (s *Scheduler) PlanToday(ctx context.Context) error {
	scanDate := time.Now().In(s.location)
	dateLabel := scanDate.Format("2006-01-02")

	events, err := s.market.TodaysEvents(ctx)
	if err != nil {
		planErr := fmt.Errorf("fetching today's events: %w", err)
		if notifyErr := s.notifier.SendScheduleError(ctx, dateLabel, planErr); notifyErr != nil {
			s.log.WithError(notifyErr).Warn("Could not send scheduling failure notification")
		}
		return planErr
	}

	if len(events) == 0 {
		s.log.WithField("scan_date", dateLabel).Info("No games today, nothing to schedule")
		if err := s.notifier.SendNoGames(ctx, dateLabel); err != nil {
			s.log.WithError(err).Warn("Could not send no-games notification")
		}
		return nil
	}

	first := earliestEvent(events)
	target := first.CommenceTime.Add(-s.cfg.Scheduler.LeadTime())
	wait := time.Until(target)
	immediate := wait <= s.cfg.Scheduler.ImmediateWindow()

	plan := notify.SchedulePlan{
		FirstGame: fmt.Sprintf("%s vs %s", first.HomeTeam, first.AwayTeam),
		GameTime:  first.CommenceTime.In(s.location).Format(timeLayout),
		ScanTime:  target.In(s.location).Format(timeLayout),
		Games:     len(events),
		Immediate: immediate,
	}
	if err := s.notifier.SendSchedulePlanned(ctx, plan); err != nil {
		s.log.WithError(err).Warn("Could not send schedule notification")
	}

	if immediate {
		s.log.WithFields(logrus.Fields{
			"first_game": plan.FirstGame,
			"game_time":  plan.GameTime,
		}).Info("First tip is close, scanning now")
		s.fire(scanDate)
		return nil
	}

	s.arm(target, scanDate)
	s.log.WithFields(logrus.Fields{
		"first_game": plan.FirstGame,
		"game_time":  plan.GameTime,
		"scan_time":  plan.ScanTime,
		"games":      len(events),
	}).Info("Scan armed")

	return nil
}

// arm replaces any pending timer with a one-shot at target.
func (s *Scheduler) arm(target time.Time, scanDate time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.nextScan = target
	s.timer = time.AfterFunc(time.Until(target), func() {
		s.fire(scanDate)
	})
	metrics.UpdateNextScan(float64(target.Unix()))
}

// fire runs the scan and clears the armed state.
func (s *Scheduler) fire(scanDate time.Time) {
	s.mu.Lock()
	s.timer = nil
	s.nextScan = time.Time{}
	s.mu.Unlock()
	metrics.UpdateNextScan(0)

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	s.log.WithField("scan_date", scanDate.Format("2006-01-02")).Info("Starting scheduled scan")
	if err := s.runScan(ctx, scanDate); err != nil {
		s.log.WithError(err).Error("Scheduled scan failed")
	}
}

func earliestEvent(events []models.Event) models.Event {
	first := events[0]
	for _, e := range events[1:] {
		if e.CommenceTime.Before(first.CommenceTime) {
			first = e
		}
	}
	return first
}
