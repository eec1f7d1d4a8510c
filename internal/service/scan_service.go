// Package service orchestrates scans end to end: run the pipeline, persist
// the results, write the card and push notifications.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/logger"
	"github.com/floorgang/floorscanner/internal/models"
	"github.com/floorgang/floorscanner/internal/notify"
	"github.com/floorgang/floorscanner/internal/render"
	"github.com/floorgang/floorscanner/internal/repository"
	"github.com/floorgang/floorscanner/internal/scanner"
)

// quotaLowWater is the requests-remaining level below which the audit log
// warns. The Odds API free tier resets monthly, so a low number with days
// left in the month means dark boards ahead.
const quotaLowWater = 50

// ScanService carries a finished scan out of the process: database, card
// file, webhook, audit trail.
type ScanService struct {
	cfg      *config.Config
	scanner  *scanner.Scanner
	repos    *repository.Repositories
	notifier *notify.Notifier
	audit    *logger.AuditLogger
	log      *logrus.Entry
}

// NewScanService wires the scan pipeline to its outputs.
func NewScanService(cfg *config.Config, sc *scanner.Scanner, repos *repository.Repositories, notifier *notify.Notifier, audit *logger.AuditLogger, baseLogger *logrus.Logger) *ScanService {
	return &ScanService{
		cfg:      cfg,
		scanner:  sc,
		repos:    repos,
		notifier: notifier,
		audit:    audit,
		log:      baseLogger.WithField("component", "scan_service"),
	}
}

// Execute scans scanDate and carries the result out. fresh drops the day's
// cached profiles before scanning. The card file and the webhook are best
// effort; only the scan itself and persistence can fail the call.
func (s *ScanService) Execute(ctx context.Context, scanDate time.Time, fresh bool) (*scanner.ScanResult, error) {
	result, err := s.scanner.Scan(ctx, scanDate, fresh)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, result); err != nil {
		return result, err
	}

	if path, err := render.WriteCardFile(s.cfg.Scanner.OutputDir, result.Run, result.Picks); err != nil {
		s.log.WithError(err).Warn("Could not write card file")
	} else {
		s.log.WithField("path", path).Info("Card written")
	}

	s.notifyScan(ctx, result)
	s.audit.LogQuotaRemaining(result.Stats.RequestsRemaining, quotaLowWater)

	return result, nil
}

func (s *ScanService) persist(ctx context.Context, result *scanner.ScanResult) error {
	if err := s.repos.ScanRuns.Create(ctx, result.Run); err != nil {
		return fmt.Errorf("persisting scan run: %w", err)
	}
	if len(result.Picks) > 0 {
		picks := make([]*models.Pick, len(result.Picks))
		for i := range result.Picks {
			picks[i] = &result.Picks[i]
		}
		if err := s.repos.Picks.CreateBatch(ctx, picks); err != nil {
			return fmt.Errorf("persisting picks: %w", err)
		}
	}
	s.audit.LogRunPersisted(
		result.Run.ID.String(),
		result.Run.Sport,
		result.Run.ScanDate.Format("2006-01-02"),
		result.Run.TotalPicks,
		result.Run.EntitiesAnalyzed,
		result.Run.EntitiesSkipped,
	)
	return nil
}

func (s *ScanService) notifyScan(ctx context.Context, result *scanner.ScanResult) {
	var err error
	if len(result.Slate.Events) == 0 {
		err = s.notifier.SendNoGames(ctx, result.Run.ScanDate.Format("2006-01-02"))
	} else {
		err = s.notifier.SendScanSummary(ctx, result.Run, result.Picks)
	}
	if err != nil {
		s.log.WithError(err).Warn("Could not send notification")
	}
}
