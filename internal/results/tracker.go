// Package results grades settled picks against the box scores.
package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/floorgang/floorscanner/internal/logger"
	"github.com/floorgang/floorscanner/internal/metrics"
	"github.com/floorgang/floorscanner/internal/models"
	"github.com/floorgang/floorscanner/internal/provider"
	"github.com/floorgang/floorscanner/internal/repository"
)

// Tracker scores unsettled picks once the games have been played.
type Tracker struct {
	picks   repository.PickRepository
	history provider.HistorySource
	audit   *logger.AuditLogger
	log     *logrus.Entry
}

// NewTracker creates a results tracker.
func NewTracker(picks repository.PickRepository, history provider.HistorySource, baseLogger *logrus.Logger) *Tracker {
	return &Tracker{
		picks:   picks,
		history: history,
		audit:   logger.NewAuditLogger(baseLogger),
		log:     baseLogger.WithField("component", "results"),
	}
}

// SettledPick pairs a graded pick with its actual value and clearance.
type SettledPick struct {
	Pick      models.Pick
	Actual    float64
	Clearance float64
}

// Describe renders the pick with its actual for recap lines.
func (sp *SettledPick) Describe() string {
	if sp.Clearance >= 0 {
		return fmt.Sprintf("%s (actual %g, cleared by %g)", sp.Pick.Label(), sp.Actual, sp.Clearance)
	}
	return fmt.Sprintf("%s (actual %g, short by %g)", sp.Pick.Label(), sp.Actual, -sp.Clearance)
}

// Summary reports one settlement pass.
type Summary struct {
	GameDate  time.Time
	Settled   int
	Hits      int
	Misses    int
	Pending   int
	Failed    int
	NetUnits  decimal.Decimal
	BestHit   *SettledPick
	WorstMiss *SettledPick
	Duration  time.Duration
}

// HitRate returns hits as a percentage of settled picks.
func (s *Summary) HitRate() float64 {
	if s.Settled == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Settled) * 100
}

// Score grades every unsettled pick for gameDate. Picks whose game cannot be
// found yet stay unsettled and are counted as pending; fetch or persistence
// failures leave the pick for the next pass.
func (t *Tracker) Score(ctx context.Context, gameDate time.Time) (*Summary, error) {
	start := time.Now()

	unsettled, err := t.picks.GetUnsettled(ctx, gameDate)
	if err != nil {
		return nil, fmt.Errorf("loading unsettled picks: %w", err)
	}

	summary := &Summary{GameDate: gameDate, NetUnits: decimal.Zero}
	for _, p := range unsettled {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pick := *p

		actual, err := t.lookupActual(ctx, pick, gameDate)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				summary.Pending++
				t.log.WithFields(logrus.Fields{
					"entity": pick.EntityName,
					"stat":   pick.Stat,
				}).Debug("No game on record yet, leaving pick unsettled")
				continue
			}
			summary.Failed++
			t.log.WithFields(logrus.Fields{
				"entity": pick.EntityName,
				"stat":   pick.Stat,
				"error":  err.Error(),
			}).Warn("Could not fetch actual, leaving pick unsettled")
			continue
		}

		result := grade(pick, actual)
		if err := t.picks.SettleResult(ctx, pick.ID, actual, result); err != nil {
			summary.Failed++
			t.log.WithFields(logrus.Fields{
				"pick_id": pick.ID,
				"error":   err.Error(),
			}).Warn("Could not persist result")
			continue
		}

		settled := SettledPick{Pick: pick, Actual: actual, Clearance: clearance(pick, actual)}
		summary.Settled++
		if result == models.ResultHit {
			summary.Hits++
			summary.NetUnits = summary.NetUnits.Add(winUnits(pick.Odds))
			if summary.BestHit == nil || settled.Clearance > summary.BestHit.Clearance {
				best := settled
				summary.BestHit = &best
			}
		} else {
			summary.Misses++
			summary.NetUnits = summary.NetUnits.Sub(decimal.NewFromInt(1))
			if summary.WorstMiss == nil || settled.Clearance < summary.WorstMiss.Clearance {
				worst := settled
				summary.WorstMiss = &worst
			}
		}

		metrics.RecordPickSettled(string(result))
		t.audit.LogPickSettled(pick.ID.String(), pick.EntityName, string(pick.Stat), pick.Line, actual, string(result))
	}

	summary.Duration = time.Since(start)
	metrics.RecordSettlement(summary.Duration.Seconds())
	return summary, nil
}

func (t *Tracker) lookupActual(ctx context.Context, pick models.Pick, gameDate time.Time) (float64, error) {
	if pick.Kind == models.EntityTeam {
		return t.history.TeamActual(ctx, pick.EntityName, gameDate)
	}
	return t.history.PlayerActual(ctx, pick.EntityName, pick.Stat, gameDate)
}

// grade marks a pick HIT or MISS. Overs must clear the line, unders must stay
// below it; landing exactly on the line is a miss.
func grade(pick models.Pick, actual float64) models.PickResult {
	if pick.Side == models.SideUnder {
		if actual < pick.Line {
			return models.ResultHit
		}
		return models.ResultMiss
	}
	if actual > pick.Line {
		return models.ResultHit
	}
	return models.ResultMiss
}

// clearance is how far the actual landed on the winning side of the line,
// negative when the pick missed.
func clearance(pick models.Pick, actual float64) float64 {
	if pick.Side == models.SideUnder {
		return pick.Line - actual
	}
	return actual - pick.Line
}

// winUnits returns the profit on a one unit stake at the given American odds.
func winUnits(odds int) decimal.Decimal {
	switch {
	case odds > 0:
		return decimal.New(int64(odds), -2)
	case odds < 0:
		return decimal.NewFromInt(100).Div(decimal.NewFromInt(int64(-odds)))
	default:
		return decimal.Zero
	}
}
