// Package logger provides scan-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ScanLogger provides dedicated logging for scan runs.
type ScanLogger struct {
	*logrus.Entry
}

// NewScanLogger creates a new scan logger.
func NewScanLogger(baseLogger *logrus.Logger) *ScanLogger {
	return &ScanLogger{
		Entry: baseLogger.WithField("component", "scan"),
	}
}

// LogScanStart logs the beginning of a scan run.
func (sl *ScanLogger) LogScanStart(sport, scanDate string, events, players, teams int) {
	sl.WithFields(logrus.Fields{
		"sport":     sport,
		"scan_date": scanDate,
		"events":    events,
		"players":   players,
		"teams":     teams,
	}).Info("Scan started")
}

// LogEntitySkipped logs an entity dropped from the scan and why.
func (sl *ScanLogger) LogEntitySkipped(kind, name, reason string) {
	sl.WithFields(logrus.Fields{
		"entity_kind": kind,
		"entity_name": name,
		"reason":      reason,
	}).Debug("Entity skipped")
}

// LogPickFound logs a pick that cleared matching and admission.
func (sl *ScanLogger) LogPickFound(kind, name, stat, side string, line float64, odds int, bound float64, games int) {
	sl.WithFields(logrus.Fields{
		"entity_kind": kind,
		"entity_name": name,
		"stat":        stat,
		"side":        side,
		"line":        line,
		"odds":        odds,
		"bound":       bound,
		"games":       games,
	}).Info("Pick found")
}

// LogScanComplete logs the scan summary.
func (sl *ScanLogger) LogScanComplete(totalPicks, playerPicks, teamPicks, analyzed, skipped int, duration time.Duration, requestsRemaining int) {
	sl.WithFields(logrus.Fields{
		"total_picks":        totalPicks,
		"player_picks":       playerPicks,
		"team_picks":         teamPicks,
		"entities_analyzed":  analyzed,
		"entities_skipped":   skipped,
		"duration_ms":        duration.Milliseconds(),
		"requests_remaining": requestsRemaining,
	}).Info("Scan completed")
}

// LogSlateEmpty logs a scan day with no games on the board.
func (sl *ScanLogger) LogSlateEmpty(sport, scanDate string) {
	sl.WithFields(logrus.Fields{
		"sport":     sport,
		"scan_date": scanDate,
	}).Info("No games on the board, nothing to scan")
}

// LogEventFailed logs an event whose odds could not be fetched. The scan
// carries on with the remaining events.
func (sl *ScanLogger) LogEventFailed(eventID, homeTeam, awayTeam string, err error) {
	sl.WithFields(logrus.Fields{
		"event_id":  eventID,
		"home_team": homeTeam,
		"away_team": awayTeam,
		"error":     err.Error(),
	}).Warn("Could not fetch odds for event")
}
