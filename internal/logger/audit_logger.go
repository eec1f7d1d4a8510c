// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for outward-facing
// actions: persistence, notification and settlement.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRunPersisted logs a scan run written to the database.
func (al *AuditLogger) LogRunPersisted(runID string, sport string, scanDate string, totalPicks, analyzed, skipped int) {
	al.WithFields(logrus.Fields{
		"run_id":            runID,
		"sport":             sport,
		"scan_date":         scanDate,
		"total_picks":       totalPicks,
		"entities_analyzed": analyzed,
		"entities_skipped":  skipped,
	}).Info("Scan run persisted")
}

// LogNotificationSent logs a notification pushed to an external channel.
func (al *AuditLogger) LogNotificationSent(channel, kind string, picks int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"channel":   channel,
		"kind":      kind,
		"picks":     picks,
		"timestamp": timestamp.Unix(),
	}).Info("Notification sent")
}

// LogPickSettled logs a pick scored against its actual result.
func (al *AuditLogger) LogPickSettled(pickID, entityName, stat string, line, actual float64, result string) {
	al.WithFields(logrus.Fields{
		"pick_id":     pickID,
		"entity_name": entityName,
		"stat":        stat,
		"line":        line,
		"actual":      actual,
		"result":      result,
	}).Info("Pick settled")
}

// LogQuotaRemaining logs the odds API quota after a scan. Low quota is
// surfaced at warn level so it shows up before the board goes dark.
func (al *AuditLogger) LogQuotaRemaining(remaining int, lowWater int) {
	entry := al.WithFields(logrus.Fields{
		"requests_remaining": remaining,
		"low_water":          lowWater,
	})
	if remaining >= 0 && remaining < lowWater {
		entry.Warn("Odds API quota running low")
		return
	}
	entry.Info("Odds API quota recorded")
}
