// Package metrics provides the centralized Prometheus metrics registry for the scanner.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ScansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "floorscanner",
		Name:      "scans_total",
		Help:      "Total number of completed scan runs",
	})
	ScanErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "floorscanner",
		Name:      "scan_errors_total",
		Help:      "Total number of scan runs that failed outright",
	})
	PicksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floorscanner",
		Name:      "picks_total",
		Help:      "Total number of qualifying picks found",
	}, []string{"kind", "stat"})
	EntitiesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floorscanner",
		Name:      "entities_skipped_total",
		Help:      "Total number of entities skipped during scans",
	}, []string{"reason"})
	NotificationsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "floorscanner",
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications delivered",
	})
	PicksSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floorscanner",
		Name:      "picks_settled_total",
		Help:      "Total number of picks graded against final box scores",
	}, []string{"result"})
)

// Gauge metrics
var (
	OddsRequestsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "floorscanner",
		Name:      "odds_api_requests_remaining",
		Help:      "Odds API request quota left after the most recent call",
	})
	ProfileCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "floorscanner",
		Name:      "profile_cache_hit_ratio",
		Help:      "Hit ratio of the history profile cache",
	})
	LastScanPicks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "floorscanner",
		Name:      "last_scan_picks",
		Help:      "Number of picks produced by the most recent scan",
	})
	NextScanUnix = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "floorscanner",
		Name:      "next_scan_unix",
		Help:      "Unix timestamp of the next scheduled scan, 0 when none is armed",
	})
)

// Histogram metrics
var (
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "floorscanner",
		Name:      "scan_duration_seconds",
		Help:      "Duration of full scan runs in seconds",
		Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1800},
	})
	EntityAnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "floorscanner",
		Name:      "entity_analysis_duration_seconds",
		Help:      "Duration of a single entity's history fetch and line match in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SettlementDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "floorscanner",
		Name:      "settlement_duration_seconds",
		Help:      "Duration of results settlement runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(ScansTotal)
		registry.MustRegister(ScanErrorsTotal)
		registry.MustRegister(PicksTotal)
		registry.MustRegister(EntitiesSkippedTotal)
		registry.MustRegister(NotificationsSentTotal)
		registry.MustRegister(PicksSettledTotal)

		// Register gauge metrics
		registry.MustRegister(OddsRequestsRemaining)
		registry.MustRegister(ProfileCacheHitRatio)
		registry.MustRegister(LastScanPicks)
		registry.MustRegister(NextScanUnix)

		// Register histogram metrics
		registry.MustRegister(ScanDuration)
		registry.MustRegister(EntityAnalysisDuration)
		registry.MustRegister(SettlementDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScan records a completed scan run and its duration.
func RecordScan(durationSeconds float64, picks int) {
	ScansTotal.Inc()
	ScanDuration.Observe(durationSeconds)
	LastScanPicks.Set(float64(picks))
}

// RecordScanError records a scan run that failed outright.
func RecordScanError() {
	ScanErrorsTotal.Inc()
}

// RecordPick records one qualifying pick.
func RecordPick(kind, stat string) {
	PicksTotal.WithLabelValues(kind, stat).Inc()
}

// RecordSkip records an entity skipped for the given reason.
func RecordSkip(reason string) {
	EntitiesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordEntityAnalysis records the time spent analyzing one entity.
func RecordEntityAnalysis(durationSeconds float64) {
	EntityAnalysisDuration.Observe(durationSeconds)
}

// RecordNotificationSent records a delivered notification.
func RecordNotificationSent() {
	NotificationsSentTotal.Inc()
}

// RecordPickSettled records one graded pick.
func RecordPickSettled(result string) {
	PicksSettledTotal.WithLabelValues(result).Inc()
}

// RecordSettlement records the duration of a settlement run.
func RecordSettlement(durationSeconds float64) {
	SettlementDuration.Observe(durationSeconds)
}

// UpdateRequestsRemaining updates the odds API quota gauge.
func UpdateRequestsRemaining(remaining int) {
	OddsRequestsRemaining.Set(float64(remaining))
}

// UpdateCacheHitRatio updates the profile cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	ProfileCacheHitRatio.Set(ratio)
}

// UpdateNextScan updates the next scheduled scan gauge.
func UpdateNextScan(at float64) {
	NextScanUnix.Set(at)
}
