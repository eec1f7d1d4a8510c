// Package main provides the entry point for the scanner daemon. It plans
// each day from the slate, fires the scan ahead of the first tip and serves
// health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/floorgang/floorscanner/internal/cache"
	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/database"
	"github.com/floorgang/floorscanner/internal/health"
	"github.com/floorgang/floorscanner/internal/logger"
	"github.com/floorgang/floorscanner/internal/metrics"
	"github.com/floorgang/floorscanner/internal/models"
	"github.com/floorgang/floorscanner/internal/notify"
	"github.com/floorgang/floorscanner/internal/provider"
	"github.com/floorgang/floorscanner/internal/repository"
	"github.com/floorgang/floorscanner/internal/scanner"
	"github.com/floorgang/floorscanner/internal/scheduler"
	"github.com/floorgang/floorscanner/internal/service"
)

const (
	profileCacheTTL  = 12 * time.Hour
	profileCacheSize = 2048
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		planOnBoot = flag.Bool("plan-on-boot", true, "Run the planning pass immediately on startup")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Floor scanner daemon starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	history, market := buildProviders(cfg)
	profiles := cache.NewProfileCache(profileCacheTTL, profileCacheSize)
	sc := scanner.NewScanner(cfg, history, market, profiles, logger.NewScanLogger(appLog))

	audit := logger.NewAuditLogger(appLog)
	notifier := notify.NewNotifier(cfg.Notify, audit)
	svc := service.NewScanService(cfg, sc, repos, notifier, audit, appLog)

	runScan := func(ctx context.Context, scanDate time.Time) error {
		_, err := svc.Execute(ctx, scanDate, false)
		return err
	}

	sched, err := scheduler.NewScheduler(cfg, market, notifier, runScan, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create scheduler")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	healthSrv := health.NewServer(cfg.Health, cfg.App, health.Options{
		DB:       db,
		NextScan: sched.NextScan,
	}, appLog)
	healthSrv.Start(ctx)
	healthSrv.SetReady(true)

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = startMetricsServer(cfg, appLog)
	}

	if *planOnBoot {
		// A restart mid-morning should still arm today's scan instead of
		// waiting for tomorrow's cron.
		go func() {
			planCtx, planCancel := context.WithTimeout(ctx, 2*time.Minute)
			defer planCancel()
			if err := sched.PlanToday(planCtx); err != nil {
				appLog.WithError(err).Error("Startup planning failed")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig.String()).Info("Shutdown signal received")

	cancel()
	sched.Stop()
	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Metrics server shutdown error")
		}
		shutdownCancel()
	}

	appLog.Info("Floor scanner daemon shut down")
}

func loadConfigWithSecrets(path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.AWS.Enabled {
		if err := config.LoadSecretsFromAWS(cfg, cfg.AWS.Region, cfg.AWS.SecretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildProviders(cfg *config.Config) (provider.HistorySource, provider.MarketSource) {
	tracked := models.ParseStatKeys(cfg.Scanner.PlayerStats)

	statsHTTP := provider.NewRateLimitedHTTPClient(httpConfig(
		cfg.StatsAPI.StatsTimeout(), cfg.StatsAPI.MaxRetries, cfg.StatsAPI.RequestsPerSecond,
	), log.New(os.Stdout, "nba-stats: ", log.LstdFlags))
	history := provider.NewNBAStatsClient(statsHTTP, cfg.StatsAPI.BaseURL,
		cfg.StatsAPI.Season, cfg.StatsAPI.SeasonType, tracked,
		log.New(os.Stdout, "nba-stats: ", log.LstdFlags))

	oddsHTTP := provider.NewRateLimitedHTTPClient(httpConfig(
		cfg.OddsAPI.OddsTimeout(), cfg.OddsAPI.MaxRetries, cfg.OddsAPI.RequestsPerSecond,
	), log.New(os.Stdout, "odds-api: ", log.LstdFlags))
	market := provider.NewOddsAPIClient(oddsHTTP, cfg.OddsAPI.BaseURL,
		cfg.OddsAPI.APIKey, cfg.OddsAPI.Sport, cfg.OddsAPI.Region, cfg.OddsAPI.Bookmaker,
		log.New(os.Stdout, "odds-api: ", log.LstdFlags))

	return history, market
}

func httpConfig(timeout time.Duration, maxRetries int, rps float64) provider.HTTPClientConfig {
	hc := provider.DefaultHTTPClientConfig()
	hc.Timeout = timeout
	hc.MaxRetries = maxRetries
	hc.RateLimit = rps
	return hc
}

func startMetricsServer(cfg *config.Config, appLog *logrus.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		appLog.WithFields(logrus.Fields{
			"port": cfg.Metrics.Port,
			"path": cfg.Metrics.Path,
		}).Info("Metrics server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Error("Metrics server error")
		}
	}()
	return srv
}
