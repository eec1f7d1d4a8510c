// Package main provides the results tracker CLI. It settles the previous
// slate's picks against actual box scores and reports the record.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/database"
	"github.com/floorgang/floorscanner/internal/logger"
	"github.com/floorgang/floorscanner/internal/models"
	"github.com/floorgang/floorscanner/internal/notify"
	"github.com/floorgang/floorscanner/internal/provider"
	"github.com/floorgang/floorscanner/internal/repository"
	"github.com/floorgang/floorscanner/internal/results"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		dateFlag   = flag.String("date", "", "Game date to settle (YYYY-MM-DD), defaults to yesterday")
		doNotify   = flag.Bool("notify", true, "Send the recap to the configured webhook")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	gameDate, err := resolveGameDate(cfg, *dateFlag)
	if err != nil {
		appLog.Fatalf("Invalid date: %v", err)
	}

	ctx := context.Background()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	statsHTTP := provider.NewRateLimitedHTTPClient(statsHTTPConfig(cfg),
		log.New(os.Stdout, "nba-stats: ", log.LstdFlags))
	history := provider.NewNBAStatsClient(statsHTTP, cfg.StatsAPI.BaseURL,
		cfg.StatsAPI.Season, cfg.StatsAPI.SeasonType,
		models.ParseStatKeys(cfg.Scanner.PlayerStats),
		log.New(os.Stdout, "nba-stats: ", log.LstdFlags))

	tracker := results.NewTracker(repos.Picks, history, appLog)

	appLog.WithField("game_date", gameDate.Format("2006-01-02")).Info("Settling picks")
	summary, err := tracker.Score(ctx, gameDate)
	if err != nil {
		appLog.WithError(err).Fatal("Settlement failed")
	}

	printSummary(summary)

	if summary.Settled == 0 && summary.Pending == 0 && summary.Failed == 0 {
		appLog.Info("No picks to settle")
		return
	}

	if *doNotify {
		notifier := notify.NewNotifier(cfg.Notify, logger.NewAuditLogger(appLog))
		if err := notifier.SendResultsRecap(ctx, buildRecap(summary)); err != nil {
			appLog.WithError(err).Warn("Could not send recap")
		}
	}
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

// resolveGameDate parses the flag in the scheduler's timezone, defaulting to
// yesterday since picks settle the morning after the games.
func resolveGameDate(cfg *config.Config, flag string) (time.Time, error) {
	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading timezone %q: %w", cfg.Scheduler.Timezone, err)
	}
	if flag == "" {
		return time.Now().In(location).AddDate(0, 0, -1), nil
	}
	date, err := time.ParseInLocation("2006-01-02", flag, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", flag, err)
	}
	return date, nil
}

func statsHTTPConfig(cfg *config.Config) provider.HTTPClientConfig {
	hc := provider.DefaultHTTPClientConfig()
	hc.Timeout = cfg.StatsAPI.StatsTimeout()
	hc.MaxRetries = cfg.StatsAPI.MaxRetries
	hc.RateLimit = cfg.StatsAPI.RequestsPerSecond
	return hc
}

func printSummary(summary *results.Summary) {
	fmt.Printf("\nResults for %s\n", summary.GameDate.Format("2006-01-02"))
	if summary.Settled == 0 {
		fmt.Println("Nothing settled.")
	} else {
		fmt.Printf("Settled %d: %d HIT / %d MISS (%.1f%%)\n",
			summary.Settled, summary.Hits, summary.Misses, summary.HitRate())
		fmt.Printf("Net: %s units\n", summary.NetUnits.StringFixed(2))
		if summary.BestHit != nil {
			fmt.Printf("Best hit:   %s\n", summary.BestHit.Describe())
		}
		if summary.WorstMiss != nil {
			fmt.Printf("Worst miss: %s\n", summary.WorstMiss.Describe())
		}
	}
	if summary.Pending > 0 {
		fmt.Printf("Pending: %d (no game found yet)\n", summary.Pending)
	}
	if summary.Failed > 0 {
		fmt.Printf("Failed: %d (left unsettled)\n", summary.Failed)
	}
	fmt.Printf("Took %s\n\n", summary.Duration.Round(time.Millisecond))
}

func buildRecap(summary *results.Summary) notify.ResultsRecap {
	recap := notify.ResultsRecap{
		GameDate: summary.GameDate.Format("2006-01-02"),
		Settled:  summary.Settled,
		Hits:     summary.Hits,
		Misses:   summary.Misses,
		NetUnits: summary.NetUnits,
	}
	if summary.BestHit != nil {
		recap.BestHit = summary.BestHit.Describe()
	}
	if summary.WorstMiss != nil {
		recap.WorstMiss = summary.WorstMiss.Describe()
	}
	return recap
}
