// Package main provides the floor scanner CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/floorgang/floorscanner/internal/cache"
	"github.com/floorgang/floorscanner/internal/config"
	"github.com/floorgang/floorscanner/internal/database"
	"github.com/floorgang/floorscanner/internal/logger"
	"github.com/floorgang/floorscanner/internal/models"
	"github.com/floorgang/floorscanner/internal/notify"
	"github.com/floorgang/floorscanner/internal/provider"
	"github.com/floorgang/floorscanner/internal/render"
	"github.com/floorgang/floorscanner/internal/repository"
	"github.com/floorgang/floorscanner/internal/scanner"
	"github.com/floorgang/floorscanner/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const (
	profileCacheTTL  = 12 * time.Hour
	profileCacheSize = 2048
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

var (
	scanDateFlag string
	freshFlag    bool
	dryRunFlag   bool
	cardDateFlag string
)

var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Scan NBA alternate lines for strikes under recent floors",
	Long: `Profiles every player and team quoted on today's board from their recent
game history, then surfaces alternate strikes sitting strictly below the
floor (or above the ceiling for team unders) at a playable price.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a full floor scan for a date",
	RunE:  runScan,
}

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Re-render the picks card for a stored scan",
	RunE:  runCard,
}

var notifyTestCmd = &cobra.Command{
	Use:   "notify-test",
	Short: "Send a test message to the configured webhook",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	scanCmd.Flags().StringVar(&scanDateFlag, "date", "", "Scan date as YYYY-MM-DD (default today)")
	scanCmd.Flags().BoolVar(&freshFlag, "fresh", false, "Drop cached profiles for the day before scanning")
	scanCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Scan without persisting or notifying")
	cardCmd.Flags().StringVar(&cardDateFlag, "date", "", "Scan date as YYYY-MM-DD (default today)")
	rootCmd.AddCommand(scanCmd, cardCmd, notifyTestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.AWS.Enabled {
		if err := config.LoadSecretsFromAWS(cfg, cfg.AWS.Region, cfg.AWS.SecretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	scanDate, err := resolveDate(scanDateFlag)
	if err != nil {
		return err
	}

	history, market := buildProviders()
	profiles := cache.NewProfileCache(profileCacheTTL, profileCacheSize)
	sc := scanner.NewScanner(cfg, history, market, profiles, logger.NewScanLogger(appLog))

	if dryRunFlag {
		result, err := sc.Scan(ctx, scanDate, freshFlag)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		render.NewCardWriter(os.Stdout).Render(result.Run, result.Picks)
		appLog.Info("Dry run, skipped persistence and notifications")
		return nil
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	audit := logger.NewAuditLogger(appLog)
	notifier := notify.NewNotifier(cfg.Notify, audit)
	svc := service.NewScanService(cfg, sc, repos, notifier, audit, appLog)

	result, err := svc.Execute(ctx, scanDate, freshFlag)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	render.NewCardWriter(os.Stdout).Render(result.Run, result.Picks)
	return nil
}

func runCard(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	scanDate, err := resolveDate(cardDateFlag)
	if err != nil {
		return err
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	runs, err := repos.ScanRuns.GetByScanDate(ctx, scanDate)
	if err != nil {
		return fmt.Errorf("loading scan runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Printf("No stored scan for %s\n", scanDate.Format("2006-01-02"))
		return nil
	}

	// Newest run for the date
	run := runs[0]
	picks, err := repos.Picks.GetByRunID(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("loading picks: %w", err)
	}

	render.NewCardWriter(os.Stdout).Render(run, derefPicks(picks))
	return nil
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	notifier := notify.NewNotifier(cfg.Notify, logger.NewAuditLogger(appLog))
	if err := notifier.SendTest(ctx); err != nil {
		return fmt.Errorf("webhook test failed: %w", err)
	}
	fmt.Println("Webhook test message sent")
	return nil
}

// buildProviders wires both API clients with their own rate limits.
func buildProviders() (provider.HistorySource, provider.MarketSource) {
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

// resolveDate parses a YYYY-MM-DD flag in the scheduler's timezone,
// defaulting to today.
func resolveDate(flag string) (time.Time, error) {
	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading timezone %q: %w", cfg.Scheduler.Timezone, err)
	}
	if flag == "" {
		return time.Now().In(location), nil
	}
	date, err := time.ParseInLocation("2006-01-02", flag, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", flag, err)
	}
	return date, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func derefPicks(picks []*models.Pick) []models.Pick {
	out := make([]models.Pick, 0, len(picks))
	for _, p := range picks {
		out = append(out, *p)
	}
	return out
}
