// Package config provides configuration management for the floor scanner.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	StatsAPI  StatsAPIConfig  `mapstructure:"stats_api" validate:"required"`
	OddsAPI   OddsAPIConfig   `mapstructure:"odds_api" validate:"required"`
	Scanner   ScannerConfig   `mapstructure:"scanner" validate:"required"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Health    HealthConfig    `mapstructure:"health"`
	AWS       AWSConfig       `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// StatsAPIConfig represents the NBA stats API configuration
type StatsAPIConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	Season            string  `mapstructure:"season" validate:"required,season"`
	SeasonType        string  `mapstructure:"season_type" validate:"required"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
}

// OddsAPIConfig represents The Odds API configuration
type OddsAPIConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	Sport             string  `mapstructure:"sport" validate:"required"`
	Region            string  `mapstructure:"region" validate:"required"`
	Bookmaker         string  `mapstructure:"bookmaker" validate:"required"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
}

// ScannerConfig represents the scan criteria configuration
type ScannerConfig struct {
	MinGames      int      `mapstructure:"min_games" validate:"required,gt=0"`
	MaxGames      int      `mapstructure:"max_games" validate:"required,gt=0"`
	OddsThreshold int      `mapstructure:"odds_threshold" validate:"required,americanodds"`
	PlayerStats   []string `mapstructure:"player_stats" validate:"required,min=1,dive,oneof=PTS REB AST FG3M STL BLK"`
	OutputDir     string   `mapstructure:"output_dir" validate:"required"`
}

// NotifyConfig represents notification configuration
type NotifyConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	SlackWebhookURL string `mapstructure:"slack_webhook_url" validate:"omitempty,url"`
}

// SchedulerConfig represents the scan scheduling configuration
type SchedulerConfig struct {
	DailyCron              string `mapstructure:"daily_cron" validate:"required,cronspec"`
	LeadTimeMinutes        int    `mapstructure:"lead_time_minutes" validate:"required,gt=0"`
	ImmediateWindowMinutes int    `mapstructure:"immediate_window_minutes" validate:"gte=0"`
	Timezone               string `mapstructure:"timezone" validate:"required,timezone"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health server configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// AWSConfig represents the AWS Secrets Manager overlay configuration
type AWSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// StatsTimeout returns the stats API request timeout as a duration
func (c *StatsAPIConfig) StatsTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OddsTimeout returns the odds API request timeout as a duration
func (c *OddsAPIConfig) OddsTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LeadTime returns how long before the first game the scan should run
func (c *SchedulerConfig) LeadTime() time.Duration {
	return time.Duration(c.LeadTimeMinutes) * time.Minute
}

// ImmediateWindow returns the window inside which a pending scan runs at once
func (c *SchedulerConfig) ImmediateWindow() time.Duration {
	return time.Duration(c.ImmediateWindowMinutes) * time.Minute
}
