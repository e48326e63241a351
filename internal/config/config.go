// Package config provides configuration management for the fplpanel pipeline.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	API       APIConfig       `mapstructure:"api" validate:"required"`
	Merge     MergeConfig     `mapstructure:"merge"`
	Panels    PanelsConfig    `mapstructure:"panels" validate:"required"`
	Features  FeaturesConfig  `mapstructure:"features" validate:"required"`
	Selection SelectionConfig `mapstructure:"selection" validate:"required"`
	Model     ModelConfig     `mapstructure:"model" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	// SecretsRegion and SecretsName locate the optional AWS secret overlay
	SecretsRegion string `mapstructure:"secrets_region"`
	SecretsName   string `mapstructure:"secrets_name"`
}

// APIConfig configures the FPL API client
type APIConfig struct {
	BaseURL               string  `mapstructure:"base_url" validate:"required,url"`
	UserAgent             string  `mapstructure:"user_agent"`
	AuthToken             string  `mapstructure:"auth_token"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	MaxRetries            int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond    float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	Burst                 int     `mapstructure:"burst" validate:"required,gt=0"`
	CacheTTLSeconds       int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	// Season tags the ingested panel, e.g. "2526"
	Season string `mapstructure:"season" validate:"required,season"`
	// Output is the season panel CSV written by ingest
	Output string `mapstructure:"output" validate:"required"`
}

// MergeConfig holds defaults for the merge command; flags override them
type MergeConfig struct {
	Root         string `mapstructure:"root"`
	Output       string `mapstructure:"output"`
	TargetSchema string `mapstructure:"target_schema"`
	Glob         string `mapstructure:"glob"`
	Season       string `mapstructure:"season" validate:"omitempty,season"`
}

// PanelsConfig locates the season panels combined by the pipeline
type PanelsConfig struct {
	Dir  string `mapstructure:"dir" validate:"required"`
	Glob string `mapstructure:"glob" validate:"required"`
	// Output is the engineered panel CSV
	Output string `mapstructure:"output" validate:"required"`
}

// FeaturesConfig controls feature construction and the train/eval split
type FeaturesConfig struct {
	Windows       []int    `mapstructure:"windows" validate:"required,min=1,dive,gt=0"`
	BaseStats     []string `mapstructure:"base_stats" validate:"omitempty,dive,stat"`
	TrainSeasons  []string `mapstructure:"train_seasons" validate:"required,min=1,dive,season"`
	CurrentSeason string   `mapstructure:"current_season" validate:"required,season"`
	TrainGWUntil  int      `mapstructure:"train_gw_until" validate:"required,gt=0"`
	TargetGW      int      `mapstructure:"target_gw" validate:"required,gt=0"`
	DropColumns   []string `mapstructure:"drop_columns"`
}

// SelectionConfig constrains squad selection
type SelectionConfig struct {
	Formation         map[string]int `mapstructure:"formation" validate:"required,dive,keys,position,endkeys,gte=0"`
	Budget            float64        `mapstructure:"budget" validate:"required,gt=0"`
	MaxPlayersPerTeam int            `mapstructure:"max_players_per_team" validate:"required,gt=0"`
	Output            string         `mapstructure:"output" validate:"required"`
	PredictionsOutput string         `mapstructure:"predictions_output" validate:"required"`
}

// ModelConfig selects and configures the regressor
type ModelConfig struct {
	Type        string  `mapstructure:"type" validate:"required,oneof=local remote"`
	Ridge       float64 `mapstructure:"ridge" validate:"gte=0"`
	HTTPAddress string  `mapstructure:"http_address" validate:"required_if=Type remote,omitempty,url"`
	GRPCAddress string  `mapstructure:"grpc_address"`
	// ServiceName is the gRPC health service name to probe
	ServiceName           string `mapstructure:"service_name"`
	AuthToken             string `mapstructure:"auth_token"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	MaxRetries            int    `mapstructure:"max_retries" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration. Connection
// fields are only checked when Enabled is set.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig drives the schedule command
type ScheduleConfig struct {
	Cron string `mapstructure:"cron" validate:"omitempty,cron"`
	// Ingest runs an API ingestion before each pipeline run
	Ingest bool `mapstructure:"ingest"`
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

// RequestTimeout is the per-request API timeout
func (a APIConfig) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CacheTTL is how long API responses are reused
func (a APIConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLSeconds) * time.Second
}

// RequestTimeout is the per-request model service timeout
func (m ModelConfig) RequestTimeout() time.Duration {
	return time.Duration(m.RequestTimeoutSeconds) * time.Second
}
