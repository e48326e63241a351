package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FPLPANEL_APP_LOG_LEVEL
const EnvPrefix = "FPLPANEL"

// DefaultPath is used when no config path is given
const DefaultPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)

	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration, falling back to built-in defaults
// and environment variables when the file does not exist
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults mirrors the production pipeline settings. Defaults also make
// viper aware of keys, so env overrides work without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fplpanel")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("api.base_url", "https://fantasy.premierleague.com/api/")
	v.SetDefault("api.user_agent", "fplpanel/1.0")
	v.SetDefault("api.request_timeout_seconds", 15)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.rate_limit_per_second", 5)
	v.SetDefault("api.burst", 5)
	v.SetDefault("api.cache_ttl_seconds", 300)
	v.SetDefault("api.season", "2526")
	v.SetDefault("api.output", "data/panels/fpl_panel_2526.csv")

	v.SetDefault("merge.glob", "**/*.csv")

	v.SetDefault("panels.dir", "data/panels")
	v.SetDefault("panels.glob", "*.csv")
	v.SetDefault("panels.output", "data/out/engineered_panel.csv")

	v.SetDefault("features.windows", []int{5, 8})
	v.SetDefault("features.train_seasons", []string{"2324", "2425"})
	v.SetDefault("features.current_season", "2526")
	v.SetDefault("features.train_gw_until", 6)
	v.SetDefault("features.target_gw", 7)
	v.SetDefault("features.drop_columns", []string{"team_h_score", "points_per_game", "transfers_in", "was_home"})

	v.SetDefault("selection.formation", map[string]int{
		"goalkeeper": 1,
		"defender":   3,
		"midfielder": 4,
		"forward":    3,
	})
	v.SetDefault("selection.budget", 100.0)
	v.SetDefault("selection.max_players_per_team", 3)
	v.SetDefault("selection.output", "data/out/squad.csv")
	v.SetDefault("selection.predictions_output", "data/out/predictions.csv")

	v.SetDefault("model.type", "local")
	v.SetDefault("model.ridge", 1.0)
	v.SetDefault("model.request_timeout_seconds", 30)
	v.SetDefault("model.max_retries", 2)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("schedule.cron", "0 6 * * *")
	v.SetDefault("schedule.ingest", true)
}
