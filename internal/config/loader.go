// Package config provides configuration management for the NBA Picks service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("NBA_PICKS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults installs defaults so the service starts with nothing but an
// odds API key in the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "nba-picks")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 5001)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 120)

	v.SetDefault("stats_api.base_url", "https://stats.nba.com/stats")
	v.SetDefault("stats_api.season", "2025-26")
	v.SetDefault("stats_api.timeout_seconds", 30)
	v.SetDefault("stats_api.pacing_millis", 600)
	v.SetDefault("stats_api.rate_limit", 5.0)
	v.SetDefault("stats_api.max_retries", 3)
	v.SetDefault("stats_api.history_window", 15)
	v.SetDefault("stats_api.min_history_games", 5)

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds_api.api_key", os.Getenv("ODDS_API_KEY"))
	v.SetDefault("odds_api.sport", "basketball_nba")
	v.SetDefault("odds_api.regions", "us")
	v.SetDefault("odds_api.markets", []string{
		"player_points",
		"player_assists",
		"player_rebounds",
		"player_threes",
	})
	v.SetDefault("odds_api.timeout_seconds", 10)
	v.SetDefault("odds_api.rate_limit", 2.0)
	v.SetDefault("odds_api.max_retries", 3)
	v.SetDefault("odds_api.use_mock", false)

	v.SetDefault("pipeline.workers", 3)
	v.SetDefault("pipeline.num_games", 10)
	v.SetDefault("pipeline.min_confidence", 65.0)
	v.SetDefault("pipeline.default_limit", 5)

	// Odds API tokens are limited, keep picks cached for 6 hours
	v.SetDefault("cache.picks_ttl_seconds", 21600)
	v.SetDefault("cache.games_ttl_seconds", 2400)
	v.SetDefault("cache.players_ttl_seconds", 86400)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.picks_refresh", "0 */6 * * *")
	v.SetDefault("schedule.games_refresh", "*/40 * * * *")
}
