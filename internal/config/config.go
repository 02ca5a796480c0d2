// Package config provides configuration management for the NBA Picks service.
package config

import "time"

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	StatsAPI StatsAPIConfig `mapstructure:"stats_api" validate:"required"`
	OddsAPI  OddsAPIConfig  `mapstructure:"odds_api" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port            int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSec  int `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSec int `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// StatsAPIConfig represents the NBA stats provider configuration
type StatsAPIConfig struct {
	BaseURL          string  `mapstructure:"base_url" validate:"required,url"`
	Season           string  `mapstructure:"season" validate:"required"`
	TimeoutSeconds   int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	PacingMillis     int     `mapstructure:"pacing_millis" validate:"required,gt=0"`
	RateLimit        float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	MaxRetries       int     `mapstructure:"max_retries" validate:"gte=0"`
	HistoryWindow    int     `mapstructure:"history_window" validate:"required,gt=0"`
	MinHistoryGames  int     `mapstructure:"min_history_games" validate:"required,gt=0"`
}

// OddsAPIConfig represents the odds provider configuration
type OddsAPIConfig struct {
	BaseURL        string   `mapstructure:"base_url" validate:"required,url"`
	APIKey         string   `mapstructure:"api_key"`
	Sport          string   `mapstructure:"sport" validate:"required"`
	Regions        string   `mapstructure:"regions" validate:"required"`
	Markets        []string `mapstructure:"markets" validate:"required,min=1"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RateLimit      float64  `mapstructure:"rate_limit" validate:"required,gt=0"`
	MaxRetries     int      `mapstructure:"max_retries" validate:"gte=0"`
	UseMock        bool     `mapstructure:"use_mock"`
}

// PipelineConfig represents picks generation pipeline configuration
type PipelineConfig struct {
	Workers       int     `mapstructure:"workers" validate:"required,gt=0"`
	NumGames      int     `mapstructure:"num_games" validate:"required,gt=0"`
	MinConfidence float64 `mapstructure:"min_confidence" validate:"gte=0,lte=100"`
	DefaultLimit  int     `mapstructure:"default_limit" validate:"required,gt=0"`
}

// CacheConfig represents TTLs for the three cache slots
type CacheConfig struct {
	PicksTTLSeconds   int `mapstructure:"picks_ttl_seconds" validate:"required,gt=0"`
	GamesTTLSeconds   int `mapstructure:"games_ttl_seconds" validate:"required,gt=0"`
	PlayersTTLSeconds int `mapstructure:"players_ttl_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// ScheduleConfig represents background cache refresh scheduling
type ScheduleConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	PicksRefresh  string `mapstructure:"picks_refresh"`
	GamesRefresh  string `mapstructure:"games_refresh"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// StatsTimeout returns the per-call timeout for stats provider requests
func (c *Config) StatsTimeout() time.Duration {
	return time.Duration(c.StatsAPI.TimeoutSeconds) * time.Second
}

// Pacing returns the fixed per-call delay applied before each game-log fetch
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.StatsAPI.PacingMillis) * time.Millisecond
}

// PicksTTL returns the picks cache slot TTL
func (c *Config) PicksTTL() time.Duration {
	return time.Duration(c.Cache.PicksTTLSeconds) * time.Second
}

// GamesTTL returns the today's-games cache slot TTL
func (c *Config) GamesTTL() time.Duration {
	return time.Duration(c.Cache.GamesTTLSeconds) * time.Second
}

// PlayersTTL returns the player-index cache slot TTL
func (c *Config) PlayersTTL() time.Duration {
	return time.Duration(c.Cache.PlayersTTLSeconds) * time.Second
}
