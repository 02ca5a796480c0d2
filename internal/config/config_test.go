package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigPath = "testdata/valid_config.yaml"

func TestLoadValidConfig(t *testing.T) {
	t.Setenv("TEST_ODDS_API_KEY", "secret-key")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "nba-picks-test", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 5099, cfg.Server.Port)
	assert.Equal(t, "2025-26", cfg.StatsAPI.Season)
	assert.Equal(t, []string{"player_points"}, cfg.OddsAPI.Markets)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadExpandsEnvironmentPlaceholders(t *testing.T) {
	t.Setenv("TEST_ODDS_API_KEY", "expanded-secret")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "expanded-secret", cfg.OddsAPI.APIKey)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("testdata/does_not_exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, "nba-picks", cfg.App.Name)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, 600, cfg.StatsAPI.PacingMillis)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 10, cfg.Pipeline.NumGames)
	assert.Equal(t, 21600, cfg.Cache.PicksTTLSeconds)
	assert.Equal(t, 2400, cfg.Cache.GamesTTLSeconds)
	assert.Equal(t, 86400, cfg.Cache.PlayersTTLSeconds)
}

func TestDurationHelpers(t *testing.T) {
	t.Setenv("TEST_ODDS_API_KEY", "secret-key")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "10s", cfg.StatsTimeout().String())
	assert.Equal(t, "10ms", cfg.Pacing().String())
	assert.Equal(t, "1m0s", cfg.PicksTTL().String())
	assert.Equal(t, "1m0s", cfg.GamesTTL().String())
	assert.Equal(t, "1m0s", cfg.PlayersTTL().String())
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.App.Environment = "sandbox"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment")
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.App.LogLevel = "verbose"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loglevel")
}

func TestValidateRejectsHistoryWindowSmallerThanMinimum(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.StatsAPI.HistoryWindow = 4
	cfg.StatsAPI.MinHistoryGames = 5

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_history_games")
}

func TestValidateRequiresAPIKeyWithoutMock(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.OddsAPI.APIKey = ""
	cfg.OddsAPI.UseMock = false

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")

	cfg.OddsAPI.UseMock = true
	assert.NoError(t, Validate(cfg))
}

func TestValidateAcceptsLoadedConfig(t *testing.T) {
	cfg := defaultTestConfig(t)
	assert.NoError(t, Validate(cfg))
}

func defaultTestConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("TEST_ODDS_API_KEY", "secret-key")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	return cfg
}
