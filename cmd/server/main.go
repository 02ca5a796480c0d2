// Package main provides the entry point for the picks API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Wallfou/NBA-PICKS/internal/analyzer"
	"github.com/Wallfou/NBA-PICKS/internal/api"
	"github.com/Wallfou/NBA-PICKS/internal/config"
	"github.com/Wallfou/NBA-PICKS/internal/datasource"
	"github.com/Wallfou/NBA-PICKS/internal/logger"
	"github.com/Wallfou/NBA-PICKS/internal/metrics"
	"github.com/Wallfou/NBA-PICKS/internal/odds"
	"github.com/Wallfou/NBA-PICKS/internal/pipeline"
	"github.com/Wallfou/NBA-PICKS/internal/resolver"
	"github.com/Wallfou/NBA-PICKS/internal/scheduler"
	"github.com/Wallfou/NBA-PICKS/internal/service"
)

const version = "1.0.0"

func main() {
	// Local .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"season":      cfg.StatsAPI.Season,
	}).Info("NBA picks server starting")

	metrics.Init()

	statsHTTP := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:           cfg.StatsTimeout(),
		MaxRetries:        cfg.StatsAPI.MaxRetries,
		RetryWaitMin:      250 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         cfg.StatsAPI.RateLimit,
		CircuitBreakerMax: 5,
	}, appLog)

	statsClient := datasource.NewNBAStatsClient(
		statsHTTP,
		cfg.StatsAPI.BaseURL,
		cfg.StatsAPI.Season,
		cfg.StatsTimeout(),
		cfg.Pacing(),
		appLog,
	)

	var lineProvider odds.Provider
	if cfg.OddsAPI.UseMock {
		appLog.Warn("Using mock odds provider; no live lines will be fetched")
		lineProvider = odds.NewMockProvider()
	} else {
		oddsHTTP := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
			Timeout:           time.Duration(cfg.OddsAPI.TimeoutSeconds) * time.Second,
			MaxRetries:        cfg.OddsAPI.MaxRetries,
			RetryWaitMin:      250 * time.Millisecond,
			RetryWaitMax:      5 * time.Second,
			RateLimit:         cfg.OddsAPI.RateLimit,
			CircuitBreakerMax: 5,
		}, appLog)

		oddsClient := datasource.NewOddsClient(
			oddsHTTP,
			cfg.OddsAPI.BaseURL,
			cfg.OddsAPI.APIKey,
			cfg.OddsAPI.Sport,
			cfg.OddsAPI.Regions,
			appLog,
		)
		lineProvider = odds.NewAPIProvider(oddsClient, cfg.OddsAPI.Markets, appLog)
	}

	directory := service.NewPlayerDirectory(statsClient, cfg.PlayersTTL())
	identities := resolver.New(directory, appLog)

	scorer := analyzer.New(cfg.Pipeline.NumGames)

	orchestrator := pipeline.NewOrchestrator(
		lineProvider,
		statsClient,
		identities,
		scorer,
		pipeline.Config{
			Workers:         cfg.Pipeline.Workers,
			HistoryWindow:   cfg.StatsAPI.HistoryWindow,
			MinHistoryGames: cfg.StatsAPI.MinHistoryGames,
		},
		appLog,
	)

	picksService := service.NewPicksService(
		orchestrator,
		statsClient,
		directory,
		cfg.PicksTTL(),
		cfg.GamesTTL(),
		appLog,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var jobs *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		jobs = scheduler.NewScheduler(picksService, appLog)
		if err := jobs.SchedulePicksRefresh(cfg.Schedule.PicksRefresh); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule picks refresh")
		}
		if err := jobs.ScheduleGamesRefresh(cfg.Schedule.GamesRefresh); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule games refresh")
		}
		if err := jobs.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		appLog.WithField("next_run", jobs.NextRun()).Info("Background refresh scheduler started")
	}

	server := api.NewServer(api.Config{
		ServiceName:   cfg.App.Name,
		Version:       version,
		Port:          strconv.Itoa(cfg.Server.Port),
		MinConfidence: cfg.Pipeline.MinConfidence,
		DefaultLimit:  cfg.Pipeline.DefaultLimit,
		Picks:         picksService,
		Logger:        appLog,
	})

	if err := server.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start API server")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	cancel()

	if jobs != nil {
		if err := jobs.Stop(); err != nil {
			appLog.WithError(err).Error("Error stopping scheduler")
		}
	}

	if err := server.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during server shutdown")
	}

	appLog.Info("NBA picks server shut down successfully")
}
