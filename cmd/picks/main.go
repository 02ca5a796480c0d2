// Package main provides a CLI for generating picks without the server.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Wallfou/NBA-PICKS/internal/analyzer"
	"github.com/Wallfou/NBA-PICKS/internal/config"
	"github.com/Wallfou/NBA-PICKS/internal/datasource"
	"github.com/Wallfou/NBA-PICKS/internal/logger"
	"github.com/Wallfou/NBA-PICKS/internal/metrics"
	"github.com/Wallfou/NBA-PICKS/internal/models"
	"github.com/Wallfou/NBA-PICKS/internal/odds"
	"github.com/Wallfou/NBA-PICKS/internal/pipeline"
	"github.com/Wallfou/NBA-PICKS/internal/resolver"
	"github.com/Wallfou/NBA-PICKS/internal/service"
)

var (
	configFile    string
	statFilter    string
	pickFilter    string
	minConfidence float64
	limit         int
	useMock       bool

	appLog *logrus.Logger
	cfg    *config.Config
	picks  *service.PicksService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&statFilter, "stat", "", "Filter by stat type (PTS, REB, AST, BLK, STL, FG3M)")
	rootCmd.Flags().StringVar(&pickFilter, "pick", "", "Filter by pick direction (OVER or UNDER)")
	rootCmd.Flags().Float64Var(&minConfidence, "min-confidence", 65, "Minimum confidence threshold")
	rootCmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of picks to display")
	rootCmd.Flags().BoolVar(&useMock, "mock", false, "Use canned odds instead of the live odds API")
}

var rootCmd = &cobra.Command{
	Use:   "picks",
	Short: "Generate today's player prop picks",
	Long:  `Fetches today's prop lines, pulls recent game logs, and prints the highest-confidence picks.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return displayPicks()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	if useMock {
		cfg.OddsAPI.UseMock = true
	}
	return config.Validate(cfg)
}

func setupDependencies() error {
	appLog = logger.NewLogger("warn")
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

	orchestrator := pipeline.NewOrchestrator(
		lineProvider,
		statsClient,
		identities,
		analyzer.New(cfg.Pipeline.NumGames),
		pipeline.Config{
			Workers:         cfg.Pipeline.Workers,
			HistoryWindow:   cfg.StatsAPI.HistoryWindow,
			MinHistoryGames: cfg.StatsAPI.MinHistoryGames,
		},
		appLog,
	)

	picks = service.NewPicksService(
		orchestrator,
		statsClient,
		directory,
		cfg.PicksTTL(),
		cfg.GamesTTL(),
		appLog,
	)

	return nil
}

func displayPicks() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	fmt.Println("Generating picks, this can take a few minutes on a busy slate...")

	filters := service.PickFilters{
		MinConfidence: minConfidence,
		Limit:         limit,
	}
	if statFilter != "" {
		stat := models.StatType(strings.ToUpper(statFilter))
		if !models.IsValidStatType(stat) {
			return fmt.Errorf("invalid stat type: %s", statFilter)
		}
		filters.StatType = stat
	}
	if pickFilter != "" {
		filters.Pick = models.Pick(strings.ToUpper(pickFilter))
	}

	ranked, err := picks.GetRankedPicks(ctx, filters)
	if err != nil {
		return err
	}

	if ranked.Degraded {
		fmt.Println("WARNING: odds provider unavailable, results may be empty or stale")
	}

	fmt.Printf("\nTop %d picks (of %d analyzed):\n\n", len(ranked.Picks), ranked.TotalAnalyzed)

	for i, p := range ranked.Picks {
		fmt.Printf("%2d. %-24s %-4s %-5s %.1f  conf %.1f%%  hit %.1f%%  avg %.1f  trend %s\n",
			i+1, p.PlayerName, p.StatType, p.Pick, p.Line,
			p.Confidence, p.HitRate, p.Average, p.Trend)
	}

	if len(ranked.Picks) == 0 {
		fmt.Println("No picks met the confidence threshold.")
	}

	if ranked.Summary != nil {
		fmt.Printf("\nRun %s: %d scored, %d skipped (no identity %d, short history %d), %d fetch errors\n",
			ranked.Summary.RunID,
			ranked.Summary.Scored,
			ranked.Summary.SkippedNoID+ranked.Summary.SkippedHistory,
			ranked.Summary.SkippedNoID,
			ranked.Summary.SkippedHistory,
			ranked.Summary.FetchErrors,
		)
	}

	return nil
}
