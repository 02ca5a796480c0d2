// Package api exposes the picks service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Wallfou/NBA-PICKS/internal/datasource"
	"github.com/Wallfou/NBA-PICKS/internal/metrics"
	"github.com/Wallfou/NBA-PICKS/internal/models"
	"github.com/Wallfou/NBA-PICKS/internal/service"
)

// Server is the HTTP front end for pick generation and retrieval.
type Server struct {
	picks         *service.PicksService
	serviceName   string
	version       string
	port          string
	minConfidence float64
	defaultLimit  int
	server        *http.Server
	logger        *logrus.Logger
}

// Config holds the configuration for the API server.
type Config struct {
	ServiceName   string
	Version       string
	Port          string
	MinConfidence float64
	DefaultLimit  int
	Picks         *service.PicksService
	Logger        *logrus.Logger
}

// envelope is the uniform JSON wrapper for API responses.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewServer creates an API server bound to the given picks service.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == "" {
		port = "5001"
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 65
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}

	return &Server{
		picks:         cfg.Picks,
		serviceName:   cfg.ServiceName,
		version:       cfg.Version,
		port:          port,
		minConfidence: cfg.MinConfidence,
		defaultLimit:  cfg.DefaultLimit,
		logger:        cfg.Logger,
	}
}

// Start starts the API server in the background and shuts it down when
// the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/picks/top", s.handleTopPicks)
	mux.HandleFunc("GET /api/picks/player/{name}", s.handlePlayerPicks)
	mux.HandleFunc("POST /api/picks/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/games/today", s.handleTodayGames)
	mux.HandleFunc("GET /api/allPlayers", s.handleAllPlayers)
	mux.HandleFunc("GET /api/odds/players", s.handleOddsPlayers)
	mux.HandleFunc("GET /api/odds/best", s.handleBestOdds)
	mux.HandleFunc("GET /api/stats/summary", s.handleStatsSummary)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /{$}", s.handleRoot)

	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.port,
			"service": s.serviceName,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   s.serviceName,
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleTopPicks returns ranked picks, optionally filtered by query
// parameters. An upstream outage with no cached picks yields an empty
// list rather than an error so clients can degrade gracefully.
func (s *Server) handleTopPicks(w http.ResponseWriter, r *http.Request) {
	filters, err := s.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ranked, err := s.picks.GetRankedPicks(r.Context(), filters)
	if err != nil {
		s.logger.WithError(err).Error("Failed to build ranked picks")
		writeError(w, http.StatusInternalServerError, "failed to generate picks")
		return
	}

	writeData(w, ranked)
}

func (s *Server) handlePlayerPicks(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "player name is required")
		return
	}

	predictions, err := s.picks.GetPredictionsForPlayer(r.Context(), name)
	if err != nil {
		if errors.Is(err, models.ErrNoPredictions) {
			writeError(w, http.StatusNotFound, "no predictions for player: "+name)
			return
		}
		s.logger.WithError(err).WithField("player", name).Error("Failed to fetch player predictions")
		writeError(w, http.StatusInternalServerError, "failed to generate picks")
		return
	}

	writeData(w, map[string]interface{}{
		"player":      name,
		"predictions": predictions,
	})
}

// handleRefresh discards cached picks and regenerates them synchronously.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.picks.ForceRefresh(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Forced refresh failed")
		writeError(w, refreshStatus(err), "refresh failed: "+err.Error())
		return
	}

	writeData(w, map[string]interface{}{
		"run_id":      result.RunID,
		"predictions": len(result.Predictions),
		"summary":     result.Summary,
	})
}

func (s *Server) handleTodayGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.picks.TodayGames(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch today's games")
		writeError(w, http.StatusBadGateway, "failed to fetch games")
		return
	}

	writeData(w, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleAllPlayers(w http.ResponseWriter, r *http.Request) {
	todayOnly := r.URL.Query().Get("today_only") == "true"

	players, err := s.picks.AllPlayers(r.Context(), todayOnly)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list players")
		writeError(w, http.StatusBadGateway, "failed to list players")
		return
	}

	writeData(w, map[string]interface{}{
		"count":   len(players),
		"players": players,
	})
}

func (s *Server) handleOddsPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.picks.PlayersWithOdds(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list players with odds")
		writeError(w, http.StatusBadGateway, "failed to list players with odds")
		return
	}

	writeData(w, map[string]interface{}{
		"count":   len(players),
		"players": players,
	})
}

func (s *Server) handleBestOdds(w http.ResponseWriter, r *http.Request) {
	players, err := s.picks.BestOdds(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to build best lines")
		writeError(w, http.StatusBadGateway, "failed to build best lines")
		return
	}

	writeData(w, map[string]interface{}{
		"count":   len(players),
		"players": players,
	})
}

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.picks.Summary(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to build stats summary")
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	writeData(w, summary)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hasPicks, cached := s.picks.HasPicks()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"service":      s.serviceName,
		"version":      s.version,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"has_picks":    hasPicks,
		"cached_picks": cached,
		"cache_ages":   s.picks.CacheAges(),
	})
}

// parseFilters extracts and validates pick filters from query parameters,
// falling back to the configured defaults.
func (s *Server) parseFilters(r *http.Request) (service.PickFilters, error) {
	q := r.URL.Query()
	filters := service.PickFilters{
		MinConfidence: s.minConfidence,
		Limit:         s.defaultLimit,
	}

	if v := q.Get("stat_type"); v != "" {
		stat := models.StatType(strings.ToUpper(v))
		if !models.IsValidStatType(stat) {
			return filters, errors.New("invalid stat_type: " + v)
		}
		filters.StatType = stat
	}

	if v := q.Get("pick"); v != "" {
		pick := models.Pick(strings.ToUpper(v))
		if pick != models.PickOver && pick != models.PickUnder {
			return filters, errors.New("invalid pick: " + v)
		}
		filters.Pick = pick
	}

	if v := q.Get("min_confidence"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil || min < 0 || min > 100 {
			return filters, errors.New("min_confidence must be between 0 and 100")
		}
		filters.MinConfidence = min
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			return filters, errors.New("limit must be between 1 and 100")
		}
		filters.Limit = limit
	}

	filters.ForceRefresh = q.Get("refresh") == "true"

	return filters, nil
}

// refreshStatus maps an upstream failure to a response status. Quota
// exhaustion is retryable, a bad API key is not.
func refreshStatus(err error) int {
	switch {
	case errors.Is(err, datasource.ErrRateLimitExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, datasource.ErrAuthenticationFailed):
		return http.StatusBadGateway
	case errors.Is(err, datasource.ErrTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
