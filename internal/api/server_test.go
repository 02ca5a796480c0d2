package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wallfou/NBA-PICKS/internal/datasource"
	"github.com/Wallfou/NBA-PICKS/internal/models"
	"github.com/Wallfou/NBA-PICKS/internal/pipeline"
	"github.com/Wallfou/NBA-PICKS/internal/service"
)

type stubRunner struct {
	result *pipeline.Result
	err    error
}

func (s *stubRunner) Run(ctx context.Context) (*pipeline.Result, error) {
	return s.result, s.err
}

type stubGames struct{}

func (s *stubGames) Scoreboard(ctx context.Context, date time.Time) ([]models.Game, error) {
	return []models.Game{{GameID: "0022500001", HomeTeamAbbr: "DEN", AwayTeamAbbr: "BOS"}}, nil
}

type stubIndex struct{}

func (s *stubIndex) ListActivePlayers(ctx context.Context) ([]models.PlayerInfo, error) {
	return []models.PlayerInfo{{ID: 201939, Name: "Stephen Curry"}}, nil
}

func testServer(t *testing.T, runner *stubRunner) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	directory := service.NewPlayerDirectory(&stubIndex{}, time.Hour)
	picks := service.NewPicksService(runner, &stubGames{}, directory, time.Hour, time.Hour, logger)

	return NewServer(Config{
		ServiceName: "nba-picks-test",
		Version:     "test",
		Port:        "0",
		Picks:       picks,
		Logger:      logger,
	})
}

func resultWithPicks() *pipeline.Result {
	return &pipeline.Result{
		RunID: "run-1",
		Predictions: []models.Prediction{
			{PlayerName: "Stephen Curry", StatType: models.StatPoints, Pick: models.PickOver, Confidence: 88.0},
			{PlayerName: "LeBron James", StatType: models.StatPoints, Pick: models.PickUnder, Confidence: 60.0},
		},
		RawProps: map[string]*models.PlayerProps{
			"Stephen Curry": {PlayerName: "Stephen Curry"},
			"LeBron James":  {PlayerName: "LeBron James"},
		},
		Summary: &pipeline.RunSummary{RunID: "run-1", Scored: 2},
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestHandleTopPicks(t *testing.T) {
	srv := testServer(t, &stubRunner{result: resultWithPicks()})

	req := httptest.NewRequest(http.MethodGet, "/api/picks/top?min_confidence=70", nil)
	rec := httptest.NewRecorder()
	srv.handleTopPicks(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	picks := data["picks"].([]interface{})
	require.Len(t, picks, 1)
	assert.Equal(t, float64(2), data["total_analyzed"])
}

func TestHandleTopPicksRejectsBadFilters(t *testing.T) {
	srv := testServer(t, &stubRunner{result: resultWithPicks()})

	tests := []struct {
		name  string
		query string
	}{
		{"bad stat type", "?stat_type=DUNKS"},
		{"bad pick", "?pick=PUSH"},
		{"confidence out of range", "?min_confidence=250"},
		{"limit out of range", "?limit=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/picks/top"+tt.query, nil)
			rec := httptest.NewRecorder()
			srv.handleTopPicks(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestHandleTopPicksDegradedOutage(t *testing.T) {
	srv := testServer(t, &stubRunner{err: models.ErrUpstreamUnavailable})

	req := httptest.NewRequest(http.MethodGet, "/api/picks/top", nil)
	rec := httptest.NewRecorder()
	srv.handleTopPicks(rec, req)

	// A provider outage with nothing cached degrades to an empty set.
	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, true, data["degraded"])
	assert.Empty(t, data["picks"])
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, &stubRunner{result: resultWithPicks()})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["has_picks"])
	assert.Contains(t, body, "cache_ages")
}

func TestParseFiltersDefaults(t *testing.T) {
	srv := testServer(t, &stubRunner{})
	req := httptest.NewRequest(http.MethodGet, "/api/picks/top", nil)

	filters, err := srv.parseFilters(req)

	require.NoError(t, err)
	assert.Equal(t, 65.0, filters.MinConfidence)
	assert.Equal(t, 10, filters.Limit)
	assert.Empty(t, filters.StatType)
	assert.Empty(t, filters.Pick)
	assert.False(t, filters.ForceRefresh)
}

func TestParseFiltersLowercaseValues(t *testing.T) {
	srv := testServer(t, &stubRunner{})
	req := httptest.NewRequest(http.MethodGet, "/api/picks/top?stat_type=pts&pick=over&refresh=true", nil)

	filters, err := srv.parseFilters(req)

	require.NoError(t, err)
	assert.Equal(t, models.StatPoints, filters.StatType)
	assert.Equal(t, models.PickOver, filters.Pick)
	assert.True(t, filters.ForceRefresh)
}

func TestHandleBestOdds(t *testing.T) {
	result := resultWithPicks()
	result.RawProps["Stephen Curry"].Quotes = map[models.StatType][]models.PropQuote{
		models.StatPoints: {
			{Line: decimal.NewFromFloat(27.5), Bookmaker: "draftkings", Side: models.SideOver},
			{Line: decimal.NewFromFloat(26.5), Bookmaker: "fanduel", Side: models.SideOver},
		},
	}
	srv := testServer(t, &stubRunner{result: result})

	req := httptest.NewRequest(http.MethodGet, "/api/odds/best", nil)
	rec := httptest.NewRecorder()
	srv.handleBestOdds(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
	players := data["players"].([]interface{})
	require.Len(t, players, 2)

	curry := players[1].(map[string]interface{})
	assert.Equal(t, "Stephen Curry", curry["player_name"])
	lines := curry["lines"].(map[string]interface{})
	points := lines["PTS"].(map[string]interface{})
	over := points["over"].(map[string]interface{})
	assert.Equal(t, "fanduel", over["bookmaker"])
}

func TestRefreshStatusClassifiesUpstreamFailure(t *testing.T) {
	authErr := fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable,
		datasource.NewDataSourceError("theodds", datasource.ErrCodeAuthenticationFail, "invalid API key", nil))
	quotaErr := fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable,
		datasource.NewDataSourceError("theodds", datasource.ErrCodeRateLimitExceeded, "quota exhausted", nil))
	timeoutErr := datasource.NewDataSourceError("stats_nba", datasource.ErrCodeTimeout, "scoreboard timed out", nil)

	assert.Equal(t, http.StatusBadGateway, refreshStatus(authErr))
	assert.Equal(t, http.StatusServiceUnavailable, refreshStatus(quotaErr))
	assert.Equal(t, http.StatusGatewayTimeout, refreshStatus(timeoutErr))
	assert.Equal(t, http.StatusBadGateway, refreshStatus(errors.New("pipeline exploded")))
}
