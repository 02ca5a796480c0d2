package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Wallfou/NBA-PICKS/internal/metrics"
	"github.com/Wallfou/NBA-PICKS/internal/models"
)

const oddsSourceName = "the_odds_api"

// marketStatTypes maps odds provider market keys to stat categories.
var marketStatTypes = map[string]models.StatType{
	"player_points":   models.StatPoints,
	"player_assists":  models.StatAssists,
	"player_rebounds": models.StatRebounds,
	"player_threes":   models.StatThrees,
	"player_steals":   models.StatSteals,
	"player_blocks":   models.StatBlocks,
}

// OddsClient fetches player prop quotes from The Odds API v4.
type OddsClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	sport      string
	regions    string
	logger     *logrus.Logger
}

// NewOddsClient creates a new odds provider client
func NewOddsClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, sport, regions string, logger *logrus.Logger) *OddsClient {
	if baseURL == "" {
		baseURL = "https://api.the-odds-api.com/v4"
	}
	return &OddsClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		sport:      sport,
		regions:    regions,
		logger:     logger,
	}
}

// oddsEvent mirrors the provider's event payload
type oddsEvent struct {
	ID           string    `json:"id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

// eventOddsResponse mirrors the provider's per-event odds payload
type eventOddsResponse struct {
	ID         string `json:"id"`
	Bookmakers []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name        string           `json:"name"`        // Over / Under
				Description string           `json:"description"` // player name
				Point       *decimal.Decimal `json:"point"`
				Price       int              `json:"price"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// ListEventsToday retrieves events commencing on the current New York date.
// Prop markets key off the US schedule, so the day boundary is Eastern.
func (c *OddsClient) ListEventsToday(ctx context.Context) ([]models.OddsEvent, error) {
	if c.apiKey == "" {
		return nil, NewDataSourceError(oddsSourceName, ErrCodeAuthenticationFail, "API key not set", nil)
	}

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		ny = time.UTC
	}
	nowNY := time.Now().In(ny)
	startNY := time.Date(nowNY.Year(), nowNY.Month(), nowNY.Day(), 0, 0, 0, 0, ny)
	endNY := startNY.Add(24 * time.Hour)

	params := url.Values{
		"apiKey":           {c.apiKey},
		"dateFormat":       {"iso"},
		"commenceTimeFrom": {startNY.UTC().Format("2006-01-02T15:04:05Z")},
		"commenceTimeTo":   {endNY.UTC().Format("2006-01-02T15:04:05Z")},
	}

	reqURL := fmt.Sprintf("%s/sports/%s/events?%s", c.baseURL, c.sport, params.Encode())

	var events []oddsEvent
	if err := c.getJSON(ctx, reqURL, "events", &events); err != nil {
		return nil, err
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(oddsSourceName, "events").Inc()

	out := make([]models.OddsEvent, len(events))
	for i, ev := range events {
		out[i] = models.OddsEvent{
			ID:           ev.ID,
			HomeTeam:     ev.HomeTeam,
			AwayTeam:     ev.AwayTeam,
			CommenceTime: ev.CommenceTime,
		}
	}

	c.logger.WithField("events", len(out)).Info("Found games today")
	return out, nil
}

// EventQuotes retrieves raw per-bookmaker prop quotes for one event,
// keyed by player name and stat category.
func (c *OddsClient) EventQuotes(ctx context.Context, eventID string, markets []string) (map[string]map[models.StatType][]models.PropQuote, error) {
	if c.apiKey == "" {
		return nil, NewDataSourceError(oddsSourceName, ErrCodeAuthenticationFail, "API key not set", nil)
	}

	params := url.Values{
		"apiKey":     {c.apiKey},
		"regions":    {c.regions},
		"markets":    {strings.Join(markets, ",")},
		"oddsFormat": {"american"},
		"dateFormat": {"iso"},
	}

	reqURL := fmt.Sprintf("%s/sports/%s/events/%s/odds?%s", c.baseURL, c.sport, eventID, params.Encode())

	var parsed eventOddsResponse
	if err := c.getJSON(ctx, reqURL, "event_odds", &parsed); err != nil {
		return nil, err
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(oddsSourceName, "event_odds").Inc()

	requested := make(map[string]bool, len(markets))
	for _, m := range markets {
		requested[m] = true
	}

	quotes := make(map[string]map[models.StatType][]models.PropQuote)
	for _, bookmaker := range parsed.Bookmakers {
		for _, market := range bookmaker.Markets {
			if !requested[market.Key] {
				continue
			}
			statType, ok := marketStatTypes[market.Key]
			if !ok {
				continue
			}
			for _, outcome := range market.Outcomes {
				if outcome.Description == "" || outcome.Point == nil {
					continue
				}
				byStat := quotes[outcome.Description]
				if byStat == nil {
					byStat = make(map[models.StatType][]models.PropQuote)
					quotes[outcome.Description] = byStat
				}
				byStat[statType] = append(byStat[statType], models.PropQuote{
					Line:      *outcome.Point,
					Bookmaker: bookmaker.Key,
					Price:     outcome.Price,
					Side:      models.QuoteSide(outcome.Name),
				})
			}
		}
	}

	return quotes, nil
}

// getJSON performs a GET against the odds provider and decodes the payload
func (c *OddsClient) getJSON(ctx context.Context, reqURL, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NewDataSourceError(oddsSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(oddsSourceName, ErrCodeNetworkError, "failed to fetch "+endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewDataSourceError(oddsSourceName, ErrCodeAuthenticationFail, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(oddsSourceName, ErrCodeRateLimitExceeded, "quota exhausted", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(oddsSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d from %s: %s", resp.StatusCode, endpoint, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(oddsSourceName, ErrCodeInvalidData, "failed to parse "+endpoint+" response", err)
	}
	return nil
}
