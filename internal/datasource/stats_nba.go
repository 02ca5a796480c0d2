package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Wallfou/NBA-PICKS/internal/metrics"
	"github.com/Wallfou/NBA-PICKS/internal/models"
)

const statsSourceName = "nba_stats"

// NBAStatsClient fetches player and game data from the NBA Stats API.
// Game log fetches are paced with a shared limiter so the upstream
// per-second cap holds no matter how many pipeline workers are running.
type NBAStatsClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	season     string
	timeout    time.Duration
	pacer      *rate.Limiter
	logger     *logrus.Logger
}

// NewNBAStatsClient creates a new NBA Stats API client. pacing is the
// minimum interval between game log calls.
func NewNBAStatsClient(httpClient *RateLimitedHTTPClient, baseURL, season string, timeout, pacing time.Duration, logger *logrus.Logger) *NBAStatsClient {
	if baseURL == "" {
		baseURL = "https://stats.nba.com/stats"
	}
	return &NBAStatsClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		season:     season,
		timeout:    timeout,
		pacer:      rate.NewLimiter(rate.Every(pacing), 1),
		logger:     logger,
	}
}

// statsResponse is the envelope every stats endpoint returns: tabular
// result sets with a header row and untyped cells.
type statsResponse struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// set returns the named result set, or the first one if name is empty.
func (r *statsResponse) set(name string) (*resultSet, error) {
	if len(r.ResultSets) == 0 {
		return nil, fmt.Errorf("response has no result sets")
	}
	if name == "" {
		return &r.ResultSets[0], nil
	}
	for i := range r.ResultSets {
		if r.ResultSets[i].Name == name {
			return &r.ResultSets[i], nil
		}
	}
	return nil, fmt.Errorf("result set %q not present", name)
}

// col returns the index of a header column, -1 if absent.
func (rs *resultSet) col(header string) int {
	for i, h := range rs.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

func cellString(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func cellFloat(row []interface{}, idx int) float64 {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return 0
	}
	switch v := row[idx].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func cellInt(row []interface{}, idx int) int {
	return int(cellFloat(row, idx))
}

// ListActivePlayers retrieves the league player directory, filtered to
// players currently on a roster.
func (c *NBAStatsClient) ListActivePlayers(ctx context.Context) ([]models.PlayerInfo, error) {
	params := url.Values{
		"Season":   {c.season},
		"LeagueID": {"00"},
	}

	resp, err := c.get(ctx, "playerindex", params)
	if err != nil {
		return nil, err
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(statsSourceName, "playerindex").Inc()

	rs, err := resp.set("PlayerIndex")
	if err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeInvalidData, "unexpected player index shape", err)
	}

	var (
		idCol     = rs.col("PERSON_ID")
		firstCol  = rs.col("PLAYER_FIRST_NAME")
		lastCol   = rs.col("PLAYER_LAST_NAME")
		teamCol   = rs.col("TEAM_ABBREVIATION")
		jerseyCol = rs.col("JERSEY_NUMBER")
		posCol    = rs.col("POSITION")
		rosterCol = rs.col("ROSTER_STATUS")
	)
	if idCol < 0 || firstCol < 0 || lastCol < 0 {
		return nil, NewDataSourceError(statsSourceName, ErrCodeInvalidData, "player index missing identity columns", nil)
	}

	players := make([]models.PlayerInfo, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		if rosterCol >= 0 && cellInt(row, rosterCol) != 1 {
			continue
		}
		players = append(players, models.PlayerInfo{
			ID:       cellInt(row, idCol),
			Name:     strings.TrimSpace(cellString(row, firstCol) + " " + cellString(row, lastCol)),
			Team:     cellString(row, teamCol),
			Jersey:   cellString(row, jerseyCol),
			Position: cellString(row, posCol),
		})
	}

	c.logger.WithField("players", len(players)).Debug("Fetched player index")
	return players, nil
}

// PlayerGameLog retrieves the most recent numGames regular season games
// for a player, most-recent-first. The shared pacing limiter runs before
// the call and the configured timeout bounds it; a timeout surfaces as a
// distinct, catchable DataSourceError.
func (c *NBAStatsClient) PlayerGameLog(ctx context.Context, playerID int, numGames int) ([]models.GameLogRecord, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeTimeout, "pacing wait interrupted", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{
		"PlayerID":   {strconv.Itoa(playerID)},
		"Season":     {c.season},
		"SeasonType": {"Regular Season"},
	}

	start := time.Now()
	resp, err := c.get(ctx, "playergamelog", params)
	metrics.HistoryFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(statsSourceName, "playergamelog").Inc()

	rs, err := resp.set("")
	if err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeInvalidData, "unexpected game log shape", err)
	}

	var (
		gameIDCol  = rs.col("Game_ID")
		dateCol    = rs.col("GAME_DATE")
		matchupCol = rs.col("MATCHUP")
		minCol     = rs.col("MIN")
		ptsCol     = rs.col("PTS")
		rebCol     = rs.col("REB")
		astCol     = rs.col("AST")
		stlCol     = rs.col("STL")
		blkCol     = rs.col("BLK")
		fg3mCol    = rs.col("FG3M")
	)

	records := make([]models.GameLogRecord, 0, numGames)
	for _, row := range rs.RowSet {
		if len(records) >= numGames {
			break
		}
		rec := models.GameLogRecord{
			GameID:   cellString(row, gameIDCol),
			Matchup:  cellString(row, matchupCol),
			Minutes:  cellFloat(row, minCol),
			Points:   cellFloat(row, ptsCol),
			Rebounds: cellFloat(row, rebCol),
			Assists:  cellFloat(row, astCol),
			Steals:   cellFloat(row, stlCol),
			Blocks:   cellFloat(row, blkCol),
			Threes:   cellFloat(row, fg3mCol),
		}
		if raw := cellString(row, dateCol); raw != "" {
			if t, err := time.Parse("Jan 02, 2006", raw); err == nil {
				rec.GameDate = t
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// Scoreboard retrieves the scheduled games for a date.
func (c *NBAStatsClient) Scoreboard(ctx context.Context, date time.Time) ([]models.Game, error) {
	params := url.Values{
		"GameDate":  {date.Format("2006-01-02")},
		"LeagueID":  {"00"},
		"DayOffset": {"0"},
	}

	resp, err := c.get(ctx, "scoreboardv2", params)
	if err != nil {
		return nil, err
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(statsSourceName, "scoreboardv2").Inc()

	rs, err := resp.set("GameHeader")
	if err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeInvalidData, "unexpected scoreboard shape", err)
	}

	var (
		gameIDCol = rs.col("GAME_ID")
		homeCol   = rs.col("HOME_TEAM_ID")
		awayCol   = rs.col("VISITOR_TEAM_ID")
		statusCol = rs.col("GAME_STATUS_TEXT")
		codeCol   = rs.col("GAMECODE")
		arenaCol  = rs.col("ARENA_NAME")
		tvCol     = rs.col("NATL_TV_BROADCASTER_ABBREVIATION")
	)

	games := make([]models.Game, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		games = append(games, models.Game{
			GameID:     cellString(row, gameIDCol),
			GameDate:   date,
			HomeTeamID: cellInt(row, homeCol),
			AwayTeamID: cellInt(row, awayCol),
			StatusText: cellString(row, statusCol),
			GameCode:   cellString(row, codeCol),
			ArenaName:  cellString(row, arenaCol),
			NationalTV: cellString(row, tvCol),
		})
	}

	return games, nil
}

// get performs a stats API request with the header set the upstream requires.
func (c *NBAStatsClient) get(ctx context.Context, endpoint string, params url.Values) (*statsResponse, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeNetworkError, "failed to create request", err)
	}

	// stats.nba.com rejects requests without a browser-like header set
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeoutErr(err) {
			return nil, NewDataSourceError(statsSourceName, ErrCodeTimeout, endpoint+" timed out", err)
		}
		return nil, NewDataSourceError(statsSourceName, ErrCodeNetworkError, "failed to fetch "+endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewDataSourceError(statsSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(statsSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d from %s: %s", resp.StatusCode, endpoint, string(body)), nil)
	}

	var parsed statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, NewDataSourceError(statsSourceName, ErrCodeInvalidData, "failed to parse "+endpoint+" response", err)
	}

	return &parsed, nil
}

func isTimeoutErr(err error) bool {
	type timeout interface{ Timeout() bool }
	var t timeout
	return errors.As(err, &t) && t.Timeout()
}
