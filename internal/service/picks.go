// Package service exposes the picks API the route layer consumes: ranked
// picks, per-player predictions, today's games, and forced refreshes, all
// served through the three independent cache slots.
package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Wallfou/NBA-PICKS/internal/analyzer"
	"github.com/Wallfou/NBA-PICKS/internal/cache"
	"github.com/Wallfou/NBA-PICKS/internal/models"
	"github.com/Wallfou/NBA-PICKS/internal/odds"
	"github.com/Wallfou/NBA-PICKS/internal/pipeline"
)

// Runner executes one picks generation pipeline run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// GamesSource fetches the day's scheduled games.
type GamesSource interface {
	Scoreboard(ctx context.Context, date time.Time) ([]models.Game, error)
}

// PickFilters narrows and ranks the prediction set for one request.
type PickFilters struct {
	StatType      models.StatType
	Pick          models.Pick
	MinConfidence float64
	Limit         int
	ForceRefresh  bool
}

// RankedPicks is the response for a ranked picks request.
type RankedPicks struct {
	Picks         []models.Prediction  `json:"picks"`
	TotalAnalyzed int                  `json:"total_analyzed"`
	Summary       *pipeline.RunSummary `json:"summary,omitempty"`
	CacheAge      *int                 `json:"cache_age_seconds,omitempty"`
	Degraded      bool                 `json:"degraded,omitempty"`
}

// PlayerOdds summarizes one player's available prop markets today.
type PlayerOdds struct {
	PlayerName     string            `json:"player_name"`
	HomeTeam       string            `json:"home_team"`
	AwayTeam       string            `json:"away_team"`
	CommenceTime   time.Time         `json:"commence_time"`
	StatsAvailable []models.StatType `json:"stats_available"`
}

// PicksService orchestrates the pipeline behind the picks and games
// cache slots.
type PicksService struct {
	pipeline  Runner
	games     GamesSource
	directory *PlayerDirectory

	picksSlot *cache.Slot[*pipeline.Result]
	gamesSlot *cache.Slot[[]models.Game]

	logger *logrus.Logger
}

// NewPicksService creates the picks service with its cache slots
func NewPicksService(runner Runner, games GamesSource, directory *PlayerDirectory, picksTTL, gamesTTL time.Duration, logger *logrus.Logger) *PicksService {
	return &PicksService{
		pipeline:  runner,
		games:     games,
		directory: directory,
		picksSlot: cache.NewSlot[*pipeline.Result]("picks", picksTTL),
		gamesSlot: cache.NewSlot[[]models.Game]("games", gamesTTL),
		logger:    logger,
	}
}

// GeneratePicks returns the current prediction set, running the pipeline
// when the picks slot is stale or force is set. A failed run never
// clears a previously cached set: the last good result is served
// degraded instead.
func (s *PicksService) GeneratePicks(ctx context.Context, force bool) (*pipeline.Result, bool, error) {
	result, err := s.picksSlot.GetOrRefresh(ctx, force, func(ctx context.Context) (*pipeline.Result, error) {
		return s.pipeline.Run(ctx)
	})
	if err != nil {
		if result != nil {
			s.logger.WithError(err).Warn("Picks refresh failed, serving last good set")
			return result, true, nil
		}
		return nil, false, err
	}
	return result, false, nil
}

// GetRankedPicks returns the filtered, ranked top picks. An upstream
// outage with no cached set yields an empty result, not an error.
func (s *PicksService) GetRankedPicks(ctx context.Context, filters PickFilters) (*RankedPicks, error) {
	result, degraded, err := s.GeneratePicks(ctx, filters.ForceRefresh)
	if err != nil {
		if errorsIsUpstream(err) {
			s.logger.WithError(err).Warn("No picks available, upstream outage")
			return &RankedPicks{Picks: []models.Prediction{}, Degraded: true}, nil
		}
		return nil, err
	}

	filtered := result.Predictions
	if filters.StatType != "" {
		filtered = filterPredictions(filtered, func(p models.Prediction) bool { return p.StatType == filters.StatType })
	}
	if filters.Pick != "" {
		filtered = filterPredictions(filtered, func(p models.Prediction) bool { return p.Pick == filters.Pick })
	}

	ranked := analyzer.RankPicks(filtered, filters.MinConfidence, filters.Limit)

	out := &RankedPicks{
		Picks:         ranked,
		TotalAnalyzed: len(result.Predictions),
		Summary:       result.Summary,
		Degraded:      degraded,
	}
	if age, ok := s.picksSlot.Age(); ok {
		secs := int(age.Seconds())
		out.CacheAge = &secs
	}
	return out, nil
}

// GetPredictionsForPlayer returns every prediction for one player,
// matched case-insensitively. models.ErrNoPredictions means the player
// has no odds today or had insufficient history.
func (s *PicksService) GetPredictionsForPlayer(ctx context.Context, name string) ([]models.Prediction, error) {
	result, _, err := s.GeneratePicks(ctx, false)
	if err != nil {
		return nil, err
	}

	matched := filterPredictions(result.Predictions, func(p models.Prediction) bool {
		return strings.EqualFold(p.PlayerName, name)
	})
	if len(matched) == 0 {
		return nil, models.ErrNoPredictions
	}
	return matched, nil
}

// ForceRefresh regenerates the picks slot immediately and returns the
// run summary.
func (s *PicksService) ForceRefresh(ctx context.Context) (*pipeline.Result, error) {
	result, _, err := s.GeneratePicks(ctx, true)
	return result, err
}

// TodayGames returns today's scheduled games through the games slot.
func (s *PicksService) TodayGames(ctx context.Context) ([]models.Game, error) {
	return s.gamesSlot.GetOrRefresh(ctx, false, func(ctx context.Context) ([]models.Game, error) {
		return s.games.Scoreboard(ctx, time.Now())
	})
}

// PlayersWithOdds lists the players holding prop lines today, with their
// available categories.
func (s *PicksService) PlayersWithOdds(ctx context.Context) ([]PlayerOdds, error) {
	result, _, err := s.GeneratePicks(ctx, false)
	if err != nil {
		return nil, err
	}

	players := make([]PlayerOdds, 0, len(result.RawProps))
	for _, pp := range result.RawProps {
		stats := make([]models.StatType, 0, len(pp.Quotes))
		for stat := range pp.Quotes {
			stats = append(stats, stat)
		}
		sort.Slice(stats, func(i, j int) bool { return stats[i] < stats[j] })
		players = append(players, PlayerOdds{
			PlayerName:     pp.PlayerName,
			HomeTeam:       pp.HomeTeam,
			AwayTeam:       pp.AwayTeam,
			CommenceTime:   pp.CommenceTime,
			StatsAvailable: stats,
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].PlayerName < players[j].PlayerName })
	return players, nil
}

// PlayerBestLines is one player's most favorable quote per prop
// category: lowest Over and highest Under across bookmakers.
type PlayerBestLines struct {
	PlayerName   string                              `json:"player_name"`
	HomeTeam     string                              `json:"home_team"`
	AwayTeam     string                              `json:"away_team"`
	CommenceTime time.Time                           `json:"commence_time"`
	Lines        map[models.StatType]odds.BestQuotes `json:"lines"`
}

// BestOdds surfaces line shopping: for every player with props today,
// the best available quote on each side of each category.
func (s *PicksService) BestOdds(ctx context.Context) ([]PlayerBestLines, error) {
	result, _, err := s.GeneratePicks(ctx, false)
	if err != nil {
		return nil, err
	}

	players := make([]PlayerBestLines, 0, len(result.RawProps))
	for _, pp := range result.RawProps {
		players = append(players, PlayerBestLines{
			PlayerName:   pp.PlayerName,
			HomeTeam:     pp.HomeTeam,
			AwayTeam:     pp.AwayTeam,
			CommenceTime: pp.CommenceTime,
			Lines:        odds.BestLines(pp),
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].PlayerName < players[j].PlayerName })
	return players, nil
}

// AllPlayers returns the league player directory, optionally narrowed to
// players with prop lines today.
func (s *PicksService) AllPlayers(ctx context.Context, todayOnly bool) ([]models.PlayerInfo, error) {
	players, err := s.directory.ActivePlayers(ctx)
	if err != nil {
		return nil, err
	}
	if !todayOnly {
		return players, nil
	}

	result, _, err := s.GeneratePicks(ctx, false)
	if err != nil {
		// directory still answers when odds are down
		return players, nil
	}

	today := make(map[string]bool, len(result.RawProps))
	for name := range result.RawProps {
		today[strings.ToLower(name)] = true
	}

	filtered := make([]models.PlayerInfo, 0, len(players))
	for _, p := range players {
		if today[strings.ToLower(p.Name)] {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// StatsSummary aggregates the current prediction set for the summary
// endpoint.
type StatsSummary struct {
	TotalPicks        int                     `json:"total_picks"`
	PlayersAnalyzed   int                     `json:"players_analyzed"`
	AverageConfidence float64                 `json:"average_confidence"`
	HighConfidence    int                     `json:"high_confidence_picks"`
	MediumConfidence  int                     `json:"medium_confidence_picks"`
	StatBreakdown     map[models.StatType]int `json:"stat_breakdown"`
	PickBreakdown     map[models.Pick]int     `json:"pick_breakdown"`
}

// Summary computes aggregate statistics over the cached prediction set.
func (s *PicksService) Summary(ctx context.Context) (*StatsSummary, error) {
	result, _, err := s.GeneratePicks(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(result.Predictions) == 0 {
		return nil, models.ErrNoPredictions
	}

	summary := &StatsSummary{
		TotalPicks:      len(result.Predictions),
		PlayersAnalyzed: len(result.RawProps),
		StatBreakdown:   make(map[models.StatType]int),
		PickBreakdown:   make(map[models.Pick]int),
	}

	total := 0.0
	for _, p := range result.Predictions {
		total += p.Confidence
		summary.StatBreakdown[p.StatType]++
		summary.PickBreakdown[p.Pick]++
		switch {
		case p.Confidence >= 75:
			summary.HighConfidence++
		case p.Confidence >= 65:
			summary.MediumConfidence++
		}
	}
	summary.AverageConfidence = roundTenth(total / float64(len(result.Predictions)))

	return summary, nil
}

// CacheAges reports slot ages for the health endpoint. Nil means the
// slot has never been filled.
func (s *PicksService) CacheAges() map[string]*int {
	ages := make(map[string]*int, 3)
	ages["picks"] = ageSeconds(s.picksSlot.Age())
	ages["games"] = ageSeconds(s.gamesSlot.Age())
	ages["players"] = ageSeconds(s.directory.Age())
	return ages
}

// HasPicks reports whether a prediction set is cached, and its size.
func (s *PicksService) HasPicks() (bool, int) {
	result, _, ok := s.picksSlot.Last()
	if !ok || result == nil {
		return false, 0
	}
	return true, len(result.Predictions)
}

func ageSeconds(age time.Duration, ok bool) *int {
	if !ok {
		return nil
	}
	secs := int(age.Seconds())
	return &secs
}

func filterPredictions(preds []models.Prediction, keep func(models.Prediction) bool) []models.Prediction {
	out := make([]models.Prediction, 0, len(preds))
	for _, p := range preds {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func errorsIsUpstream(err error) bool {
	return errors.Is(err, models.ErrUpstreamUnavailable)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
