// Package pipeline drives picks generation: fetch the day's market lines,
// resolve player identities, fan out game-log fetches under a fixed
// worker cap, and score every (history, line) pair. A run produces its
// complete prediction set in one piece; partial output is never exposed.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Wallfou/NBA-PICKS/internal/analyzer"
	"github.com/Wallfou/NBA-PICKS/internal/datasource"
	"github.com/Wallfou/NBA-PICKS/internal/metrics"
	"github.com/Wallfou/NBA-PICKS/internal/models"
	"github.com/Wallfou/NBA-PICKS/internal/odds"
)

// State is the orchestrator's position in a run.
type State string

// Run states. Only the line-fetch step can fail the whole run; every
// later failure is local to one player.
const (
	StateIdle                State = "IDLE"
	StateFetchingLines       State = "FETCHING_LINES"
	StateResolvingIdentities State = "RESOLVING_IDENTITIES"
	StateFetchingHistories   State = "FETCHING_HISTORIES"
	StateScoring             State = "SCORING"
	StateDone                State = "DONE"
	StateFailed              State = "FAILED"
)

// HistorySource fetches a player's recent game log.
type HistorySource interface {
	PlayerGameLog(ctx context.Context, playerID int, numGames int) ([]models.GameLogRecord, error)
}

// IdentityResolver maps a display name to a player ID.
type IdentityResolver interface {
	Resolve(ctx context.Context, name string) (int, error)
}

// Config holds orchestrator tuning.
type Config struct {
	Workers         int // concurrent game-log fetches, default 3
	HistoryWindow   int // games requested per player, default 15
	MinHistoryGames int // minimum games required to score, default 5
}

// Result is the complete output of one run.
type Result struct {
	RunID       string
	Predictions []models.Prediction
	RawProps    map[string]*models.PlayerProps
	Summary     *RunSummary
}

// Orchestrator coordinates one picks generation run at a time.
type Orchestrator struct {
	lines     odds.Provider
	histories HistorySource
	resolver  IdentityResolver
	analyzer  *analyzer.Analyzer
	cfg       Config
	logger    *logrus.Logger

	mu    sync.RWMutex
	state State
}

// NewOrchestrator creates a pipeline orchestrator
func NewOrchestrator(lines odds.Provider, histories HistorySource, resolver IdentityResolver, scorer *analyzer.Analyzer, cfg Config, logger *logrus.Logger) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 15
	}
	if cfg.MinHistoryGames <= 0 {
		cfg.MinHistoryGames = 5
	}
	return &Orchestrator{
		lines:     lines,
		histories: histories,
		resolver:  resolver,
		analyzer:  scorer,
		cfg:       cfg,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the orchestrator's current run state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// resolvedPlayer is a player with an identity and at least one market line.
type resolvedPlayer struct {
	name     string
	playerID int
	lines    []models.MarketLine
}

// fetchResult carries one player's game log, or the error that ate it.
type fetchResult struct {
	player  resolvedPlayer
	history []models.GameLogRecord
	err     error
}

// Run executes a full picks generation pass. Only a total market-line
// outage returns an error (alongside an empty result); every per-player
// failure is absorbed into the summary.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	summary := newRunSummary(runID)
	log := o.logger.WithField("run_id", runID)

	metrics.PipelineRunsTotal.Inc()
	log.Info("Generating fresh picks")

	o.setState(StateFetchingLines)
	props, err := o.lines.PlayerProps(ctx)
	if err != nil {
		o.setState(StateFailed)
		summary.finish()
		metrics.PipelineRunsFailedTotal.Inc()
		log.WithError(err).Error("Market line fetch failed, aborting run")
		return &Result{RunID: runID, Predictions: []models.Prediction{}, Summary: summary}, err
	}

	linesByPlayer := groupByPlayer(odds.ConsensusLines(props))
	summary.PlayersWithOdds = len(linesByPlayer)
	metrics.PlayersWithOdds.Set(float64(len(linesByPlayer)))

	o.setState(StateResolvingIdentities)
	resolved := o.resolveAll(ctx, linesByPlayer, summary, log)

	o.setState(StateFetchingHistories)
	results := o.fetchHistories(ctx, resolved)

	o.setState(StateScoring)
	predictions := o.scoreAll(results, summary, log)

	o.setState(StateDone)
	summary.Predictions = len(predictions)
	summary.finish()

	metrics.PipelineRunDuration.Observe(summary.Duration.Seconds())
	metrics.PredictionsCached.Set(float64(len(predictions)))

	log.WithFields(logrus.Fields{
		"players_with_odds": summary.PlayersWithOdds,
		"scored":            summary.Scored,
		"skipped_no_id":     summary.SkippedNoID,
		"skipped_history":   summary.SkippedHistory,
		"fetch_errors":      summary.FetchErrors,
		"scoring_errors":    summary.ScoringErrors,
		"predictions":       len(predictions),
		"duration":          summary.Duration.Round(time.Millisecond).String(),
	}).Info("Picks generation complete")

	return &Result{
		RunID:       runID,
		Predictions: predictions,
		RawProps:    props,
		Summary:     summary,
	}, nil
}

// resolveAll maps every named player to an ID. Misses only remove that
// player from the run.
func (o *Orchestrator) resolveAll(ctx context.Context, linesByPlayer map[string][]models.MarketLine, summary *RunSummary, log *logrus.Entry) []resolvedPlayer {
	resolved := make([]resolvedPlayer, 0, len(linesByPlayer))
	for name, lines := range linesByPlayer {
		id, err := o.resolver.Resolve(ctx, name)
		if err != nil {
			summary.recordNoIdentity()
			metrics.PlayersSkippedTotal.WithLabelValues(metrics.ReasonNoIdentity).Inc()
			log.WithField("player", name).Debug("Skipping player, cannot resolve identity")
			continue
		}
		resolved = append(resolved, resolvedPlayer{name: name, playerID: id, lines: lines})
	}
	return resolved
}

// fetchHistories fans the resolved players out to a fixed-size worker
// pool. Results arrive in completion order; a timed-out fetch abandons
// only that player while the rest of the pool drains fully.
func (o *Orchestrator) fetchHistories(ctx context.Context, players []resolvedPlayer) <-chan fetchResult {
	workCh := make(chan resolvedPlayer, len(players))
	resultCh := make(chan fetchResult, len(players))

	var wg sync.WaitGroup
	for i := 0; i < o.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for player := range workCh {
				history, err := o.histories.PlayerGameLog(ctx, player.playerID, o.cfg.HistoryWindow)
				resultCh <- fetchResult{player: player, history: history, err: err}
			}
		}()
	}

	for _, p := range players {
		workCh <- p
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	return resultCh
}

// scoreAll consumes fetch results as they complete and scores each
// player's lines. Output order is unspecified; ranking happens later.
func (o *Orchestrator) scoreAll(results <-chan fetchResult, summary *RunSummary, log *logrus.Entry) []models.Prediction {
	var predictions []models.Prediction

	for res := range results {
		if res.err != nil {
			summary.recordFetchError()
			reason := metrics.ReasonFetchError
			if datasource.IsTimeout(res.err) {
				reason = metrics.ReasonFetchTimeout
			}
			metrics.PlayersSkippedTotal.WithLabelValues(reason).Inc()
			log.WithError(res.err).WithField("player", res.player.name).Warn("Game log fetch failed")
			continue
		}
		if len(res.history) < o.cfg.MinHistoryGames {
			summary.recordInsufficientHistory()
			metrics.PlayersSkippedTotal.WithLabelValues(metrics.ReasonInsufficientHistory).Inc()
			log.WithFields(logrus.Fields{
				"player": res.player.name,
				"games":  len(res.history),
			}).Debug("Skipping player, insufficient games")
			continue
		}

		preds, err := o.scorePlayer(res.player, res.history)
		if err != nil {
			summary.recordScoringError()
			metrics.PlayersSkippedTotal.WithLabelValues(metrics.ReasonScoringError).Inc()
			log.WithError(err).WithField("player", res.player.name).Error("Scoring failed")
			continue
		}

		predictions = append(predictions, preds...)
		summary.recordScored()
		metrics.PlayersScoredTotal.Inc()
	}

	if predictions == nil {
		predictions = []models.Prediction{}
	}
	return predictions
}

// scorePlayer shields the run from a scoring panic. The model is pure
// and should never fail on valid input; if it does, the player is
// counted and dropped like any other local error.
func (o *Orchestrator) scorePlayer(player resolvedPlayer, history []models.GameLogRecord) (preds []models.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			preds = nil
			err = &scoringPanic{player: player.name, cause: r}
		}
	}()
	return o.analyzer.AnalyzePlayer(history, player.lines), nil
}

type scoringPanic struct {
	player string
	cause  interface{}
}

func (e *scoringPanic) Error() string {
	return "scoring panicked for " + e.player
}

func groupByPlayer(lines []models.MarketLine) map[string][]models.MarketLine {
	grouped := make(map[string][]models.MarketLine)
	for _, ml := range lines {
		grouped[ml.PlayerName] = append(grouped[ml.PlayerName], ml)
	}
	return grouped
}
