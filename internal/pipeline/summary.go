package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// RunSummary tracks per-outcome counts for one pipeline run. Every player
// lands in exactly one bucket; failures are counted here, never raised.
type RunSummary struct {
	mu sync.RWMutex

	RunID           string        `json:"run_id"`
	StartTime       time.Time     `json:"start_time"`
	Duration        time.Duration `json:"duration"`
	PlayersWithOdds int           `json:"players_with_odds"`
	Scored          int           `json:"scored"`
	SkippedNoID     int           `json:"skipped_no_identity"`
	SkippedHistory  int           `json:"skipped_insufficient_history"`
	FetchErrors     int           `json:"fetch_errors"`
	ScoringErrors   int           `json:"scoring_errors"`
	Predictions     int           `json:"predictions"`
}

func newRunSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:     runID,
		StartTime: time.Now(),
	}
}

func (s *RunSummary) recordScored() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scored++
}

func (s *RunSummary) recordNoIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SkippedNoID++
}

func (s *RunSummary) recordInsufficientHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SkippedHistory++
}

func (s *RunSummary) recordFetchError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FetchErrors++
}

func (s *RunSummary) recordScoringError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ScoringErrors++
}

func (s *RunSummary) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Duration = time.Since(s.StartTime)
}

// String renders a one-line operational summary
func (s *RunSummary) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("scored=%d skipped_no_id=%d skipped_history=%d fetch_errors=%d scoring_errors=%d predictions=%d duration=%s",
		s.Scored, s.SkippedNoID, s.SkippedHistory, s.FetchErrors, s.ScoringErrors, s.Predictions, s.Duration.Round(time.Millisecond))
}
