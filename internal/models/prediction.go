package models

import "time"

// Pick is the predicted direction relative to the consensus line.
type Pick string

const (
	PickOver    Pick = "OVER"
	PickUnder   Pick = "UNDER"
	PickNeutral Pick = "N/A"
)

// Trend is the display label for short-term momentum.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Prediction is the scored output for one (player, stat) pair that had
// both a consensus line and a sufficiently long game-log history.
// Immutable once produced.
type Prediction struct {
	PlayerName   string    `json:"player_name"`
	StatType     StatType  `json:"stat_type"`
	Line         float64   `json:"line"`
	Confidence   float64   `json:"confidence"`
	HitRate      float64   `json:"hit_rate"`
	Average      float64   `json:"average"`
	Last5Average float64   `json:"last_5_avg"`
	StdDev       float64   `json:"std_dev"`
	Trend        Trend     `json:"trend"`
	Pick         Pick      `json:"pick"`
	RecentGames  []float64 `json:"recent_games"`
	EventID      string    `json:"event_id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

// MeetsThreshold checks if the confidence meets the given threshold.
func (p *Prediction) MeetsThreshold(threshold float64) bool {
	return p.Confidence >= threshold
}
