package models

import "time"

// GameLogRecord is one historical game's stat line for a player.
// Histories are ordered most-recent-first: index 0 is the latest game.
type GameLogRecord struct {
	GameID   string    `json:"game_id"`
	GameDate time.Time `json:"game_date"`
	Matchup  string    `json:"matchup"`
	Minutes  float64   `json:"min"`
	Points   float64   `json:"pts"`
	Rebounds float64   `json:"reb"`
	Assists  float64   `json:"ast"`
	Steals   float64   `json:"stl"`
	Blocks   float64   `json:"blk"`
	Threes   float64   `json:"fg3m"`
}

// Stat returns the value for the given category.
func (r GameLogRecord) Stat(stat StatType) float64 {
	switch stat {
	case StatPoints:
		return r.Points
	case StatRebounds:
		return r.Rebounds
	case StatAssists:
		return r.Assists
	case StatSteals:
		return r.Steals
	case StatBlocks:
		return r.Blocks
	case StatThrees:
		return r.Threes
	case StatMinutes:
		return r.Minutes
	default:
		return 0
	}
}

// StatSeries extracts one category's values from a history, preserving
// the most-recent-first ordering.
func StatSeries(history []GameLogRecord, stat StatType) []float64 {
	values := make([]float64, len(history))
	for i, rec := range history {
		values[i] = rec.Stat(stat)
	}
	return values
}

// PlayerInfo is one entry of the league player directory.
type PlayerInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Jersey   string `json:"jersey"`
	Position string `json:"position"`
}

// Game is a scheduled game from the stats provider's scoreboard.
type Game struct {
	GameID       string    `json:"game_id"`
	GameDate     time.Time `json:"game_date"`
	HomeTeamID   int       `json:"home_team_id"`
	AwayTeamID   int       `json:"away_team_id"`
	StatusText   string    `json:"status"`
	GameCode     string    `json:"game_code"`
	ArenaName    string    `json:"arena,omitempty"`
	NationalTV   string    `json:"national_tv,omitempty"`
	HomeTeamAbbr string    `json:"home_team_abbr,omitempty"`
	AwayTeamAbbr string    `json:"away_team_abbr,omitempty"`
}
