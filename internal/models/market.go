package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatType identifies a player prop stat category.
type StatType string

// Supported prop stat categories.
const (
	StatPoints   StatType = "PTS"
	StatRebounds StatType = "REB"
	StatAssists  StatType = "AST"
	StatBlocks   StatType = "BLK"
	StatSteals   StatType = "STL"
	StatThrees   StatType = "FG3M"
	StatMinutes  StatType = "MIN"
)

// ValidStatTypes lists the categories the pipeline scores against.
// MIN is fetched with game logs but never offered as a prop market.
var ValidStatTypes = []StatType{StatPoints, StatRebounds, StatAssists, StatBlocks, StatSteals, StatThrees}

// IsValidStatType reports whether s is a scoreable prop category.
func IsValidStatType(s StatType) bool {
	for _, v := range ValidStatTypes {
		if s == v {
			return true
		}
	}
	return false
}

// QuoteSide is a bookmaker outcome side.
type QuoteSide string

const (
	SideOver  QuoteSide = "Over"
	SideUnder QuoteSide = "Under"
)

// PropQuote is a single bookmaker quote for a player prop.
type PropQuote struct {
	Line      decimal.Decimal `json:"line"`
	Bookmaker string          `json:"bookmaker"`
	Price     int             `json:"price"`
	Side      QuoteSide       `json:"side"`
}

// PlayerProps holds every raw quote collected for one player across
// bookmakers, along with the event the player appears in.
type PlayerProps struct {
	PlayerName   string                   `json:"player_name"`
	EventID      string                   `json:"event_id"`
	HomeTeam     string                   `json:"home_team"`
	AwayTeam     string                   `json:"away_team"`
	CommenceTime time.Time                `json:"commence_time"`
	Quotes       map[StatType][]PropQuote `json:"quotes"`
}

/// MarketLine is the normalized consensus view of a player prop: the
// median of all Over quotes across bookmakers for that player/category.
type MarketLine struct {
	PlayerName   string    `json:"player_name"`
	StatType     StatType  `json:"stat_type"`
	Line         float64   `json:"line"`
	EventID      string    `json:"event_id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

// OddsEvent is a single upcoming game as returned by the odds provider.
type OddsEvent struct {
	ID           string    `json:"id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}
