package odds

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Wallfou/NBA-PICKS/internal/models"
)

// ConsensusLine returns the market's implied expectation for one prop:
// the median of all Over quotes across bookmakers. With an even count the
// upper median is used. At least one Over quote must exist.
func ConsensusLine(quotes []models.PropQuote) (float64, error) {
	overs := make([]decimal.Decimal, 0, len(quotes))
	for _, q := range quotes {
		if q.Side == models.SideOver {
			overs = append(overs, q.Line)
		}
	}
	if len(overs) == 0 {
		return 0, models.ErrNoQuotes
	}

	sort.Slice(overs, func(i, j int) bool { return overs[i].LessThan(overs[j]) })
	return overs[len(overs)/2].InexactFloat64(), nil
}

// ConsensusLines collapses raw player props into one MarketLine per
// (player, stat) pair that has at least one Over quote in a scoreable
// category.
func ConsensusLines(props map[string]*models.PlayerProps) []models.MarketLine {
	lines := make([]models.MarketLine, 0, len(props))
	for _, pp := range props {
		for stat, quotes := range pp.Quotes {
			if !models.IsValidStatType(stat) {
				continue
			}
			line, err := ConsensusLine(quotes)
			if err != nil {
				continue
			}
			lines = append(lines, models.MarketLine{
				PlayerName:   pp.PlayerName,
				StatType:     stat,
				Line:         line,
				EventID:      pp.EventID,
				HomeTeam:     pp.HomeTeam,
				AwayTeam:     pp.AwayTeam,
				CommenceTime: pp.CommenceTime,
			})
		}
	}
	return lines
}

// BestQuotes is the most favorable quote pair for one prop category.
type BestQuotes struct {
	Over  *models.PropQuote `json:"over,omitempty"`
	Under *models.PropQuote `json:"under,omitempty"`
}

// BestLines picks, per category, the lowest Over and the highest Under
// across bookmakers.
func BestLines(pp *models.PlayerProps) map[models.StatType]BestQuotes {
	best := make(map[models.StatType]BestQuotes, len(pp.Quotes))
	for stat, quotes := range pp.Quotes {
		var entry BestQuotes
		for i := range quotes {
			q := quotes[i]
			switch q.Side {
			case models.SideOver:
				if entry.Over == nil || q.Line.LessThan(entry.Over.Line) {
					entry.Over = &quotes[i]
				}
			case models.SideUnder:
				if entry.Under == nil || q.Line.GreaterThan(entry.Under.Line) {
					entry.Under = &quotes[i]
				}
			}
		}
		best[stat] = entry
	}
	return best
}
