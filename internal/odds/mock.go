package odds

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Wallfou/NBA-PICKS/internal/models"
)

// MockProvider serves canned prop lines so the service can run without an
// odds API key. Lines approximate recent season averages.
type MockProvider struct{}

// NewMockProvider creates a mock odds provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// PlayerProps returns mock data in the same shape as the real provider
func (m *MockProvider) PlayerProps(ctx context.Context) (map[string]*models.PlayerProps, error) {
	tipoff := time.Now().UTC().Truncate(24 * time.Hour).Add(19 * time.Hour)

	mk := func(line float64) []models.PropQuote {
		return []models.PropQuote{
			{Line: decimal.NewFromFloat(line), Bookmaker: "draftkings", Price: -110, Side: models.SideOver},
			{Line: decimal.NewFromFloat(line), Bookmaker: "draftkings", Price: -110, Side: models.SideUnder},
		}
	}

	return map[string]*models.PlayerProps{
		"Stephen Curry": {
			PlayerName:   "Stephen Curry",
			EventID:      "mock_gsw_lal",
			HomeTeam:     "Golden State Warriors",
			AwayTeam:     "Los Angeles Lakers",
			CommenceTime: tipoff,
			Quotes: map[models.StatType][]models.PropQuote{
				models.StatPoints:   mk(27.5),
				models.StatAssists:  mk(6.5),
				models.StatRebounds: mk(4.5),
				models.StatThrees:   mk(4.5),
			},
		},
		"LeBron James": {
			PlayerName:   "LeBron James",
			EventID:      "mock_gsw_lal",
			HomeTeam:     "Golden State Warriors",
			AwayTeam:     "Los Angeles Lakers",
			CommenceTime: tipoff,
			Quotes: map[models.StatType][]models.PropQuote{
				models.StatPoints:   mk(24.5),
				models.StatAssists:  mk(8.5),
				models.StatRebounds: mk(7.5),
			},
		},
		"Nikola Jokic": {
			PlayerName:   "Nikola Jokic",
			EventID:      "mock_den_bos",
			HomeTeam:     "Denver Nuggets",
			AwayTeam:     "Boston Celtics",
			CommenceTime: tipoff.Add(3 * time.Hour),
			Quotes: map[models.StatType][]models.PropQuote{
				models.StatPoints:   mk(28.5),
				models.StatAssists:  mk(9.5),
				models.StatRebounds: mk(12.5),
			},
		},
	}, nil
}
