package odds

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wallfou/NBA-PICKS/internal/models"
)

func quote(line float64, book string, side models.QuoteSide) models.PropQuote {
	return models.PropQuote{
		Line:      decimal.NewFromFloat(line),
		Bookmaker: book,
		Price:     -110,
		Side:      side,
	}
}

func TestConsensusLine(t *testing.T) {
	tests := []struct {
		name    string
		quotes  []models.PropQuote
		want    float64
		wantErr error
	}{
		{
			name: "odd count takes the middle",
			quotes: []models.PropQuote{
				quote(27.5, "draftkings", models.SideOver),
				quote(28.0, "fanduel", models.SideOver),
				quote(26.5, "betmgm", models.SideOver),
			},
			want: 27.5,
		},
		{
			name: "even count takes the upper median",
			quotes: []models.PropQuote{
				quote(7.5, "draftkings", models.SideOver),
				quote(8.5, "fanduel", models.SideOver),
			},
			want: 8.5,
		},
		{
			name: "under quotes are ignored",
			quotes: []models.PropQuote{
				quote(25.5, "draftkings", models.SideOver),
				quote(99.5, "draftkings", models.SideUnder),
			},
			want: 25.5,
		},
		{
			name: "no over quotes",
			quotes: []models.PropQuote{
				quote(25.5, "draftkings", models.SideUnder),
			},
			wantErr: models.ErrNoQuotes,
		},
		{
			name:    "empty",
			quotes:  nil,
			wantErr: models.ErrNoQuotes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConsensusLine(tt.quotes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsensusLines(t *testing.T) {
	props := map[string]*models.PlayerProps{
		"Stephen Curry": {
			PlayerName: "Stephen Curry",
			EventID:    "evt1",
			HomeTeam:   "Golden State Warriors",
			AwayTeam:   "Los Angeles Lakers",
			Quotes: map[models.StatType][]models.PropQuote{
				models.StatPoints: {
					quote(27.5, "draftkings", models.SideOver),
					quote(28.0, "fanduel", models.SideOver),
					quote(26.5, "betmgm", models.SideOver),
				},
				models.StatAssists: {
					quote(6.5, "draftkings", models.SideUnder),
				},
				models.StatType("DUNKS"): {
					quote(1.5, "draftkings", models.SideOver),
				},
			},
		},
	}

	lines := ConsensusLines(props)

	// The assists market has no Over quote and the unknown category is
	// not scoreable, so only the points line survives.
	require.Len(t, lines, 1)
	assert.Equal(t, "Stephen Curry", lines[0].PlayerName)
	assert.Equal(t, models.StatPoints, lines[0].StatType)
	assert.Equal(t, 27.5, lines[0].Line)
	assert.Equal(t, "evt1", lines[0].EventID)
}

func TestBestLines(t *testing.T) {
	pp := &models.PlayerProps{
		PlayerName: "Nikola Jokic",
		Quotes: map[models.StatType][]models.PropQuote{
			models.StatRebounds: {
				quote(12.5, "draftkings", models.SideOver),
				quote(11.5, "fanduel", models.SideOver),
				quote(12.5, "fanduel", models.SideUnder),
				quote(13.5, "betmgm", models.SideUnder),
			},
		},
	}

	best := BestLines(pp)

	require.Contains(t, best, models.StatRebounds)
	entry := best[models.StatRebounds]
	require.NotNil(t, entry.Over)
	require.NotNil(t, entry.Under)
	assert.Equal(t, "fanduel", entry.Over.Bookmaker)
	assert.True(t, entry.Over.Line.Equal(decimal.NewFromFloat(11.5)))
	assert.Equal(t, "betmgm", entry.Under.Bookmaker)
	assert.True(t, entry.Under.Line.Equal(decimal.NewFromFloat(13.5)))
}

func TestMockProviderShapesProps(t *testing.T) {
	provider := NewMockProvider()

	props, err := provider.PlayerProps(context.Background())

	require.NoError(t, err)
	require.NotEmpty(t, props)
	for name, pp := range props {
		assert.Equal(t, name, pp.PlayerName)
		assert.NotEmpty(t, pp.Quotes)
	}
}
