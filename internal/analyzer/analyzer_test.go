package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wallfou/NBA-PICKS/internal/models"
)

func TestCalculateKnownHistory(t *testing.T) {
	a := New(10)
	values := []float64{30, 28, 25, 22, 20, 18, 15, 20, 25, 30}

	score := a.Calculate(values, 24.5)

	assert.Equal(t, models.PickUnder, score.Pick)
	assert.InDelta(t, 67.5, score.Confidence, 0.05)
	assert.InDelta(t, 50.0, score.HitRate, 0.001)
	assert.InDelta(t, 23.3, score.Average, 0.001)
	assert.InDelta(t, 25.0, score.Last5Average, 0.001)
	assert.InDelta(t, 4.88, score.StdDev, 0.001)
	assert.Equal(t, models.TrendUp, score.Trend)
	assert.Len(t, score.RecentGames, 10)
}

func TestCalculateEmptyHistory(t *testing.T) {
	a := New(10)

	score := a.Calculate(nil, 20.5)

	assert.Equal(t, models.PickNeutral, score.Pick)
	assert.Equal(t, models.TrendNeutral, score.Trend)
	assert.Zero(t, score.Confidence)
	assert.NotNil(t, score.RecentGames)
	assert.Empty(t, score.RecentGames)
}

func TestCalculateTruncatesWindow(t *testing.T) {
	a := New(10)
	// Games beyond the tenth must not influence any output.
	values := []float64{20, 20, 20, 20, 20, 20, 20, 20, 20, 20}
	longer := append(append([]float64(nil), values...), 100, 100, 100)

	short := a.Calculate(values, 18.5)
	long := a.Calculate(longer, 18.5)

	assert.Equal(t, short, long)
}

func TestCalculateZeroVariance(t *testing.T) {
	a := New(10)
	values := []float64{20, 20, 20, 20, 20, 20, 20, 20, 20, 20}

	tests := []struct {
		name string
		line float64
		pick models.Pick
		high bool
	}{
		{"mean above line", 18.5, models.PickOver, true},
		{"mean below line", 22.5, models.PickUnder, true},
		{"mean equal to line", 20.0, models.PickUnder, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := a.Calculate(values, tt.line)
			assert.Equal(t, tt.pick, score.Pick)
			if tt.high {
				// Certain outcome plus flat trend and full consistency.
				assert.Greater(t, score.Confidence, 95.0)
			} else {
				// Certainty collapses when the exact line is the mean.
				assert.Less(t, score.Confidence, 15.0)
			}
		})
	}
}

func TestCalculateNonPositiveLine(t *testing.T) {
	a := New(10)
	values := []float64{3, 2, 4, 1, 3, 2, 4, 3, 2, 3}

	for _, line := range []float64{0, -1.5} {
		score := a.Calculate(values, line)
		// The base probability is uninformative; only the trend and
		// consistency nudges move confidence off 50.
		assert.InDelta(t, 50.0, score.Confidence, 10.0, "line %.1f", line)
	}
}

func TestCalculateShortHistoryNeutralTrend(t *testing.T) {
	a := New(10)
	values := []float64{30, 10, 30, 10, 30}

	score := a.Calculate(values, 20.5)

	assert.Equal(t, models.TrendNeutral, score.Trend)
	assert.InDelta(t, 22.0, score.Average, 0.001)
	assert.InDelta(t, 22.0, score.Last5Average, 0.001)
}

func TestCalculateConfidenceBounds(t *testing.T) {
	a := New(10)

	histories := [][]float64{
		{50, 50, 50, 50, 50, 10, 10, 10, 10, 10},
		{0, 0, 0, 0, 0, 40, 40, 40, 40, 40},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}
	for _, values := range histories {
		for _, line := range []float64{0.5, 5.5, 25.5, 60.5} {
			score := a.Calculate(values, line)
			assert.GreaterOrEqual(t, score.Confidence, 0.0)
			assert.LessOrEqual(t, score.Confidence, 100.0)
			assert.GreaterOrEqual(t, score.HitRate, 0.0)
			assert.LessOrEqual(t, score.HitRate, 100.0)
		}
	}
}

func TestAnalyzePlayerSkipsUnknownStatTypes(t *testing.T) {
	a := New(10)
	history := []models.GameLogRecord{
		{Points: 25, Rebounds: 10},
		{Points: 30, Rebounds: 8},
		{Points: 20, Rebounds: 12},
	}
	lines := []models.MarketLine{
		{PlayerName: "Test Player", StatType: models.StatPoints, Line: 24.5},
		{PlayerName: "Test Player", StatType: models.StatType("DUNKS"), Line: 1.5},
	}

	predictions := a.AnalyzePlayer(history, lines)

	require.Len(t, predictions, 1)
	assert.Equal(t, models.StatPoints, predictions[0].StatType)
	assert.Equal(t, 24.5, predictions[0].Line)
}

func TestRankPicksOrdering(t *testing.T) {
	predictions := []models.Prediction{
		{PlayerName: "A", Confidence: 70.0},
		{PlayerName: "B", Confidence: 85.0},
		{PlayerName: "C", Confidence: 60.0},
		{PlayerName: "D", Confidence: 85.0},
		{PlayerName: "E", Confidence: 92.5},
	}

	ranked := RankPicks(predictions, 65, 10)

	require.Len(t, ranked, 4)
	assert.Equal(t, "E", ranked[0].PlayerName)
	// Ties keep input order.
	assert.Equal(t, "B", ranked[1].PlayerName)
	assert.Equal(t, "D", ranked[2].PlayerName)
	assert.Equal(t, "A", ranked[3].PlayerName)
}

func TestRankPicksLimit(t *testing.T) {
	predictions := []models.Prediction{
		{PlayerName: "A", Confidence: 70.0},
		{PlayerName: "B", Confidence: 85.0},
		{PlayerName: "C", Confidence: 80.0},
	}

	ranked := RankPicks(predictions, 0, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, "B", ranked[0].PlayerName)
	assert.Equal(t, "C", ranked[1].PlayerName)
}

func TestRankPicksDoesNotMutateInput(t *testing.T) {
	predictions := []models.Prediction{
		{PlayerName: "A", Confidence: 70.0},
		{PlayerName: "B", Confidence: 85.0},
	}

	_ = RankPicks(predictions, 0, 10)

	assert.Equal(t, "A", predictions[0].PlayerName)
	assert.Equal(t, "B", predictions[1].PlayerName)
}
