// Package analyzer implements the pure statistical confidence model that
// scores a player's recent game log against a consensus prop line. It
// performs no I/O and is deterministic for identical inputs.
package analyzer

import (
	"math"
	"sort"

	"github.com/Wallfou/NBA-PICKS/internal/models"
)

const (
	// DefaultNumGames is the scoring window: scores use at most this many
	// of the most recent games.
	DefaultNumGames = 10

	// sigmaEpsilon is the threshold below which a history is treated as
	// zero-variance.
	sigmaEpsilon = 1e-6

	// neutralTrendScore is the trend multiplier when momentum cannot be
	// measured (fewer than 6 games, or a zero prior-window average).
	neutralTrendScore = 0.85
)

// Analyzer scores (game history, market line) pairs.
type Analyzer struct {
	numGames int
}

// New creates an analyzer with the given scoring window. Values below 1
// fall back to DefaultNumGames.
func New(numGames int) *Analyzer {
	if numGames < 1 {
		numGames = DefaultNumGames
	}
	return &Analyzer{numGames: numGames}
}

// Score holds the model output for one (history, line) pair.
type Score struct {
	Confidence   float64
	HitRate      float64
	Average      float64
	Last5Average float64
	StdDev       float64
	Trend        models.Trend
	Pick         models.Pick
	RecentGames  []float64
}

// Calculate scores a stat series (most-recent-first) against a line.
func (a *Analyzer) Calculate(values []float64, line float64) Score {
	if len(values) == 0 {
		return Score{
			Trend:       models.TrendNeutral,
			Pick:        models.PickNeutral,
			RecentGames: []float64{},
		}
	}

	window := values
	if len(window) > a.numGames {
		window = window[:a.numGames]
	}

	mean := average(window)
	sigma := stdDev(window, mean)

	pick := models.PickUnder
	if mean > line {
		pick = models.PickOver
	}

	base := baseProbability(mean, sigma, line, pick)
	trendScore := trendMultiplier(window)
	consistency := consistencyScore(mean, sigma)

	// Trend and consistency are small calibration nudges around the
	// normal-model base probability, not independent weighted terms.
	confidence := base + (trendScore-neutralTrendScore)*0.27 + (consistency-0.5)*0.08
	confidence = clamp(confidence, 0, 1)

	recent := window
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return Score{
		Confidence:   round1(confidence * 100),
		HitRate:      round1(hitRate(window, line, pick) * 100),
		Average:      round1(mean),
		Last5Average: round1(average(window[:min(5, len(window))])),
		StdDev:       round2(sigma),
		Trend:        trendLabel(window),
		Pick:         pick,
		RecentGames:  append([]float64(nil), recent...),
	}
}

// AnalyzePlayer scores every market line a player has against their game
// history, carrying the event context through to the predictions.
func (a *Analyzer) AnalyzePlayer(history []models.GameLogRecord, lines []models.MarketLine) []models.Prediction {
	predictions := make([]models.Prediction, 0, len(lines))
	for _, ml := range lines {
		if !models.IsValidStatType(ml.StatType) {
			continue
		}
		score := a.Calculate(models.StatSeries(history, ml.StatType), ml.Line)
		predictions = append(predictions, models.Prediction{
			PlayerName:   ml.PlayerName,
			StatType:     ml.StatType,
			Line:         ml.Line,
			Confidence:   score.Confidence,
			HitRate:      score.HitRate,
			Average:      score.Average,
			Last5Average: score.Last5Average,
			StdDev:       score.StdDev,
			Trend:        score.Trend,
			Pick:         score.Pick,
			RecentGames:  score.RecentGames,
			EventID:      ml.EventID,
			HomeTeam:     ml.HomeTeam,
			AwayTeam:     ml.AwayTeam,
			CommenceTime: ml.CommenceTime,
		})
	}
	return predictions
}

// RankPicks filters predictions by minimum confidence and returns the top
// n by confidence descending. The sort is stable: ties keep input order.
func RankPicks(predictions []models.Prediction, minConfidence float64, topN int) []models.Prediction {
	filtered := make([]models.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Confidence >= minConfidence {
			filtered = append(filtered, p)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Confidence > filtered[j].Confidence
	})

	if topN > 0 && len(filtered) > topN {
		filtered = filtered[:topN]
	}
	return filtered
}

// baseProbability is the normal-model probability of the pick direction.
// Zero and negative lines never divide; they report an uninformative 0.5.
func baseProbability(mean, sigma, line float64, pick models.Pick) float64 {
	if line <= 0 {
		return 0.5
	}
	if sigma < sigmaEpsilon {
		if (pick == models.PickOver && mean > line) || (pick == models.PickUnder && mean < line) {
			return 1.0
		}
		return 0.0
	}

	z := (line - mean) / sigma
	if pick == models.PickOver {
		return 1 - normCDF(z)
	}
	return normCDF(z)
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// trendMultiplier compares the most recent 5 games against the previous 5.
func trendMultiplier(window []float64) float64 {
	if len(window) < 6 {
		return neutralTrendScore
	}
	recent := average(window[:5])
	prior := average(window[5:min(10, len(window))])
	if prior == 0 {
		return neutralTrendScore
	}

	trend := (recent - prior) / prior
	switch {
	case trend >= 0.10:
		return 1.0
	case trend >= 0:
		return neutralTrendScore + trend*1.5
	default:
		return math.Max(0.70, neutralTrendScore+trend)
	}
}

// trendLabel classifies momentum for display at a 5% relative threshold.
func trendLabel(window []float64) models.Trend {
	if len(window) < 6 {
		return models.TrendNeutral
	}
	recent := average(window[:5])
	prior := average(window[5:min(10, len(window))])

	switch {
	case recent > prior*1.05:
		return models.TrendUp
	case recent < prior*0.95:
		return models.TrendDown
	default:
		return models.TrendNeutral
	}
}

// consistencyScore rewards low relative variance. cov 0.2 maps to 1.0 and
// cov 0.5 maps to 0.0.
func consistencyScore(mean, sigma float64) float64 {
	if mean == 0 {
		return 0
	}
	cov := sigma / mean
	return clamp(1-(cov-0.2)/0.3, 0, 1)
}

// hitRate is the fraction of the window strictly beyond the line in the
// predicted direction. Display only; not part of the confidence score.
func hitRate(window []float64, line float64, pick models.Pick) float64 {
	if len(window) == 0 {
		return 0
	}
	hits := 0
	for _, v := range window {
		if (pick == models.PickOver && v > line) || (pick == models.PickUnder && v < line) {
			hits++
		}
	}
	return float64(hits) / float64(len(window))
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
