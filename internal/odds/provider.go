// Package odds collects raw bookmaker prop quotes and collapses them into
// consensus market lines.
package odds

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Wallfou/NBA-PICKS/internal/datasource"
	"github.com/Wallfou/NBA-PICKS/internal/models"
)

// Provider supplies the day's player props with full bookmaker quotes.
type Provider interface {
	PlayerProps(ctx context.Context) (map[string]*models.PlayerProps, error)
}

// APIProvider builds player props from The Odds API: one events call,
// then one odds call per event, merged per player.
type APIProvider struct {
	client  *datasource.OddsClient
	markets []string
	logger  *logrus.Logger
}

// NewAPIProvider creates a provider backed by the odds API client
func NewAPIProvider(client *datasource.OddsClient, markets []string, logger *logrus.Logger) *APIProvider {
	return &APIProvider{
		client:  client,
		markets: markets,
		logger:  logger,
	}
}

// PlayerProps fetches today's events and their prop quotes. A failure
// listing events is total and surfaces as ErrUpstreamUnavailable; a
// failure on a single event's odds only drops that event.
func (p *APIProvider) PlayerProps(ctx context.Context) (map[string]*models.PlayerProps, error) {
	events, err := p.client.ListEventsToday(ctx)
	if err != nil {
		// Keep the datasource classification in the chain so the route
		// layer can tell auth failures from quota exhaustion.
		return nil, fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable, err)
	}
	if len(events) == 0 {
		p.logger.Info("No events found for today")
		return map[string]*models.PlayerProps{}, nil
	}

	allProps := make(map[string]*models.PlayerProps)
	for i, event := range events {
		p.logger.WithFields(logrus.Fields{
			"event": fmt.Sprintf("%d/%d", i+1, len(events)),
			"game":  event.AwayTeam + " @ " + event.HomeTeam,
		}).Debug("Fetching props")

		quotes, err := p.client.EventQuotes(ctx, event.ID, p.markets)
		if err != nil {
			p.logger.WithError(err).WithField("event_id", event.ID).Warn("Skipping event, odds fetch failed")
			continue
		}

		for playerName, byStat := range quotes {
			props, ok := allProps[playerName]
			if !ok {
				props = &models.PlayerProps{
					PlayerName:   playerName,
					EventID:      event.ID,
					HomeTeam:     event.HomeTeam,
					AwayTeam:     event.AwayTeam,
					CommenceTime: event.CommenceTime,
					Quotes:       make(map[models.StatType][]models.PropQuote),
				}
				allProps[playerName] = props
			}
			// A player can show up twice on doubleheader days, merge the quotes
			for stat, qs := range byStat {
				props.Quotes[stat] = append(props.Quotes[stat], qs...)
			}
		}
	}

	p.logger.WithField("players", len(allProps)).Info("Collected player props")
	return allProps, nil
}
