package service

import (
	"context"
	"sort"
	"time"

	"github.com/Wallfou/NBA-PICKS/internal/cache"
	"github.com/Wallfou/NBA-PICKS/internal/models"
)

// PlayerIndexSource fetches the league player directory.
type PlayerIndexSource interface {
	ListActivePlayers(ctx context.Context) ([]models.PlayerInfo, error)
}

// PlayerDirectory serves the league player index from the 24h cache
// slot, refreshing from the stats provider only when stale.
type PlayerDirectory struct {
	source PlayerIndexSource
	slot   *cache.Slot[[]models.PlayerInfo]
}

// NewPlayerDirectory creates a cached player directory
func NewPlayerDirectory(source PlayerIndexSource, ttl time.Duration) *PlayerDirectory {
	return &PlayerDirectory{
		source: source,
		slot:   cache.NewSlot[[]models.PlayerInfo]("players", ttl),
	}
}

// ActivePlayers returns the player index sorted by name, read through
// the cache slot.
func (d *PlayerDirectory) ActivePlayers(ctx context.Context) ([]models.PlayerInfo, error) {
	players, err := d.slot.GetOrRefresh(ctx, false, func(ctx context.Context) ([]models.PlayerInfo, error) {
		fetched, err := d.source.ListActivePlayers(ctx)
		if err != nil {
			return nil, err
		}
		sort.Slice(fetched, func(i, j int) bool { return fetched[i].Name < fetched[j].Name })
		return fetched, nil
	})
	if err != nil && len(players) > 0 {
		// stale index beats none for identity resolution
		return players, nil
	}
	return players, err
}

// Age returns the directory slot age for health reporting.
func (d *PlayerDirectory) Age() (time.Duration, bool) {
	return d.slot.Age()
}

// Invalidate clears the directory slot.
func (d *PlayerDirectory) Invalidate() {
	d.slot.Invalidate()
}
