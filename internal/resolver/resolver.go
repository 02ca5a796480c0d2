// Package resolver maps player display names to stable NBA player IDs.
// Resolution runs an ordered list of strategies: a static table of
// well-known players, then an exact directory match, then a last-name
// fuzzy match. Remote hits are memoized for the life of the process.
package resolver

import (
	"context"
	"strings"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/Wallfou/NBA-PICKS/internal/models"
)

// Directory supplies the league player index for remote lookups.
type Directory interface {
	ActivePlayers(ctx context.Context) ([]models.PlayerInfo, error)
}

// strategy tries one way of resolving a name. found=false means try the
// next strategy; an error aborts only the current resolution attempt.
type strategy func(ctx context.Context, name string) (id int, found bool, err error)

// Resolver resolves player names against the static table and directory.
type Resolver struct {
	directory  Directory
	memo       *cache.Cache
	strategies []strategy
	logger     *logrus.Logger
}

// New creates a resolver backed by the given player directory
func New(directory Directory, logger *logrus.Logger) *Resolver {
	r := &Resolver{
		directory: directory,
		memo:      cache.New(cache.NoExpiration, 0),
		logger:    logger,
	}
	r.strategies = []strategy{
		r.fromStatic,
		r.fromMemo,
		r.fromDirectoryExact,
		r.fromDirectoryFuzzy,
	}
	return r
}

// Resolve maps a display name to a player ID. A miss at every stage
// returns models.ErrPlayerNotFound; the caller counts it, never fails on it.
func (r *Resolver) Resolve(ctx context.Context, name string) (int, error) {
	for _, try := range r.strategies {
		id, found, err := try(ctx, name)
		if err != nil {
			r.logger.WithError(err).WithField("player", name).Warn("Resolution strategy failed")
			continue
		}
		if found {
			return id, nil
		}
	}
	return 0, models.ErrPlayerNotFound
}

func (r *Resolver) fromStatic(_ context.Context, name string) (int, bool, error) {
	id, ok := knownPlayers[name]
	return id, ok, nil
}

func (r *Resolver) fromMemo(_ context.Context, name string) (int, bool, error) {
	if v, ok := r.memo.Get(memoKey(name)); ok {
		return v.(int), true, nil
	}
	return 0, false, nil
}

func (r *Resolver) fromDirectoryExact(ctx context.Context, name string) (int, bool, error) {
	players, err := r.directory.ActivePlayers(ctx)
	if err != nil {
		return 0, false, err
	}
	lower := strings.ToLower(name)
	for _, p := range players {
		if strings.ToLower(p.Name) == lower {
			r.remember(name, p.ID)
			return p.ID, true, nil
		}
	}
	return 0, false, nil
}

// fromDirectoryFuzzy falls back to a last-name substring match and takes
// the first hit. Good enough for odds-feed spellings like "Luka Doncic"
// vs the directory's accented form losing only the first name.
func (r *Resolver) fromDirectoryFuzzy(ctx context.Context, name string) (int, bool, error) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return 0, false, nil
	}
	lastName := strings.ToLower(fields[len(fields)-1])

	players, err := r.directory.ActivePlayers(ctx)
	if err != nil {
		return 0, false, err
	}
	for _, p := range players {
		if strings.Contains(strings.ToLower(p.Name), lastName) {
			r.remember(name, p.ID)
			return p.ID, true, nil
		}
	}
	return 0, false, nil
}

// remember memoizes a remote resolution for the rest of the process
// lifetime. Nothing is persisted.
func (r *Resolver) remember(name string, id int) {
	r.memo.Set(memoKey(name), id, cache.NoExpiration)
}

func memoKey(name string) string {
	return strings.ToLower(name)
}
