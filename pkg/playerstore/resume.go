package playerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/illmade-knight/go-guildsweeper/pkg/guild"
	"github.com/illmade-knight/go-guildsweeper/pkg/player"
)

// Resume returns the guild's player, restoring the state saved when the guild
// was last evicted. It reports whether stored state was applied. A guild with
// a live player, or with nothing stored, gets a player without a restore.
// Stored state is left in place; the next eviction overwrites it.
func Resume(ctx context.Context, repo Repository, registry *player.Registry, g *guild.Guild) (*player.Player, bool, error) {
	if p, ok := registry.Get(g.ID); ok {
		return p, false, nil
	}

	state, err := repo.Load(ctx, g.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return registry.GetOrCreate(g), false, nil
		}
		return nil, false, fmt.Errorf("failed to load player state for guild %s: %w", g.ID, err)
	}

	p, restored := registry.Restore(g, state)
	return p, restored, nil
}
