package player

import (
	"sync"
	"time"

	"github.com/illmade-knight/go-guildsweeper/pkg/guild"
	"github.com/rs/zerolog"
)

// Registry owns the live players, keyed by guild id.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*Player
	now     func() time.Time
	logger  zerolog.Logger
}

// NewRegistry creates an empty player registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		players: make(map[string]*Player),
		now:     time.Now,
		logger:  logger.With().Str("component", "PlayerRegistry").Logger(),
	}
}

// GetOrCreate returns the guild's player, creating and attaching one if needed.
func (r *Registry) GetOrCreate(g *guild.Guild) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[g.ID]; ok {
		return p
	}
	p := NewPlayer(g.ID)
	r.players[g.ID] = p
	g.SetPlayer(p)
	r.logger.Debug().Str("guild_id", g.ID).Msg("Created player.")
	return p
}

// Restore creates the guild's player from a persisted state. If the guild
// already has a live player it is returned unchanged and restored is false.
func (r *Registry) Restore(g *guild.Guild, state *State) (p *Player, restored bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[g.ID]; ok {
		return p, false
	}
	p = NewPlayer(g.ID)
	p.Restore(state)
	r.players[g.ID] = p
	g.SetPlayer(p)
	r.logger.Debug().Str("guild_id", g.ID).Int("queue", len(state.Queue)).Msg("Restored player.")
	return p, true
}

// Get returns the live player for a guild id.
func (r *Registry) Get(guildID string) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[guildID]
	return p, ok
}

// GetExisting snapshots the guild's player state without creating a player.
// It reports false when the guild has no player and so nothing to persist.
func (r *Registry) GetExisting(g *guild.Guild) (*State, bool) {
	p, ok := r.Get(g.ID)
	if !ok {
		return nil, false
	}
	return p.Snapshot(r.now()), true
}

// Destroy stops and forgets the guild's player and detaches it from the guild.
// Destroying a guild with no player is a no-op.
func (r *Registry) Destroy(g *guild.Guild) {
	r.mu.Lock()
	p, ok := r.players[g.ID]
	delete(r.players, g.ID)
	r.mu.Unlock()

	if !ok {
		return
	}
	p.destroy()
	g.SetPlayer(nil)
	r.logger.Debug().Str("guild_id", g.ID).Msg("Destroyed player.")
}

// Len reports the number of live players.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
