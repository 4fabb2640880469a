// Package playerstore persists guild player state so that an evicted session
// can be restored the next time the guild becomes active.
package playerstore

import (
	"context"
	"errors"
	"io"

	"github.com/illmade-knight/go-guildsweeper/pkg/player"
)

// ErrNotFound is returned by Load when no state is stored for a guild.
var ErrNotFound = errors.New("player state not found")

// Repository stores player state keyed by guild id. The sweeper calls Save on
// eviction; Resume calls Load when the guild becomes active again. Delete is
// for operators discarding a guild's stored session.
type Repository interface {
	// Save creates or overwrites the stored state for state.GuildID.
	Save(ctx context.Context, state *player.State) error
	// Load retrieves the stored state, or ErrNotFound.
	Load(ctx context.Context, guildID string) (*player.State, error)
	// Delete removes the stored state. Deleting absent state is not an error.
	Delete(ctx context.Context, guildID string) error
	// Closer is included for implementations that manage network connections.
	io.Closer
}
