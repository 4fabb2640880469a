// Package guild defines the per-tenant session object held in the guild cache.
package guild

import (
	"sync"
	"sync/atomic"
	"time"
)

// LinkState is the state of a guild's voice link.
type LinkState int

const (
	LinkNotConnected LinkState = iota
	LinkConnecting
	LinkConnected
	LinkDisconnecting
	LinkDestroyed
)

func (s LinkState) String() string {
	switch s {
	case LinkNotConnected:
		return "not_connected"
	case LinkConnecting:
		return "connecting"
	case LinkConnected:
		return "connected"
	case LinkDisconnecting:
		return "disconnecting"
	case LinkDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Link is the voice connection handle owned by the audio subsystem.
type Link interface {
	State() LinkState
}

// Player is the playback handle owned by the player registry.
type Player interface {
	IsPlaying() bool
}

// Guild is a cached guild session. The cache owns its lifetime; the link and
// player handles belong to other subsystems and are only observed here.
type Guild struct {
	// ID is the stable guild id and the cache key.
	ID string
	// RoutingKey addresses the sentinel that owns this guild's subscription.
	RoutingKey string

	lastUsed atomic.Int64

	mu     sync.RWMutex
	link   Link
	player Player
}

// New creates a guild session. The last-used time starts at zero, which the
// sweeper treats as idle since forever.
func New(id, routingKey string, link Link) *Guild {
	return &Guild{
		ID:         id,
		RoutingKey: routingKey,
		link:       link,
	}
}

// Touch records activity on the guild.
func (g *Guild) Touch(now time.Time) {
	g.lastUsed.Store(now.UnixNano())
}

// LastUsed returns the time of the last recorded activity, or the zero time if
// there has been none.
func (g *Guild) LastUsed() time.Time {
	n := g.lastUsed.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Link returns the voice link handle, which may be nil.
func (g *Guild) Link() Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.link
}

// SetLink replaces the voice link handle.
func (g *Guild) SetLink(link Link) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.link = link
}

// Player returns the playback handle, or nil if no player is attached.
func (g *Guild) Player() Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player
}

// SetPlayer attaches or, with nil, detaches the playback handle.
func (g *Guild) SetPlayer(p Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.player = p
}

func (g *Guild) String() string {
	return "Guild(" + g.ID + ")"
}
