package sweeper

import (
	"time"

	"github.com/illmade-knight/go-guildsweeper/pkg/guild"
)

// ShouldEvict reports whether a cached guild can be retired at now. A guild is
// kept while it was used within idleTimeout, while its voice link is connected,
// or while its player is playing. A guild with no recorded activity counts as
// idle. ShouldEvict has no side effects.
func ShouldEvict(g *guild.Guild, now time.Time, idleTimeout time.Duration) bool {
	// Used recently?
	if g.LastUsed().Add(idleTimeout).After(now) {
		return false
	}

	// Connected to voice?
	if link := g.Link(); link != nil && link.State() == guild.LinkConnected {
		return false
	}

	// Playing music?
	if p := g.Player(); p != nil && p.IsPlaying() {
		return false
	}

	return true
}
