package guild_test

import (
	"testing"
	"time"

	"github.com/illmade-knight/go-guildsweeper/pkg/guild"
	"github.com/stretchr/testify/assert"
)

type staticLink guild.LinkState

func (l staticLink) State() guild.LinkState { return guild.LinkState(l) }

type staticPlayer bool

func (p staticPlayer) IsPlaying() bool { return bool(p) }

func TestGuild_LastUsed(t *testing.T) {
	g := guild.New("g1", "sentinel.0", staticLink(guild.LinkNotConnected))

	t.Run("zero before any activity", func(t *testing.T) {
		assert.True(t, g.LastUsed().IsZero())
	})

	t.Run("Touch records activity", func(t *testing.T) {
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		g.Touch(now)
		assert.True(t, now.Equal(g.LastUsed()))
	})
}

func TestGuild_Handles(t *testing.T) {
	g := guild.New("g1", "sentinel.0", staticLink(guild.LinkConnected))
	assert.Equal(t, guild.LinkConnected, g.Link().State())
	assert.Nil(t, g.Player())

	g.SetPlayer(staticPlayer(true))
	assert.True(t, g.Player().IsPlaying())

	g.SetPlayer(nil)
	assert.Nil(t, g.Player())
}

func TestLinkState_String(t *testing.T) {
	assert.Equal(t, "connected", guild.LinkConnected.String())
	assert.Equal(t, "unknown", guild.LinkState(42).String())
}
