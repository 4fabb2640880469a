package player_test

import (
	"testing"
	"time"

	"github.com/illmade-knight/go-guildsweeper/pkg/guild"
	"github.com/illmade-knight/go-guildsweeper/pkg/player"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lifecycle(t *testing.T) {
	registry := player.NewRegistry(zerolog.Nop())
	g := guild.New("g1", "sentinel.0", nil)

	t.Run("GetExisting without a player reports nothing to persist", func(t *testing.T) {
		state, ok := registry.GetExisting(g)
		assert.False(t, ok)
		assert.Nil(t, state)
	})

	t.Run("GetOrCreate attaches the player to the guild", func(t *testing.T) {
		p := registry.GetOrCreate(g)
		require.NotNil(t, p)
		assert.Same(t, p, registry.GetOrCreate(g), "second call should return the same player")
		assert.Equal(t, p, g.Player())
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("GetExisting snapshots the player state", func(t *testing.T) {
		p, ok := registry.Get("g1")
		require.True(t, ok)
		p.SetChannels("voice-1", "text-1")
		p.Enqueue(player.Track{Identifier: "abc", Title: "Song"})
		p.Seek(42 * time.Second)

		state, ok := registry.GetExisting(g)
		require.True(t, ok)
		assert.Equal(t, "g1", state.GuildID)
		assert.Equal(t, "voice-1", state.VoiceChannelID)
		assert.Equal(t, int64(42000), state.Position)
		require.Len(t, state.Queue, 1)
		assert.Equal(t, "abc", state.Queue[0].Identifier)
	})

	t.Run("Destroy is idempotent", func(t *testing.T) {
		p, _ := registry.Get("g1")
		require.True(t, p.Play())

		registry.Destroy(g)
		assert.False(t, p.IsPlaying())
		assert.Nil(t, g.Player())
		assert.Equal(t, 0, registry.Len())

		assert.NotPanics(t, func() { registry.Destroy(g) })
		assert.Equal(t, 0, registry.Len())
	})
}

func TestPlayer_SnapshotRestore(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := player.NewPlayer("g1")
	p.Enqueue(player.Track{Identifier: "a"}, player.Track{Identifier: "b"})
	p.SetVolume(500)
	p.SetShuffle(true)
	p.SetRepeat(player.RepeatAll)
	require.True(t, p.Play())
	p.SetPaused(true)

	state := p.Snapshot(now)
	assert.Equal(t, 150, state.Volume, "volume should be clamped")
	assert.True(t, state.Paused)
	assert.Equal(t, now, state.UpdatedAt)

	restored := player.NewPlayer("g1")
	restored.Restore(state)
	assert.False(t, restored.IsPlaying(), "restore should not resume playback")
	assert.Equal(t, state.Queue, restored.Snapshot(now).Queue)
	assert.Equal(t, player.RepeatAll, restored.Snapshot(now).Repeat)
}
