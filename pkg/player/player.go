package player

import (
	"sync"
	"time"
)

const defaultVolume = 100

// Player is a guild's playback session. It is safe for concurrent use.
type Player struct {
	guildID string

	mu             sync.RWMutex
	voiceChannelID string
	textChannelID  string
	queue          []Track
	position       time.Duration
	volume         int
	playing        bool
	paused         bool
	shuffle        bool
	repeat         RepeatMode
	destroyed      bool
}

// NewPlayer creates an idle player for a guild.
func NewPlayer(guildID string) *Player {
	return &Player{
		guildID: guildID,
		volume:  defaultVolume,
		repeat:  RepeatOff,
	}
}

// GuildID returns the id of the guild that owns the player.
func (p *Player) GuildID() string { return p.guildID }

// IsPlaying reports whether a track is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playing && !p.paused
}

// SetChannels records the voice and text channels the player is bound to.
func (p *Player) SetChannels(voiceChannelID, textChannelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.voiceChannelID = voiceChannelID
	p.textChannelID = textChannelID
}

// Enqueue appends tracks to the queue.
func (p *Player) Enqueue(tracks ...Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, tracks...)
}

// Play starts playback of the head of the queue. It returns false if the queue
// is empty or the player has been destroyed.
func (p *Player) Play() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed || len(p.queue) == 0 {
		return false
	}
	p.playing = true
	p.paused = false
	return true
}

// SetPaused pauses or resumes playback.
func (p *Player) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = paused
}

// Seek moves the playback position of the current track.
func (p *Player) Seek(position time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = position
}

// SetVolume sets the output volume, clamped to 0..150.
func (p *Player) SetVolume(volume int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = min(max(volume, 0), 150)
}

// SetShuffle toggles shuffled playback.
func (p *Player) SetShuffle(shuffle bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shuffle = shuffle
}

// SetRepeat sets the repeat mode.
func (p *Player) SetRepeat(mode RepeatMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = mode
}

// Stop halts playback without clearing the queue.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.position = 0
}

// destroy stops the player permanently.
func (p *Player) destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.destroyed = true
}

// Snapshot captures the persistable state of the player.
func (p *Player) Snapshot(now time.Time) *State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	queue := make([]Track, len(p.queue))
	copy(queue, p.queue)
	return &State{
		GuildID:        p.guildID,
		VoiceChannelID: p.voiceChannelID,
		TextChannelID:  p.textChannelID,
		Queue:          queue,
		Position:       p.position.Milliseconds(),
		Volume:         p.volume,
		Paused:         p.paused,
		Shuffle:        p.shuffle,
		Repeat:         p.repeat,
		UpdatedAt:      now.UTC(),
	}
}

// Restore loads a previously persisted state into an idle player; see
// Registry.Restore. Playback is not resumed.
func (p *Player) Restore(s *State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.voiceChannelID = s.VoiceChannelID
	p.textChannelID = s.TextChannelID
	p.queue = append([]Track(nil), s.Queue...)
	p.position = time.Duration(s.Position) * time.Millisecond
	p.volume = s.Volume
	p.paused = s.Paused
	p.shuffle = s.Shuffle
	p.repeat = s.Repeat
	p.playing = false
}
