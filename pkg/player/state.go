// Package player holds live guild players and the persistable snapshot of
// their session state.
package player

import "time"

// RepeatMode controls how the queue advances.
type RepeatMode string

const (
	RepeatOff    RepeatMode = "off"
	RepeatSingle RepeatMode = "single"
	RepeatAll    RepeatMode = "all"
)

// Track is a queued audio track.
type Track struct {
	Identifier  string `json:"identifier" firestore:"identifier"`
	Title       string `json:"title" firestore:"title"`
	RequesterID string `json:"requesterId" firestore:"requesterId"`
}

// State is the serialisable snapshot of a guild player that a repository can
// store and later restore.
type State struct {
	GuildID        string     `json:"guildId" firestore:"guildId"`
	VoiceChannelID string     `json:"voiceChannelId,omitempty" firestore:"voiceChannelId"`
	TextChannelID  string     `json:"textChannelId,omitempty" firestore:"textChannelId"`
	Queue          []Track    `json:"queue" firestore:"queue"`
	Position       int64      `json:"positionMs" firestore:"positionMs"`
	Volume         int        `json:"volume" firestore:"volume"`
	Paused         bool       `json:"paused" firestore:"paused"`
	Shuffle        bool       `json:"shuffle" firestore:"shuffle"`
	Repeat         RepeatMode `json:"repeat" firestore:"repeat"`
	UpdatedAt      time.Time  `json:"updatedAt" firestore:"updatedAt"`
}
