// Package audit records the outcome of every guild eviction so that lost
// player state can be traced after the fact.
package audit

import "time"

// PersistOutcome describes how the persist step of a retirement resolved.
type PersistOutcome string

const (
	PersistSkipped   PersistOutcome = "skipped"
	PersistSucceeded PersistOutcome = "persisted"
	PersistFailed    PersistOutcome = "failed"
	PersistTimedOut  PersistOutcome = "timeout"
	// PersistPanicked marks a retirement aborted by a recovered panic.
	PersistPanicked PersistOutcome = "panicked"
)

// EvictionRecord is one retired (or failed) guild. Its fields are compatible
// with BigQuery schema inference.
type EvictionRecord struct {
	SweepID        string         `bigquery:"sweep_id"`
	GuildID        string         `bigquery:"guild_id"`
	RoutingKey     string         `bigquery:"routing_key"`
	PersistOutcome PersistOutcome `bigquery:"persist_outcome"`
	Error          string         `bigquery:"error"`
	Removed        bool           `bigquery:"removed"`
	LastUsed       time.Time      `bigquery:"last_used"`
	EvictedAt      time.Time      `bigquery:"evicted_at"`
}
