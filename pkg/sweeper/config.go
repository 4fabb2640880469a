package sweeper

import "time"

// Defaults for Config.
const (
	DefaultName           = "cache-invalidator"
	DefaultInterval       = 5 * time.Minute
	DefaultIdleTimeout    = 10 * time.Minute
	DefaultPersistTimeout = 60 * time.Second
	DefaultMaxConcurrency = 8
)

// Config holds the sweeper's tuning knobs.
type Config struct {
	// Name identifies the sweeper in logs.
	Name string
	// Interval is the period between scheduled sweeps.
	Interval time.Duration
	// IdleTimeout is how long a guild must be unused before it may be evicted.
	IdleTimeout time.Duration
	// PersistTimeout bounds the wait for a player state save. When it expires
	// the guild is evicted anyway.
	PersistTimeout time.Duration
	// MaxConcurrency limits how many guilds are retired in parallel.
	MaxConcurrency int
}

// NewConfigDefaults provides a config with the default sweep period and
// timeouts.
func NewConfigDefaults() *Config {
	return &Config{
		Name:           DefaultName,
		Interval:       DefaultInterval,
		IdleTimeout:    DefaultIdleTimeout,
		PersistTimeout: DefaultPersistTimeout,
		MaxConcurrency: DefaultMaxConcurrency,
	}
}
