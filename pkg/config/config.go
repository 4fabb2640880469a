// Package config loads service configuration from a config file, environment
// variables and CLI flags using viper and pflag.
//
// Resolution order (highest wins):
//  1. CLI flags
//  2. Environment variables (prefix GUILDSWEEPER_)
//  3. Config file (config.yaml in . or /etc/guildsweeper/)
//  4. Compiled defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "GUILDSWEEPER"

// Repository backends.
const (
	RepositoryMemory    = "memory"
	RepositoryRedis     = "redis"
	RepositoryFirestore = "firestore"
	RepositoryGCS       = "gcs"
)

// Sentinel backends.
const (
	SentinelLog    = "log"
	SentinelPubsub = "pubsub"
	SentinelRedis  = "redis"
)

// Option describes a single configuration entry: its viper key, the CLI flag
// name, the compiled default and the --help description.
type Option struct {
	Key         string
	Flag        string
	Default     any
	Description string
}

// Options lists every configuration entry of the serve command.
var Options = []Option{
	{Key: KeyLogLevel, Flag: flag(KeyLogLevel), Default: "info", Description: "Log level (debug, info, warn, error)"},
	{Key: KeyHTTPPort, Flag: flag(KeyHTTPPort), Default: ":8080", Description: "HTTP listen address for health, metrics and manual sweeps"},
	{Key: KeyProjectID, Flag: flag(KeyProjectID), Default: "", Description: "Google Cloud project id"},
	{Key: KeyCredentialsFile, Flag: flag(KeyCredentialsFile), Default: "", Description: "Google Cloud service account JSON file"},

	{Key: KeySweeperName, Flag: flag(KeySweeperName), Default: "cache-invalidator", Description: "Sweeper name used in logs"},
	{Key: KeySweeperInterval, Flag: flag(KeySweeperInterval), Default: 5 * time.Minute, Description: "Period between sweeps"},
	{Key: KeySweeperIdleTimeout, Flag: flag(KeySweeperIdleTimeout), Default: 10 * time.Minute, Description: "Idle time after which a guild may be evicted"},
	{Key: KeySweeperPersistTimeout, Flag: flag(KeySweeperPersistTimeout), Default: 60 * time.Second, Description: "Maximum wait for a player state save"},
	{Key: KeySweeperMaxConcurrency, Flag: flag(KeySweeperMaxConcurrency), Default: 8, Description: "Guilds retired in parallel"},

	{Key: KeyRepositoryBackend, Flag: flag(KeyRepositoryBackend), Default: RepositoryMemory, Description: "Player state backend (memory, redis, firestore, gcs)"},
	{Key: KeyRedisAddr, Flag: flag(KeyRedisAddr), Default: "localhost:6379", Description: "Redis address"},
	{Key: KeyRedisPassword, Flag: flag(KeyRedisPassword), Default: "", Description: "Redis password"},
	{Key: KeyRedisDB, Flag: flag(KeyRedisDB), Default: 0, Description: "Redis database"},
	{Key: KeyRedisStateTTL, Flag: flag(KeyRedisStateTTL), Default: 7 * 24 * time.Hour, Description: "Retention of persisted player state in Redis (0 keeps forever)"},
	{Key: KeyRedisKeyPrefix, Flag: flag(KeyRedisKeyPrefix), Default: "guildsweeper:player:", Description: "Redis key prefix for player state"},
	{Key: KeyFirestoreCollection, Flag: flag(KeyFirestoreCollection), Default: "player-states", Description: "Firestore collection for player state"},
	{Key: KeyGCSBucket, Flag: flag(KeyGCSBucket), Default: "", Description: "GCS bucket for archived player state"},
	{Key: KeyGCSObjectPrefix, Flag: flag(KeyGCSObjectPrefix), Default: "players", Description: "GCS object prefix for player state"},

	{Key: KeySentinelBackend, Flag: flag(KeySentinelBackend), Default: SentinelLog, Description: "Sentinel transport (log, pubsub, redis)"},
	{Key: KeySentinelTopic, Flag: flag(KeySentinelTopic), Default: "sentinel-requests", Description: "Pub/Sub topic for sentinel requests"},
	{Key: KeySentinelChannelPrefix, Flag: flag(KeySentinelChannelPrefix), Default: "sentinel:", Description: "Redis channel prefix for sentinel requests"},

	{Key: KeyAuditEnabled, Flag: flag(KeyAuditEnabled), Default: false, Description: "Record evictions in BigQuery"},
	{Key: KeyAuditDataset, Flag: flag(KeyAuditDataset), Default: "guildsweeper", Description: "BigQuery dataset for eviction records"},
	{Key: KeyAuditTable, Flag: flag(KeyAuditTable), Default: "evictions", Description: "BigQuery table for eviction records"},
}

// Config wraps a viper instance holding the resolved configuration.
type Config struct {
	v *viper.Viper
}

// New registers the defaults, reads the optional config file and enables
// environment overrides.
func New() (*Config, error) {
	v := viper.New()

	for _, o := range Options {
		v.SetDefault(o.Key, o.Default)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/guildsweeper/")

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !(errors.As(err, &notFoundErr) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Config{v: v}, nil
}

// BindFlags registers one flag per option on fs and binds it to its key.
func (c *Config) BindFlags(fs *pflag.FlagSet, options []Option) error {
	for _, o := range options {
		switch v := o.Default.(type) {
		case string:
			fs.String(o.Flag, v, o.Description)
		case int:
			fs.Int(o.Flag, v, o.Description)
		case bool:
			fs.Bool(o.Flag, v, o.Description)
		case time.Duration:
			fs.Duration(o.Flag, v, o.Description)
		default:
			return fmt.Errorf("unsupported flag type for key: %s", o.Key)
		}

		if err := c.v.BindPFlag(o.Key, fs.Lookup(o.Flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", o.Flag, err)
		}
	}
	return nil
}

// Validate checks the backend selections and the settings they require.
func (c *Config) Validate() error {
	switch c.RepositoryBackend() {
	case RepositoryMemory, RepositoryRedis:
	case RepositoryFirestore:
		if c.ProjectID() == "" {
			return errors.New("project id is required for the firestore repository")
		}
	case RepositoryGCS:
		if c.GCSBucket() == "" {
			return errors.New("gcs bucket is required for the gcs repository")
		}
	default:
		return fmt.Errorf("unknown repository backend %q", c.RepositoryBackend())
	}

	switch c.SentinelBackend() {
	case SentinelLog, SentinelRedis:
	case SentinelPubsub:
		if c.ProjectID() == "" {
			return errors.New("project id is required for the pubsub sentinel")
		}
	default:
		return fmt.Errorf("unknown sentinel backend %q", c.SentinelBackend())
	}

	if c.AuditEnabled() && c.ProjectID() == "" {
		return errors.New("project id is required when the audit trail is enabled")
	}
	return nil
}

func flag(key string) string {
	f := strings.ToLower(key)
	f = strings.ReplaceAll(f, ".", "-")
	f = strings.ReplaceAll(f, "_", "-")
	return f
}
