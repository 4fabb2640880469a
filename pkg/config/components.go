package config

import (
	"github.com/illmade-knight/go-guildsweeper/pkg/audit"
	"github.com/illmade-knight/go-guildsweeper/pkg/playerstore"
	"github.com/illmade-knight/go-guildsweeper/pkg/sentinel"
	"github.com/illmade-knight/go-guildsweeper/pkg/sweeper"
)

// Sweeper returns the sweeper tuning knobs.
func (c *Config) Sweeper() *sweeper.Config {
	return &sweeper.Config{
		Name:           c.SweeperName(),
		Interval:       c.SweeperInterval(),
		IdleTimeout:    c.SweeperIdleTimeout(),
		PersistTimeout: c.SweeperPersistTimeout(),
		MaxConcurrency: c.SweeperMaxConcurrency(),
	}
}

// RedisRepository returns the Redis player state settings.
func (c *Config) RedisRepository() *playerstore.RedisConfig {
	return &playerstore.RedisConfig{
		Addr:      c.RedisAddr(),
		Password:  c.RedisPassword(),
		DB:        c.RedisDB(),
		StateTTL:  c.RedisStateTTL(),
		KeyPrefix: c.RedisKeyPrefix(),
	}
}

// FirestoreRepository returns the Firestore player state settings.
func (c *Config) FirestoreRepository() *playerstore.FirestoreConfig {
	return &playerstore.FirestoreConfig{
		ProjectID:       c.ProjectID(),
		CollectionName:  c.FirestoreCollection(),
		CredentialsFile: c.CredentialsFile(),
	}
}

// GCSRepository returns the GCS archive settings.
func (c *Config) GCSRepository() *playerstore.GCSConfig {
	return &playerstore.GCSConfig{
		BucketName:   c.GCSBucket(),
		ObjectPrefix: c.GCSObjectPrefix(),
	}
}

// PubsubSentinel returns the Pub/Sub sentinel settings.
func (c *Config) PubsubSentinel() *sentinel.PubsubConfig {
	return sentinel.NewPubsubConfigDefaults(c.SentinelTopic())
}

// RedisSentinel returns the Redis sentinel settings.
func (c *Config) RedisSentinel() *sentinel.RedisConfig {
	return &sentinel.RedisConfig{ChannelPrefix: c.SentinelChannelPrefix()}
}

// Audit returns the BigQuery eviction table settings.
func (c *Config) Audit() *audit.BigQueryDatasetConfig {
	return &audit.BigQueryDatasetConfig{
		DatasetID:       c.AuditDataset(),
		TableID:         c.AuditTable(),
		CredentialsFile: c.CredentialsFile(),
	}
}
