package config

import "time"

// Viper keys.
const (
	KeyLogLevel        = "log.level"
	KeyHTTPPort        = "http.port"
	KeyProjectID       = "gcp.project_id"
	KeyCredentialsFile = "gcp.credentials_file"

	KeySweeperName           = "sweeper.name"
	KeySweeperInterval       = "sweeper.interval"
	KeySweeperIdleTimeout    = "sweeper.idle_timeout"
	KeySweeperPersistTimeout = "sweeper.persist_timeout"
	KeySweeperMaxConcurrency = "sweeper.max_concurrency"

	KeyRepositoryBackend   = "repository.backend"
	KeyRedisAddr           = "redis.addr"
	KeyRedisPassword       = "redis.password"
	KeyRedisDB             = "redis.db"
	KeyRedisStateTTL       = "redis.state_ttl"
	KeyRedisKeyPrefix      = "redis.key_prefix"
	KeyFirestoreCollection = "firestore.collection"
	KeyGCSBucket           = "gcs.bucket"
	KeyGCSObjectPrefix     = "gcs.object_prefix"

	KeySentinelBackend       = "sentinel.backend"
	KeySentinelTopic         = "sentinel.topic"
	KeySentinelChannelPrefix = "sentinel.channel_prefix"

	KeyAuditEnabled = "audit.enabled"
	KeyAuditDataset = "audit.dataset"
	KeyAuditTable   = "audit.table"
)

func (c *Config) LogLevel() string {
	return c.v.GetString(KeyLogLevel) // GUILDSWEEPER_LOG_LEVEL
}

func (c *Config) HTTPPort() string {
	return c.v.GetString(KeyHTTPPort) // GUILDSWEEPER_HTTP_PORT
}

func (c *Config) ProjectID() string {
	return c.v.GetString(KeyProjectID) // GUILDSWEEPER_GCP_PROJECT_ID
}

func (c *Config) CredentialsFile() string {
	return c.v.GetString(KeyCredentialsFile) // GUILDSWEEPER_GCP_CREDENTIALS_FILE
}

func (c *Config) SweeperName() string {
	return c.v.GetString(KeySweeperName) // GUILDSWEEPER_SWEEPER_NAME
}

func (c *Config) SweeperInterval() time.Duration {
	return c.v.GetDuration(KeySweeperInterval) // GUILDSWEEPER_SWEEPER_INTERVAL
}

func (c *Config) SweeperIdleTimeout() time.Duration {
	return c.v.GetDuration(KeySweeperIdleTimeout) // GUILDSWEEPER_SWEEPER_IDLE_TIMEOUT
}

func (c *Config) SweeperPersistTimeout() time.Duration {
	return c.v.GetDuration(KeySweeperPersistTimeout) // GUILDSWEEPER_SWEEPER_PERSIST_TIMEOUT
}

func (c *Config) SweeperMaxConcurrency() int {
	return c.v.GetInt(KeySweeperMaxConcurrency) // GUILDSWEEPER_SWEEPER_MAX_CONCURRENCY
}

func (c *Config) RepositoryBackend() string {
	return c.v.GetString(KeyRepositoryBackend) // GUILDSWEEPER_REPOSITORY_BACKEND
}

func (c *Config) RedisAddr() string {
	return c.v.GetString(KeyRedisAddr) // GUILDSWEEPER_REDIS_ADDR
}

func (c *Config) RedisPassword() string {
	return c.v.GetString(KeyRedisPassword) // GUILDSWEEPER_REDIS_PASSWORD
}

func (c *Config) RedisDB() int {
	return c.v.GetInt(KeyRedisDB) // GUILDSWEEPER_REDIS_DB
}

func (c *Config) RedisStateTTL() time.Duration {
	return c.v.GetDuration(KeyRedisStateTTL) // GUILDSWEEPER_REDIS_STATE_TTL
}

func (c *Config) RedisKeyPrefix() string {
	return c.v.GetString(KeyRedisKeyPrefix) // GUILDSWEEPER_REDIS_KEY_PREFIX
}

func (c *Config) FirestoreCollection() string {
	return c.v.GetString(KeyFirestoreCollection) // GUILDSWEEPER_FIRESTORE_COLLECTION
}

func (c *Config) GCSBucket() string {
	return c.v.GetString(KeyGCSBucket) // GUILDSWEEPER_GCS_BUCKET
}

func (c *Config) GCSObjectPrefix() string {
	return c.v.GetString(KeyGCSObjectPrefix) // GUILDSWEEPER_GCS_OBJECT_PREFIX
}

func (c *Config) SentinelBackend() string {
	return c.v.GetString(KeySentinelBackend) // GUILDSWEEPER_SENTINEL_BACKEND
}

func (c *Config) SentinelTopic() string {
	return c.v.GetString(KeySentinelTopic) // GUILDSWEEPER_SENTINEL_TOPIC
}

func (c *Config) SentinelChannelPrefix() string {
	return c.v.GetString(KeySentinelChannelPrefix) // GUILDSWEEPER_SENTINEL_CHANNEL_PREFIX
}

func (c *Config) AuditEnabled() bool {
	return c.v.GetBool(KeyAuditEnabled) // GUILDSWEEPER_AUDIT_ENABLED
}

func (c *Config) AuditDataset() string {
	return c.v.GetString(KeyAuditDataset) // GUILDSWEEPER_AUDIT_DATASET
}

func (c *Config) AuditTable() string {
	return c.v.GetString(KeyAuditTable) // GUILDSWEEPER_AUDIT_TABLE
}
