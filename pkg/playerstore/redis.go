package playerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/illmade-knight/go-guildsweeper/pkg/player"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultRedisKeyPrefix = "guildsweeper:player:"

// RedisConfig holds the configuration for the Redis client.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// StateTTL bounds how long evicted state is kept. Zero keeps it forever.
	StateTTL  time.Duration
	KeyPrefix string
}

// RedisRepository stores player state as JSON documents in Redis.
type RedisRepository struct {
	redisClient *redis.Client
	logger      zerolog.Logger
	ttl         time.Duration
	prefix      string
}

// NewRedisRepository creates and connects a RedisRepository.
// It pings the Redis server to ensure connectivity before returning.
func NewRedisRepository(ctx context.Context, cfg *RedisConfig, logger zerolog.Logger) (*RedisRepository, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("redis_address", cfg.Addr).Msg("Successfully connected to Redis.")
	return NewRedisRepositoryFromClient(rdb, cfg, logger), nil
}

// NewRedisRepositoryFromClient wraps an existing client. The repository takes
// ownership of the client and closes it on Close.
func NewRedisRepositoryFromClient(client *redis.Client, cfg *RedisConfig, logger zerolog.Logger) *RedisRepository {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}
	return &RedisRepository{
		redisClient: client,
		logger:      logger.With().Str("component", "RedisPlayerRepository").Logger(),
		ttl:         cfg.StateTTL,
		prefix:      prefix,
	}
}

func (r *RedisRepository) key(guildID string) string {
	return r.prefix + guildID
}

// Save marshals the state to JSON and stores it with the configured TTL.
func (r *RedisRepository) Save(ctx context.Context, state *player.State) error {
	if state == nil {
		return errors.New("cannot save nil player state")
	}
	jsonData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal player state for guild %s: %w", state.GuildID, err)
	}

	if err := r.redisClient.Set(ctx, r.key(state.GuildID), jsonData, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("guild_id", state.GuildID).Msg("Failed to set player state in Redis.")
		return fmt.Errorf("failed to set player state in redis for guild %s: %w", state.GuildID, err)
	}

	r.logger.Debug().Str("guild_id", state.GuildID).Msg("Stored player state in Redis.")
	return nil
}

// Load retrieves and unmarshals the state for a guild.
func (r *RedisRepository) Load(ctx context.Context, guildID string) (*player.State, error) {
	data, err := r.redisClient.Get(ctx, r.key(guildID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("guild %s: %w", guildID, ErrNotFound)
		}
		return nil, fmt.Errorf("redis get failed for guild %s: %w", guildID, err)
	}

	var state player.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player state for guild %s: %w", guildID, err)
	}
	return &state, nil
}

// Delete removes the state for a guild.
func (r *RedisRepository) Delete(ctx context.Context, guildID string) error {
	if err := r.redisClient.Del(ctx, r.key(guildID)).Err(); err != nil {
		return fmt.Errorf("redis del failed for guild %s: %w", guildID, err)
	}
	return nil
}

// Close closes the Redis client connection.
func (r *RedisRepository) Close() error {
	if r.redisClient != nil {
		r.logger.Info().Msg("Closing Redis client connection...")
		return r.redisClient.Close()
	}
	return nil
}
