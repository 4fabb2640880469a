package playerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/illmade-knight/go-guildsweeper/pkg/player"
	"github.com/rs/zerolog"
)

// GCSConfig holds configuration for the GCS archive repository.
type GCSConfig struct {
	BucketName   string
	ObjectPrefix string
}

// GCSRepository archives player state as one JSON object per guild.
type GCSRepository struct {
	bucket GCSBucketHandle
	prefix string
	logger zerolog.Logger
}

// NewGCSRepository creates a GCSRepository.
func NewGCSRepository(client GCSClient, cfg *GCSConfig, logger zerolog.Logger) (*GCSRepository, error) {
	if client == nil {
		return nil, errors.New("gcs client cannot be nil")
	}
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}
	prefix := cfg.ObjectPrefix
	if prefix == "" {
		prefix = "players"
	}
	return &GCSRepository{
		bucket: client.Bucket(cfg.BucketName),
		prefix: prefix,
		logger: logger.With().Str("component", "GCSPlayerRepository").Str("bucket", cfg.BucketName).Logger(),
	}, nil
}

func (r *GCSRepository) objectName(guildID string) string {
	return path.Join(r.prefix, guildID+".json")
}

// Save writes the state object. The object is only replaced when the whole
// state was written and the writer closed successfully.
func (r *GCSRepository) Save(ctx context.Context, state *player.State) error {
	if state == nil {
		return errors.New("cannot save nil player state")
	}
	name := r.objectName(state.GuildID)

	// Cancelling the writer's context aborts the upload; Close would commit a
	// partial object over the previous archive.
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := r.bucket.Object(name).NewWriter(writeCtx)
	if err := json.NewEncoder(w).Encode(state); err != nil {
		cancel()
		return fmt.Errorf("failed to encode player state to %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		r.logger.Error().Err(err).Str("object", name).Msg("Failed to finalize GCS object.")
		return fmt.Errorf("failed to close gcs writer for %s: %w", name, err)
	}
	r.logger.Debug().Str("object", name).Msg("Archived player state to GCS.")
	return nil
}

// Load reads the state object.
func (r *GCSRepository) Load(ctx context.Context, guildID string) (*player.State, error) {
	name := r.objectName(guildID)
	rc, err := r.bucket.Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, errObjectNotExist) {
			return nil, fmt.Errorf("guild %s: %w", guildID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open gcs object %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	var state player.State
	if err := json.NewDecoder(rc).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode gcs object %s: %w", name, err)
	}
	return &state, nil
}

// Delete removes the state object.
func (r *GCSRepository) Delete(ctx context.Context, guildID string) error {
	if err := r.bucket.Object(r.objectName(guildID)).Delete(ctx); err != nil {
		if errors.Is(err, errObjectNotExist) {
			return nil
		}
		return fmt.Errorf("gcs delete failed for guild %s: %w", guildID, err)
	}
	return nil
}

// Close is a no-op as the storage client's lifecycle is managed externally.
func (r *GCSRepository) Close() error {
	return nil
}
