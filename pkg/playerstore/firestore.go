package playerstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/illmade-knight/go-guildsweeper/pkg/player"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfig holds configuration for the Firestore client.
type FirestoreConfig struct {
	ProjectID       string
	CollectionName  string
	CredentialsFile string // Optional: Path to a service account JSON file.
}

// NewProductionFirestoreClient creates a Firestore client. It uses Application
// Default Credentials unless a credentials file is provided.
func NewProductionFirestoreClient(ctx context.Context, cfg *FirestoreConfig, logger zerolog.Logger) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		logger.Info().Str("credentials_file", cfg.CredentialsFile).Msg("Using specified credentials file for Firestore client.")
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return client, nil
}

// FirestoreRepository stores one document per guild in a Firestore collection.
// It is suitable for low volume deployments; Redis is the default backend.
type FirestoreRepository struct {
	client     *firestore.Client
	collection string
	logger     zerolog.Logger
}

// NewFirestoreRepository creates a FirestoreRepository.
func NewFirestoreRepository(
	cfg *FirestoreConfig,
	client *firestore.Client,
	logger zerolog.Logger,
) (*FirestoreRepository, error) {
	if client == nil {
		return nil, errors.New("firestore client cannot be nil")
	}

	logger.Info().Str("project_id", cfg.ProjectID).Str("collection", cfg.CollectionName).Msg("FirestoreRepository initialized.")

	return &FirestoreRepository{
		client:     client,
		collection: cfg.CollectionName,
		logger:     logger.With().Str("component", "FirestorePlayerRepository").Logger(),
	}, nil
}

// Save creates or overwrites the guild's document.
func (r *FirestoreRepository) Save(ctx context.Context, state *player.State) error {
	if state == nil {
		return errors.New("cannot save nil player state")
	}
	_, err := r.client.Collection(r.collection).Doc(state.GuildID).Set(ctx, state)
	if err != nil {
		r.logger.Error().Err(err).Str("guild_id", state.GuildID).Msg("Failed to write player state to Firestore.")
		return fmt.Errorf("firestore set for guild %s: %w", state.GuildID, err)
	}
	r.logger.Debug().Str("guild_id", state.GuildID).Msg("Stored player state in Firestore.")
	return nil
}

// Load retrieves the guild's document.
func (r *FirestoreRepository) Load(ctx context.Context, guildID string) (*player.State, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(guildID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("guild %s: %w", guildID, ErrNotFound)
		}
		return nil, fmt.Errorf("firestore get for guild %s: %w", guildID, err)
	}

	var state player.State
	if err := docSnap.DataTo(&state); err != nil {
		return nil, fmt.Errorf("firestore DataTo for guild %s: %w", guildID, err)
	}
	return &state, nil
}

// Delete removes the guild's document.
func (r *FirestoreRepository) Delete(ctx context.Context, guildID string) error {
	_, err := r.client.Collection(r.collection).Doc(guildID).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("firestore delete failed for guild %s: %w", guildID, err)
	}
	return nil
}

// Close is a no-op as the Firestore client's lifecycle is managed externally.
func (r *FirestoreRepository) Close() error {
	return nil
}
