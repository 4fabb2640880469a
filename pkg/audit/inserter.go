package audit

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Inserter writes a batch of eviction records.
type Inserter interface {
	InsertBatch(ctx context.Context, records []*EvictionRecord) error
	Close() error
}

// BigQueryDatasetConfig names the table that receives eviction records.
type BigQueryDatasetConfig struct {
	DatasetID       string
	TableID         string
	CredentialsFile string // Optional: Path to a service account JSON file.
}

// NewProductionBigQueryClient creates a BigQuery client, using Application
// Default Credentials unless a credentials file is given.
func NewProductionBigQueryClient(ctx context.Context, projectID string, credentialsFile string, logger zerolog.Logger) (*bigquery.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
		logger.Info().Str("credentials_file", credentialsFile).Msg("Using specified credentials file for BigQuery client.")
	}
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}
	return client, nil
}

// EvictionTable streams eviction records into a BigQuery table partitioned by
// day of eviction.
type EvictionTable struct {
	inserter *bigquery.Inserter
	logger   zerolog.Logger
}

// NewEvictionTable opens the configured table, creating it when missing.
func NewEvictionTable(ctx context.Context, client *bigquery.Client, cfg *BigQueryDatasetConfig, logger zerolog.Logger) (*EvictionTable, error) {
	if client == nil {
		return nil, errors.New("bigquery client cannot be nil")
	}
	if cfg == nil || cfg.DatasetID == "" || cfg.TableID == "" {
		return nil, errors.New("eviction table requires a dataset and table id")
	}
	logger = logger.With().Str("component", "EvictionTable").Str("table", cfg.DatasetID+"."+cfg.TableID).Logger()

	table := client.Dataset(cfg.DatasetID).Table(cfg.TableID)
	if err := ensureEvictionTable(ctx, table, logger); err != nil {
		return nil, err
	}
	return &EvictionTable{inserter: table.Inserter(), logger: logger}, nil
}

func ensureEvictionTable(ctx context.Context, table *bigquery.Table, logger zerolog.Logger) error {
	_, err := table.Metadata(ctx)
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return fmt.Errorf("failed to read eviction table metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(EvictionRecord{})
	if err != nil {
		return fmt.Errorf("failed to infer eviction record schema: %w", err)
	}
	meta := &bigquery.TableMetadata{
		Schema:           schema,
		TimePartitioning: &bigquery.TimePartitioning{Type: bigquery.DayPartitioningType, Field: "evicted_at"},
	}
	if err := table.Create(ctx, meta); err != nil {
		return fmt.Errorf("failed to create eviction table: %w", err)
	}
	logger.Info().Msg("Created eviction table.")
	return nil
}

// InsertBatch streams the records. Rejected rows are logged by guild.
func (t *EvictionTable) InsertBatch(ctx context.Context, records []*EvictionRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := t.inserter.Put(ctx, records)
	if err == nil {
		return nil
	}

	var rowErrs bigquery.PutMultiError
	if errors.As(err, &rowErrs) {
		for _, rowErr := range rowErrs {
			guildID := ""
			if rowErr.RowIndex >= 0 && rowErr.RowIndex < len(records) {
				guildID = records[rowErr.RowIndex].GuildID
			}
			t.logger.Error().Str("guild_id", guildID).Msgf("Eviction record rejected: %v", rowErr.Errors)
		}
	}
	return fmt.Errorf("failed to insert %d eviction records: %w", len(records), err)
}

// Close is a no-op; the BigQuery client is owned by the caller.
func (t *EvictionTable) Close() error {
	return nil
}
