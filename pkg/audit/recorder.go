package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// BatchRecorder writes the eviction records of one sweep as a single batch.
type BatchRecorder struct {
	inserter Inserter
	logger   zerolog.Logger
}

// NewBatchRecorder creates a recorder backed by the given inserter.
func NewBatchRecorder(inserter Inserter, logger zerolog.Logger) (*BatchRecorder, error) {
	if inserter == nil {
		return nil, errors.New("inserter cannot be nil")
	}
	return &BatchRecorder{
		inserter: inserter,
		logger:   logger.With().Str("component", "EvictionRecorder").Logger(),
	}, nil
}

// Record inserts the records. Nil entries are dropped.
func (r *BatchRecorder) Record(ctx context.Context, records []*EvictionRecord) error {
	batch := make([]*EvictionRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			batch = append(batch, rec)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	if err := r.inserter.InsertBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to record %d evictions: %w", len(batch), err)
	}
	r.logger.Debug().Int("count", len(batch)).Msg("Recorded evictions.")
	return nil
}

// Close closes the underlying inserter.
func (r *BatchRecorder) Close() error {
	return r.inserter.Close()
}
