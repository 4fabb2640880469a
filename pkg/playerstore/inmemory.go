package playerstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/illmade-knight/go-guildsweeper/pkg/player"
)

// InMemoryRepository is a thread-safe Repository intended for local
// development and tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]player.State
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		data: make(map[string]player.State),
	}
}

// Save stores a copy of the state.
func (r *InMemoryRepository) Save(_ context.Context, state *player.State) error {
	if state == nil {
		return fmt.Errorf("cannot save nil player state")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[state.GuildID] = *state
	return nil
}

// Load returns a copy of the stored state.
func (r *InMemoryRepository) Load(_ context.Context, guildID string) (*player.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.data[guildID]
	if !ok {
		return nil, fmt.Errorf("guild %s: %w", guildID, ErrNotFound)
	}
	return &state, nil
}

// Delete removes stored state.
func (r *InMemoryRepository) Delete(_ context.Context, guildID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, guildID)
	return nil
}

// Close is a no-op for the in-memory implementation.
func (r *InMemoryRepository) Close() error {
	return nil
}
