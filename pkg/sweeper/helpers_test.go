package sweeper_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/illmade-knight/go-guildsweeper/pkg/audit"
	"github.com/illmade-knight/go-guildsweeper/pkg/cache"
	"github.com/illmade-knight/go-guildsweeper/pkg/guild"
	"github.com/illmade-knight/go-guildsweeper/pkg/player"
	"github.com/illmade-knight/go-guildsweeper/pkg/sentinel"
)

type fakeLink guild.LinkState

func (l fakeLink) State() guild.LinkState { return guild.LinkState(l) }

type fakePlayer bool

func (p fakePlayer) IsPlaying() bool { return bool(p) }

// eventLog records collaborator calls as "<step>:<guild id>" in call order.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(step, guildID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, step+":"+guildID)
}

// forGuild returns the steps recorded for one guild, in order.
func (l *eventLog) forGuild(guildID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var steps []string
	for _, e := range l.events {
		if step, id, ok := strings.Cut(e, ":"); ok && id == guildID {
			steps = append(steps, step)
		}
	}
	return steps
}

// recordingCache wraps the real in-memory cache and logs removals.
type recordingCache struct {
	*cache.InMemoryCache[string, *guild.Guild]
	log *eventLog
}

func newRecordingCache(log *eventLog, guilds ...*guild.Guild) *recordingCache {
	c := &recordingCache{InMemoryCache: cache.NewInMemoryCache[string, *guild.Guild](), log: log}
	for _, g := range guilds {
		_ = c.Write(context.Background(), g.ID, g)
	}
	return c
}

func (c *recordingCache) Remove(ctx context.Context, guildID string) error {
	c.log.add("remove", guildID)
	return c.InMemoryCache.Remove(ctx, guildID)
}

func (c *recordingCache) has(guildID string) bool {
	_, err := c.Fetch(context.Background(), guildID)
	return err == nil
}

// mockRegistry is a test double for sweeper.SessionRegistry.
type mockRegistry struct {
	mu       sync.Mutex
	states   map[string]*player.State
	panicOn  map[string]bool
	destroys map[string]int
	log      *eventLog
}

func newMockRegistry(log *eventLog) *mockRegistry {
	return &mockRegistry{
		states:   make(map[string]*player.State),
		panicOn:  make(map[string]bool),
		destroys: make(map[string]int),
		log:      log,
	}
}

func (r *mockRegistry) withState(guildID string) *mockRegistry {
	r.states[guildID] = &player.State{GuildID: guildID, Volume: 100}
	return r
}

func (r *mockRegistry) GetExisting(g *guild.Guild) (*player.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.add("lookup", g.ID)
	if r.panicOn[g.ID] {
		panic("registry corrupted for " + g.ID)
	}
	s, ok := r.states[g.ID]
	return s, ok
}

func (r *mockRegistry) Destroy(g *guild.Guild) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.add("destroy", g.ID)
	r.destroys[g.ID]++
	delete(r.states, g.ID)
}

func (r *mockRegistry) destroyCount(guildID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroys[guildID]
}

// mockRepository is a test double for sweeper.PlayerRepository.
type mockRepository struct {
	mu       sync.Mutex
	saved    map[string]int
	SaveFunc func(ctx context.Context, state *player.State) error
	log      *eventLog
}

func newMockRepository(log *eventLog) *mockRepository {
	return &mockRepository{saved: make(map[string]int), log: log}
}

func (r *mockRepository) Save(ctx context.Context, state *player.State) error {
	r.mu.Lock()
	r.saved[state.GuildID]++
	r.mu.Unlock()
	r.log.add("persist", state.GuildID)
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, state)
	}
	return nil
}

func (r *mockRepository) saveCount(guildID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[guildID]
}

// mockSentinel is a test double for sentinel.Sentinel.
type mockSentinel struct {
	mu       sync.Mutex
	requests map[string][]sentinel.Message
	log      *eventLog
}

func newMockSentinel(log *eventLog) *mockSentinel {
	return &mockSentinel{requests: make(map[string][]sentinel.Message), log: log}
}

func (s *mockSentinel) SendAndForget(_ context.Context, routingKey string, msg sentinel.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := msg.(sentinel.GuildUnsubscribeRequest); ok {
		s.log.add("notify", req.GuildID)
	}
	s.requests[routingKey] = append(s.requests[routingKey], msg)
}

func (s *mockSentinel) sentTo(routingKey string) []sentinel.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[routingKey]
}

// mockRecorder captures eviction records.
type mockRecorder struct {
	mu      sync.Mutex
	records []*audit.EvictionRecord
}

func (r *mockRecorder) Record(_ context.Context, records []*audit.EvictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
	return nil
}

func (r *mockRecorder) byGuild() map[string]*audit.EvictionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*audit.EvictionRecord, len(r.records))
	for _, rec := range r.records {
		out[rec.GuildID] = rec
	}
	return out
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }
