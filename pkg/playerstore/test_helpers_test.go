package playerstore_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/illmade-knight/go-guildsweeper/pkg/player"
	"github.com/illmade-knight/go-guildsweeper/pkg/playerstore"
)

func newTestState(guildID string) *player.State {
	return &player.State{
		GuildID:        guildID,
		VoiceChannelID: "voice-1",
		TextChannelID:  "text-1",
		Queue: []player.Track{
			{Identifier: "dQw4w9WgXcQ", Title: "Never Gonna Give You Up", RequesterID: "user-1"},
		},
		Position:  1500,
		Volume:    80,
		Repeat:    player.RepeatOff,
		UpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// --- Mock GCS Client Components ---

// mockGCSWriter commits its buffer to the owning object on Close, unless its
// context was cancelled first, like a storage.Writer.
type mockGCSWriter struct {
	ctx    context.Context
	buf    bytes.Buffer
	obj    *mockGCSObjectHandle
	closed bool
}

func (m *mockGCSWriter) Write(p []byte) (int, error) {
	if m.closed {
		return 0, errors.New("write on closed writer")
	}
	if m.obj.writeErr != nil {
		return 0, m.obj.writeErr
	}
	return m.buf.Write(p)
}

func (m *mockGCSWriter) Close() error {
	if m.closed {
		return errors.New("already closed")
	}
	m.closed = true
	if err := m.ctx.Err(); err != nil {
		return err
	}
	if m.obj.closeErr != nil {
		return m.obj.closeErr
	}
	m.obj.mu.Lock()
	defer m.obj.mu.Unlock()
	m.obj.data = append([]byte(nil), m.buf.Bytes()...)
	m.obj.exists = true
	return nil
}

// mockGCSObjectHandle is an in-memory object.
type mockGCSObjectHandle struct {
	mu       sync.Mutex
	data     []byte
	exists   bool
	closeErr error
	writeErr error
}

func (m *mockGCSObjectHandle) NewWriter(ctx context.Context) io.WriteCloser {
	return &mockGCSWriter{ctx: ctx, obj: m}
}

func (m *mockGCSObjectHandle) NewReader(_ context.Context) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, storage.ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

func (m *mockGCSObjectHandle) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exists = false
	m.data = nil
	return nil
}

// mockGCSBucketHandle stores created objects in a map.
type mockGCSBucketHandle struct {
	sync.Mutex
	objects map[string]*mockGCSObjectHandle
}

func (m *mockGCSBucketHandle) Object(name string) playerstore.GCSObjectHandle {
	m.Lock()
	defer m.Unlock()
	if m.objects == nil {
		m.objects = make(map[string]*mockGCSObjectHandle)
	}
	if _, ok := m.objects[name]; !ok {
		m.objects[name] = &mockGCSObjectHandle{}
	}
	return m.objects[name]
}

// mockGCSClient is a mock GCSClient.
type mockGCSClient struct {
	bucket *mockGCSBucketHandle
}

func newMockGCSClient() *mockGCSClient {
	return &mockGCSClient{
		bucket: &mockGCSBucketHandle{},
	}
}

func (m *mockGCSClient) Bucket(_ string) playerstore.GCSBucketHandle {
	return m.bucket
}
