package microservice_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/illmade-knight/go-guildsweeper/pkg/microservice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(s *microservice.Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Routes(t *testing.T) {
	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_cached_guilds", Help: "test"})
	reg.MustRegister(gauge)
	gauge.Set(3)

	s := microservice.NewServer(":0", reg, zerolog.Nop())
	s.Handle("POST /echo", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	t.Run("healthz is always OK", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/healthz").Code)
	})

	t.Run("readyz follows SetReady", func(t *testing.T) {
		assert.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/readyz").Code)
		s.SetReady(true)
		assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/readyz").Code)
		s.SetReady(false)
		assert.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/readyz").Code)
	})

	t.Run("metrics exposes the gatherer", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "test_cached_guilds 3")
	})

	t.Run("component routes are served", func(t *testing.T) {
		assert.Equal(t, http.StatusAccepted, serve(s, http.MethodPost, "/echo").Code)
	})
}

func TestServer_WithoutGathererHasNoMetrics(t *testing.T) {
	s := microservice.NewServer(":0", nil, zerolog.Nop())
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/metrics").Code)
}

func TestServer_ListenAndClose(t *testing.T) {
	// Arrange
	s := microservice.NewServer(":0", nil, zerolog.Nop())
	s.SetReady(true)

	// Act
	require.NoError(t, s.Listen())
	port := s.Port()
	resp, err := http.Get("http://localhost" + port + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))

	// Assert
	assert.NotEqual(t, ":0", port, "Port should report the bound port")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/readyz").Code, "closing marks the server not ready")
}
