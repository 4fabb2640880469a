package sweeper

import (
	"github.com/illmade-knight/go-guildsweeper/pkg/audit"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors updated by the sweeper.
type Metrics struct {
	sweeps          prometheus.Counter
	sweepsSkipped   prometheus.Counter
	candidates      prometheus.Counter
	evictions       *prometheus.CounterVec
	failures        prometheus.Counter
	sweepDuration   prometheus.Histogram
	cachedGuilds    prometheus.Gauge
	lastSweepMillis prometheus.Gauge
}

// NewMetrics creates the sweeper collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guildsweeper_sweeps_total",
			Help: "Total number of completed sweeps.",
		}),
		sweepsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guildsweeper_sweeps_skipped_total",
			Help: "Sweeps skipped because another sweep was still running.",
		}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guildsweeper_candidates_total",
			Help: "Guilds selected for eviction.",
		}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guildsweeper_evictions_total",
			Help: "Guilds removed from the cache, by persist outcome.",
		}, []string{"persist"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guildsweeper_retirement_failures_total",
			Help: "Guild retirements aborted by an unexpected error.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "guildsweeper_sweep_duration_seconds",
			Help:    "Duration of a full sweep.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		cachedGuilds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guildsweeper_cached_guilds",
			Help: "Guilds in the cache at the start of the last sweep.",
		}),
		lastSweepMillis: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guildsweeper_last_sweep_timestamp_ms",
			Help: "Unix time in milliseconds of the last completed sweep.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.sweeps, m.sweepsSkipped, m.candidates, m.evictions,
			m.failures, m.sweepDuration, m.cachedGuilds, m.lastSweepMillis)
	}
	return m
}

func (m *Metrics) observeRecord(rec *audit.EvictionRecord) {
	if rec.Removed {
		m.evictions.WithLabelValues(string(rec.PersistOutcome)).Inc()
	}
	if rec.PersistOutcome == audit.PersistPanicked || !rec.Removed {
		m.failures.Inc()
	}
}
