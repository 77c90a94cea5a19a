package memory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsUpdateInterval is how often gauge values are refreshed.
const metricsUpdateInterval = 15 * time.Second

// storeMetrics holds the Prometheus instruments for the store.
type storeMetrics struct {
	keys         prometheus.Gauge
	expiringKeys prometheus.Gauge
	keyLocks     prometheus.Gauge
	reads        prometheus.Counter
	writes       prometheus.Counter
	hits         prometheus.Counter
	misses       prometheus.Counter
	expirations  prometheus.Counter
}

// RegisterMetrics registers store metrics with Prometheus and starts
// the update loop. Call once during initialization. Returns the store
// for method chaining.
func (s *Store) RegisterMetrics(registry *prometheus.Registry) *Store {
	m := &storeMetrics{
		keys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "keyline",
			Subsystem: "store",
			Name:      "keys",
			Help:      "Number of stored keys, including not-yet-evicted expired keys",
		}),
		expiringKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "keyline",
			Subsystem: "store",
			Name:      "expiring_keys",
			Help:      "Number of keys carrying an expiry deadline",
		}),
		keyLocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "keyline",
			Subsystem: "store",
			Name:      "key_locks",
			Help:      "Size of the per-key lock registry",
		}),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyline",
			Subsystem: "store",
			Name:      "reads_total",
			Help:      "Total read operations",
		}),
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyline",
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Total write operations",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyline",
			Subsystem: "store",
			Name:      "hits_total",
			Help:      "Reads that returned a live value",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyline",
			Subsystem: "store",
			Name:      "misses_total",
			Help:      "Reads of absent or expired keys",
		}),
		expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyline",
			Subsystem: "store",
			Name:      "expired_keys_total",
			Help:      "Keys evicted after their deadline passed",
		}),
	}

	registry.MustRegister(
		m.keys,
		m.expiringKeys,
		m.keyLocks,
		m.reads,
		m.writes,
		m.hits,
		m.misses,
		m.expirations,
	)

	s.metrics = m
	go s.metricsUpdateLoop()

	return s
}

// metricsUpdateLoop periodically refreshes gauges and feeds counter
// deltas. Counters cannot be set, so each tick adds the growth since
// the previous tick.
func (s *Store) metricsUpdateLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	var lastReads, lastWrites, lastHits, lastMisses, lastExpirations int64

	for {
		select {
		case <-ticker.C:
			stats := s.Stats()

			s.metrics.keys.Set(float64(stats.Keys))
			s.metrics.expiringKeys.Set(float64(stats.ExpiringKeys))
			s.metrics.keyLocks.Set(float64(stats.KeyLocks))

			s.metrics.reads.Add(float64(stats.Reads - lastReads))
			s.metrics.writes.Add(float64(stats.Writes - lastWrites))
			s.metrics.hits.Add(float64(stats.Hits - lastHits))
			s.metrics.misses.Add(float64(stats.Misses - lastMisses))
			s.metrics.expirations.Add(float64(stats.Expirations - lastExpirations))

			lastReads = stats.Reads
			lastWrites = stats.Writes
			lastHits = stats.Hits
			lastMisses = stats.Misses
			lastExpirations = stats.Expirations

		case <-s.stopCh:
			return
		}
	}
}
