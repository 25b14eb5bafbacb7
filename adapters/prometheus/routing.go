package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/netconstructor/elasticsearch/core/metrics"
	"github.com/netconstructor/elasticsearch/core/routing"
)

// routingMetrics implements routing.Metrics using Prometheus.
type routingMetrics struct {
	iteratorsTotal    *prometheus.CounterVec
	preferenceMatches *prometheus.CounterVec
	preferenceCache   *prometheus.CounterVec
	lookupFailures    *prometheus.CounterVec
	snapshotVersion   prometheus.Gauge
	snapshotsAdopted  prometheus.Counter
	snapshotsRejected prometheus.Counter
	refreshDuration   prometheus.Histogram
}

// NewRoutingMetrics creates a new Prometheus implementation of routing.Metrics.
func NewRoutingMetrics(reg prometheus.Registerer) routing.Metrics {
	m := &routingMetrics{
		iteratorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routing_iterators_total",
			Help: "Total number of shard iterators created",
		}, []string{"strategy"}),

		preferenceMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routing_preference_orders_total",
			Help: "Preference orderings by whether a copy shared the local attribute value",
		}, []string{"matched"}),

		preferenceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routing_preference_cache_lookups_total",
			Help: "Preference order cache lookups",
		}, []string{"hit"}),

		lookupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routing_lookup_failures_total",
			Help: "Total number of failed shard lookups",
		}, []string{"reason"}),

		snapshotVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routing_snapshot_version",
			Help: "Version of the routing snapshot in use",
		}),

		snapshotsAdopted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routing_snapshots_adopted_total",
			Help: "Total number of routing snapshots adopted",
		}),

		snapshotsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routing_snapshots_rejected_total",
			Help: "Total number of stale routing snapshots rejected",
		}),

		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routing_refresh_duration_seconds",
			Help:    "Time to pull a routing snapshot from its source",
			Buckets: defaultBuckets,
		}),
	}

	reg.MustRegister(
		m.iteratorsTotal,
		m.preferenceMatches,
		m.preferenceCache,
		m.lookupFailures,
		m.snapshotVersion,
		m.snapshotsAdopted,
		m.snapshotsRejected,
		m.refreshDuration,
	)

	return m
}

func (m *routingMetrics) IteratorCreated(strategy string) {
	m.iteratorsTotal.WithLabelValues(strategy).Inc()
}

func (m *routingMetrics) PreferenceMatched(matched bool) {
	m.preferenceMatches.WithLabelValues(boolToStr(matched)).Inc()
}

func (m *routingMetrics) PreferenceCache(hit bool) {
	m.preferenceCache.WithLabelValues(boolToStr(hit)).Inc()
}

func (m *routingMetrics) LookupFailed(reason string) {
	m.lookupFailures.WithLabelValues(reason).Inc()
}

func (m *routingMetrics) SnapshotAdopted(version int64) {
	m.snapshotsAdopted.Inc()
	m.snapshotVersion.Set(float64(version))
}

func (m *routingMetrics) SnapshotRejected() {
	m.snapshotsRejected.Inc()
}

func (m *routingMetrics) RefreshDuration() metrics.Timer {
	return newTimer(m.refreshDuration)
}

var _ routing.Metrics = (*routingMetrics)(nil)
