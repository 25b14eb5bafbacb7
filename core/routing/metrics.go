package routing

import "github.com/netconstructor/elasticsearch/core/metrics"

// Strategy labels used in metrics.
const (
	StrategyRotation   = "rotation"
	StrategyRandom     = "random"
	StrategyPreference = "preference"
	StrategyKey        = "key"
)

// Metrics instruments the Router. All methods are thread-safe.
type Metrics interface {
	// IteratorCreated counts iterators handed out, by strategy.
	IteratorCreated(strategy string)
	// PreferenceMatched reports whether a preference ordering found at least
	// one copy sharing the local node's attribute value.
	PreferenceMatched(matched bool)
	// PreferenceCache reports preference order cache lookups.
	PreferenceCache(hit bool)
	// LookupFailed counts failed lookups: index_not_found, shard_not_found,
	// no_snapshot.
	LookupFailed(reason string)

	// Snapshots
	SnapshotAdopted(version int64)
	SnapshotRejected()
	RefreshDuration() metrics.Timer
}

type nopMetrics struct{}

func (nopMetrics) IteratorCreated(string)         {}
func (nopMetrics) PreferenceMatched(bool)         {}
func (nopMetrics) PreferenceCache(bool)           {}
func (nopMetrics) LookupFailed(string)            {}
func (nopMetrics) SnapshotAdopted(int64)          {}
func (nopMetrics) SnapshotRejected()              {}
func (nopMetrics) RefreshDuration() metrics.Timer { return metrics.NopTimer() }

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
