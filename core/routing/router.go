package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/netconstructor/elasticsearch/core/cache"
	"github.com/netconstructor/elasticsearch/core/sf"
)

type RouterOptions struct {
	Log *slog.Logger
	// Source is consulted by Refresh. Optional when snapshots are pushed via
	// Update.
	Source Source
	// Nodes resolves node attributes for preference routing.
	Nodes NodeDirectory
	// AwarenessAttributes are the attribute names used by PreferredIterator,
	// highest priority first.
	AwarenessAttributes []string
	Metrics             Metrics
	// PreferenceCacheSize bounds the preference order cache. 0 selects the
	// default size, a negative value disables caching.
	PreferenceCacheSize int
	// Seeds overrides the randomness used by RandomIterator.
	Seeds SeedSource
}

type nodesRef struct {
	gen   uint64
	nodes NodeDirectory
}

// Router holds the current routing snapshot and hands out iterators for
// request dispatch. Snapshots are swapped atomically; a request keeps using
// the snapshot its iterator was built from.
type Router struct {
	log     *slog.Logger
	source  Source
	attrs   []string
	metrics Metrics
	seeds   SeedSource

	table atomic.Pointer[Table]
	nodes atomic.Pointer[nodesRef]
	gen   counter

	refresh sf.Singleflight[Table]
	orders  cache.Cache[string, []*Entry]
}

func NewRouter(opts RouterOptions) *Router {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = NopMetrics()
	}
	seeds := opts.Seeds
	if seeds == nil {
		seeds = DefaultSeedSource()
	}

	var orders cache.Cache[string, []*Entry]
	switch {
	case opts.PreferenceCacheSize < 0:
		orders = cache.NewNop[string, []*Entry]()
	default:
		orders = cache.NewLRU[string, []*Entry](cache.LRUOpts{Size: opts.PreferenceCacheSize})
	}

	r := &Router{
		log:     log.With(slog.String("component", "router")),
		source:  opts.Source,
		attrs:   append([]string(nil), opts.AwarenessAttributes...),
		metrics: m,
		seeds:   seeds,
		orders:  orders,
	}
	if opts.Nodes != nil {
		r.SetNodes(opts.Nodes)
	}
	return r
}

// Current returns the snapshot in use.
func (r *Router) Current() (*Table, error) {
	t := r.table.Load()
	if t == nil {
		return nil, ErrNoSnapshot
	}
	return t, nil
}

// Update adopts t if it is newer than the current snapshot.
func (r *Router) Update(t *Table) error {
	if t == nil {
		return ErrNilSnapshot
	}
	for {
		cur := r.table.Load()
		if cur != nil && t.Version() <= cur.Version() {
			r.metrics.SnapshotRejected()
			r.log.Debug("ignoring stale snapshot", t.logAttrs(), slog.Int64("current_version", cur.Version()))
			return fmt.Errorf("routing: version %d, current %d: %w", t.Version(), cur.Version(), ErrStaleSnapshot)
		}
		if r.table.CompareAndSwap(cur, t) {
			r.metrics.SnapshotAdopted(t.Version())
			r.log.Info("adopted routing snapshot", t.logAttrs())
			return nil
		}
	}
}

// Refresh pulls the latest snapshot from the Source and adopts it when newer.
// Concurrent calls share one pull.
func (r *Router) Refresh(ctx context.Context) (*Table, error) {
	if r.source == nil {
		return nil, errors.New("routing: router has no source")
	}
	t, _, err := r.refresh.Do("refresh", func() (*Table, error) {
		defer r.metrics.RefreshDuration().ObserveDuration()
		t, err := r.source.Current(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.Update(t); err != nil && !errors.Is(err, ErrStaleSnapshot) {
			return nil, err
		}
		return r.Current()
	})
	if err != nil {
		r.log.Error("failed to refresh routing snapshot", slog.Any("error", err))
		return nil, err
	}
	return t, nil
}

// SetNodes replaces the node directory used for preference routing.
func (r *Router) SetNodes(nodes NodeDirectory) {
	r.nodes.Store(&nodesRef{gen: r.gen.next(), nodes: nodes})
}

// Group returns the shard group from the current snapshot.
func (r *Router) Group(index string, shard int) (*ShardGroup, error) {
	t, err := r.Current()
	if err != nil {
		r.metrics.LookupFailed("no_snapshot")
		return nil, err
	}
	g, err := t.Shard(index, shard)
	if err != nil {
		r.lookupFailed(NewShardID(index, shard), err)
		return nil, err
	}
	return g, nil
}

func (r *Router) lookupFailed(sid ShardID, err error) {
	reason := "shard_not_found"
	if errors.Is(err, ErrIndexNotFound) {
		reason = "index_not_found"
	}
	r.metrics.LookupFailed(reason)
	r.log.Warn("routing lookup failed", sid.logAttr(), slog.Any("error", err))
}

// Iterator rotates over all copies of the shard (round robin across calls).
func (r *Router) Iterator(index string, shard int) (Iterator, error) {
	g, err := r.Group(index, shard)
	if err != nil {
		return nil, err
	}
	r.metrics.IteratorCreated(StrategyRotation)
	return g.Iterator(), nil
}

// RandomIterator starts at a random copy of the shard.
func (r *Router) RandomIterator(index string, shard int) (Iterator, error) {
	g, err := r.Group(index, shard)
	if err != nil {
		return nil, err
	}
	r.metrics.IteratorCreated(StrategyRandom)
	return g.RandomIteratorFrom(r.seeds), nil
}

// IteratorForKey routes a document key to its shard and rotates over the
// copies of that shard.
func (r *Router) IteratorForKey(index, key string) (Iterator, error) {
	t, err := r.Current()
	if err != nil {
		r.metrics.LookupFailed("no_snapshot")
		return nil, err
	}
	idx, err := t.Index(index)
	if err != nil {
		r.lookupFailed(NewShardID(index, -1), err)
		return nil, err
	}
	r.metrics.IteratorCreated(StrategyKey)
	return idx.ShardForKey(key).Iterator(), nil
}

// PreferredIterator iterates over the started copies of the shard, copies
// sharing the local node's awareness attribute value first. Without a node
// directory it degrades to started copies in group order.
func (r *Router) PreferredIterator(index string, shard int) (Iterator, error) {
	t, err := r.Current()
	if err != nil {
		r.metrics.LookupFailed("no_snapshot")
		return nil, err
	}
	g, err := t.Shard(index, shard)
	if err != nil {
		r.lookupFailed(NewShardID(index, shard), err)
		return nil, err
	}
	r.metrics.IteratorCreated(StrategyPreference)

	var (
		nodes NodeDirectory
		gen   uint64
	)
	if ref := r.nodes.Load(); ref != nil {
		nodes, gen = ref.nodes, ref.gen
	}

	key := r.orderKey(t, g.ShardID(), gen)
	order, ok := r.orders.Get(key)
	r.metrics.PreferenceCache(ok)
	if !ok {
		order = PreferredOrder(g.Entries(), r.attrs, nodes)
		r.orders.Put(key, order)
	}
	r.metrics.PreferenceMatched(r.preferenceMatched(order, nodes))
	return NewShardIterator(g.ShardID(), order, 0), nil
}

func (r *Router) orderKey(t *Table, sid ShardID, gen uint64) string {
	return fmt.Sprintf("%s|%d|%s|%s", t.ID(), gen, sid, strings.Join(r.attrs, ","))
}

func (r *Router) preferenceMatched(order []*Entry, nodes NodeDirectory) bool {
	if len(order) == 0 || nodes == nil {
		return false
	}
	attr, local, ok := localAttribute(r.attrs, nodes)
	if !ok {
		return false
	}
	v, found := nodeAttribute(nodes, order[0].CurrentNodeID(), attr)
	return found && v == local
}
