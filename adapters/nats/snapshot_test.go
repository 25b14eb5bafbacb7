package nats

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/netconstructor/elasticsearch/core/routing"
)

func newStartedTable(t *testing.T) *routing.Table {
	t.Helper()
	table, err := routing.NewStartedTable([]string{"node1", "node2", "node3"}, map[string][2]int{
		"logs": {2, 1},
	})
	require.NoError(t, err)
	return table
}

func TestSnapshotStore(t *testing.T) {
	store, err := NewSnapshotStore(t.Context(), SnapshotStoreConfig{Connect: NewTestContainer(t)})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Current(t.Context())
	require.ErrorIs(t, err, routing.ErrNoSnapshot)

	table := newStartedTable(t)
	require.NoError(t, store.Publish(t.Context(), table))
	require.ErrorIs(t, store.Publish(t.Context(), table), routing.ErrStaleSnapshot)

	got, err := store.Current(t.Context())
	require.NoError(t, err)
	require.Equal(t, table.ID(), got.ID())
	require.Equal(t, table.Version(), got.Version())

	want := table.MustIndex("logs").MustShard(0).Entries()
	entries := got.MustIndex("logs").MustShard(0).Entries()
	require.Len(t, entries, len(want))
	for i := range want {
		require.NotSame(t, want[i], entries[i])
		require.Equal(t, want[i].String(), entries[i].String())
	}

	raw, _, err := store.kv.GetRevision(t.Context(), SnapshotKey)
	require.NoError(t, err)
	require.Contains(t, string(raw), "\n  \"indices\"", "snapshots are stored as indented json")

	require.ErrorIs(t, store.Publish(t.Context(), nil), routing.ErrNilSnapshot)

	again, err := store.Current(t.Context())
	require.NoError(t, err)
	require.NotSame(t, got.MustIndex("logs").MustShard(0).Primary(), again.MustIndex("logs").MustShard(0).Primary())
}

func TestSnapshotStore_Follow(t *testing.T) {
	store, err := NewSnapshotStore(t.Context(), SnapshotStoreConfig{Connect: NewTestContainer(t)})
	require.NoError(t, err)
	defer store.Close()

	r := routing.NewRouter(routing.RouterOptions{Source: store})
	var adopted atomic.Int64
	require.NoError(t, store.Follow(t.Context(), r, func(tb *routing.Table) { adopted.Add(1) }))

	v1 := newStartedTable(t)
	require.NoError(t, store.Publish(t.Context(), v1))
	require.Eventually(t, func() bool {
		cur, err := r.Current()
		return err == nil && cur.Version() == v1.Version()
	}, 5*time.Second, 50*time.Millisecond)

	b := v1.Builder()
	b.RemoveIndex("logs")
	v2, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, store.Publish(t.Context(), v2))

	require.Eventually(t, func() bool {
		cur, err := r.Current()
		return err == nil && !cur.HasIndex("logs")
	}, 5*time.Second, 50*time.Millisecond)

	_, err = r.Iterator("logs", 0)
	require.ErrorIs(t, err, routing.ErrIndexNotFound)
	require.Eventually(t, func() bool { return adopted.Load() == 2 }, 5*time.Second, 50*time.Millisecond)
}

func TestSnapshotStore_Refresh(t *testing.T) {
	store, err := NewSnapshotStore(t.Context(), SnapshotStoreConfig{Connect: NewTestContainer(t)})
	require.NoError(t, err)
	defer store.Close()

	var watched atomic.Int64
	require.NoError(t, store.Watch(t.Context(), func(tb *routing.Table) { watched.Store(tb.Version()) }))

	table := newStartedTable(t)
	require.NoError(t, store.Publish(t.Context(), table))

	r := routing.NewRouter(routing.RouterOptions{Source: store})
	got, err := r.Refresh(t.Context())
	require.NoError(t, err)
	require.Equal(t, table.Version(), got.Version())

	require.Eventually(t, func() bool { return watched.Load() == table.Version() }, 5*time.Second, 50*time.Millisecond)
}
