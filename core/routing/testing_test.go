package routing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignUnassigned(t *testing.T) {
	idx, err := NewEmptyIndexTable("test", 4, 2)
	require.NoError(t, err)
	table, err := NewTable(1, idx)
	require.NoError(t, err)

	nodes := []string{"node1", "node2", "node3"}
	assigned, err := AssignUnassigned(table, nodes, "")
	require.NoError(t, err)
	require.Equal(t, int64(2), assigned.Version())
	require.Empty(t, assigned.EntriesWithState(StateUnassigned))

	for _, g := range assigned.MustIndex("test").Shards() {
		seen := map[string]bool{}
		for _, e := range g.Entries() {
			require.True(t, e.Initializing())
			require.Contains(t, nodes, e.CurrentNodeID())
			require.False(t, seen[e.CurrentNodeID()], "copies of one shard must be on distinct nodes")
			seen[e.CurrentNodeID()] = true
		}
	}

	started, err := StartInitializing(assigned)
	require.NoError(t, err)
	require.Len(t, started.EntriesWithState(StateStarted), 12)

	again, err := AssignUnassigned(table, nodes, "")
	require.NoError(t, err)
	for i, g := range again.MustIndex("test").Shards() {
		for j, e := range g.Entries() {
			require.Equal(t, assigned.MustIndex("test").MustShard(i).Entry(j).CurrentNodeID(), e.CurrentNodeID())
		}
	}
}

func TestAssignUnassigned_NotEnoughNodes(t *testing.T) {
	table, err := NewStartedTable([]string{"node1"}, map[string][2]int{"test": {2, 1}})
	require.NoError(t, err)

	require.Len(t, table.EntriesWithState(StateStarted), 2)
	require.Len(t, table.EntriesWithState(StateUnassigned), 2)
	for _, e := range table.EntriesWithState(StateUnassigned) {
		require.False(t, e.Primary())
	}
}
