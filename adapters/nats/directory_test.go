package nats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netconstructor/elasticsearch/core/routing"
	"github.com/netconstructor/elasticsearch/ports/directory"
)

func TestNodeDirectory(t *testing.T) {
	d, err := NewNodeDirectory(t.Context(), NodeDirectoryConfig{Connect: NewTestContainer(t)})
	require.NoError(t, err)
	defer d.Close()

	nodes, err := d.Nodes(t.Context(), "node1")
	require.NoError(t, err)
	require.Equal(t, 0, nodes.Len())

	require.ErrorIs(t, d.PutNode(t.Context(), routing.Node{}), directory.ErrNodeIDRequired)
	require.NoError(t, d.PutNode(t.Context(), routing.Node{ID: "node1", Attributes: map[string]string{"rack_id": "rack_1"}}))
	require.NoError(t, d.PutNode(t.Context(), routing.Node{ID: "node2", Attributes: map[string]string{"rack_id": "rack_2"}}))
	require.NoError(t, d.PutNode(t.Context(), routing.Node{ID: "node3"}))

	nodes, err = d.Nodes(t.Context(), "node1")
	require.NoError(t, err)
	require.Equal(t, []string{"node1", "node2", "node3"}, nodes.IDs())

	attrs, ok := nodes.Attributes("node2")
	require.True(t, ok)
	require.Equal(t, "rack_2", attrs["rack_id"])

	require.NoError(t, d.DeleteNode(t.Context(), "node3"))
	nodes, err = d.Nodes(t.Context(), "node1")
	require.NoError(t, err)
	require.Equal(t, []string{"node1", "node2"}, nodes.IDs())
}

func TestNodeDirectory_FeedsPreferredIterator(t *testing.T) {
	d, err := NewNodeDirectory(t.Context(), NodeDirectoryConfig{Connect: NewTestContainer(t)})
	require.NoError(t, err)
	defer d.Close()

	for i, rack := range []string{"rack_1", "rack_1", "rack_2"} {
		id := []string{"node1", "node2", "node3"}[i]
		require.NoError(t, d.PutNode(t.Context(), routing.Node{ID: id, Attributes: map[string]string{"rack_id": rack}}))
	}

	table, err := routing.NewStartedTable([]string{"node1", "node2", "node3"}, map[string][2]int{"logs": {1, 2}})
	require.NoError(t, err)

	r := routing.NewRouter(routing.RouterOptions{AwarenessAttributes: []string{"rack_id"}})
	require.NoError(t, r.Update(table))
	require.NoError(t, directory.Load(t.Context(), d, "node3", r))

	it, err := r.PreferredIterator("logs", 0)
	require.NoError(t, err)
	first := it.FirstOrNil()
	require.NotNil(t, first)
	require.Equal(t, "node3", first.CurrentNodeID())
}
