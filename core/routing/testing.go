package routing

import (
	"fmt"

	"github.com/netconstructor/elasticsearch/core/ds"
	"github.com/netconstructor/elasticsearch/internal/hrw"
)

// The helpers below produce started snapshots for tests and demos. They are
// fixtures, not an allocation policy: they ignore disk, load and awareness.

// AssignUnassigned places every unassigned copy on the highest ranked node
// (rendezvous hashing per shard) that does not hold a copy of that shard yet.
// Copies that cannot be placed stay unassigned. The result is a new snapshot
// with the placed copies initializing.
func AssignUnassigned(t *Table, nodeIDs []string, seed string) (*Table, error) {
	b := t.Builder()
	for _, name := range t.Indices() {
		for _, g := range t.MustIndex(name).Shards() {
			taken := ds.NewSet[string]()
			for _, e := range g.Entries() {
				if e.Assigned() {
					taken.Add(e.CurrentNodeID())
				}
				if e.Relocating() {
					taken.Add(e.RelocatingNodeID())
				}
			}
			free := taken.Missing(hrw.Rank(g.ShardID().String(), nodeIDs, seed))
			for _, e := range g.Entries() {
				if !e.Unassigned() {
					continue
				}
				if len(free) == 0 {
					break
				}
				node := free[0]
				free = free[1:]
				b.Apply(e, func(e *Entry) (*Entry, error) { return e.Initialize(node) })
			}
		}
	}
	return b.Build()
}

// StartInitializing returns a new snapshot with every initializing copy
// started.
func StartInitializing(t *Table) (*Table, error) {
	b := t.Builder()
	for _, e := range t.EntriesWithState(StateInitializing) {
		b.Apply(e, (*Entry).Start)
	}
	return b.Build()
}

// NewStartedTable builds a snapshot where every index of layout has all of its
// copies started across nodeIDs, as far as there are enough nodes.
func NewStartedTable(nodeIDs []string, layout map[string][2]int) (*Table, error) {
	b := NewTableBuilder()
	for name, l := range layout {
		idx, err := NewEmptyIndexTable(name, l[0], l[1])
		if err != nil {
			return nil, err
		}
		b.AddIndex(idx)
	}
	t, err := b.Build()
	if err != nil {
		return nil, err
	}
	if t, err = AssignUnassigned(t, nodeIDs, ""); err != nil {
		return nil, fmt.Errorf("routing: assign: %w", err)
	}
	return StartInitializing(t)
}
