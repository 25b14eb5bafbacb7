package routing

import (
	"fmt"
	"sync/atomic"
)

type counter struct{ v atomic.Uint64 }

// next returns the current value and increments it.
func (c *counter) next() uint64 { return c.v.Add(1) - 1 }

// ShardGroup is the ordered set of copies of one shard within a snapshot:
// the primary first, then the replicas.
//
// A ShardGroup is immutable apart from its rotation counter, which is only
// advanced by Iterator and ActiveIterator. Every snapshot builds its own
// groups, so a new snapshot always starts with a fresh counter.
type ShardGroup struct {
	shardID ShardID
	entries []*Entry
	active  []*Entry
	primary *Entry
	seeds   SeedSource

	rotation counter
}

// NewShardGroup builds a group. entries are ordered primary first; the slice
// is retained, not copied, and must not be modified afterwards.
func NewShardGroup(shardID ShardID, entries []*Entry) (*ShardGroup, error) {
	g := &ShardGroup{
		shardID: shardID,
		entries: entries,
		active:  make([]*Entry, 0, len(entries)),
		seeds:   DefaultSeedSource(),
	}
	for i, e := range entries {
		if e.ShardID() != shardID {
			return nil, fmt.Errorf("routing: entry %d belongs to %s, not %s: %w", i, e.ShardID(), shardID, ErrInvalidLayout)
		}
		if e.Primary() {
			if g.primary != nil {
				return nil, fmt.Errorf("routing: %s: %w", shardID, ErrMultiplePrimaries)
			}
			if i != 0 {
				return nil, fmt.Errorf("routing: %s: primary at position %d: %w", shardID, i, ErrInvalidLayout)
			}
			g.primary = e
		}
		if e.Active() {
			g.active = append(g.active, e)
		}
	}
	return g, nil
}

func newUnassignedGroup(shardID ShardID, numReplicas int) *ShardGroup {
	entries := make([]*Entry, 0, numReplicas+1)
	entries = append(entries, NewUnassignedEntry(shardID, true))
	for i := 0; i < numReplicas; i++ {
		entries = append(entries, NewUnassignedEntry(shardID, false))
	}
	g, _ := NewShardGroup(shardID, entries)
	return g
}

func (g *ShardGroup) ShardID() ShardID { return g.shardID }

// Size is the number of copies, primary included.
func (g *ShardGroup) Size() int { return len(g.entries) }

// Entry returns the i-th copy; it panics if i is out of range.
func (g *ShardGroup) Entry(i int) *Entry { return g.entries[i] }

// Entries returns the copies in group order. The slice is shared with the
// group and must not be modified.
func (g *ShardGroup) Entries() []*Entry { return g.entries }

// Primary returns the primary copy or nil.
func (g *ShardGroup) Primary() *Entry { return g.primary }

// Replicas returns the non-primary copies in group order.
func (g *ShardGroup) Replicas() []*Entry {
	if g.primary == nil {
		return g.entries
	}
	return g.entries[1:]
}

// ActiveEntries returns the started copies. The slice is shared with the
// group and must not be modified.
func (g *ShardGroup) ActiveEntries() []*Entry { return g.active }

// AssignedEntries returns the copies placed on a node.
func (g *ShardGroup) AssignedEntries() []*Entry {
	out := make([]*Entry, 0, len(g.entries))
	for _, e := range g.entries {
		if e.Assigned() {
			out = append(out, e)
		}
	}
	return out
}

// === iterators ===

// Iterator rotates over all copies, starting one position further on every
// call.
func (g *ShardGroup) Iterator() *ShardIterator {
	return newCountedIterator(g.shardID, g.entries, g.rotation.next())
}

// IteratorWithSeed rotates over all copies starting at seed modulo Size().
func (g *ShardGroup) IteratorWithSeed(seed int) *ShardIterator {
	return NewShardIterator(g.shardID, g.entries, seed)
}

// ActiveIterator rotates over the started copies only, sharing the group's
// rotation counter with Iterator.
func (g *ShardGroup) ActiveIterator() *ShardIterator {
	return newCountedIterator(g.shardID, g.active, g.rotation.next())
}

// ActiveIteratorWithSeed rotates over the started copies starting at seed.
func (g *ShardGroup) ActiveIteratorWithSeed(seed int) *ShardIterator {
	return NewShardIterator(g.shardID, g.active, seed)
}

// RandomIterator rotates over all copies from a random starting position.
func (g *ShardGroup) RandomIterator() *ShardIterator {
	return g.RandomIteratorFrom(g.seeds)
}

// RandomIteratorFrom is RandomIterator with an explicit seed source.
func (g *ShardGroup) RandomIteratorFrom(src SeedSource) *ShardIterator {
	return NewShardIterator(g.shardID, g.entries, src.Seed())
}

// PrimaryIterator yields the primary copy, or nothing when the group has none.
func (g *ShardGroup) PrimaryIterator() *ShardIterator {
	if g.primary == nil {
		return NewShardIterator(g.shardID, nil, 0)
	}
	return NewShardIterator(g.shardID, g.entries[:1], 0)
}

// PreferAttributesActiveIterator iterates over the started copies, those
// sharing the local node's value of the first matching attribute first. The
// order is identical on every call for the same snapshot and directory.
// Missing attribute data never fails; it only weakens the preference.
func (g *ShardGroup) PreferAttributesActiveIterator(attributes []string, nodes NodeDirectory) *ShardIterator {
	return NewShardIterator(g.shardID, PreferredOrder(g.entries, attributes, nodes), 0)
}
