package routing

import (
	"fmt"

	"github.com/netconstructor/elasticsearch/internal/shard"
)

// IndexTable holds the shard groups of one index, addressed by shard number.
type IndexTable struct {
	name   string
	shards []*ShardGroup
}

// NewIndexTable builds an index table. groups[i] must be the group of shard i
// and there is at least one shard.
func NewIndexTable(name string, groups []*ShardGroup) (*IndexTable, error) {
	if name == "" {
		return nil, fmt.Errorf("routing: index name is required: %w", ErrInvalidLayout)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("routing: index %q has no shards: %w", name, ErrInvalidLayout)
	}
	for i, g := range groups {
		if g.ShardID() != NewShardID(name, i) {
			return nil, fmt.Errorf("routing: group %s at position %d of index %q: %w", g.ShardID(), i, name, ErrInvalidLayout)
		}
	}
	return &IndexTable{name: name, shards: groups}, nil
}

// NewEmptyIndexTable builds the table of a freshly created index: numShards
// groups of 1+numReplicas unassigned copies each.
func NewEmptyIndexTable(name string, numShards, numReplicas int) (*IndexTable, error) {
	if numShards <= 0 || numReplicas < 0 {
		return nil, fmt.Errorf("routing: index %q with %d shards and %d replicas: %w", name, numShards, numReplicas, ErrInvalidLayout)
	}
	groups := make([]*ShardGroup, numShards)
	for i := range groups {
		groups[i] = newUnassignedGroup(NewShardID(name, i), numReplicas)
	}
	return NewIndexTable(name, groups)
}

func (t *IndexTable) Name() string { return t.name }

func (t *IndexTable) NumShards() int { return len(t.shards) }

// Shard returns the group of shard n.
func (t *IndexTable) Shard(n int) (*ShardGroup, error) {
	if n < 0 || n >= len(t.shards) {
		return nil, fmt.Errorf("routing: %s: %w", NewShardID(t.name, n), ErrShardNotFound)
	}
	return t.shards[n], nil
}

// MustShard is Shard that panics on a missing shard.
func (t *IndexTable) MustShard(n int) *ShardGroup {
	g, err := t.Shard(n)
	if err != nil {
		panic(err)
	}
	return g
}

// Shards returns all groups ordered by shard number. The slice must not be
// modified.
func (t *IndexTable) Shards() []*ShardGroup { return t.shards }

// ShardForKey maps a routing key (usually a document id) to its shard group.
func (t *IndexTable) ShardForKey(key string) *ShardGroup {
	return t.shards[shard.ForKey(key, len(t.shards))]
}
