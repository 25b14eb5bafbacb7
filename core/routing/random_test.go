package routing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShardGroup_RandomIterator(t *testing.T) {
	test1, err := NewEmptyIndexTable("test1", 1, 1)
	require.NoError(t, err)
	test2, err := NewEmptyIndexTable("test2", 1, 1)
	require.NoError(t, err)
	table, err := NewTable(1, test1, test2)
	require.NoError(t, err)
	group := table.MustIndex("test1").MustShard(0)

	for i := 0; i < 10; i++ {
		it := group.RandomIterator()
		a := it.NextOrNil()
		require.NotNil(t, a)
		b := it.NextOrNil()
		require.NotNil(t, b)
		require.NotSame(t, a, b)
		require.Nil(t, it.NextOrNil())
	}

	seen := map[*Entry]bool{}
	for i := 0; i < 200; i++ {
		seen[group.RandomIterator().FirstOrNil()] = true
	}
	require.Len(t, seen, 2, "random iterators must not always start at the same copy")
}

func TestShardGroup_RandomIteratorFrom(t *testing.T) {
	idx, err := NewEmptyIndexTable("test1", 1, 1)
	require.NoError(t, err)
	group := idx.MustShard(0)

	src := FixedSeeds(0, 1)
	it1 := group.RandomIteratorFrom(src)
	r1 := it1.NextOrNil()
	require.NotNil(t, r1)
	require.NotNil(t, it1.NextOrNil())
	require.Nil(t, it1.NextOrNil())

	it2 := group.RandomIteratorFrom(src)
	r2 := it2.NextOrNil()
	require.NotNil(t, r2)
	r3 := it2.NextOrNil()
	require.NotNil(t, r3)
	require.Nil(t, it2.NextOrNil())

	require.NotSame(t, r1, r2)
	require.Same(t, r1, r3)
}

func TestFixedSeeds(t *testing.T) {
	src := FixedSeeds(3, -1, 7)
	require.Equal(t, 3, src.Seed())
	require.Equal(t, -1, src.Seed())
	require.Equal(t, 7, src.Seed())
	require.Equal(t, 3, src.Seed())

	require.Equal(t, 0, FixedSeeds().Seed())
	require.Equal(t, 42, SeedFunc(func() int { return 42 }).Seed())
}
