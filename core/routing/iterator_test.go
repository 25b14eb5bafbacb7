package routing

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func testEntries(n int) []*Entry {
	sid := NewShardID("test", 0)
	out := make([]*Entry, n)
	for i := range out {
		out[i] = NewUnassignedEntry(sid, i == 0)
	}
	return out
}

func drain(it Iterator) []*Entry {
	var out []*Entry
	for e := it.NextOrNil(); e != nil; e = it.NextOrNil() {
		out = append(out, e)
	}
	return out
}

func TestShardIterator_Empty(t *testing.T) {
	for seed := 0; seed < 4; seed++ {
		it := NewShardIterator(NewShardID("test1", 0), nil, seed)
		require.Equal(t, 0, it.Size())
		require.Equal(t, 0, it.Remaining())
		require.Nil(t, it.FirstOrNil())
		require.Equal(t, 0, it.Remaining())
		require.Nil(t, it.NextOrNil())
		require.Equal(t, 0, it.Remaining())
		require.Nil(t, it.NextOrNil())
		require.Equal(t, 0, it.Remaining())
	}
}

func TestShardIterator_ExhaustsInOrder(t *testing.T) {
	for size := 0; size <= 5; size++ {
		entries := testEntries(size)
		for seed := -7; seed <= 12; seed++ {
			t.Run(fmt.Sprintf("size=%d/seed=%d", size, seed), func(t *testing.T) {
				it := NewShardIterator(NewShardID("test", 0), entries, seed)
				require.Equal(t, size, it.Size())

				for i := 0; i < size; i++ {
					require.Equal(t, size-i, it.Remaining())
					e := it.NextOrNil()
					require.NotNil(t, e)
					require.Same(t, entries[(rotationOffset(seed, size)+i)%size], e)
				}
				for i := 0; i < 3; i++ {
					require.Nil(t, it.NextOrNil())
					require.Equal(t, 0, it.Remaining())
				}
				require.Equal(t, size, it.Size())
			})
		}
	}
}

func TestShardIterator_FirstOrNilIsIdempotent(t *testing.T) {
	entries := testEntries(3)
	it := NewShardIterator(NewShardID("test", 0), entries, 1)

	first := it.FirstOrNil()
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		require.Same(t, first, it.FirstOrNil())
		require.Equal(t, it.Size(), it.Remaining())
	}
	require.Same(t, first, it.NextOrNil())
	require.Equal(t, 2, it.Remaining())
	require.NotSame(t, first, it.FirstOrNil())
}

func TestShardIterator_FullCycleEquivalence(t *testing.T) {
	for size := 1; size <= 4; size++ {
		entries := testEntries(size)
		for k := -10; k <= 10; k++ {
			a := drain(NewShardIterator(NewShardID("test", 0), entries, k))
			b := drain(NewShardIterator(NewShardID("test", 0), entries, k+size))
			require.Equal(t, a, b, "size=%d seed=%d", size, k)
			require.Len(t, a, size)
		}
	}
}

func TestShardIterator_ExtremeSeeds(t *testing.T) {
	entries := testEntries(3)
	for _, seed := range []int{math.MaxInt, math.MinInt, math.MinInt + 1, -1} {
		it := NewShardIterator(NewShardID("test", 0), entries, seed)
		got := drain(it)
		require.ElementsMatch(t, entries, got, "seed %d", seed)
	}
	// -1 wraps to the last entry
	require.Same(t, entries[2], NewShardIterator(NewShardID("test", 0), entries, -1).FirstOrNil())
}

func TestRotationOffset(t *testing.T) {
	require.Equal(t, 0, rotationOffset(5, 0))
	require.Equal(t, 2, rotationOffset(5, 3))
	require.Equal(t, 1, rotationOffset(-5, 3))
	require.Equal(t, 0, rotationOffset(-6, 3))
	off := rotationOffset(math.MinInt, 7)
	require.GreaterOrEqual(t, off, 0)
	require.Less(t, off, 7)
}

func TestCountedIterator_LargeCounter(t *testing.T) {
	entries := testEntries(3)
	it := newCountedIterator(NewShardID("test", 0), entries, math.MaxUint64)
	// MaxUint64 % 3 == 0
	require.Same(t, entries[0], it.FirstOrNil())
	require.Len(t, drain(it), 3)
}
