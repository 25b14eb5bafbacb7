// Package routing decides, for one shard of an index, in which order its
// copies (primary and replicas) should be tried when dispatching a request.
//
// # Snapshots
//
// A [Table] is an immutable snapshot of the whole routing assignment:
//
//	Table
//	 └── IndexTable  (per index name)
//	      └── ShardGroup  (per shard number: primary first, then replicas)
//	           └── *Entry  (one copy: node, role, lifecycle state)
//
// Snapshots are produced by an external allocation service. They are never
// modified in place; [Table.Builder] derives a new snapshot with new entry
// instances and the caller swaps its reference (see [Router.Update]). Any
// number of goroutines may read a snapshot without locking.
//
// Within one snapshot each copy has exactly one *Entry. Iterators wrap the
// group's entry slice instead of copying it, so independently built
// iterators return the identical pointer for the same copy.
//
// # Iterators
//
// An [Iterator] is a single-pass cursor: FirstOrNil peeks, NextOrNil returns
// and advances, and nil marks the end. Retry-on-failure is just calling
// NextOrNil again:
//
//	it := group.Iterator()
//	for e := it.NextOrNil(); e != nil; e = it.NextOrNil() {
//	    if err := send(ctx, e.CurrentNodeID(), req); err == nil {
//	        return nil
//	    }
//	}
//	return errNoCopyAvailable
//
// Iterators are cheap to create and not safe for concurrent use; create one
// per request.
//
// # Strategies
//
//   - Rotation ([ShardGroup.Iterator], [ShardGroup.IteratorWithSeed]): the
//     entry list rotated to start at seed modulo size. Without a seed the
//     group's atomic counter supplies one, so consecutive calls spread load
//     round robin.
//   - Random ([ShardGroup.RandomIterator]): rotation from a seed drawn from a
//     [SeedSource].
//   - Attribute preference ([ShardGroup.PreferAttributesActiveIterator]):
//     started copies only, those on nodes sharing the local node's value of
//     the first configured attribute (e.g. rack_id) first. The order is
//     stable across calls; when attribute data is missing it falls back to
//     the started copies in group order.
//
// # Errors
//
// Iterators never fail. Looking up a missing index or shard returns an error
// wrapping [ErrIndexNotFound] or [ErrShardNotFound]; the Must variants panic.
package routing
