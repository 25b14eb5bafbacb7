// Package cache provides a small typed key-value cache with LRU eviction.
//
// [LRU] is safe for concurrent use. [Nop] satisfies [Cache] and never stores
// anything, which is how callers disable caching without branching:
//
//	var c cache.Cache[string, []int] = cache.NewLRU[string, []int](cache.LRUOpts{Size: 1024})
//	if disabled {
//	    c = cache.NewNop[string, []int]()
//	}
//
// Values are stored as given; caching a slice or pointer shares it with every
// later Get.
package cache
