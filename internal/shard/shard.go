// Package shard maps routing keys to shard numbers.
package shard

import "hash/fnv"

// ForKey returns the shard number (0..numShards-1) owning key, using FNV-1a.
// It returns 0 when numShards is not positive.
func ForKey(key string, numShards int) int {
	if numShards <= 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(numShards))
}
