// Package hrw ranks nodes for a shard with rendezvous (highest random weight)
// hashing.
package hrw

import (
	"encoding/binary"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Rank returns nodes ordered by descending HRW score for key. The input slice
// is not modified. seed personalizes the scores (e.g. per cluster).
func Rank(key string, nodes []string, seed string) []string {
	type scored struct {
		score uint64
		id    string
	}
	all := make([]scored, len(nodes))
	keyB := []byte(key)
	for i, id := range nodes {
		all[i] = scored{score: score64(keyB, id, seed), id: id}
	}
	sort.SliceStable(all, func(a, b int) bool {
		if all[a].score == all[b].score {
			return all[a].id < all[b].id
		}
		return all[a].score > all[b].score
	})
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = s.id
	}
	return out
}

func score64(key []byte, nodeID string, seed string) uint64 {
	// 8-byte digest => uint64 score
	h, _ := blake2b.New(8, nil)
	if seed != "" {
		h.Write([]byte(seed))
		h.Write([]byte{0})
	}
	h.Write(key)
	h.Write([]byte{0})
	h.Write([]byte(nodeID))
	return binary.BigEndian.Uint64(h.Sum(nil))
}
