package routing

import (
	"fmt"
	"log/slog"
)

// ShardID identifies one shard of one index. It is comparable and can be used
// as a map key.
type ShardID struct {
	Index string `json:"index"`
	Shard int    `json:"shard"`
}

func NewShardID(index string, shard int) ShardID {
	return ShardID{Index: index, Shard: shard}
}

func (s ShardID) String() string { return fmt.Sprintf("[%s][%d]", s.Index, s.Shard) }

func (s ShardID) logAttr() slog.Attr {
	return slog.Group("shard", slog.String("index", s.Index), slog.Int("id", s.Shard))
}
