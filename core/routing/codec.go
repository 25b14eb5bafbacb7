package routing

import (
	"encoding/json"
	"fmt"
)

type (
	tableJSON struct {
		ID      string      `json:"id"`
		Version int64       `json:"version"`
		Indices []indexJSON `json:"indices"`
	}

	indexJSON struct {
		Name   string        `json:"name"`
		Shards [][]entryJSON `json:"shards"`
	}

	entryJSON struct {
		Primary          bool   `json:"primary"`
		State            State  `json:"state"`
		CurrentNodeID    string `json:"node,omitempty"`
		RelocatingNodeID string `json:"relocating_node,omitempty"`
		Version          int64  `json:"version"`
	}
)

// MarshalJSON encodes the snapshot, indices sorted by name.
func (t *Table) MarshalJSON() ([]byte, error) {
	tj := tableJSON{ID: t.id, Version: t.version, Indices: make([]indexJSON, 0, len(t.indices))}
	for _, name := range t.Indices() {
		idx := t.indices[name]
		ij := indexJSON{Name: name, Shards: make([][]entryJSON, idx.NumShards())}
		for i, g := range idx.Shards() {
			group := make([]entryJSON, g.Size())
			for j, e := range g.Entries() {
				group[j] = entryJSON{
					Primary:          e.Primary(),
					State:            e.State(),
					CurrentNodeID:    e.CurrentNodeID(),
					RelocatingNodeID: e.RelocatingNodeID(),
					Version:          e.Version(),
				}
			}
			ij.Shards[i] = group
		}
		tj.Indices = append(tj.Indices, ij)
	}
	return json.Marshal(tj)
}

// DecodeTable decodes a snapshot encoded by MarshalJSON. Every call creates
// new entry instances.
func DecodeTable(data []byte) (*Table, error) {
	var tj tableJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return nil, fmt.Errorf("routing: decode table: %w", err)
	}
	indices := make([]*IndexTable, 0, len(tj.Indices))
	for _, ij := range tj.Indices {
		groups := make([]*ShardGroup, len(ij.Shards))
		for i, gj := range ij.Shards {
			sid := NewShardID(ij.Name, i)
			entries := make([]*Entry, len(gj))
			for j, ej := range gj {
				e, err := NewEntry(sid, ej.CurrentNodeID, ej.RelocatingNodeID, ej.Primary, ej.State, ej.Version)
				if err != nil {
					return nil, err
				}
				entries[j] = e
			}
			g, err := NewShardGroup(sid, entries)
			if err != nil {
				return nil, err
			}
			groups[i] = g
		}
		idx, err := NewIndexTable(ij.Name, groups)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	id := tj.ID
	if id == "" {
		return NewTable(tj.Version, indices...)
	}
	return newTable(id, tj.Version, indices)
}
