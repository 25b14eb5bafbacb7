package routing

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Table is an immutable routing snapshot of the whole cluster: index name to
// IndexTable. A new assignment produces a new Table; existing tables are never
// modified, so they are safe for unsynchronized concurrent reads.
type Table struct {
	id      string
	version int64
	indices map[string]*IndexTable
}

// NewTable builds a snapshot with a generated id.
func NewTable(version int64, indices ...*IndexTable) (*Table, error) {
	return newTable(gonanoid.Must(), version, indices)
}

func newTable(id string, version int64, indices []*IndexTable) (*Table, error) {
	t := &Table{id: id, version: version, indices: make(map[string]*IndexTable, len(indices))}
	for _, idx := range indices {
		if _, dup := t.indices[idx.Name()]; dup {
			return nil, fmt.Errorf("routing: duplicate index %q: %w", idx.Name(), ErrInvalidLayout)
		}
		t.indices[idx.Name()] = idx
	}
	return t, nil
}

// ID uniquely identifies this snapshot instance.
func (t *Table) ID() string { return t.id }

// Version increases with every snapshot produced from this one.
func (t *Table) Version() int64 { return t.version }

// Index returns the table of the named index.
func (t *Table) Index(name string) (*IndexTable, error) {
	idx, ok := t.indices[name]
	if !ok {
		return nil, fmt.Errorf("routing: index %q: %w", name, ErrIndexNotFound)
	}
	return idx, nil
}

// MustIndex is Index that panics on a missing index.
func (t *Table) MustIndex(name string) *IndexTable {
	idx, err := t.Index(name)
	if err != nil {
		panic(err)
	}
	return idx
}

func (t *Table) HasIndex(name string) bool {
	_, ok := t.indices[name]
	return ok
}

// Indices returns the index names in sorted order.
func (t *Table) Indices() []string {
	return slices.Sorted(maps.Keys(t.indices))
}

// Shard returns the group of shard n of the named index.
func (t *Table) Shard(index string, n int) (*ShardGroup, error) {
	idx, err := t.Index(index)
	if err != nil {
		return nil, err
	}
	return idx.Shard(n)
}

// EntriesWithState returns all copies in any of the given states, ordered by
// index name, shard number and position in the group.
func (t *Table) EntriesWithState(states ...State) []*Entry {
	var out []*Entry
	for _, name := range t.Indices() {
		for _, g := range t.indices[name].Shards() {
			for _, e := range g.Entries() {
				if slices.Contains(states, e.State()) {
					out = append(out, e)
				}
			}
		}
	}
	return out
}

func (t *Table) logAttrs() slog.Attr {
	return slog.Group(
		"table",
		slog.String("id", t.id),
		slog.Int64("version", t.version),
		slog.Int("indices", len(t.indices)),
	)
}

// Builder starts a new snapshot derived from t.
func (t *Table) Builder() *TableBuilder {
	return &TableBuilder{
		base:     t,
		version:  t.version + 1,
		replaced: make(map[*Entry]*Entry),
		added:    make(map[string]*IndexTable),
		removed:  make(map[string]struct{}),
	}
}

// TableBuilder produces a new snapshot from a base snapshot by replacing
// entries and adding or removing indices. The base is left untouched.
type TableBuilder struct {
	base     *Table
	version  int64
	replaced map[*Entry]*Entry
	added    map[string]*IndexTable
	removed  map[string]struct{}
	err      error
}

// NewTableBuilder starts a snapshot from scratch.
func NewTableBuilder() *TableBuilder {
	empty := &Table{indices: map[string]*IndexTable{}}
	return empty.Builder()
}

// Version overrides the version of the built snapshot.
func (b *TableBuilder) Version(v int64) *TableBuilder {
	b.version = v
	return b
}

// AddIndex adds (or replaces) an index.
func (b *TableBuilder) AddIndex(idx *IndexTable) *TableBuilder {
	delete(b.removed, idx.Name())
	b.added[idx.Name()] = idx
	return b
}

// RemoveIndex drops an index from the new snapshot.
func (b *TableBuilder) RemoveIndex(name string) *TableBuilder {
	delete(b.added, name)
	b.removed[name] = struct{}{}
	return b
}

// Replace substitutes current, an entry of the base snapshot, with updated.
// Build fails if current is not an entry of the base snapshot.
func (b *TableBuilder) Replace(current, updated *Entry) *TableBuilder {
	if b.err != nil {
		return b
	}
	if current.ShardID() != updated.ShardID() || current.Primary() != updated.Primary() {
		b.err = fmt.Errorf("routing: replace %s with %s: %w", current, updated, ErrInvalidLayout)
		return b
	}
	b.replaced[current] = updated
	return b
}

// Apply replaces current with the result of a transition, recording the
// transition's error if it fails.
func (b *TableBuilder) Apply(current *Entry, transition func(*Entry) (*Entry, error)) *TableBuilder {
	if b.err != nil {
		return b
	}
	updated, err := transition(current)
	if err != nil {
		b.err = err
		return b
	}
	return b.Replace(current, updated)
}

// Build returns the new snapshot. Every group and entry is rebuilt, so the
// new snapshot shares no instances with the base.
func (b *TableBuilder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	names := make(map[string]*IndexTable, len(b.base.indices)+len(b.added))
	for name, idx := range b.base.indices {
		if _, gone := b.removed[name]; !gone {
			names[name] = idx
		}
	}
	maps.Copy(names, b.added)

	used := make(map[*Entry]struct{}, len(b.replaced))
	indices := make([]*IndexTable, 0, len(names))
	for _, name := range slices.Sorted(maps.Keys(names)) {
		idx, err := b.rebuildIndex(names[name], used)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	// every replaced entry must belong to the new snapshot's base
	for current := range b.replaced {
		if _, ok := used[current]; !ok {
			return nil, fmt.Errorf("routing: replace %s: entry is not part of the base snapshot: %w", current, ErrInvalidLayout)
		}
	}
	return NewTable(b.version, indices...)
}

func (b *TableBuilder) rebuildIndex(idx *IndexTable, used map[*Entry]struct{}) (*IndexTable, error) {
	groups := make([]*ShardGroup, len(idx.Shards()))
	for i, g := range idx.Shards() {
		entries := make([]*Entry, len(g.Entries()))
		for j, e := range g.Entries() {
			if updated, ok := b.replaced[e]; ok {
				used[e] = struct{}{}
				entries[j] = updated
			} else {
				entries[j] = e.clone()
			}
		}
		ng, err := NewShardGroup(g.ShardID(), entries)
		if err != nil {
			return nil, err
		}
		groups[i] = ng
	}
	return NewIndexTable(idx.Name(), groups)
}
