package directory

import (
	"context"
	"maps"
	"sync"

	"github.com/netconstructor/elasticsearch/core/routing"
)

type MemDirectory struct {
	mu    sync.RWMutex
	nodes map[string]routing.Node
}

func NewMemDirectory(nodes ...routing.Node) *MemDirectory {
	d := &MemDirectory{nodes: map[string]routing.Node{}}
	for _, n := range nodes {
		d.nodes[n.ID] = routing.Node{ID: n.ID, Attributes: maps.Clone(n.Attributes)}
	}
	return d
}

func (m *MemDirectory) Nodes(_ context.Context, localNodeID string) (*routing.Nodes, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]routing.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		list = append(list, n)
	}
	return routing.NewNodes(localNodeID, list...), nil
}

func (m *MemDirectory) PutNode(_ context.Context, node routing.Node) error {
	if node.ID == "" {
		return ErrNodeIDRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[node.ID] = routing.Node{ID: node.ID, Attributes: maps.Clone(node.Attributes)}
	return nil
}

func (m *MemDirectory) DeleteNode(_ context.Context, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, nodeID)
	return nil
}

var _ Directory = (*MemDirectory)(nil)
