package routing

import (
	"maps"
	"slices"
)

// NodeDirectory resolves node attributes and identifies the local node. It is
// the only view of cluster membership the attribute-preference strategy needs.
type NodeDirectory interface {
	LocalNodeID() string
	// Attributes returns the attribute map of nodeID. The returned map must
	// not be modified.
	Attributes(nodeID string) (map[string]string, bool)
}

// Node is a cluster member and its attributes (e.g. rack_id, zone).
type Node struct {
	ID         string            `json:"id" yaml:"id"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Nodes is an immutable set of nodes plus the id of the local node.
type Nodes struct {
	localNodeID string
	nodes       map[string]Node
}

// NewNodes builds a node set. Attribute maps are copied.
func NewNodes(localNodeID string, nodes ...Node) *Nodes {
	n := &Nodes{localNodeID: localNodeID, nodes: make(map[string]Node, len(nodes))}
	for _, node := range nodes {
		n.nodes[node.ID] = Node{ID: node.ID, Attributes: maps.Clone(node.Attributes)}
	}
	return n
}

func (n *Nodes) LocalNodeID() string { return n.localNodeID }

func (n *Nodes) Attributes(nodeID string) (map[string]string, bool) {
	node, ok := n.nodes[nodeID]
	if !ok {
		return nil, false
	}
	return node.Attributes, true
}

func (n *Nodes) Node(nodeID string) (Node, bool) {
	node, ok := n.nodes[nodeID]
	return node, ok
}

// LocalNode returns the local node, if it is part of the set.
func (n *Nodes) LocalNode() (Node, bool) { return n.Node(n.localNodeID) }

func (n *Nodes) Len() int { return len(n.nodes) }

// IDs returns the node ids in sorted order.
func (n *Nodes) IDs() []string {
	return slices.Sorted(maps.Keys(n.nodes))
}

// WithLocalNodeID returns a copy of n with a different local node.
func (n *Nodes) WithLocalNodeID(localNodeID string) *Nodes {
	return &Nodes{localNodeID: localNodeID, nodes: n.nodes}
}

var _ NodeDirectory = (*Nodes)(nil)
