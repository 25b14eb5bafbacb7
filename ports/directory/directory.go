// Package directory is the port through which node attributes reach the
// router. Implementations live here (memory) and in adapters (NATS).
package directory

import (
	"context"
	"errors"

	"github.com/netconstructor/elasticsearch/core/routing"
)

var (
	ErrNodeIDRequired = errors.New("node id is required")
)

type Directory interface {
	// Nodes returns an immutable view of all registered nodes, with
	// localNodeID marked as the local one.
	Nodes(ctx context.Context, localNodeID string) (*routing.Nodes, error)
	PutNode(ctx context.Context, node routing.Node) error
	DeleteNode(ctx context.Context, nodeID string) error
}

// Load fetches the nodes from dir and hands them to the router.
func Load(ctx context.Context, dir Directory, localNodeID string, r *routing.Router) error {
	nodes, err := dir.Nodes(ctx, localNodeID)
	if err != nil {
		return err
	}
	r.SetNodes(nodes)
	return nil
}
