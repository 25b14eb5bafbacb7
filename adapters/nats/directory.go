package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/netconstructor/elasticsearch/core/routing"
	"github.com/netconstructor/elasticsearch/ports/directory"
)

const defaultNodesBucket = "routing_nodes"

type NodeDirectoryConfig struct {
	Connect Connector
	// Bucket defaults to "routing_nodes".
	Bucket string
	Log    *slog.Logger
}

// NodeDirectory stores node attributes in a JetStream KV bucket keyed by node
// id.
type NodeDirectory struct {
	kv  *KvStore[map[string]string]
	log *slog.Logger
}

func NewNodeDirectory(ctx context.Context, cfg NodeDirectoryConfig) (*NodeDirectory, error) {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultNodesBucket
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "node_directory"))

	kv, err := NewKvStore[map[string]string](ctx, KvConfig{
		Connect: cfg.Connect,
		Bucket:  bucket,
		Log:     log,
	})
	if err != nil {
		return nil, err
	}
	return &NodeDirectory{kv: kv, log: log}, nil
}

func (d *NodeDirectory) Close() { d.kv.Close() }

func (d *NodeDirectory) Nodes(ctx context.Context, localNodeID string) (*routing.Nodes, error) {
	keys, err := d.kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("nats: list nodes: %w", err)
	}
	nodes := make([]routing.Node, 0, len(keys))
	for _, id := range keys {
		attrs, err := d.kv.Get(ctx, id)
		if errors.Is(err, ErrKeyNotFound) {
			// deleted between list and get
			continue
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, routing.Node{ID: id, Attributes: attrs})
	}
	d.log.Debug("loaded nodes", slog.Int("count", len(nodes)))
	return routing.NewNodes(localNodeID, nodes...), nil
}

func (d *NodeDirectory) PutNode(ctx context.Context, node routing.Node) error {
	if node.ID == "" {
		return directory.ErrNodeIDRequired
	}
	attrs := node.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	if _, err := d.kv.Set(ctx, node.ID, attrs); err != nil {
		return fmt.Errorf("nats: put node %s: %w", node.ID, err)
	}
	d.log.Info("registered node", slog.String("node", node.ID), slog.Any("attributes", attrs))
	return nil
}

func (d *NodeDirectory) DeleteNode(ctx context.Context, nodeID string) error {
	if nodeID == "" {
		return directory.ErrNodeIDRequired
	}
	if err := d.kv.Delete(ctx, nodeID); err != nil {
		return fmt.Errorf("nats: delete node %s: %w", nodeID, err)
	}
	return nil
}

var _ directory.Directory = (*NodeDirectory)(nil)
