package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netconstructor/elasticsearch/core/routing"
)

const sampleYAML = `
local_node_id: node1
awareness_attributes: [rack_id]
nodes:
  - id: node1
    attributes: {rack_id: rack_1}
  - id: node2
    attributes: {rack_id: rack_2}
indices:
  - name: logs
    shards: 3
    replicas: 1
nats:
  snapshot_bucket: snaps
metrics_addr: ":9090"
preference_cache_size: 64
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "routing.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func noEnv(string) string { return "" }

func TestLoad_File(t *testing.T) {
	cfg, err := Load(Options{File: writeFile(t, sampleYAML), Getenv: noEnv})
	require.NoError(t, err)

	require.Equal(t, "node1", cfg.LocalNodeID)
	require.Equal(t, []string{"rack_id"}, cfg.AwarenessAttributes)
	require.Equal(t, []string{"node1", "node2"}, cfg.NodeIDs())
	require.Equal(t, "rack_2", cfg.Nodes[1].Attributes["rack_id"])
	require.Equal(t, []IndexConfig{{Name: "logs", Shards: 3, Replicas: 1}}, cfg.Indices)
	require.Equal(t, "snaps", cfg.Nats.SnapshotBucket)
	require.Equal(t, "routing_nodes", cfg.Nats.NodesBucket)
	require.False(t, cfg.Nats.Enabled())
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.Equal(t, 64, cfg.PreferenceCacheSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvLocalNodeID:         "node2",
		EnvAwarenessAttributes: " zone, rack_id ,,zone",
		EnvNatsURL:             "nats://nats:4222",
	}
	cfg, err := Load(Options{
		File:   writeFile(t, sampleYAML),
		Getenv: func(k string) string { return env[k] },
	})
	require.NoError(t, err)
	require.Equal(t, "node2", cfg.LocalNodeID)
	require.Equal(t, []string{"zone", "rack_id"}, cfg.AwarenessAttributes)
	require.True(t, cfg.Nats.Enabled())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{Getenv: noEnv})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(cfg.LocalNodeID, "node-"))
	require.Len(t, cfg.LocalNodeID, len("node-")+6)
	require.Equal(t, "routing_snapshots", cfg.Nats.SnapshotBucket)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "missing.yaml"), Getenv: noEnv})
	require.Error(t, err)

	_, err = Load(Options{File: writeFile(t, "indices: [oops"), Getenv: noEnv})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		LocalNodeID:         "node1",
		AwarenessAttributes: []string{""},
		Nodes:               []routing.Node{{ID: "node1"}, {ID: "node1"}, {}},
		Indices: []IndexConfig{
			{Name: "logs", Shards: 1},
			{Name: "logs", Shards: 0, Replicas: -1},
		},
	}
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{
		"awareness_attributes[0] is empty",
		`nodes[1]: duplicate id "node1"`,
		"nodes[2]: id is required",
		`indices[1]: duplicate name "logs"`,
		"indices[1]: shards must be positive",
		"indices[1]: replicas must not be negative",
	} {
		require.ErrorContains(t, err, want)
	}

	ok := Config{LocalNodeID: "node1", Indices: []IndexConfig{{Name: "logs", Shards: 2}}}
	require.NoError(t, ok.Validate())
}
