// Package config loads the routing node configuration from a YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gopkg.in/yaml.v3"

	"github.com/netconstructor/elasticsearch/core/ds"
	"github.com/netconstructor/elasticsearch/core/routing"
)

// Environment variables that override file values.
const (
	EnvLocalNodeID         = "ROUTING_LOCAL_NODE_ID"
	EnvAwarenessAttributes = "ROUTING_AWARENESS_ATTRIBUTES"
	EnvNatsURL             = "NATS_URL"
)

var (
	ErrInvalid = errors.New("invalid config")
)

type IndexConfig struct {
	Name     string `yaml:"name"`
	Shards   int    `yaml:"shards"`
	Replicas int    `yaml:"replicas"`
}

type NatsConfig struct {
	URL            string `yaml:"url"`
	SnapshotBucket string `yaml:"snapshot_bucket"`
	NodesBucket    string `yaml:"nodes_bucket"`
}

// Enabled reports whether snapshots and nodes come from NATS.
func (c NatsConfig) Enabled() bool { return c.URL != "" }

type Config struct {
	LocalNodeID         string         `yaml:"local_node_id"`
	AwarenessAttributes []string       `yaml:"awareness_attributes"`
	Nodes               []routing.Node `yaml:"nodes"`
	Indices             []IndexConfig  `yaml:"indices"`
	Nats                NatsConfig     `yaml:"nats"`
	MetricsAddr         string         `yaml:"metrics_addr"`
	// PreferenceCacheSize bounds the preference order cache. 0 selects the
	// default, negative disables it.
	PreferenceCacheSize int `yaml:"preference_cache_size"`
}

type Options struct {
	// File is an optional YAML file.
	File string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Load reads File, applies environment overrides and defaults, and validates
// the result.
func Load(opts Options) (*Config, error) {
	var cfg Config

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.applyEnv(getenv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvLocalNodeID); v != "" {
		c.LocalNodeID = v
	}
	if v := getenv(EnvAwarenessAttributes); v != "" {
		c.AwarenessAttributes = splitList(v)
	}
	if v := getenv(EnvNatsURL); v != "" {
		c.Nats.URL = v
	}
}

func (c *Config) applyDefaults() {
	if c.LocalNodeID == "" {
		c.LocalNodeID = fmt.Sprintf("node-%s", gonanoid.Must(6))
	}
	if c.Nats.SnapshotBucket == "" {
		c.Nats.SnapshotBucket = "routing_snapshots"
	}
	if c.Nats.NodesBucket == "" {
		c.Nats.NodesBucket = "routing_nodes"
	}
}

// splitList splits a comma separated list, dropping blanks and duplicates.
func splitList(s string) []string {
	set := ds.NewSet[string]()
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set.Add(part)
		}
	}
	return set.Values()
}

// Validate checks the configuration for values the router cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.LocalNodeID == "" {
		errs = append(errs, errors.New("local_node_id is required"))
	}
	for i, attr := range c.AwarenessAttributes {
		if strings.TrimSpace(attr) == "" {
			errs = append(errs, fmt.Errorf("awareness_attributes[%d] is empty", i))
		}
	}

	nodeIDs := ds.NewSet[string]()
	for i, n := range c.Nodes {
		switch {
		case n.ID == "":
			errs = append(errs, fmt.Errorf("nodes[%d]: id is required", i))
		case !nodeIDs.Add(n.ID):
			errs = append(errs, fmt.Errorf("nodes[%d]: duplicate id %q", i, n.ID))
		}
	}

	names := ds.NewSet[string]()
	for i, idx := range c.Indices {
		switch {
		case idx.Name == "":
			errs = append(errs, fmt.Errorf("indices[%d]: name is required", i))
		case !names.Add(idx.Name):
			errs = append(errs, fmt.Errorf("indices[%d]: duplicate name %q", i, idx.Name))
		}
		if idx.Shards <= 0 {
			errs = append(errs, fmt.Errorf("indices[%d]: shards must be positive, got %d", i, idx.Shards))
		}
		if idx.Replicas < 0 {
			errs = append(errs, fmt.Errorf("indices[%d]: replicas must not be negative, got %d", i, idx.Replicas))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// NodeIDs returns the ids of the statically configured nodes.
func (c *Config) NodeIDs() []string {
	ids := make([]string, len(c.Nodes))
	for i, n := range c.Nodes {
		ids[i] = n.ID
	}
	return ids
}
