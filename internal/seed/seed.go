// Package seed optionally pre-populates the Node Registry from a small YAML
// file at startup, for local/demo environments. Operator tooling proper is
// out of scope (spec §1); this is a minimal convenience, not a config
// management system.
package seed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/distcluster/coordinator/internal/cluster/node"
)

// File is the on-disk shape of a seed file.
type File struct {
	Nodes []NodeSeed `yaml:"nodes"`
}

// NodeSeed mirrors the /api/register payload so a seed file can pre-warm
// the registry without a worker needing to phone home first.
type NodeSeed struct {
	ID            string   `yaml:"node_id"`
	Address       string   `yaml:"address"`
	Capabilities  []string `yaml:"capabilities"`
	GPUEnabled    bool     `yaml:"gpu_enabled"`
	WorkerThreads int      `yaml:"worker_threads"`
	NodeType      string   `yaml:"node_type"`
}

// LoadFile parses a seed file from disk.
func LoadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply registers every node in the seed file against the registry, as if
// each had called POST /api/register at startup (spec §4.4: registration is
// idempotent on id, so this is safe to run before any real worker connects).
func Apply(f *File, registry *node.Registry, now time.Time) {
	for _, n := range f.Nodes {
		registry.Register(node.Registration{
			ID:            n.ID,
			Address:       n.Address,
			Capabilities:  n.Capabilities,
			GPUEnabled:    n.GPUEnabled,
			WorkerThreads: n.WorkerThreads,
			NodeType:      n.NodeType,
		}, now)
	}
}
