// Package catalog provides the named scale profiles that describe target job sizes
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scale describes a target job size. NumCpusPerNode, NumGpusPerNode and
// NodePart are optional; a nil pointer means the scale does not constrain
// that value.
type Scale struct {
	Name           string
	NumNodes       int
	NumCpusPerNode *int // Default CPU demand per node
	NumGpusPerNode *int // Default GPU demand per node
	NodePart       *int // Node partition divisor (1 = whole node)
}

// ErrUnknownScale indicates the requested scale name is not registered
var ErrUnknownScale = errors.New("unknown scale")

func intPtr(n int) *int { return &n }

// builtin is the default scale catalog, from single-core smoke runs up to
// 16-node production sizes. The 1_2_node/1_4_node/1_8_node entries request
// a fraction of a node via the node partition divisor.
var builtin = map[string]Scale{
	"1_core":        {Name: "1_core", NumNodes: 1, NumCpusPerNode: intPtr(1), NumGpusPerNode: intPtr(1)},
	"2_cores":       {Name: "2_cores", NumNodes: 1, NumCpusPerNode: intPtr(2), NumGpusPerNode: intPtr(1)},
	"4_cores":       {Name: "4_cores", NumNodes: 1, NumCpusPerNode: intPtr(4), NumGpusPerNode: intPtr(1)},
	"1_cpn_2_nodes": {Name: "1_cpn_2_nodes", NumNodes: 2, NumCpusPerNode: intPtr(1), NumGpusPerNode: intPtr(1)},
	"1_cpn_4_nodes": {Name: "1_cpn_4_nodes", NumNodes: 4, NumCpusPerNode: intPtr(1), NumGpusPerNode: intPtr(1)},
	"1_8_node":      {Name: "1_8_node", NumNodes: 1, NodePart: intPtr(8)},
	"1_4_node":      {Name: "1_4_node", NumNodes: 1, NodePart: intPtr(4)},
	"1_2_node":      {Name: "1_2_node", NumNodes: 1, NodePart: intPtr(2)},
	"1_node":        {Name: "1_node", NumNodes: 1, NodePart: intPtr(1)},
	"2_nodes":       {Name: "2_nodes", NumNodes: 2, NodePart: intPtr(1)},
	"4_nodes":       {Name: "4_nodes", NumNodes: 4, NodePart: intPtr(1)},
	"8_nodes":       {Name: "8_nodes", NumNodes: 8, NodePart: intPtr(1)},
	"16_nodes":      {Name: "16_nodes", NumNodes: 16, NodePart: intPtr(1)},
}

// Catalog maps scale names to profiles. The zero value is unusable; use
// Builtin or Load.
type Catalog struct {
	scales map[string]Scale
}

// Builtin returns a catalog holding only the built-in scales.
func Builtin() *Catalog {
	scales := make(map[string]Scale, len(builtin))
	for name, scale := range builtin {
		scales[name] = scale
	}
	return &Catalog{scales: scales}
}

// Lookup returns the scale registered under name.
// Returns ErrUnknownScale if name is not registered.
func (c *Catalog) Lookup(name string) (Scale, error) {
	scale, ok := c.scales[name]
	if !ok {
		return Scale{}, fmt.Errorf("%w: %s", ErrUnknownScale, name)
	}
	return scale, nil
}

// Names returns all registered scale names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.scales))
	for name := range c.scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fileScale is the on-disk schema of a site scale file entry.
type fileScale struct {
	NumNodes       int  `yaml:"num_nodes"`
	NumCpusPerNode *int `yaml:"num_cpus_per_node"`
	NumGpusPerNode *int `yaml:"num_gpus_per_node"`
	NodePart       *int `yaml:"node_part"`
}

// LoadFile merges site-specific scales from a YAML file over the catalog.
// Entries with an existing name replace the built-in definition.
//
// File format:
//
//	half_node:
//	  num_nodes: 1
//	  node_part: 2
//	big:
//	  num_nodes: 32
//	  node_part: 1
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read scales file: %w", err)
	}

	var entries map[string]fileScale
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("invalid scales file: %w", err)
	}

	for name, entry := range entries {
		if entry.NumNodes < 1 {
			return fmt.Errorf("scale %s: num_nodes must be at least 1 (got %d)", name, entry.NumNodes)
		}
		if entry.NodePart != nil && *entry.NodePart < 1 {
			return fmt.Errorf("scale %s: node_part must be at least 1 (got %d)", name, *entry.NodePart)
		}
		c.scales[name] = Scale{
			Name:           name,
			NumNodes:       entry.NumNodes,
			NumCpusPerNode: entry.NumCpusPerNode,
			NumGpusPerNode: entry.NumGpusPerNode,
			NodePart:       entry.NodePart,
		}
	}

	return nil
}
