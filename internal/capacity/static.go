package capacity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// staticFile is the on-disk schema of a partition capacity file.
type staticFile struct {
	Partitions []staticPartition `yaml:"partitions"`
}

type staticPartition struct {
	Name              string   `yaml:"name"`
	Features          []string `yaml:"features"`
	NumCores          *int     `yaml:"num_cores"`
	NumSockets        *int     `yaml:"num_sockets"`
	MaxDevicesPerNode int      `yaml:"max_devices_per_node"`
}

// StaticProvider serves capacity from a site-maintained YAML file.
// Missing num_cores/num_sockets entries stay unknown rather than zero.
type StaticProvider struct {
	partitions []Partition
	byName     map[string]Partition
}

// NewStaticProvider loads a partition capacity file.
//
// File format:
//
//	partitions:
//	  - name: cpu_rome
//	    features: [cpu]
//	    num_cores: 128
//	    num_sockets: 2
//	  - name: gpu_a100
//	    features: [cpu, gpu]
//	    num_cores: 48
//	    max_devices_per_node: 4
func NewStaticProvider(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscoveryFailed, err)
	}
	return parseStaticFile(data)
}

func parseStaticFile(data []byte) (*StaticProvider, error) {
	var file staticFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: invalid partitions file: %v", ErrDiscoveryFailed, err)
	}

	provider := &StaticProvider{
		partitions: make([]Partition, 0, len(file.Partitions)),
		byName:     make(map[string]Partition),
	}

	for _, entry := range file.Partitions {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: partition entry without a name", ErrDiscoveryFailed)
		}
		features := entry.Features
		if len(features) == 0 {
			// A partition with no explicit tags is assumed to be CPU-capable
			features = []string{FeatureCPU}
		}
		part := Partition{
			Name:     entry.Name,
			Features: features,
			Capacity: Capacity{
				NumCores:          entry.NumCores,
				NumSockets:        entry.NumSockets,
				MaxDevicesPerNode: entry.MaxDevicesPerNode,
			},
		}
		provider.partitions = append(provider.partitions, part)
		provider.byName[part.Name] = part
	}

	return provider, nil
}

// GetCapacity returns the capacity snapshot for a named partition.
func (s *StaticProvider) GetCapacity(partition string) (Capacity, error) {
	part, ok := s.byName[partition]
	if !ok {
		return Capacity{}, fmt.Errorf("%w: %s", ErrUnknownPartition, partition)
	}
	return part.Capacity, nil
}

// Partitions returns all partitions declared in the file, in file order.
func (s *StaticProvider) Partitions() ([]Partition, error) {
	return s.partitions, nil
}
