package capacity

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// SlurmProvider discovers partition capacity by querying sinfo.
// Discovery runs once up front; the resulting snapshot is immutable and
// safe to share across resolutions.
type SlurmProvider struct {
	sinfoCommand string
	partitions   []Partition
	byName       map[string]Partition
}

// NewSlurmProvider creates a provider using the given sinfo binary and
// performs discovery immediately. An empty binary path falls back to PATH
// lookup.
func NewSlurmProvider(sinfoBin string) (*SlurmProvider, error) {
	if sinfoBin == "" {
		path, err := exec.LookPath("sinfo")
		if err != nil {
			return nil, fmt.Errorf("%w: sinfo not found in PATH", ErrDiscoveryFailed)
		}
		sinfoBin = path
	}

	s := &SlurmProvider{sinfoCommand: sinfoBin}
	if err := s.discover(); err != nil {
		return nil, err
	}
	return s, nil
}

// discover queries sinfo for partition, CPUs, sockets and GRES:
// %R = partition, %c = CPUs per node, %X = sockets per node, %G = gres
func (s *SlurmProvider) discover() error {
	cmd := exec.Command(s.sinfoCommand, "-o", "%R|%c|%X|%G", "--noheader")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: sinfo: %v", ErrDiscoveryFailed, err)
	}

	s.partitions = parseSinfoOutput(string(output))
	s.byName = make(map[string]Partition, len(s.partitions))
	for _, part := range s.partitions {
		s.byName[part.Name] = part
	}
	return nil
}

// parseSinfoOutput parses "partition|cpus|sockets|gres" lines into
// partitions. Node classes of the same partition are merged by keeping the
// largest per-node values.
func parseSinfoOutput(output string) []Partition {
	byName := make(map[string]*Partition)
	order := []string{}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	for _, line := range lines {
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}

		name := strings.TrimSpace(strings.TrimSuffix(parts[0], "*"))
		if name == "" {
			continue
		}

		cpus := parseSinfoCount(parts[1])
		sockets := parseSinfoCount(parts[2])
		gpus := parseGresGpuCount(parts[3])

		part, ok := byName[name]
		if !ok {
			part = &Partition{Name: name, Features: []string{FeatureCPU}}
			byName[name] = part
			order = append(order, name)
		}

		if cpus != nil && (part.Capacity.NumCores == nil || *cpus > *part.Capacity.NumCores) {
			part.Capacity.NumCores = cpus
		}
		if sockets != nil && (part.Capacity.NumSockets == nil || *sockets > *part.Capacity.NumSockets) {
			part.Capacity.NumSockets = sockets
		}
		if gpus > part.Capacity.MaxDevicesPerNode {
			part.Capacity.MaxDevicesPerNode = gpus
		}
	}

	result := make([]Partition, 0, len(order))
	for _, name := range order {
		part := byName[name]
		if part.Capacity.MaxDevicesPerNode > 0 && !part.HasFeature(FeatureGPU) {
			part.Features = append(part.Features, FeatureGPU)
		}
		result = append(result, *part)
	}
	return result
}

// parseSinfoCount parses a numeric sinfo column. Values may carry a "+"
// suffix for heterogeneous node sets (e.g. "16+"); the base value is used.
// Returns nil for missing or non-numeric values.
func parseSinfoCount(field string) *int {
	field = strings.TrimSpace(field)
	field = strings.TrimSuffix(field, "+")
	if field == "" || field == "(null)" {
		return nil
	}
	n, err := strconv.Atoi(field)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// parseGresGpuCount sums GPU counts from a gres column.
// Example: gpu:a100:4(S:0-3),gpu:a100_1g.5gb:8
func parseGresGpuCount(field string) int {
	field = strings.TrimSpace(field)
	if field == "" || field == "(null)" {
		return 0
	}

	total := 0
	for _, entry := range strings.Split(field, ",") {
		if !strings.HasPrefix(entry, "gpu:") && !strings.HasPrefix(entry, "gpu(") {
			continue
		}

		entry = strings.TrimPrefix(entry, "gpu:")
		entry = strings.TrimPrefix(entry, "gpu(")

		// Remove socket information like (S:0-3)
		if idx := strings.Index(entry, "("); idx > 0 {
			entry = entry[:idx]
		}
		entry = strings.TrimSuffix(entry, ")")

		count := 0
		if strings.Contains(entry, ":") {
			entryParts := strings.Split(entry, ":")
			// The last part should be the count
			fmt.Sscanf(entryParts[len(entryParts)-1], "%d", &count)
		} else {
			fmt.Sscanf(entry, "%d", &count)
		}
		total += count
	}
	return total
}

// GetCapacity returns the capacity snapshot for a named partition.
func (s *SlurmProvider) GetCapacity(partition string) (Capacity, error) {
	part, ok := s.byName[partition]
	if !ok {
		return Capacity{}, fmt.Errorf("%w: %s", ErrUnknownPartition, partition)
	}
	return part.Capacity, nil
}

// Partitions returns all discovered partitions in sinfo order.
func (s *SlurmProvider) Partitions() ([]Partition, error) {
	return s.partitions, nil
}
