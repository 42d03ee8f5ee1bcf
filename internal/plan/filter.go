package plan

import (
	"fmt"
	"strings"

	"github.com/smoors/test-suite/internal/capacity"
	"github.com/smoors/test-suite/internal/module"
)

// DeviceType is the device a job wants its tasks to run on.
type DeviceType int

const (
	DeviceCPU DeviceType = iota
	DeviceGPU
)

// String returns the device type's canonical name.
func (d DeviceType) String() string {
	switch d {
	case DeviceCPU:
		return "cpu"
	case DeviceGPU:
		return "gpu"
	default:
		return fmt.Sprintf("device(%d)", int(d))
	}
}

// ParseDeviceType parses a device type name.
func ParseDeviceType(s string) (DeviceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return DeviceCPU, nil
	case "gpu":
		return DeviceGPU, nil
	default:
		return 0, fmt.Errorf("unknown device type: %s", s)
	}
}

// ValidSystems narrows the partition constraints for a job based on the
// required device type and whether the module needs GPU acceleration.
// If the caller already constrained candidates explicitly, the filter is
// a no-op. A GPU request against a module without GPU support yields no
// constraints at all: that combination can never run, and the resulting
// empty candidate set is a skip, not an error.
//
// Constraints use "+feature" for required partition features; any other
// entry names a partition directly.
func ValidSystems(required DeviceType, mod module.Descriptor, current []string) []string {
	if len(current) > 0 {
		return current
	}

	switch {
	case mod.RequiresDeviceAcceleration && required == DeviceGPU:
		// GPU-accelerated modules on a GPU need partitions with the gpu feature
		return []string{"+" + capacity.FeatureGPU}

	case required == DeviceCPU:
		// Making cpu an explicit feature allows e.g. skipping CPU runs on GPU partitions
		return []string{"+" + capacity.FeatureCPU}
	}

	// A module without GPU support cannot use a GPU
	return nil
}

// EligiblePartitions returns the partitions satisfying all constraints.
// "+feature" entries must all be advertised by a partition; plain entries
// select partitions by name (any one may match). Empty constraints yield
// an empty result.
func EligiblePartitions(partitions []capacity.Partition, constraints []string) []capacity.Partition {
	if len(constraints) == 0 {
		return nil
	}

	features := make([]string, 0, len(constraints))
	names := make(map[string]bool)
	for _, c := range constraints {
		if strings.HasPrefix(c, "+") {
			features = append(features, strings.TrimPrefix(c, "+"))
		} else {
			names[c] = true
		}
	}

	eligible := make([]capacity.Partition, 0, len(partitions))
	for _, part := range partitions {
		if len(names) > 0 && !names[part.Name] {
			continue
		}
		ok := true
		for _, f := range features {
			if !part.HasFeature(f) {
				ok = false
				break
			}
		}
		if ok {
			eligible = append(eligible, part)
		}
	}
	return eligible
}
