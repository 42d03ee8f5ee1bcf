package plan

import (
	"fmt"

	"github.com/smoors/test-suite/internal/capacity"
)

// ComputeUnit selects the granularity to which one task is bound.
type ComputeUnit int

const (
	UnitCPU ComputeUnit = iota
	UnitCPUSocket
	UnitGPU
)

// String returns the compute unit's canonical name.
func (u ComputeUnit) String() string {
	switch u {
	case UnitCPU:
		return "cpu"
	case UnitCPUSocket:
		return "cpu_socket"
	case UnitGPU:
		return "gpu"
	default:
		return fmt.Sprintf("compute_unit(%d)", int(u))
	}
}

// ParseComputeUnit parses a compute unit name.
func ParseComputeUnit(s string) (ComputeUnit, error) {
	switch s {
	case "cpu":
		return UnitCPU, nil
	case "cpu_socket", "socket":
		return UnitCPUSocket, nil
	case "gpu":
		return UnitGPU, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownComputeUnit, s)
	}
}

// Outcome reports the non-fatal result of a resolution. A request that
// cannot be satisfied by the partition's capacity is infeasible, not an
// error: the caller excludes the job and reports Reason to the user.
type Outcome struct {
	Infeasible bool
	Reason     string
}

func infeasible(format string, a ...interface{}) Outcome {
	return Outcome{Infeasible: true, Reason: fmt.Sprintf(format, a...)}
}

// Resolve assigns one task per compute unit, filling every unset field of
// req from the scale defaults it carries and the partition's capacity.
// User-set fields are never overwritten and never re-validated against
// capacity; only engine-derived defaults can make the request infeasible.
//
// On success every field of req holds a concrete positive value and
// NumTasks == NumNodes * NumTasksPerNode. On an infeasible outcome or a
// fatal error the request must be discarded.
func Resolve(unit ComputeUnit, cap capacity.Capacity, partition string, req *Request) (Outcome, error) {
	if cap.NumCores == nil {
		return Outcome{}, fmt.Errorf("%w: number of cores unknown for partition %s", ErrMissingCapacityInfo, partition)
	}
	maxAvailCpusPerNode := *cap.NumCores

	// Either node_part, or both per-node defaults, must be available.
	if !isSet(req.NodePart) && !(req.DefaultNumCpusPerNode != nil && req.DefaultNumGpusPerNode != nil) {
		return Outcome{}, fmt.Errorf(
			"%w: either node_part (%s), or default_num_cpus_per_node (%s) and default_num_gpus_per_node (%s) must be set",
			ErrInvalidRequest, optString(req.NodePart), optString(req.DefaultNumCpusPerNode), optString(req.DefaultNumGpusPerNode))
	}

	// Establish the default CPU demand per node. A pre-set default (e.g.
	// from a scale) is validated against capacity; a derived one cannot
	// exceed it by construction.
	if isSet(req.DefaultNumCpusPerNode) {
		if *req.DefaultNumCpusPerNode > maxAvailCpusPerNode {
			return infeasible(
				"Requested CPUs per node (%d) is higher than max available (%d) in current partition (%s)",
				*req.DefaultNumCpusPerNode, maxAvailCpusPerNode, partition), nil
		}
	} else {
		req.DefaultNumCpusPerNode = intPtr(maxAvailCpusPerNode / *req.NodePart)
	}

	switch unit {
	case UnitCPU:
		assignOneTaskPerCPU(req)
	case UnitCPUSocket:
		assignOneTaskPerCPUSocket(cap, req)
	case UnitGPU:
		outcome, err := assignOneTaskPerGPU(cap, partition, req)
		if err != nil || outcome.Infeasible {
			return outcome, err
		}
	default:
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownComputeUnit, unit)
	}

	if !isSet(req.NumNodes) {
		req.NumNodes = intPtr(1)
	}

	// The socket path makes no assignment when the socket count is
	// unknown; without it the layout cannot be completed.
	if !isSet(req.NumTasksPerNode) {
		return Outcome{}, fmt.Errorf("%w: number of sockets unknown for partition %s", ErrMissingCapacityInfo, partition)
	}
	if !isSet(req.NumCpusPerTask) {
		return Outcome{}, fmt.Errorf("%w: cannot derive cpus per task for partition %s", ErrMissingCapacityInfo, partition)
	}

	req.NumTasks = intPtr(*req.NumNodes * *req.NumTasksPerNode)

	return Outcome{}, nil
}

// assignOneTaskPerCPU runs one task per physical core unless overridden.
//
// Default resources requested:
//   - num_tasks_per_node = default_num_cpus_per_node
//   - num_cpus_per_task = 1
func assignOneTaskPerCPU(req *Request) {
	switch {
	case !isSet(req.NumTasksPerNode) && !isSet(req.NumCpusPerTask):
		req.NumTasksPerNode = copyInt(req.DefaultNumCpusPerNode)
		req.NumCpusPerTask = intPtr(1)

	case !isSet(req.NumTasksPerNode):
		req.NumTasksPerNode = intPtr(*req.DefaultNumCpusPerNode / *req.NumCpusPerTask)

	case !isSet(req.NumCpusPerTask):
		req.NumCpusPerTask = intPtr(*req.DefaultNumCpusPerNode / *req.NumTasksPerNode)

	default:
		// both already set
	}
}

// assignOneTaskPerCPUSocket runs one task per CPU socket unless
// overridden. When the socket count is unknown and nothing is set, no
// assignment is made; Resolve turns that into a missing-capacity error.
//
// Default resources requested:
//   - num_tasks_per_node = num_sockets
//   - num_cpus_per_task = default_num_cpus_per_node / num_tasks_per_node
func assignOneTaskPerCPUSocket(cap capacity.Capacity, req *Request) {
	switch {
	case !isSet(req.NumTasksPerNode) && !isSet(req.NumCpusPerTask):
		if cap.NumSockets != nil && *cap.NumSockets > 0 {
			req.NumTasksPerNode = copyInt(cap.NumSockets)
			req.NumCpusPerTask = intPtr(*req.DefaultNumCpusPerNode / *req.NumTasksPerNode)
		}

	case !isSet(req.NumTasksPerNode):
		req.NumTasksPerNode = intPtr(*req.DefaultNumCpusPerNode / *req.NumCpusPerTask)

	case !isSet(req.NumCpusPerTask):
		req.NumCpusPerTask = intPtr(*req.DefaultNumCpusPerNode / *req.NumTasksPerNode)

	default:
		// both already set
	}
}

// assignOneTaskPerGPU runs one task per GPU unless overridden.
//
// Default resources requested:
//   - num_gpus_per_node = default_num_gpus_per_node
//   - num_tasks_per_node = num_gpus_per_node
//   - num_cpus_per_task = default_num_cpus_per_node / num_tasks_per_node,
//     capped by the true cores-per-GPU ratio of the hardware
//
// When exactly one of num_tasks_per_node / num_gpus_per_node is set, the
// missing one mirrors the set one. Unlike the CPU paths, no division or
// clamping against the derived default happens in those branches.
func assignOneTaskPerGPU(cap capacity.Capacity, partition string, req *Request) (Outcome, error) {
	maxAvailGpusPerNode := cap.MaxDevicesPerNode
	if maxAvailGpusPerNode <= 0 {
		return Outcome{}, fmt.Errorf("%w: number of GPUs unknown for partition %s", ErrMissingCapacityInfo, partition)
	}

	// Establish the default GPU demand per node, analogous to the CPU
	// default but rounding up for fractional nodes.
	if isSet(req.DefaultNumGpusPerNode) {
		if *req.DefaultNumGpusPerNode > maxAvailGpusPerNode {
			return infeasible(
				"Requested GPUs per node (%d) is higher than max available (%d) in current partition (%s)",
				*req.DefaultNumGpusPerNode, maxAvailGpusPerNode, partition), nil
		}
	} else {
		req.DefaultNumGpusPerNode = intPtr(ceilDiv(maxAvailGpusPerNode, *req.NodePart))
	}

	switch {
	case !isSet(req.NumTasksPerNode) && !isSet(req.NumGpusPerNode):
		req.NumGpusPerNode = copyInt(req.DefaultNumGpusPerNode)
		req.NumTasksPerNode = copyInt(req.NumGpusPerNode)

	case !isSet(req.NumTasksPerNode):
		req.NumTasksPerNode = copyInt(req.NumGpusPerNode)

	case !isSet(req.NumGpusPerNode):
		req.NumGpusPerNode = copyInt(req.NumTasksPerNode)

	default:
		// both already set
	}

	if !isSet(req.NumCpusPerTask) {
		// Limit cpus per task to the hardware cores-per-GPU ratio, so a
		// fractional-node default cannot over-subscribe full-node runs.
		req.NumCpusPerTask = intPtr(minInt(
			*req.DefaultNumCpusPerNode / *req.NumTasksPerNode,
			*cap.NumCores/maxAvailGpusPerNode,
		))
	}

	return Outcome{}, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func optString(p *int) string {
	if p == nil {
		return "unset"
	}
	return fmt.Sprintf("%d", *p)
}
