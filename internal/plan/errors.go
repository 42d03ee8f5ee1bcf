package plan

import "errors"

// Fatal resolution errors. These indicate unrecoverable configuration
// problems and propagate to the caller unmodified; capacity shortfalls are
// not errors and are reported through Outcome instead.
var (
	// ErrMissingCapacityInfo indicates hardware capacity for the target
	// partition could not be determined
	ErrMissingCapacityInfo = errors.New("partition capacity information missing")

	// ErrInvalidRequest indicates the request carries neither a node
	// partition divisor nor both per-node defaults
	ErrInvalidRequest = errors.New("invalid resource request configuration")

	// ErrUnknownComputeUnit indicates an unrecognized compute unit was requested
	ErrUnknownComputeUnit = errors.New("unknown compute unit")
)

// CapacityInfoHelp explains how to fix a missing-capacity condition. The
// cmd layer prints it as a hint alongside ErrMissingCapacityInfo.
const CapacityInfoHelp = `Resolution requires the number of CPU cores per node for the target
partition. Check that capacity is either autodetected (sinfo must be
available) or set manually in the partitions file (num_cores per
partition entry).`
