// Package capacity discovers and serves per-partition hardware capacity
package capacity

import (
	"errors"
	"fmt"
	"sync"
)

// Feature tags advertised by partitions.
const (
	FeatureCPU = "cpu"
	FeatureGPU = "gpu"
)

// Capacity holds the discovered hardware capacity of one partition's nodes.
// A nil pointer field means the value could not be determined, which is
// distinct from an explicit zero.
type Capacity struct {
	NumCores          *int // Physical cores per node
	NumSockets        *int // CPU sockets per node
	MaxDevicesPerNode int  // Maximum usable accelerator devices per node
}

// Partition is a named, homogeneous pool of compute nodes.
type Partition struct {
	Name     string
	Features []string
	Capacity Capacity
}

// HasFeature reports whether the partition advertises the given feature tag.
func (p Partition) HasFeature(feature string) bool {
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// Provider supplies partition capacity information.
type Provider interface {
	// GetCapacity returns the capacity snapshot for a named partition.
	// Returns ErrUnknownPartition if the partition is not known.
	GetCapacity(partition string) (Capacity, error)

	// Partitions returns all known partitions.
	Partitions() ([]Partition, error)
}

// Common errors
var (
	// ErrUnknownPartition indicates the requested partition is not known to the provider
	ErrUnknownPartition = errors.New("unknown partition")

	// ErrNoProvider indicates no capacity provider has been configured
	ErrNoProvider = errors.New("no capacity provider configured")

	// ErrDiscoveryFailed indicates capacity discovery could not be performed
	ErrDiscoveryFailed = errors.New("capacity discovery failed")
)

var (
	activeProvider Provider
	providerMu     sync.RWMutex
)

// SetActiveProvider configures the provider instance that the application
// should use. Passing nil clears any previously configured provider.
func SetActiveProvider(p Provider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	activeProvider = p
}

// ActiveProvider returns the currently configured provider instance (may be nil).
func ActiveProvider() Provider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return activeProvider
}

// ClearActiveProvider resets the active provider reference.
func ClearActiveProvider() {
	SetActiveProvider(nil)
}

// Get returns the capacity for a partition from the active provider.
func Get(partition string) (Capacity, error) {
	p := ActiveProvider()
	if p == nil {
		return Capacity{}, ErrNoProvider
	}
	return p.GetCapacity(partition)
}

// intPtr is a small helper for building Capacity values.
func intPtr(n int) *int { return &n }

// String renders a capacity snapshot for debug output.
func (c Capacity) String() string {
	cores := "?"
	if c.NumCores != nil {
		cores = fmt.Sprintf("%d", *c.NumCores)
	}
	sockets := "?"
	if c.NumSockets != nil {
		sockets = fmt.Sprintf("%d", *c.NumSockets)
	}
	return fmt.Sprintf("cores=%s sockets=%s max_devices=%d", cores, sockets, c.MaxDevicesPerNode)
}
