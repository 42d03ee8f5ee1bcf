// Package plan derives concrete parallel-job resource layouts from an
// abstract scale and a partition's discovered hardware capacity.
package plan

import (
	"github.com/smoors/test-suite/internal/catalog"
)

// EnvVars is the key-value sink for process/thread binding directives.
// The job-launch layer consumes it verbatim as process environment.
type EnvVars map[string]string

// Merge copies all entries of other into e, overwriting existing keys.
func (e EnvVars) Merge(other EnvVars) {
	for k, v := range other {
		e[k] = v
	}
}

// Request is a mutable resource request, built incrementally. Fields are
// optional integers: nil (or zero) means "not yet decided by user or
// engine". Each request must be exclusively owned by the resolution that
// fills it; resolved values are never shared across jobs.
type Request struct {
	NumNodes        *int
	NumTasksPerNode *int
	NumCpusPerTask  *int
	NumGpusPerNode  *int
	NumTasks        *int

	// Defaults established by a scale or derived from capacity; these are
	// engine inputs, not user overrides.
	DefaultNumCpusPerNode *int
	DefaultNumGpusPerNode *int

	// NodePart divides a node's capacity for fractional-node scales
	// (2 = use half a node).
	NodePart *int
}

// ApplyScale populates the request's node count and per-node defaults
// from a scale profile. User overrides already present are kept; only the
// scale-owned fields are (re)set.
func (r *Request) ApplyScale(s catalog.Scale) {
	n := s.NumNodes
	r.NumNodes = &n
	r.DefaultNumCpusPerNode = copyInt(s.NumCpusPerNode)
	r.DefaultNumGpusPerNode = copyInt(s.NumGpusPerNode)
	r.NodePart = copyInt(s.NodePart)
}

// isSet reports whether an optional field carries a usable value.
// Zero is treated the same as absent, matching the override convention
// that only positive counts are meaningful.
func isSet(p *int) bool {
	return p != nil && *p > 0
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	n := *p
	return &n
}

func intPtr(n int) *int { return &n }
