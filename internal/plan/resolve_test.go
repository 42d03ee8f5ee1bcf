package plan

import (
	"errors"
	"strings"
	"testing"

	"github.com/smoors/test-suite/internal/capacity"
)

// cap16x2 is a 16-core dual-socket node class without GPUs.
func cap16x2() capacity.Capacity {
	return capacity.Capacity{
		NumCores:   intPtr(16),
		NumSockets: intPtr(2),
	}
}

// cap16x2g4 is a 16-core dual-socket node class with 4 GPUs.
func cap16x2g4() capacity.Capacity {
	c := cap16x2()
	c.MaxDevicesPerNode = 4
	return c
}

func checkField(t *testing.T, name string, got *int, want int) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil; want %d", name, want)
	}
	if *got != want {
		t.Errorf("%s = %d; want %d", name, *got, want)
	}
}

func TestResolveCPU(t *testing.T) {
	tests := []struct {
		name             string
		nodePart         int
		tasksPerNode     int // 0 = unset
		cpusPerTask      int // 0 = unset
		wantTasksPerNode int
		wantCpusPerTask  int
	}{
		{"no overrides", 1, 0, 0, 16, 1},
		{"half node", 2, 0, 0, 8, 1},
		{"quarter node", 4, 0, 0, 4, 1},
		{"only cpus per task set", 1, 0, 4, 4, 4},
		{"only tasks per node set", 1, 4, 0, 4, 4},
		{"both set", 1, 2, 3, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{NodePart: intPtr(tt.nodePart)}
			if tt.tasksPerNode > 0 {
				req.NumTasksPerNode = intPtr(tt.tasksPerNode)
			}
			if tt.cpusPerTask > 0 {
				req.NumCpusPerTask = intPtr(tt.cpusPerTask)
			}

			outcome, err := Resolve(UnitCPU, cap16x2(), "cpu_part", req)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if outcome.Infeasible {
				t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
			}

			checkField(t, "NumTasksPerNode", req.NumTasksPerNode, tt.wantTasksPerNode)
			checkField(t, "NumCpusPerTask", req.NumCpusPerTask, tt.wantCpusPerTask)
			checkField(t, "NumNodes", req.NumNodes, 1)
			checkField(t, "NumTasks", req.NumTasks, tt.wantTasksPerNode)
		})
	}
}

func TestResolveCPUSocket(t *testing.T) {
	req := &Request{NodePart: intPtr(1)}

	outcome, err := Resolve(UnitCPUSocket, cap16x2(), "cpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.Infeasible {
		t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
	}

	checkField(t, "NumTasksPerNode", req.NumTasksPerNode, 2)
	checkField(t, "NumCpusPerTask", req.NumCpusPerTask, 8)
	checkField(t, "NumTasks", req.NumTasks, 2)
}

func TestResolveCPUSocketUnknownSockets(t *testing.T) {
	// Without a socket count and without overrides, no assignment can be
	// made and the layout cannot be completed.
	c := capacity.Capacity{NumCores: intPtr(16)}
	req := &Request{NodePart: intPtr(1)}

	_, err := Resolve(UnitCPUSocket, c, "cpu_part", req)
	if !errors.Is(err, ErrMissingCapacityInfo) {
		t.Fatalf("Resolve() error = %v; want ErrMissingCapacityInfo", err)
	}
}

func TestResolveCPUSocketUnknownSocketsWithOverride(t *testing.T) {
	// A user-set tasks-per-node makes the socket count irrelevant.
	c := capacity.Capacity{NumCores: intPtr(16)}
	req := &Request{NodePart: intPtr(1), NumTasksPerNode: intPtr(4)}

	outcome, err := Resolve(UnitCPUSocket, c, "cpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.Infeasible {
		t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
	}
	checkField(t, "NumCpusPerTask", req.NumCpusPerTask, 4)
}

func TestResolveGPU(t *testing.T) {
	req := &Request{NodePart: intPtr(1)}

	outcome, err := Resolve(UnitGPU, cap16x2g4(), "gpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.Infeasible {
		t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
	}

	checkField(t, "NumGpusPerNode", req.NumGpusPerNode, 4)
	checkField(t, "NumTasksPerNode", req.NumTasksPerNode, 4)
	checkField(t, "NumCpusPerTask", req.NumCpusPerTask, 4)
	checkField(t, "NumTasks", req.NumTasks, 4)
}

func TestResolveGPUFractionalNode(t *testing.T) {
	// ceil rounding for the GPU default: half of 4 GPUs is 2, half of an
	// odd count rounds up.
	tests := []struct {
		name     string
		gpus     int
		nodePart int
		wantGpus int
	}{
		{"half of four", 4, 2, 2},
		{"half of three rounds up", 3, 2, 2},
		{"quarter of four", 4, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := capacity.Capacity{NumCores: intPtr(16), MaxDevicesPerNode: tt.gpus}
			req := &Request{NodePart: intPtr(tt.nodePart)}

			outcome, err := Resolve(UnitGPU, c, "gpu_part", req)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if outcome.Infeasible {
				t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
			}
			checkField(t, "NumGpusPerNode", req.NumGpusPerNode, tt.wantGpus)
		})
	}
}

func TestResolveGPUCpusPerTaskCappedByHardwareRatio(t *testing.T) {
	// 64 cores, 8 GPUs: a user running only 2 tasks per node must not get
	// more than the true 8 cores-per-GPU share, even though dividing the
	// full-node CPU default by 2 tasks would allow 32.
	c := capacity.Capacity{NumCores: intPtr(64), MaxDevicesPerNode: 8}
	req := &Request{NodePart: intPtr(1), NumTasksPerNode: intPtr(2)}

	outcome, err := Resolve(UnitGPU, c, "gpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.Infeasible {
		t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
	}

	checkField(t, "NumCpusPerTask", req.NumCpusPerTask, 8)
}

func TestResolveGPUMirrorsTasksIntoGpus(t *testing.T) {
	// When only tasks-per-node is set, the GPU count mirrors it instead of
	// dividing a CPU budget the way the cpu/cpu_socket paths do - and the
	// mirrored value is not clamped to the derived per-node default.
	c := capacity.Capacity{NumCores: intPtr(64), MaxDevicesPerNode: 8}
	req := &Request{NodePart: intPtr(8), NumTasksPerNode: intPtr(2)}

	outcome, err := Resolve(UnitGPU, c, "gpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.Infeasible {
		t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
	}

	// Derived default is ceil(8/8) = 1, but the mirror wins.
	checkField(t, "NumGpusPerNode", req.NumGpusPerNode, 2)
}

func TestResolveGPUMirrorsGpusIntoTasks(t *testing.T) {
	c := cap16x2g4()
	req := &Request{NodePart: intPtr(1), NumGpusPerNode: intPtr(2)}

	outcome, err := Resolve(UnitGPU, c, "gpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.Infeasible {
		t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
	}

	checkField(t, "NumTasksPerNode", req.NumTasksPerNode, 2)
	// 16 cores / 2 tasks = 8, capped by 16 cores / 4 GPUs = 4.
	checkField(t, "NumCpusPerTask", req.NumCpusPerTask, 4)
}

func TestResolveInfeasibleCpuDefault(t *testing.T) {
	// A pre-set CPU default above capacity is a reportable skip carrying
	// both the requested and the available count, never a fatal error.
	req := &Request{
		NodePart:              intPtr(1),
		DefaultNumCpusPerNode: intPtr(32),
	}

	outcome, err := Resolve(UnitCPU, cap16x2(), "cpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v; want infeasible outcome", err)
	}
	if !outcome.Infeasible {
		t.Fatal("Resolve() outcome not infeasible")
	}
	if !strings.Contains(outcome.Reason, "32") || !strings.Contains(outcome.Reason, "16") {
		t.Errorf("Reason = %q; want requested (32) and available (16) counts", outcome.Reason)
	}
	if !strings.Contains(outcome.Reason, "cpu_part") {
		t.Errorf("Reason = %q; want partition name", outcome.Reason)
	}
}

func TestResolveInfeasibleGpuDefault(t *testing.T) {
	req := &Request{
		NodePart:              intPtr(1),
		DefaultNumGpusPerNode: intPtr(8),
	}

	outcome, err := Resolve(UnitGPU, cap16x2g4(), "gpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v; want infeasible outcome", err)
	}
	if !outcome.Infeasible {
		t.Fatal("Resolve() outcome not infeasible")
	}
	if !strings.Contains(outcome.Reason, "8") || !strings.Contains(outcome.Reason, "4") {
		t.Errorf("Reason = %q; want requested (8) and available (4) counts", outcome.Reason)
	}
}

func TestResolveIdempotentWhenFullySet(t *testing.T) {
	// A request with every field user-supplied comes back unchanged except
	// for the computed task total.
	req := &Request{
		NodePart:        intPtr(1),
		NumNodes:        intPtr(3),
		NumTasksPerNode: intPtr(4),
		NumCpusPerTask:  intPtr(2),
		NumGpusPerNode:  intPtr(1),
	}

	outcome, err := Resolve(UnitCPU, cap16x2(), "cpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.Infeasible {
		t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
	}

	checkField(t, "NumNodes", req.NumNodes, 3)
	checkField(t, "NumTasksPerNode", req.NumTasksPerNode, 4)
	checkField(t, "NumCpusPerTask", req.NumCpusPerTask, 2)
	checkField(t, "NumGpusPerNode", req.NumGpusPerNode, 1)
	checkField(t, "NumTasks", req.NumTasks, 12)
}

func TestResolveTaskTotalInvariant(t *testing.T) {
	tests := []struct {
		name     string
		unit     ComputeUnit
		numNodes int
	}{
		{"cpu two nodes", UnitCPU, 2},
		{"cpu socket four nodes", UnitCPUSocket, 4},
		{"gpu eight nodes", UnitGPU, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{NodePart: intPtr(1), NumNodes: intPtr(tt.numNodes)}

			outcome, err := Resolve(tt.unit, cap16x2g4(), "part", req)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if outcome.Infeasible {
				t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
			}

			want := *req.NumNodes * *req.NumTasksPerNode
			checkField(t, "NumTasks", req.NumTasks, want)
		})
	}
}

func TestResolveUserOverridesNotRevalidated(t *testing.T) {
	// Explicitly set values are trusted even when they exceed capacity;
	// only engine-derived defaults can mark the request infeasible.
	req := &Request{
		NodePart:        intPtr(1),
		NumTasksPerNode: intPtr(64),
		NumCpusPerTask:  intPtr(4),
	}

	outcome, err := Resolve(UnitCPU, cap16x2(), "cpu_part", req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.Infeasible {
		t.Fatalf("Resolve() infeasible: %s", outcome.Reason)
	}
	checkField(t, "NumTasksPerNode", req.NumTasksPerNode, 64)
}

func TestResolveFatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		unit    ComputeUnit
		cap     capacity.Capacity
		req     *Request
		wantErr error
	}{
		{
			name:    "unknown core count",
			unit:    UnitCPU,
			cap:     capacity.Capacity{NumSockets: intPtr(2)},
			req:     &Request{NodePart: intPtr(1)},
			wantErr: ErrMissingCapacityInfo,
		},
		{
			name:    "neither node part nor defaults",
			unit:    UnitCPU,
			cap:     cap16x2(),
			req:     &Request{},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unknown compute unit",
			unit:    ComputeUnit(99),
			cap:     cap16x2(),
			req:     &Request{NodePart: intPtr(1)},
			wantErr: ErrUnknownComputeUnit,
		},
		{
			name:    "gpu unit without gpus",
			unit:    UnitGPU,
			cap:     cap16x2(),
			req:     &Request{NodePart: intPtr(1)},
			wantErr: ErrMissingCapacityInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.unit, tt.cap, "part", tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}
