package plan

import (
	"fmt"
	"strconv"
)

// CompactProcessBinding emits environment directives that bind each
// process to subsequent domains of cpusPerTask cores.
//
// A few examples:
//   - Pure MPI (cpusPerTask = 1) binds 1 process to each core, compactly:
//     rank 0 to core 0, rank 1 to core 1, etc.
//   - Hybrid MPI-OpenMP with cpusPerTask = 4 binds rank 0 to cores 0-3,
//     rank 1 to cores 4-7, etc.
//
// It is hard to do this in a portable way. Currently supported:
//   - Intel MPI (through I_MPI_PIN_DOMAIN)
//   - OpenMPI (through OMPI_MCA_rmaps_base_mapping_policy)
//   - srun (LIMITED SUPPORT: through SLURM_CPU_BIND, only effective if the
//     task/affinity plugin is enabled)
//
// Other launchers may or may not do the correct binding.
func CompactProcessBinding(cpusPerTask int) EnvVars {
	return EnvVars{
		"I_MPI_PIN_DOMAIN":                   fmt.Sprintf("%d:compact", cpusPerTask),
		"OMPI_MCA_rmaps_base_mapping_policy": fmt.Sprintf("node:PE=%d", cpusPerTask),
		// Default binding for SLURM. Only effective if the task/affinity
		// plugin is enabled and when tasks times cpus per task equals
		// either socket, core or thread count.
		"SLURM_CPU_BIND": "q",
	}
}

// CompactThreadBinding emits environment directives for a sensible OpenMP
// thread binding.
//
// Thread binding is supported for:
//   - GNU OpenMP (through OMP_NUM_THREADS, OMP_PLACES and OMP_PROC_BIND)
//   - Intel OpenMP (through KMP_AFFINITY)
func CompactThreadBinding(cpusPerTask int) EnvVars {
	return EnvVars{
		"OMP_NUM_THREADS": strconv.Itoa(cpusPerTask),
		"OMP_PLACES":      "cores",
		"OMP_PROC_BIND":   "close",
		"KMP_AFFINITY":    "granularity=fine,compact,1,0",
	}
}
