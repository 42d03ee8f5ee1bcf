package cmd

import (
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/smoors/test-suite/internal/capacity"
	"github.com/smoors/test-suite/internal/catalog"
	"github.com/smoors/test-suite/internal/config"
	"github.com/smoors/test-suite/internal/module"
	"github.com/smoors/test-suite/internal/plan"
	"github.com/smoors/test-suite/internal/utils"
	"github.com/spf13/cobra"
)

var (
	planScale      string
	planDevice     string
	planUnit       string
	planModules    []string
	planAllowed    []string
	planPartitions []string

	planNodes        int
	planTasksPerNode int
	planCpusPerTask  int
	planGpusPerNode  int

	planOpts        []string
	planDefaultOpts int
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Resolve a resource layout for a scale on each eligible partition",
	Long: `Resolve a full resource layout (tasks, cores per task, GPUs, binding
environment) for the given scale on every partition eligible for the
requested device type. Partitions whose capacity cannot satisfy the
scale are skipped with a reason, not treated as errors.`,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	provider := capacity.ActiveProvider()
	if provider == nil {
		utils.PrintError("No partition capacity available (no partitions file, no sinfo).")
		utils.PrintMessage("%s", utils.StyleHint(plan.CapacityInfoHelp))
		os.Exit(1)
	}

	// Scale catalog: built-ins plus optional site file.
	scales := catalog.Builtin()
	if _, err := os.Stat(config.Global.ScalesFile); err == nil {
		if err := scales.LoadFile(config.Global.ScalesFile); err != nil {
			return err
		}
	}

	scale, err := scales.Lookup(planScale)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownScale) {
			utils.PrintError("Unknown scale %s. Known scales: %s",
				utils.StyleName(planScale), strings.Join(scales.Names(), ", "))
			os.Exit(1)
		}
		return err
	}

	device, err := plan.ParseDeviceType(planDevice)
	if err != nil {
		return err
	}

	unit, err := resolveUnit(device)
	if err != nil {
		return err
	}

	// Pick the module. Several matching versions select the newest one.
	moduleName := ""
	if len(planModules) == 1 {
		moduleName = planModules[0]
	} else if len(planModules) > 1 {
		moduleName = module.Newest(planModules)
		utils.PrintDebug("Selected newest module %s", moduleName)
	}
	mod := module.Detect(moduleName)

	// Restrict-to-list: a module outside the allowed set leaves no
	// eligible candidates.
	if moduleName != "" && !module.Allowed(moduleName, planAllowed) {
		utils.PrintSkip("Module %s is not in the allowed module list.", utils.StyleName(moduleName))
		return nil
	}

	constraints := plan.ValidSystems(device, mod, planPartitions)
	utils.PrintDebug("valid_systems set to %v", constraints)

	partitions, err := provider.Partitions()
	if err != nil {
		return err
	}

	eligible := plan.EligiblePartitions(partitions, constraints)
	if len(eligible) == 0 {
		utils.PrintSkip("No eligible partitions for device %s with module %s.",
			device, utils.StyleName(moduleName))
		return nil
	}

	// Executable options are normalized once, independent of partitions.
	if len(planOpts) > 0 {
		normalized, customized, err := plan.NormalizeExecutableOpts(planOpts, planDefaultOpts)
		if err != nil {
			return err
		}
		utils.PrintDebug("executable_opts normalized to %v", normalized)
		if customized {
			utils.PrintMessage("Using custom executable options: %s", strings.Join(normalized, " "))
		}
	}

	for _, part := range eligible {
		if err := planPartition(unit, scale, part); err != nil {
			return err
		}
	}

	return nil
}

// planPartition resolves and prints one partition's layout.
func planPartition(unit plan.ComputeUnit, scale catalog.Scale, part capacity.Partition) error {
	req := &plan.Request{}
	req.ApplyScale(scale)
	applyOverrides(req)

	outcome, err := plan.Resolve(unit, part.Capacity, part.Name, req)
	if err != nil {
		if errors.Is(err, plan.ErrMissingCapacityInfo) {
			utils.PrintError("%s: %v", part.Name, err)
			utils.PrintMessage("%s", utils.StyleHint(plan.CapacityInfoHelp))
			os.Exit(1)
		}
		return err
	}
	if outcome.Infeasible {
		utils.PrintSkip("%s", outcome.Reason)
		return nil
	}

	utils.PrintMessage("%s", utils.StyleTitle("Partition "+part.Name))
	utils.PrintMessage("  num_nodes:          %s", utils.StyleNumber(*req.NumNodes))
	utils.PrintMessage("  num_tasks_per_node: %s", utils.StyleNumber(*req.NumTasksPerNode))
	utils.PrintMessage("  num_cpus_per_task:  %s", utils.StyleNumber(*req.NumCpusPerTask))
	if req.NumGpusPerNode != nil {
		utils.PrintMessage("  num_gpus_per_node:  %s", utils.StyleNumber(*req.NumGpusPerNode))
	}
	utils.PrintMessage("  num_tasks:          %s", utils.StyleNumber(*req.NumTasks))

	env := plan.EnvVars{}
	env.Merge(plan.CompactProcessBinding(*req.NumCpusPerTask))
	env.Merge(plan.CompactThreadBinding(*req.NumCpusPerTask))
	for _, key := range sortedKeys(env) {
		utils.PrintMessage("  env %s=%s", utils.StyleName(key), env[key])
	}

	return nil
}

// applyOverrides copies user-set flags into the request. Unset flags
// (zero) leave the field for the engine to decide.
func applyOverrides(req *plan.Request) {
	if planNodes > 0 {
		req.NumNodes = &planNodes
	}
	if planTasksPerNode > 0 {
		req.NumTasksPerNode = &planTasksPerNode
	}
	if planCpusPerTask > 0 {
		req.NumCpusPerTask = &planCpusPerTask
	}
	if planGpusPerNode > 0 {
		req.NumGpusPerNode = &planGpusPerNode
	}
}

// resolveUnit picks the compute unit: an explicit --unit wins, otherwise
// the device type decides (gpu → one task per GPU, cpu → one per core).
func resolveUnit(device plan.DeviceType) (plan.ComputeUnit, error) {
	if planUnit != "" {
		return plan.ParseComputeUnit(planUnit)
	}
	if device == plan.DeviceGPU {
		return plan.UnitGPU, nil
	}
	return plan.UnitCPU, nil
}

func sortedKeys(env plan.EnvVars) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	planCmd.Flags().StringVarP(&planScale, "scale", "s", "1_node", "Scale name from the catalog")
	planCmd.Flags().StringVarP(&planDevice, "device", "d", "cpu", "Required device type (cpu or gpu)")
	planCmd.Flags().StringVarP(&planUnit, "unit", "u", "", "Compute unit (cpu, cpu_socket, gpu); defaults from --device")
	planCmd.Flags().StringArrayVarP(&planModules, "module", "m", nil, "Software module (repeatable; newest version wins)")
	planCmd.Flags().StringSliceVar(&planAllowed, "allowed-modules", nil, "Restrict planning to these modules")
	planCmd.Flags().StringSliceVarP(&planPartitions, "partition", "p", nil, "Explicit partition constraints (+feature or name)")

	planCmd.Flags().IntVar(&planNodes, "nodes", 0, "Override number of nodes")
	planCmd.Flags().IntVar(&planTasksPerNode, "tasks-per-node", 0, "Override tasks per node")
	planCmd.Flags().IntVar(&planCpusPerTask, "cpus-per-task", 0, "Override cpus per task")
	planCmd.Flags().IntVar(&planGpusPerNode, "gpus-per-node", 0, "Override GPUs per node")

	planCmd.Flags().StringArrayVar(&planOpts, "opt", nil, "Executable option (repeatable, shell quoting allowed)")
	planCmd.Flags().IntVar(&planDefaultOpts, "default-opts", 0, "Number of default executable options")

	rootCmd.AddCommand(planCmd)
}
