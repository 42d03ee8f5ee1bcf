package cmd

import (
	"fmt"

	"github.com/smoors/test-suite/internal/plan"
	"github.com/spf13/cobra"
)

var (
	envCpusPerTask int
	envProcessOnly bool
	envThreadsOnly bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print compact binding environment for a cores-per-task value",
	Long: `Print the environment directives that request compact process binding
(Intel MPI, OpenMPI, srun) and compact thread binding (GNU and Intel
OpenMP) for the given number of cores per task. Output is KEY=VALUE
lines suitable for an env file or eval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := plan.EnvVars{}
		if !envThreadsOnly {
			env.Merge(plan.CompactProcessBinding(envCpusPerTask))
		}
		if !envProcessOnly {
			env.Merge(plan.CompactThreadBinding(envCpusPerTask))
		}
		for _, key := range sortedKeys(env) {
			fmt.Printf("%s=%s\n", key, env[key])
		}
		return nil
	},
}

func init() {
	envCmd.Flags().IntVarP(&envCpusPerTask, "cpus-per-task", "c", 1, "Cores bound to each task")
	envCmd.Flags().BoolVar(&envProcessOnly, "process-only", false, "Emit only process binding directives")
	envCmd.Flags().BoolVar(&envThreadsOnly, "threads-only", false, "Emit only thread binding directives")
	rootCmd.AddCommand(envCmd)
}
