package cmd

import (
	"fmt"
	"os"

	"github.com/smoors/test-suite/internal/capacity"
	"github.com/smoors/test-suite/internal/config"
	"github.com/smoors/test-suite/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	quietMode bool
)

var rootCmd = &cobra.Command{
	Use:           "test-suite",
	Short:         "Derive parallel-job resource layouts (tasks, cores, GPUs, binding) for HPC partitions.",
	Version:       config.VERSION,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load defaults (paths, directories, etc.)
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Auto-detect sinfo if needed and save to config
		updated, err := config.AutoDetectAndSave()
		if err != nil {
			utils.PrintDebug("Failed to save config: %v", err)
		} else if updated {
			if configPath, err := config.GetUserConfigPath(); err == nil {
				utils.PrintDebug("Auto-detected sinfo saved to: %s", configPath)
			}
		}

		// Step 4: Load detected values from Viper into Global config
		config.LoadFromViper()

		// Step 5: Apply command-line flags (highest priority)
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("Partitions file: %s", config.Global.PartitionsFile)
			utils.PrintDebug("Scales file: %s", config.Global.ScalesFile)
			if config.Global.SinfoBin != "" {
				utils.PrintDebug("sinfo binary: %s", config.Global.SinfoBin)
			}
		}

		if quietMode {
			utils.QuietMode = true
			config.Global.Quiet = true
		}

		// Step 6: Initialize the capacity provider. A site partitions file
		// takes precedence; otherwise fall back to sinfo discovery.
		initCapacityProvider()
	},
}

// initCapacityProvider selects and registers the active capacity provider.
func initCapacityProvider() {
	if _, err := os.Stat(config.Global.PartitionsFile); err == nil {
		provider, err := capacity.NewStaticProvider(config.Global.PartitionsFile)
		if err == nil {
			capacity.SetActiveProvider(provider)
			utils.PrintDebug("Capacity provider: partitions file %s", config.Global.PartitionsFile)
			return
		}
		utils.PrintWarning("Failed to load partitions file: %v", err)
	}

	if config.Global.SinfoBin != "" {
		provider, err := capacity.NewSlurmProvider(config.Global.SinfoBin)
		if err == nil {
			capacity.SetActiveProvider(provider)
			utils.PrintDebug("Capacity provider: sinfo discovery")
			return
		}
		utils.PrintDebug("sinfo discovery failed: %v", err)
	}

	capacity.ClearActiveProvider()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational output")
}
