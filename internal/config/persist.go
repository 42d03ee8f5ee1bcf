package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (TESTSUITE_*)
// 3. User config file (~/.config/test-suite/config.yaml)
// 4. System config file (/etc/test-suite/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	// Set config search paths (order matters)
	// User config (highest priority)
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "test-suite"))
	}

	// Home directory fallback
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".test-suite"))
	}

	// System-wide config (lower priority)
	viper.AddConfigPath("/etc/test-suite")

	// Current directory (for development)
	viper.AddConfigPath(".")

	// Environment variables
	viper.SetEnvPrefix("TESTSUITE")
	viper.AutomaticEnv()

	// Set defaults (lowest priority)
	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; will use defaults and auto-detect
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("sinfo_bin", "")
	viper.SetDefault("partitions_file", Global.PartitionsFile)
	viper.SetDefault("scales_file", Global.ScalesFile)
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".test-suite", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "test-suite", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}

	// If it's a full path, check directly
	if filepath.IsAbs(binPath) {
		info, err := os.Stat(binPath)
		if err != nil {
			return false
		}
		// Check if it's executable (unix-style check)
		return info.Mode()&0111 != 0
	}

	// Otherwise, try to find it in PATH
	_, err := exec.LookPath(binPath)
	return err == nil
}

// DetectSinfoBin attempts to find the sinfo binary.
// Returns the full absolute path if found, empty string otherwise.
func DetectSinfoBin() string {
	if path, err := exec.LookPath("sinfo"); err == nil {
		return path
	}
	return ""
}

// AutoDetectAndSave auto-detects the sinfo binary and saves to config if needed
// Returns true if config was updated
func AutoDetectAndSave() (bool, error) {
	updated := false

	sinfoBin := viper.GetString("sinfo_bin")
	if !ValidateBinary(sinfoBin) {
		detected := DetectSinfoBin()
		if detected != "" {
			viper.Set("sinfo_bin", detected)
			updated = true
		}
	}

	// Save if anything was updated
	if updated {
		if err := SaveConfig(); err != nil {
			return false, err
		}
	}

	return updated, nil
}

// LoadFromViper loads config from Viper into the Global struct
func LoadFromViper() {
	if bin := viper.GetString("sinfo_bin"); bin != "" && ValidateBinary(bin) {
		Global.SinfoBin = bin
	}

	if path := viper.GetString("partitions_file"); path != "" {
		Global.PartitionsFile = path
	}

	if path := viper.GetString("scales_file"); path != "" {
		Global.ScalesFile = path
	}
}
