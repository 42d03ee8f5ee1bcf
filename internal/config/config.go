package config

import (
	"os"
	"path/filepath"
)

const VERSION = "0.3.1"

// Config holds global application settings
type Config struct {
	Debug   bool
	Quiet   bool
	Version string

	// SinfoBin is the path to the sinfo binary used for partition
	// capacity autodetection. Empty means autodetection is unavailable.
	SinfoBin string

	// PartitionsFile points to the site partition capacity file (YAML).
	PartitionsFile string

	// ScalesFile points to an optional site scale catalog file (YAML)
	// merged over the built-in catalog.
	ScalesFile string
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults populates Global with defaults relative to the user
// config directory.
func LoadDefaults() {
	configDir := ""
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		configDir = filepath.Join(userConfigDir, "test-suite")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".test-suite")
	}

	Global = Config{
		Debug:          false,
		Quiet:          false,
		Version:        VERSION,
		SinfoBin:       "",
		PartitionsFile: filepath.Join(configDir, "partitions.yaml"),
		ScalesFile:     filepath.Join(configDir, "scales.yaml"),
	}
}
