// Package config provides configuration management for the sonoprop CLI.
//
// This package extends the project configuration from internal/config with
// CLI-specific fields and the layered loader (defaults, file, environment,
// flags).
package config

import (
	projcfg "github.com/leapstack-labs/sonoprop/internal/config"
)

// Project is an alias for the shared project configuration.
// This allows CLI code to use config.Project without importing internal/config.
type Project = projcfg.Project

// Config holds all CLI configuration options.
type Config struct {
	Project `koanf:",squash"`

	StatePath string `koanf:"state_path"`
	OutputDir string `koanf:"output_dir"`
	Workbook  bool   `koanf:"workbook"`
	Verbose   bool   `koanf:"verbose"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultStateFile = ".sonoprop/state.db"
	DefaultOutputDir = "profiles"
	EnvPrefix        = "SONOPROP_"
)
