package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sonoprop/internal/cli/config"
	projcfg "github.com/leapstack-labs/sonoprop/internal/config"
	"github.com/leapstack-labs/sonoprop/internal/engine"
	"github.com/leapstack-labs/sonoprop/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Out    io.Writer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
		Out:    cmd.OutOrStdout(),
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Project:   projcfg.DefaultProject(),
		StatePath: config.DefaultStateFile,
		OutputDir: config.DefaultOutputDir,
	}
}

// openStore opens the state database, creating its directory and schema.
func openStore(path string, logger *slog.Logger) (*state.SQLiteStore, error) {
	stateDir := filepath.Dir(path)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}
	return store, nil
}

// createEngine creates an engine from the current configuration.
func createEngine(cfg *config.Config, logger *slog.Logger, exporter engine.Exporter) (*engine.Engine, error) {
	engCfg, err := cfg.EngineConfig(logger)
	if err != nil {
		return nil, err
	}
	engCfg.Exporter = exporter
	return engine.New(engCfg)
}
