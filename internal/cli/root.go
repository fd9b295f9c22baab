// Package cli provides the command-line interface for sonoprop.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sonoprop/internal/cli/commands"
	"github.com/leapstack-labs/sonoprop/internal/cli/config"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// skipConfig lists commands that run without a loaded configuration.
var skipConfig = map[string]bool{
	"help":       true,
	"completion": true,
	"__complete": true,
	"version":    true,
	"init":       true,
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sonoprop",
		Short: "sonoprop - Nonlinear acoustic beam propagation",
		Long: `sonoprop propagates a pulsed ultrasound beam through a homogeneous medium
with diffraction, power-law attenuation and nonlinear steepening.

Configuration is read from sonoprop.yaml (searched upward from the current
directory), SONOPROP_ environment variables and command-line flags.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfig[cmd.Name()] {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := newLogger(cmd, cfg.Verbose)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = context.WithValue(ctx, configKey{}, cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Nonlinear acoustic beam propagation engine built with Go
`)

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: sonoprop.yaml, searched upward)")
	flags.String("state", "", "Path to state database")
	flags.String("output-dir", "", "Directory for profile workbooks")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.String("name", "", "Simulation name")
	flags.String("diffraction", "", "Diffraction model ("+strings.Join(core.DiffractionModels(), "|")+")")
	flags.Bool("nonlinear", false, "Enable nonlinear propagation")
	flags.String("history", "", "Profile history policy (none|store|every)")
	flags.Float64("start", 0, "Start depth in m")
	flags.Float64("end", 0, "End depth in m")
	flags.Float64("step", 0, "Nominal step size in m")
	flags.Float64Slice("store", nil, "Depths in m at which profiles are stored")
	flags.Int("workers", 0, "Nonlinear worker count (0 for GOMAXPROCS)")

	_ = rootCmd.RegisterFlagCompletionFunc("diffraction", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return core.DiffractionModels(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("history", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"none", "store", "every"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewPlanCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewInitCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return nil
}

// newLogger builds the text logger on the command's stderr.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
