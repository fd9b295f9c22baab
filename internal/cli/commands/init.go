package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	projcfg "github.com/leapstack-labs/sonoprop/internal/config"
)

const configHeader = `# sonoprop simulation configuration.
#
# Every key can be overridden with a SONOPROP_ environment variable, using
# "__" for nesting (SONOPROP_GRID__NT=512), or with a command-line flag.
# Lengths are in metres, times in seconds, pressures in pascal.
#
# simulation.diffraction: none | exact | angular-spectrum
# simulation.history:     none | store | every
# taper: one Tukey ratio for both lateral axes, or [x, y]

`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default sonoprop.yaml",
		Long: `Write a sonoprop.yaml holding the default simulation: a 2 MHz beam
propagated 50 mm through a water-like medium with exact diffraction and
power-law attenuation.`,
		Example: `  # Initialize in current directory
  sonoprop init

  # Initialize in a new directory
  sonoprop init my-beam

  # Force overwrite existing config
  sonoprop init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path, err := runInit(dir, force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(dir string, force bool) (string, error) {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, projcfg.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return "", fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(projcfg.DefaultProject()); err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	return configPath, nil
}
