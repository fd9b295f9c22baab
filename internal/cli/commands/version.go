package commands

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	projcfg "github.com/leapstack-labs/sonoprop/internal/config"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// numericModules are the libraries whose versions change propagation
// results.
var numericModules = []string{
	"github.com/mjibson/go-dsp",
	"gonum.org/v1/gonum",
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display sonoprop version and build information, including the
numeric libraries and the diffraction models this build can run.`,
		Run: func(cmd *cobra.Command, _ []string) {
			info, _ := debug.ReadBuildInfo()
			renderVersion(cmd.OutOrStdout(), version, info)
		},
	}
}

func renderVersion(w io.Writer, version string, info *debug.BuildInfo) {
	_, _ = fmt.Fprintf(w, "sonoprop v%s\n", version)
	_, _ = fmt.Fprintln(w, "Nonlinear acoustic beam propagation engine")
	_, _ = fmt.Fprintf(w, "  go:          %s\n", runtime.Version())
	for _, path := range numericModules {
		_, _ = fmt.Fprintf(w, "  %-12s %s %s\n", shortModule(path)+":", path, moduleVersion(info, path))
	}

	var models []string
	for _, name := range core.DiffractionModels() {
		m, err := core.ParseDiffractionModel(name)
		if err == nil && m.Implemented() {
			models = append(models, name)
		}
	}
	_, _ = fmt.Fprintf(w, "  diffraction: %s (default %s)\n",
		strings.Join(models, ", "), projcfg.DefaultProject().Simulation.Diffraction)
}

func shortModule(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// moduleVersion returns the version of dependency path in the build, or
// "(unknown)" when the binary carries no module information (go test).
func moduleVersion(info *debug.BuildInfo, path string) string {
	if info == nil {
		return "(unknown)"
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return "(unknown)"
}
