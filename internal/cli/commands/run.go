package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sonoprop/internal/engine"
	"github.com/leapstack-labs/sonoprop/internal/profile"
	"github.com/leapstack-labs/sonoprop/internal/source"
	"github.com/leapstack-labs/sonoprop/internal/state"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Workbook bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Propagate the configured beam",
		Long: `Propagate the source pulse from the start point to the end point.

Beam profiles are recorded according to the history policy and saved to the
state database. Use --workbook to also write one spreadsheet per profile.
Interrupting the run (Ctrl-C) stops it between steps and marks it cancelled.`,
		Example: `  # Run the configured simulation
  sonoprop run

  # Run nonlinear, storing every step, with spreadsheets
  sonoprop run --nonlinear --history every --workbook`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Workbook, "workbook", false, "Write one .xlsx workbook per recorded profile")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	field, err := source.Generate(cfg.Simulation, cfg.Grid, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to build source: %w", err)
	}

	store, err := openStore(cfg.StatePath, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	snapshot, err := yaml.Marshal(cfg.Project)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	run, err := store.CreateRun(cfg.Simulation.Name, string(snapshot))
	if err != nil {
		return err
	}

	sinks := []profile.Sink{&state.StoreSink{Store: store, RunID: run.ID}}
	if opts.Workbook || cfg.Workbook {
		sinks = append(sinks, &profile.WorkbookSink{Dir: cfg.OutputDir, Dx: cfg.Grid.Dx, Dy: cfg.Grid.Dy})
	}
	recorder := profile.NewRecorder(profile.RecorderConfig{
		Name:   cfg.Simulation.Name,
		Policy: cfg.Simulation.History,
		Sinks:  sinks,
		Logger: cc.Logger,
	})

	eng, err := createEngine(cfg, cc.Logger, recorder)
	if err != nil {
		_ = store.CompleteRun(run.ID, core.RunStatusFailed, err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, runErr := eng.Run(ctx, field)
	status, msg := core.RunStatusCompleted, ""
	switch {
	case errors.Is(runErr, context.Canceled):
		status, msg = core.RunStatusCancelled, runErr.Error()
	case runErr != nil:
		status, msg = core.RunStatusFailed, runErr.Error()
	}
	if err := store.CompleteRun(run.ID, status, msg); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}

	renderSummary(cc.Out, run.ID, res, recorder.History())
	return nil
}

func renderSummary(w io.Writer, runID string, res *engine.Result, history *profile.History) {
	printHeading(w, "Run "+runID)

	t := newTable(w)
	t.AppendRows([]table.Row{
		{"Steps", res.Plan.Len()},
		{"Operator rebuilds", res.Rebuilds},
		{"Final position (mm)", mm(res.State.Position)},
		{"Peak pressure (Pa)", fmt.Sprintf("%.4g", res.Field.Peak())},
		{"Elapsed", res.Elapsed.String()},
	})
	t.Render()

	if history.Len() == 0 {
		return
	}
	records := make([]*core.ProfileRecord, 0, history.Len())
	for _, p := range history.Profiles() {
		records = append(records, p.Record(""))
	}
	printHeading(w, "Profiles")
	renderProfileRecords(w, records)
}

func renderProfileRecords(w io.Writer, records []*core.ProfileRecord) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(0 profiles)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Step", "Position (mm)", "Kind", "Peak max (Pa)", "Peak RMS (Pa)"})
	for _, r := range records {
		t.AppendRow(table.Row{r.Step, mm(r.Position), r.Kind.String(),
			fmt.Sprintf("%.4g", r.PeakMax), fmt.Sprintf("%.4g", r.PeakRMS)})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d profiles)\n", len(records))
}
