package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs",
		Long: `List recent runs from the state database, newest first.

With a run ID, show the beam profiles recorded by that run.`,
		Example: `  # List the last 20 runs
  sonoprop runs

  # Show the profiles of one run
  sonoprop runs 2f6c0e1a-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showRun(cmd, args[0])
			}
			return listRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")

	return cmd
}

func listRuns(cmd *cobra.Command, limit int) error {
	cc := NewCommandContext(cmd)
	store, err := openStore(cc.Cfg.StatePath, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(cc.Out, "No runs recorded")
		return nil
	}

	printHeading(cc.Out, "Runs")
	t := newTable(cc.Out)
	t.AppendHeader(table.Row{"ID", "Name", "Status", "Started", "Duration", "Error"})
	for _, r := range runs {
		duration := "-"
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{r.ID, r.Name, string(r.Status), r.StartedAt.Format(time.DateTime), duration, r.Error})
	}
	t.Render()
	return nil
}

func showRun(cmd *cobra.Command, id string) error {
	cc := NewCommandContext(cmd)
	store, err := openStore(cc.Cfg.StatePath, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.GetRun(id)
	if err != nil {
		return fmt.Errorf("run %s: %w", id, err)
	}
	profiles, err := store.ListProfiles(id)
	if err != nil {
		return err
	}

	printHeading(cc.Out, fmt.Sprintf("Run %s: %s (%s)", run.ID, run.Name, run.Status))
	renderProfileRecords(cc.Out, profiles)
	return nil
}
