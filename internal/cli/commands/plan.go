package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the step plan of a run",
		Long: `Print every axial step the run would take, with its size, kind and
landing depth, followed by the operator caching decision.

Special steps land exactly on store and screen positions; the operator is
rebuilt where the step kind changes when caching pays off.`,
		Example: `  # Plan the configured run
  sonoprop plan

  # Plan with extra store positions
  sonoprop plan --store 0.01,0.025`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd)
		},
	}
}

func runPlan(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)

	eng, err := createEngine(cc.Cfg, cc.Logger, nil)
	if err != nil {
		return err
	}
	sched, err := eng.Schedule()
	if err != nil {
		return err
	}

	plan := sched.Plan
	printHeading(cc.Out, fmt.Sprintf("Step plan: %s (%s mm to %s mm)",
		cc.Cfg.Simulation.Name, mm(plan.Start), mm(plan.End)))
	if sched.BodyWall {
		_, _ = fmt.Fprintf(cc.Out, "Body wall traversed first, plan starts at the wall exit (%s mm)\n", mm(plan.Start))
	}

	t := newTable(cc.Out)
	t.AppendHeader(table.Row{"#", "Step (mm)", "Kind", "Position (mm)"})
	for i, z := range plan.Positions() {
		t.AppendRow(table.Row{i, mm(plan.Steps[i]), plan.Kinds[i].String(), mm(z)})
	}
	t.AppendFooter(table.Row{"", mm(plan.Total()), fmt.Sprintf("%d steps", plan.Len()), ""})
	t.Render()

	_, _ = fmt.Fprintf(cc.Out, "Transitions: %d  Recalculate: %t  Equidistant: %t\n",
		sched.Advice.Transitions, sched.Advice.Recalculate, sched.Equidistant)
	return nil
}
