package cli

import (
	"github.com/spf13/cobra"
)

func newBacktrackCommand(app *App) *cobra.Command {
	var (
		stepNumber int
		reason     string
	)

	cmd := &cobra.Command{
		Use:   "backtrack",
		Short: "Regress to an earlier step with a reason",
		Long: `Explicitly regress the workflow to an earlier step.

Backtracking is the only sanctioned way to decrease the step number. The
reason is recorded in the ledger tagged as a backtrack event, so the audit
trail distinguishes redo from forward progress.

Example:
  seqplan backtrack --step-number 2 --reason "New constraint invalidates the chosen approach"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Controller.Backtrack(stepNumber, reason)
			if err != nil {
				return app.fail(err)
			}

			app.Printer.PhaseHeader(d.Phase, d.StepNumber, d.TotalSteps)
			app.Printer.Status(string(d.Status))
			app.Printer.Actions("REQUIRED ACTIONS", d.RequiredActions)
			app.Printer.Next(d.Next)
			return nil
		},
	}

	cmd.Flags().IntVar(&stepNumber, "step-number", 0, "earlier step to return to")
	cmd.Flags().StringVar(&reason, "reason", "", "why the regression is needed")
	cmd.MarkFlagRequired("step-number")
	cmd.MarkFlagRequired("reason")

	return cmd
}
