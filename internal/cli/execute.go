package cli

import (
	"github.com/spf13/cobra"
)

func newExecuteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "execute",
		Short: "Enter the execution phase",
		Long: `Gate the transition into the execution phase.

Execution is permitted only after the full review sequence has run and the
recorded verdict is PASS or PASS_WITH_CONCERNS. A NEEDS_CHANGES or
CRITICAL_ISSUES verdict sends the workflow back to planning instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Controller.EnterExecution()
			if err != nil {
				return app.fail(err)
			}

			app.Printer.PhaseHeader(d.Phase, 1, 1)
			app.Printer.Status(string(d.Status))
			app.Printer.Actions("REQUIRED ACTIONS", d.RequiredActions)
			app.Printer.Next(d.Next)
			return nil
		},
	}
}
