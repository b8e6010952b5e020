package cli

import (
	"github.com/spf13/cobra"
)

func newNotesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "notes",
		Short: "Dump the append-only audit ledger",
		Long: `Print every ledger entry in insertion order.

The ledger records one entry per invocation (advances, backtracks, phase
transitions, verdicts, aborts) and is never mutated or truncated, so the
output reconstructs the full history of the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Controller.Current()
			if err != nil {
				return app.fail(err)
			}
			app.Printer.NotesLedger(r.Notes)
			return nil
		},
	}
}
