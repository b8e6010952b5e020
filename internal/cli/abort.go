package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAbortCommand(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Abort the workflow run",
		Long: `Move the run to its terminal aborted state from any phase.

The notes ledger is retained for audit and stays readable via
"seqplan notes". A new run starts with the next planning step.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Controller.Abort(reason); err != nil {
				return app.fail(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Run aborted. Ledger retained; start a new run with a planning step.")
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the run is being abandoned")
	cmd.MarkFlagRequired("reason")

	return cmd
}
