package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current workflow position",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Controller.Current()
			if err != nil {
				return app.fail(err)
			}
			app.Printer.RunStatus(r)
			return nil
		},
	}
}
