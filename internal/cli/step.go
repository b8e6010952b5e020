package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"seqplan/internal/controller"
	"seqplan/internal/run"
)

func newStepCommand(app *App) *cobra.Command {
	var (
		phase      string
		stepNumber int
		totalSteps int
		thoughts   string
	)

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Invoke a workflow step",
		Long: `Invoke a single step of the planning or review phase.

Planning steps are free-form: declare the step position and budget, and the
controller returns the required actions for that step. Reaching the final
step emits the phase-complete signal that unlocks review.

Review steps consume the fixed sequence annotate -> specify-contracts ->
specify-tests -> quality-review; out-of-order requests are rejected.

Examples:
  seqplan step --phase planning --step-number 1 --total-steps 4 --thoughts "Design auth system"
  seqplan step --phase review --step-number 1 --total-steps 4 --thoughts "Plan written to plans/auth.md"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := run.Phase(phase)
			if p != run.PhasePlanning && p != run.PhaseReview {
				return app.fail(fmt.Errorf("%w: --phase must be planning or review", controller.ErrInvalidInput))
			}

			d, err := app.Controller.Invoke(controller.Input{
				Phase:      p,
				StepNumber: stepNumber,
				TotalSteps: totalSteps,
				Thoughts:   thoughts,
			})
			if err != nil {
				return app.fail(err)
			}

			app.Printer.PhaseHeader(d.Phase, d.StepNumber, d.TotalSteps)
			app.Printer.Status(string(d.Status))
			app.Printer.Thoughts(thoughts)

			heading := "REQUIRED ACTIONS"
			if d.Status == controller.StatusComplete {
				heading = "FINAL CHECKLIST"
			}
			app.Printer.Actions(heading, d.RequiredActions)
			app.Printer.Next(d.Next)
			return nil
		},
	}

	cmd.Flags().StringVar(&phase, "phase", "planning", "workflow phase: planning or review")
	cmd.Flags().IntVar(&stepNumber, "step-number", 0, "1-indexed step to perform")
	cmd.Flags().IntVar(&totalSteps, "total-steps", 0, "declared step budget for the phase")
	cmd.Flags().StringVar(&thoughts, "thoughts", "", "free-text thoughts, appended verbatim to the ledger")
	cmd.MarkFlagRequired("step-number")
	cmd.MarkFlagRequired("thoughts")

	return cmd
}
