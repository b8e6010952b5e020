package controller

import (
	"errors"

	"seqplan/internal/gate"
	"seqplan/internal/run"
	"seqplan/internal/store"
)

// Remediation maps an error to the concrete actions that resolve it.
//
// Every error the controller returns gets a human-readable remediation list
// instead of a bare failure: the caller corrects and retries, the controller
// never retries on its own. An unrecognized error yields a single generic
// instruction.
func Remediation(err error) []string {
	switch {
	case errors.Is(err, store.ErrNoRun):
		return []string{
			"No workflow run is active.",
			"Start one with a planning step:",
			"  seqplan step --phase planning --step-number 1 --total-steps 3 --thoughts \"...\"",
		}
	case errors.Is(err, run.ErrInvalidStepOrder):
		return []string{
			"Step numbers must not decrease during normal advancement.",
			"To intentionally redo an earlier step, backtrack with a reason:",
			"  seqplan backtrack --step-number <n> --reason \"...\"",
		}
	case errors.Is(err, run.ErrInvalidStepBudget):
		return []string{
			"total-steps must be at least the step-number.",
			"Re-invoke with a consistent step budget; the budget may grow mid-phase but never shrink below the current step.",
		}
	case errors.Is(err, gate.ErrStepOrderViolation), errors.Is(err, gate.ErrUnknownStep):
		return []string{
			"Review steps are consumed in fixed order:",
			"  annotate -> specify-contracts -> specify-tests -> quality-review",
			"Invoke the next unconsumed step; reordering is not permitted.",
		}
	case errors.Is(err, gate.ErrReviewIncomplete):
		return []string{
			"No review verdict has been recorded.",
			"Complete all review steps, then record the quality reviewer's verdict:",
			"  seqplan verdict --report <findings file>",
		}
	case errors.Is(err, gate.ErrReviewNotPassed):
		return []string{
			"The review verdict blocks execution.",
			"Return to the planning phase and address the findings:",
			"  seqplan step --phase planning --step-number 1 --total-steps 3 --thoughts \"Addressing review findings\"",
			"Then re-run the full review sequence.",
		}
	case errors.Is(err, gate.ErrPhaseIncomplete):
		return []string{
			"Phases run in order: planning -> review -> execution, no skipping.",
			"Finish the prerequisite phase (planning must reach its final step) before moving on.",
		}
	case errors.Is(err, run.ErrVerdictOutsideReview):
		return []string{
			"A verdict can only be recorded at the terminal review step.",
			"Complete the review sequence through quality-review first.",
		}
	case errors.Is(err, run.ErrRunAborted):
		return []string{
			"The run was aborted and is terminal; its ledger remains readable via `seqplan notes`.",
			"Start a fresh run with a planning step.",
		}
	case errors.Is(err, run.ErrEmptyReason):
		return []string{
			"Provide a non-empty --reason so the audit ledger explains the action.",
		}
	case errors.Is(err, ErrInvalidInput):
		return []string{
			"Check the invocation flags: step-number and total-steps must be >= 1.",
		}
	case errors.Is(err, ErrPhaseOrder):
		return []string{
			"The requested phase does not follow from the run's current phase.",
			"Check the current position with `seqplan status`.",
		}
	}
	return []string{"Check the current workflow position with `seqplan status` and correct the invocation."}
}
