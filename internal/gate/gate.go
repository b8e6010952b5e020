// Package gate decides whether phase and step transitions are permitted.
//
// The gate is the safety-critical core of the workflow: tests must be
// specified only after contracts exist, and quality review must be the last
// check before execution. Every function here is a pure decision over its
// inputs with no side effects, so the gate is testable in isolation from
// any ledger mutation.
//
// Phase ordering is fixed: planning → review → execution. Review cannot be
// entered until planning has emitted its phase-complete signal, and
// execution cannot begin until the review verdict passes.
package gate

import (
	"errors"
	"fmt"

	"seqplan/internal/review"
)

// Sentinel errors for transition decisions.
var (
	// ErrPhaseIncomplete indicates a phase transition was requested before
	// the prerequisite phase emitted its completion signal.
	ErrPhaseIncomplete = errors.New("prerequisite phase is not complete")

	// ErrReviewIncomplete indicates execution was requested with no review
	// verdict recorded.
	ErrReviewIncomplete = errors.New("review has not recorded a verdict")

	// ErrReviewNotPassed indicates execution was requested while the review
	// verdict requires returning to planning.
	ErrReviewNotPassed = errors.New("review verdict does not permit execution")

	// ErrStepOrderViolation indicates a review step was requested out of
	// the fixed sequence order.
	ErrStepOrderViolation = errors.New("step requested out of sequence")

	// ErrUnknownStep indicates a requested step name is not part of the
	// phase's sequence at all, likely a typo.
	ErrUnknownStep = errors.New("unknown step name")
)

// CanEnterReview reports whether the review phase may be entered.
//
// Review is permitted only after planning has issued its explicit
// phase-complete signal; otherwise the caller must remain in planning.
func CanEnterReview(planningComplete bool) error {
	if !planningComplete {
		return fmt.Errorf("%w: planning has not emitted phase_complete", ErrPhaseIncomplete)
	}
	return nil
}

// CanEnterExecution reports whether the execution phase may be entered
// given the recorded review verdict.
//
// PASS and PASS_WITH_CONCERNS allow execution. NEEDS_CHANGES and
// CRITICAL_ISSUES fail with [ErrReviewNotPassed]; the caller must return to
// planning, not execution. A missing verdict fails with [ErrReviewIncomplete].
func CanEnterExecution(v review.Verdict) error {
	if v == review.VerdictNone {
		return fmt.Errorf("%w: run the review phase to completion first", ErrReviewIncomplete)
	}
	if !v.IsValid() {
		return fmt.Errorf("%w: unrecognized verdict %q", ErrReviewIncomplete, v)
	}
	if !v.Passed() {
		return fmt.Errorf("%w: verdict %s requires returning to planning", ErrReviewNotPassed, v)
	}
	return nil
}

// ValidateStepOrder enforces that requested matches the next unconsumed
// entry of the phase's fixed step sequence.
//
// consumed is the number of sequence entries already completed. Any
// out-of-order request fails with [ErrStepOrderViolation] naming the
// expected step; a name not in the sequence at all fails with
// [ErrUnknownStep].
func ValidateStepOrder(sequence []string, consumed int, requested string) error {
	if consumed >= len(sequence) {
		return fmt.Errorf("%w: all %d steps already consumed", ErrStepOrderViolation, len(sequence))
	}

	expected := sequence[consumed]
	if requested == expected {
		return nil
	}

	for _, name := range sequence {
		if name == requested {
			return fmt.Errorf("%w: expected %q, got %q", ErrStepOrderViolation, expected, requested)
		}
	}
	return fmt.Errorf("%w: %q is not in the step sequence", ErrUnknownStep, requested)
}

// NextStep returns the next unconsumed step name in the sequence.
// The second return is false when the sequence is exhausted.
func NextStep(sequence []string, consumed int) (string, bool) {
	if consumed < 0 || consumed >= len(sequence) {
		return "", false
	}
	return sequence[consumed], true
}
