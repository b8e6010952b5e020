// Package run holds the workflow run ledger: the authoritative record of
// where a planning workflow currently stands.
//
// A [WorkflowRun] tracks the active phase, the current step position within
// that phase, and an append-only ledger of notes. Every mutation appends a
// note, so replaying the ledger reconstructs the full invocation history
// for audit.
//
// Key types:
//   - [WorkflowRun] - The run record with phase, step counters, notes, verdict
//   - [Phase] - Top-level workflow stage (planning, review, execution)
//   - [Note] - A single ledger entry, tagged by [NoteKind]
//
// The ledger performs no I/O; persistence lives in the store package.
package run

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"seqplan/internal/review"
)

// Sentinel errors for ledger mutations.
var (
	// ErrInvalidStepOrder indicates a step number regression without an
	// explicit backtrack. Callers should use [WorkflowRun.Backtrack] to
	// regress intentionally.
	ErrInvalidStepOrder = errors.New("step number decreased without explicit backtrack")

	// ErrInvalidStepBudget indicates totalSteps is less than the step
	// number, which would leave the run outside its own bounds.
	ErrInvalidStepBudget = errors.New("total steps less than step number")

	// ErrRunAborted indicates a mutation was attempted on an aborted run.
	// Aborted runs are terminal; only their ledger remains readable.
	ErrRunAborted = errors.New("workflow run is aborted")

	// ErrVerdictOutsideReview indicates a verdict was recorded outside the
	// terminal step of the review phase.
	ErrVerdictOutsideReview = errors.New("verdict can only be set at the terminal review step")

	// ErrEmptyReason indicates a backtrack or abort without a reason.
	// The ledger requires a reason so the audit trail explains regressions.
	ErrEmptyReason = errors.New("reason must not be empty")
)

// Phase is a top-level stage of the planning workflow.
type Phase string

const (
	// PhasePlanning is the initial step-based planning phase.
	PhasePlanning Phase = "planning"

	// PhaseReview is the ordered reviewer-delegation phase.
	PhaseReview Phase = "review"

	// PhaseExecution is the implementation phase entered after review passes.
	PhaseExecution Phase = "execution"

	// PhaseAborted is the terminal state reached by an explicit abort.
	PhaseAborted Phase = "aborted"
)

// IsValid returns true if p is a recognized phase.
func (p Phase) IsValid() bool {
	switch p {
	case PhasePlanning, PhaseReview, PhaseExecution, PhaseAborted:
		return true
	}
	return false
}

// NoteKind classifies a ledger entry so downstream audit can distinguish
// forward progress from redo and transitions.
type NoteKind string

const (
	// NoteAdvance records a forward step advance.
	NoteAdvance NoteKind = "advance"

	// NoteBacktrack records an explicit regression to an earlier step.
	NoteBacktrack NoteKind = "backtrack"

	// NoteTransition records a phase transition.
	NoteTransition NoteKind = "transition"

	// NoteVerdict records the review verdict.
	NoteVerdict NoteKind = "verdict"

	// NoteAbort records an abort.
	NoteAbort NoteKind = "abort"
)

// Note is a single append-only ledger entry.
//
// Notes are never mutated or removed; insertion order is preserved.
type Note struct {
	// Kind classifies the entry.
	Kind NoteKind `yaml:"kind"`

	// Phase is the phase the run was in when the note was appended.
	Phase Phase `yaml:"phase"`

	// Step is the step number the note applies to.
	Step int `yaml:"step"`

	// Text is the caller-provided free text, appended verbatim.
	// The ledger does not parse or interpret its content.
	Text string `yaml:"text"`

	// Time is when the note was appended.
	Time time.Time `yaml:"time"`
}

// WorkflowRun is the authoritative record of a planning workflow's state.
//
// Exactly one phase is active at a time. StepNumber is 1-indexed and
// monotonically non-decreasing within a phase except for an explicit
// backtrack. The invariant 1 <= StepNumber <= TotalSteps holds after every
// successful mutation.
type WorkflowRun struct {
	// ID uniquely identifies this run.
	ID string `yaml:"id"`

	// Phase is the currently active phase.
	Phase Phase `yaml:"phase"`

	// StepNumber is the current 1-indexed step within the phase.
	StepNumber int `yaml:"step_number"`

	// TotalSteps is the declared step budget for the phase. It may be
	// revised upward mid-phase but never below StepNumber.
	TotalSteps int `yaml:"total_steps"`

	// PlanningComplete is the terminal phase-complete signal emitted by
	// the planning phase. Review cannot be entered until it is set.
	PlanningComplete bool `yaml:"planning_complete"`

	// Verdict is the terminal review outcome. Empty until the terminal
	// review step records one.
	Verdict review.Verdict `yaml:"verdict,omitempty"`

	// Findings are the reviewer findings backing the verdict.
	Findings []review.Finding `yaml:"findings,omitempty"`

	// Notes is the append-only audit ledger, one entry per mutation.
	Notes []Note `yaml:"notes"`

	// AbortReason is set when the run is aborted.
	AbortReason string `yaml:"abort_reason,omitempty"`

	// CreatedAt is when the run was created.
	CreatedAt time.Time `yaml:"created_at"`

	// UpdatedAt is when the run was last mutated.
	UpdatedAt time.Time `yaml:"updated_at"`
}

// NewRun creates a new [WorkflowRun] in the planning phase at step 0.
//
// Step 0 means no step has been consumed yet; the first [WorkflowRun.Advance]
// establishes the step position and budget.
func NewRun() *WorkflowRun {
	now := time.Now()
	return &WorkflowRun{
		ID:        uuid.NewString(),
		Phase:     PhasePlanning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CurrentStep returns the run's position: active phase, current step number,
// and declared total steps. Pure read, no mutation.
func (r *WorkflowRun) CurrentStep() (Phase, int, int) {
	return r.Phase, r.StepNumber, r.TotalSteps
}

// Aborted returns true if the run has been explicitly aborted.
func (r *WorkflowRun) Aborted() bool {
	return r.Phase == PhaseAborted
}

// Advance moves the run forward to stepNumber with the given step budget,
// appending note to the ledger.
//
// Requirements:
//   - stepNumber >= current StepNumber (regression requires [WorkflowRun.Backtrack]),
//     otherwise [ErrInvalidStepOrder]
//   - totalSteps >= stepNumber, otherwise [ErrInvalidStepBudget]
//
// Reaching stepNumber >= totalSteps in the planning phase sets the
// phase-complete signal consumed by the transition gate.
func (r *WorkflowRun) Advance(stepNumber, totalSteps int, note string) error {
	if r.Aborted() {
		return ErrRunAborted
	}
	if stepNumber < 1 || totalSteps < 1 {
		return fmt.Errorf("%w: step %d of %d", ErrInvalidStepBudget, stepNumber, totalSteps)
	}
	if totalSteps < stepNumber {
		return fmt.Errorf("%w: step %d of %d", ErrInvalidStepBudget, stepNumber, totalSteps)
	}
	if stepNumber < r.StepNumber {
		return fmt.Errorf("%w: step %d after step %d", ErrInvalidStepOrder, stepNumber, r.StepNumber)
	}

	r.StepNumber = stepNumber
	r.TotalSteps = totalSteps

	if r.Phase == PhasePlanning && stepNumber >= totalSteps {
		r.PlanningComplete = true
	}

	r.appendNote(NoteAdvance, stepNumber, note)
	return nil
}

// Backtrack explicitly regresses the run to an earlier step.
//
// The target must be strictly earlier than the current step and at least 1.
// A non-empty reason is required; it is recorded in the ledger tagged as a
// backtrack event, so audit can distinguish redo from forward progress.
// Backtracking in the planning phase clears the phase-complete signal.
func (r *WorkflowRun) Backtrack(stepNumber int, reason string) error {
	if r.Aborted() {
		return ErrRunAborted
	}
	if reason == "" {
		return fmt.Errorf("backtrack: %w", ErrEmptyReason)
	}
	if stepNumber < 1 || stepNumber >= r.StepNumber {
		return fmt.Errorf("%w: backtrack target %d must be earlier than current step %d", ErrInvalidStepOrder, stepNumber, r.StepNumber)
	}

	r.StepNumber = stepNumber
	if r.Phase == PhasePlanning {
		r.PlanningComplete = false
	}

	r.appendNote(NoteBacktrack, stepNumber, reason)
	return nil
}

// EnterPhase transitions the run into the given phase, resetting the step
// position for the new phase's sequence.
//
// EnterPhase records the transition in the ledger but performs no gate
// checks; legality of the transition is the gate package's responsibility
// and must be established by the caller first.
func (r *WorkflowRun) EnterPhase(phase Phase, totalSteps int, note string) error {
	if r.Aborted() {
		return ErrRunAborted
	}

	r.Phase = phase
	r.StepNumber = 0
	r.TotalSteps = totalSteps

	r.appendNote(NoteTransition, 0, note)
	return nil
}

// SetVerdict records the terminal review verdict and its findings.
//
// A verdict is only legal at the terminal step of the review phase
// (StepNumber >= TotalSteps); anywhere else returns [ErrVerdictOutsideReview].
func (r *WorkflowRun) SetVerdict(v review.Verdict, findings []review.Finding, note string) error {
	if r.Aborted() {
		return ErrRunAborted
	}
	if r.Phase != PhaseReview || r.StepNumber < r.TotalSteps || r.TotalSteps == 0 {
		return fmt.Errorf("%w: currently %s step %d of %d", ErrVerdictOutsideReview, r.Phase, r.StepNumber, r.TotalSteps)
	}

	r.Verdict = v
	r.Findings = append([]review.Finding(nil), findings...)

	r.appendNote(NoteVerdict, r.StepNumber, note)
	return nil
}

// ReturnToPlanning loops the run back to the planning phase after a failing
// review verdict.
//
// Only legal from the review phase with a recorded non-passing verdict.
// The verdict and findings are cleared for the next review cycle; the notes
// ledger keeps the full history, including the cleared verdict's entry.
func (r *WorkflowRun) ReturnToPlanning(note string) error {
	if r.Aborted() {
		return ErrRunAborted
	}
	if r.Phase != PhaseReview || r.Verdict == review.VerdictNone || r.Verdict.Passed() {
		return fmt.Errorf("%w: return to planning requires a failing review verdict", ErrVerdictOutsideReview)
	}

	r.Phase = PhasePlanning
	r.StepNumber = 0
	r.TotalSteps = 0
	r.PlanningComplete = false
	r.Verdict = review.VerdictNone
	r.Findings = nil

	r.appendNote(NoteTransition, 0, note)
	return nil
}

// Abort moves the run to the terminal aborted state from any phase.
//
// The notes ledger is retained for audit. A non-empty reason is required.
// Aborting an already-aborted run returns [ErrRunAborted].
func (r *WorkflowRun) Abort(reason string) error {
	if r.Aborted() {
		return ErrRunAborted
	}
	if reason == "" {
		return fmt.Errorf("abort: %w", ErrEmptyReason)
	}

	r.Phase = PhaseAborted
	r.AbortReason = reason

	r.appendNote(NoteAbort, r.StepNumber, reason)
	return nil
}

// appendNote appends a ledger entry and bumps UpdatedAt.
func (r *WorkflowRun) appendNote(kind NoteKind, step int, text string) {
	now := time.Now()
	r.Notes = append(r.Notes, Note{
		Kind:  kind,
		Phase: r.Phase,
		Step:  step,
		Text:  text,
		Time:  now,
	})
	r.UpdatedAt = now
}
