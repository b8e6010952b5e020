// Package controller orchestrates workflow invocations.
//
// The controller ties the run ledger, the transition gate, and the guidance
// tables together: each invocation loads the persisted run, checks the
// requested transition against the gate, mutates the ledger, selects the
// step guidance, persists the result, and returns a [Directive] telling the
// caller what to do next.
//
// The controller uses dependency injection for testability: [RunStore]
// abstracts persistence so tests can supply an in-memory implementation.
// The controller never retries on error; every failure is returned to the
// caller as a typed result with remediation text available via
// [Remediation].
package controller

import (
	"errors"
	"fmt"

	"seqplan/internal/config"
	"seqplan/internal/gate"
	"seqplan/internal/guidance"
	"seqplan/internal/review"
	"seqplan/internal/run"
	"seqplan/internal/store"
)

// Sentinel errors for invocation handling.
var (
	// ErrPhaseOrder indicates an invocation that would skip or rewind the
	// phase sequence (e.g. a review step during execution).
	ErrPhaseOrder = errors.New("invocation out of phase order")

	// ErrInvalidInput indicates malformed invocation input.
	ErrInvalidInput = errors.New("invalid invocation input")
)

// RunStore is the persistence interface for the workflow run.
//
// The [store.Store] type implements this interface. Load returns
// [store.ErrNoRun] when no run exists yet.
type RunStore interface {
	Load() (*run.WorkflowRun, error)
	Save(r *run.WorkflowRun) error
}

// Input is a single workflow invocation.
type Input struct {
	// Phase is the phase being invoked: planning or review.
	Phase run.Phase

	// StepNumber is the 1-indexed step being performed.
	StepNumber int

	// TotalSteps is the caller's declared step budget for the phase.
	// Ignored for review, whose sequence length is fixed.
	TotalSteps int

	// Thoughts is opaque free text appended verbatim to the notes ledger.
	Thoughts string
}

// Status is the invocation-level phase progress indicator.
type Status string

const (
	// StatusInProgress indicates more steps remain in the current phase.
	StatusInProgress Status = "phase_in_progress"

	// StatusComplete indicates the current phase's steps are consumed.
	StatusComplete Status = "phase_complete"
)

// Directive is the controller's output: where the run now stands and what
// the caller must do next.
type Directive struct {
	// Status is phase_in_progress or phase_complete.
	Status Status

	// Phase is the run's phase after the invocation.
	Phase run.Phase

	// StepNumber and TotalSteps are the position after the invocation.
	StepNumber int
	TotalSteps int

	// StepName is the review step consumed, empty for planning steps.
	StepName string

	// RequiredActions are the step's required actions, one line each.
	RequiredActions []string

	// Next tells the caller how to continue.
	Next string

	// NextExpectedStep names the next unconsumed review step, if any.
	NextExpectedStep string

	// Action is the verdict-derived next action, set by verdict recording
	// and execution entry.
	Action review.Directive
}

// Controller orchestrates workflow invocations over a persisted run.
//
// Create with [New]. The review step sequence and agent bindings come from
// the configuration; ordering is enforced by the gate regardless.
type Controller struct {
	store       RunStore
	reviewSteps []string
	agents      map[string]string
}

// New creates a [Controller] with the given persistence and configuration.
func New(s RunStore, cfg *config.Config) *Controller {
	agents := make(map[string]string, len(cfg.Review.Steps))
	for _, step := range cfg.Review.Steps {
		agents[step.Name] = step.Agent
	}
	return &Controller{
		store:       s,
		reviewSteps: cfg.ReviewStepNames(),
		agents:      agents,
	}
}

// Invoke performs a single workflow step invocation.
//
// For planning invocations, the run is created on first use; reaching the
// declared total emits the phase-complete signal. For review invocations,
// the PLANNING→REVIEW transition is gated on that signal and the step must
// match the next unconsumed entry of the fixed review sequence.
//
// A planning invocation while the run sits in review with a failing verdict
// loops the run back to planning (the verdict's ReturnToPlanning directive).
func (c *Controller) Invoke(in Input) (*Directive, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	r, err := c.loadOrCreate(in)
	if err != nil {
		return nil, err
	}

	var d *Directive
	switch in.Phase {
	case run.PhasePlanning:
		d, err = c.invokePlanning(r, in)
	case run.PhaseReview:
		d, err = c.invokeReview(r, in)
	default:
		return nil, fmt.Errorf("%w: phase %q cannot be invoked directly", ErrInvalidInput, in.Phase)
	}
	if err != nil {
		return nil, err
	}

	if err := c.store.Save(r); err != nil {
		return nil, err
	}
	return d, nil
}

// loadOrCreate loads the persisted run, creating one for a first planning
// invocation. A review invocation without an existing run fails: planning
// must run first.
func (c *Controller) loadOrCreate(in Input) (*run.WorkflowRun, error) {
	r, err := c.store.Load()
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, store.ErrNoRun) {
		return nil, err
	}
	if in.Phase != run.PhasePlanning {
		return nil, fmt.Errorf("%w: no active run; start with a planning step", gate.ErrPhaseIncomplete)
	}
	return run.NewRun(), nil
}

func (c *Controller) invokePlanning(r *run.WorkflowRun, in Input) (*Directive, error) {
	switch r.Phase {
	case run.PhasePlanning:
		// stay in phase
	case run.PhaseReview:
		// Loop back to planning only when the review verdict demands it.
		if r.Verdict == review.VerdictNone || r.Verdict.Passed() {
			return nil, fmt.Errorf("%w: run is in review; planning is only re-entered after a failing verdict", ErrPhaseOrder)
		}
		note := fmt.Sprintf("returning to planning: verdict %s", r.Verdict)
		if err := r.ReturnToPlanning(note); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: cannot invoke planning while in %s", ErrPhaseOrder, r.Phase)
	}

	if err := r.Advance(in.StepNumber, in.TotalSteps, in.Thoughts); err != nil {
		return nil, err
	}

	g := guidance.PlanningStep(in.StepNumber, in.TotalSteps)
	d := &Directive{
		Status:          StatusInProgress,
		Phase:           r.Phase,
		StepNumber:      in.StepNumber,
		TotalSteps:      in.TotalSteps,
		RequiredActions: g.Actions,
		Next:            g.Next,
	}
	if r.PlanningComplete {
		d.Status = StatusComplete
	}
	return d, nil
}

func (c *Controller) invokeReview(r *run.WorkflowRun, in Input) (*Directive, error) {
	switch r.Phase {
	case run.PhasePlanning:
		if err := gate.CanEnterReview(r.PlanningComplete); err != nil {
			return nil, err
		}
		note := fmt.Sprintf("entering review: %d-step sequence", len(c.reviewSteps))
		if err := r.EnterPhase(run.PhaseReview, len(c.reviewSteps), note); err != nil {
			return nil, err
		}
	case run.PhaseReview:
		// stay in phase
	default:
		return nil, fmt.Errorf("%w: cannot invoke review while in %s", ErrPhaseOrder, r.Phase)
	}

	if in.StepNumber > len(c.reviewSteps) {
		return nil, fmt.Errorf("%w: review has only %d steps", gate.ErrStepOrderViolation, len(c.reviewSteps))
	}
	requested := c.reviewSteps[in.StepNumber-1]

	// The run's step number counts consumed sequence entries.
	if err := gate.ValidateStepOrder(c.reviewSteps, r.StepNumber, requested); err != nil {
		return nil, err
	}

	if err := r.Advance(in.StepNumber, len(c.reviewSteps), in.Thoughts); err != nil {
		return nil, err
	}

	g := guidance.ReviewStep(in.StepNumber, len(c.reviewSteps), requested, c.agents[requested])
	d := &Directive{
		Status:          StatusInProgress,
		Phase:           r.Phase,
		StepNumber:      in.StepNumber,
		TotalSteps:      len(c.reviewSteps),
		StepName:        requested,
		RequiredActions: g.Actions,
		Next:            g.Next,
	}
	if next, ok := gate.NextStep(c.reviewSteps, r.StepNumber); ok {
		d.NextExpectedStep = next
	} else {
		d.Status = StatusComplete
	}
	return d, nil
}

// Backtrack explicitly regresses the run to an earlier step with a reason.
//
// The regression is recorded in the ledger as a backtrack event and the
// returned directive carries the guidance for the target step.
func (c *Controller) Backtrack(stepNumber int, reason string) (*Directive, error) {
	r, err := c.store.Load()
	if err != nil {
		return nil, err
	}

	if err := r.Backtrack(stepNumber, reason); err != nil {
		return nil, err
	}

	var g guidance.Guidance
	var stepName string
	switch r.Phase {
	case run.PhaseReview:
		stepName = c.reviewSteps[stepNumber-1]
		g = guidance.ReviewStep(stepNumber, r.TotalSteps, stepName, c.agents[stepName])
	default:
		g = guidance.PlanningStep(stepNumber, r.TotalSteps)
	}

	if err := c.store.Save(r); err != nil {
		return nil, err
	}

	return &Directive{
		Status:          StatusInProgress,
		Phase:           r.Phase,
		StepNumber:      stepNumber,
		TotalSteps:      r.TotalSteps,
		StepName:        stepName,
		RequiredActions: g.Actions,
		Next:            g.Next,
	}, nil
}

// RecordVerdict records a reviewer report at the terminal review step.
//
// The aggregate of the report's findings is authoritative when findings are
// present; a reviewer-stated verdict is honored only for a findings-free
// report. The returned directive carries ProceedToExecution or
// ReturnToPlanning per the resolved verdict.
func (c *Controller) RecordVerdict(report review.Report) (*Directive, error) {
	r, err := c.store.Load()
	if err != nil {
		return nil, err
	}

	resolved := report.Resolve()
	note := fmt.Sprintf("verdict %s with %d finding(s)", resolved, len(report.Findings))
	if report.Verdict.IsValid() && len(report.Findings) > 0 && report.Verdict != resolved {
		note = fmt.Sprintf("%s (reviewer stated %s; findings aggregate wins)", note, report.Verdict)
	}

	if err := r.SetVerdict(resolved, report.Findings, note); err != nil {
		return nil, err
	}
	if err := c.store.Save(r); err != nil {
		return nil, err
	}

	action := review.NextAction(resolved)
	d := &Directive{
		Status:     StatusComplete,
		Phase:      r.Phase,
		StepNumber: r.StepNumber,
		TotalSteps: r.TotalSteps,
		Action:     action,
	}
	if action == review.DirectiveProceedToExecution {
		d.RequiredActions = []string{
			fmt.Sprintf("Verdict %s recorded.", resolved),
			"Confirm any concerns are documented or addressed.",
		}
		d.Next = "Run `seqplan execute` to enter the execution phase."
	} else {
		d.RequiredActions = []string{
			fmt.Sprintf("Verdict %s recorded.", resolved),
			"Address the findings in the plan.",
			"Restart planning, then re-run the full review sequence.",
		}
		d.Next = "Return to planning:\n  seqplan step --phase planning --step-number 1 --total-steps 3 --thoughts \"Addressing review findings\""
	}
	return d, nil
}

// EnterExecution gates the REVIEW→EXECUTION transition on the recorded
// verdict and transitions the run when permitted.
func (c *Controller) EnterExecution() (*Directive, error) {
	r, err := c.store.Load()
	if err != nil {
		return nil, err
	}

	switch r.Phase {
	case run.PhaseReview:
		// the only phase execution can be entered from
	case run.PhasePlanning:
		return nil, fmt.Errorf("%w: execution requires the review phase to run first", gate.ErrPhaseIncomplete)
	case run.PhaseExecution:
		return nil, fmt.Errorf("%w: already in execution", ErrPhaseOrder)
	default:
		return nil, run.ErrRunAborted
	}

	if err := gate.CanEnterExecution(r.Verdict); err != nil {
		return nil, err
	}

	note := fmt.Sprintf("entering execution: verdict %s", r.Verdict)
	if err := r.EnterPhase(run.PhaseExecution, 1, note); err != nil {
		return nil, err
	}
	if err := c.store.Save(r); err != nil {
		return nil, err
	}

	return &Directive{
		Status:     StatusInProgress,
		Phase:      run.PhaseExecution,
		Action:     review.DirectiveProceedToExecution,
		RequiredActions: []string{
			"Implement the plan milestone by milestone.",
			"Transcribe annotated comments verbatim into the code.",
			"Verify each milestone's acceptance criteria before moving on.",
		},
		Next: "Work the milestones in order; abort the run if the plan is invalidated.",
	}, nil
}

// Abort moves the run to its terminal aborted state, retaining the ledger.
func (c *Controller) Abort(reason string) error {
	r, err := c.store.Load()
	if err != nil {
		return err
	}
	if err := r.Abort(reason); err != nil {
		return err
	}
	return c.store.Save(r)
}

// Current returns the persisted run without mutating it.
func (c *Controller) Current() (*run.WorkflowRun, error) {
	return c.store.Load()
}

func validateInput(in Input) error {
	if in.StepNumber < 1 {
		return fmt.Errorf("%w: step-number must be >= 1", ErrInvalidInput)
	}
	if in.Phase == run.PhasePlanning && in.TotalSteps < 1 {
		return fmt.Errorf("%w: total-steps must be >= 1", ErrInvalidInput)
	}
	return nil
}
