// Package review provides verdict evaluation for plan review outcomes.
//
// External reviewer collaborators (technical writer, contract specifier,
// test specifier, quality reviewer) produce findings with severity tiers.
// This package aggregates those findings into a run-level [Verdict] and
// derives the next-action [Directive] from it.
//
// Key types:
//   - [Severity] - Finding severity tier with a fixed ordering
//   - [Finding] - A single reported issue
//   - [Verdict] - Terminal review outcome
//   - [Report] - A reviewer's verdict plus findings
//
// The severity ordering is fixed: critical > high > should-fix > suggestion.
// [Aggregate] takes the maximum severity present, independent of finding
// count or order.
package review

import (
	"fmt"
	"strings"
)

// Severity is the severity tier of a single finding.
type Severity string

const (
	// SeverityCritical indicates an issue that blocks execution entirely.
	SeverityCritical Severity = "critical"

	// SeverityHigh indicates an issue that must be fixed before execution.
	SeverityHigh Severity = "high"

	// SeverityShouldFix indicates an issue worth fixing but not blocking.
	SeverityShouldFix Severity = "should-fix"

	// SeveritySuggestion indicates an optional improvement.
	SeveritySuggestion Severity = "suggestion"
)

// severityRank maps severities to their fixed ordering.
// Higher rank wins during aggregation.
var severityRank = map[Severity]int{
	SeveritySuggestion: 1,
	SeverityShouldFix:  2,
	SeverityHigh:       3,
	SeverityCritical:   4,
}

// IsValid returns true if s is one of the recognized severity tiers.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank returns the severity's position in the fixed ordering.
// Unknown severities rank below suggestion (0).
func (s Severity) Rank() int {
	return severityRank[s]
}

// ParseSeverity normalizes a raw severity string to its canonical [Severity].
//
// Matching is case-insensitive and accepts underscores for hyphens, so
// "CRITICAL" and "SHOULD_FIX" parse the same as "critical" and "should-fix".
// A string outside the known tiers is an error.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-"))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown severity %q (critical, high, should-fix, suggestion)", raw)
	}
	return s, nil
}

// Finding is a single reported issue from a reviewer.
type Finding struct {
	// Severity is the finding's severity tier.
	Severity Severity `json:"severity" yaml:"severity"`

	// Title is a short description of the issue.
	Title string `json:"title" yaml:"title"`

	// Location identifies where in the plan the issue was found.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

// Verdict is the terminal outcome of the review phase.
type Verdict string

const (
	// VerdictNone is the zero value, meaning no verdict has been recorded.
	VerdictNone Verdict = ""

	// VerdictPass indicates the plan is approved for execution.
	VerdictPass Verdict = "PASS"

	// VerdictPassWithConcerns indicates approval with documented concerns.
	VerdictPassWithConcerns Verdict = "PASS_WITH_CONCERNS"

	// VerdictNeedsChanges indicates the plan must return to planning.
	VerdictNeedsChanges Verdict = "NEEDS_CHANGES"

	// VerdictCriticalIssues indicates blocking issues were found.
	VerdictCriticalIssues Verdict = "CRITICAL_ISSUES"
)

// IsValid returns true if v is a recognized non-empty verdict.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictPass, VerdictPassWithConcerns, VerdictNeedsChanges, VerdictCriticalIssues:
		return true
	}
	return false
}

// Passed returns true if the verdict permits entering execution.
func (v Verdict) Passed() bool {
	return v == VerdictPass || v == VerdictPassWithConcerns
}

// ParseVerdict normalizes a raw verdict string to its canonical [Verdict].
// Matching is case-insensitive; an unrecognized string is an error.
func ParseVerdict(raw string) (Verdict, error) {
	v := Verdict(strings.ToUpper(strings.TrimSpace(raw)))
	if !v.IsValid() {
		return "", fmt.Errorf("unknown verdict %q (PASS, PASS_WITH_CONCERNS, NEEDS_CHANGES, CRITICAL_ISSUES)", raw)
	}
	return v, nil
}

// Aggregate computes the run-level verdict from a sequence of findings.
//
// The aggregate takes the maximum severity present:
//   - any critical finding → [VerdictCriticalIssues]
//   - else any high finding → [VerdictNeedsChanges]
//   - else any should-fix finding → [VerdictPassWithConcerns]
//   - else (only suggestions, or no findings) → [VerdictPass]
//
// An empty findings sequence is a valid terminal state, not an error:
// absence of findings aggregates to [VerdictPass]. A finding whose severity
// is not a recognized tier fails closed to [VerdictCriticalIssues]: an
// unclassifiable finding must never unlock execution.
func Aggregate(findings []Finding) Verdict {
	max := 0
	for _, f := range findings {
		if !f.Severity.IsValid() {
			return VerdictCriticalIssues
		}
		if r := f.Severity.Rank(); r > max {
			max = r
		}
	}

	switch {
	case max >= severityRank[SeverityCritical]:
		return VerdictCriticalIssues
	case max >= severityRank[SeverityHigh]:
		return VerdictNeedsChanges
	case max >= severityRank[SeverityShouldFix]:
		return VerdictPassWithConcerns
	default:
		return VerdictPass
	}
}

// Directive is the next action the workflow should take after a verdict.
type Directive string

const (
	// DirectiveProceedToExecution indicates the plan may enter execution.
	DirectiveProceedToExecution Directive = "proceed-to-execution"

	// DirectiveReturnToPlanning indicates the plan must return to planning.
	DirectiveReturnToPlanning Directive = "return-to-planning"
)

// NextAction derives the next-action directive from a verdict.
//
// PASS and PASS_WITH_CONCERNS proceed to execution; NEEDS_CHANGES and
// CRITICAL_ISSUES return to planning. An unset verdict also returns to
// planning, since review has not concluded.
func NextAction(v Verdict) Directive {
	if v.Passed() {
		return DirectiveProceedToExecution
	}
	return DirectiveReturnToPlanning
}

// Report is a reviewer's complete output: an optional explicit verdict
// plus the ordered findings that support it.
type Report struct {
	// Verdict is the reviewer's own verdict, if stated.
	// When findings are present, [Aggregate] over the findings is
	// authoritative and this field is advisory.
	Verdict Verdict `json:"verdict,omitempty" yaml:"verdict,omitempty"`

	// Findings are the reported issues in the order the reviewer emitted them.
	Findings []Finding `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// Resolve returns the effective verdict for the report.
//
// When findings are present, the aggregate of the findings is authoritative.
// When the report has no findings, a reviewer-stated verdict is honored
// (a reviewer may fail a plan for reasons outside the findings list);
// otherwise the empty report resolves to [VerdictPass].
func (r Report) Resolve() Verdict {
	if len(r.Findings) > 0 {
		return Aggregate(r.Findings)
	}
	if r.Verdict.IsValid() {
		return r.Verdict
	}
	return VerdictPass
}
