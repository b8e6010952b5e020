// Package guidance supplies the per-step required actions and next-step
// directives for the planning workflow.
//
// The guidance tables are static text consumed verbatim by the caller; the
// controller selects the right table from the phase and step position. The
// planning phase uses dedicated guidance for steps 1-4, a generic
// gap-analysis table for steps 5+, and a final verification checklist at
// the terminal step. The review phase has one delegation block per reviewer
// step and a completion checklist once all steps are consumed.
package guidance

import "fmt"

// Guidance is the instruction set for a single workflow step.
type Guidance struct {
	// Actions are the required actions for the step, one line each.
	// Empty strings are spacing and may be rendered as blank lines.
	Actions []string

	// Next tells the caller how to continue after completing the actions.
	Next string
}

// PlanningStep returns guidance for a planning phase step.
//
// The terminal step (stepNumber >= totalSteps) gets the final verification
// checklist; steps 1-4 get dedicated guidance; later steps get the generic
// backtrack/gap-analysis table.
func PlanningStep(stepNumber, totalSteps int) Guidance {
	if stepNumber >= totalSteps {
		return planningFinal()
	}

	next := stepNumber + 1
	switch stepNumber {
	case 1:
		return Guidance{
			Actions: []string{
				"You are an expert architect. Proceed with confidence.",
				"",
				"PRECONDITION: Confirm plan file path before proceeding.",
				"",
				"CONTEXT (understand before proposing):",
				"  - What code/systems does this touch?",
				"  - What patterns does the codebase follow?",
				"  - What prior decisions constrain this work?",
				"",
				"SCOPE (define boundaries):",
				"  - What exactly must be accomplished?",
				"  - What is OUT of scope?",
				"",
				"APPROACHES (consider alternatives):",
				"  - 2-3 options with Advantage/Disadvantage for each",
				"",
				"CONSTRAINTS (list by category):",
				"  - Technical: language, APIs, existing patterns",
				"  - Organizational: timeline, expertise, approvals",
				"  - Dependencies: external services, data formats",
				"",
				"SUCCESS (observable outcomes):",
				"  - Defined testable acceptance criteria",
			},
			Next: fmt.Sprintf("Invoke step %d with your context analysis and approach options.", next),
		}
	case 2:
		return Guidance{
			Actions: []string{
				"EVALUATE FIRST: for each approach from step 1:",
				"  | Approach | P(success) | Failure mode | Backtrack cost |",
				"",
				"STOP CHECK: If ALL approaches show LOW probability or HIGH",
				"backtrack cost, STOP. Request clarification from user.",
				"",
				"DECIDE: Select approach. Record in Decision Log with a",
				"multi-step reasoning chain, covering architectural AND",
				"micro-decisions (timeouts, data structures).",
				"",
				"REJECTED: Document rejected alternatives with CONCRETE reasons.",
				"The technical writer uses this for 'why not X' code comments.",
				"",
				"ARCHITECTURE: Capture component relationships and data flow",
				"in ASCII diagrams. These feed the Invisible Knowledge section.",
				"",
				"MILESTONES: Break into deployable increments.",
				"  - Each milestone independently testable",
				"  - Scope: 1-3 files per milestone",
				"  - Map dependencies (circular = design problem)",
			},
			Next: fmt.Sprintf("Invoke step %d with your chosen approach, architecture, and milestone structure.", next),
		}
	case 3:
		return Guidance{
			Actions: []string{
				"RISKS: Document risks NOW. The quality reviewer excludes",
				"documented risks from findings; undocumented risks WILL be",
				"flagged.",
				"  | Risk | Mitigation or 'Accepted: [reason]' |",
				"",
				"UNCERTAINTY FLAGS: for EACH milestone, add where applicable:",
				"  - Multiple valid implementations -> needs rationale",
				"  - Depends on external system    -> needs error review",
				"  - First use of pattern          -> needs conformance check",
				"",
				"REFINE MILESTONES: verify each has exact file paths, specific",
				"behaviors (not 'handle X'), testable pass/fail acceptance",
				"criteria, and diff-format code for non-trivial logic.",
				"",
				"CONTRACT CONSIDERATION: do any components need formal",
				"contracts? Public APIs, complex validation, state machines,",
				"error-prone I/O or concurrency, security-sensitive code.",
			},
			Next: "If contracts needed: invoke step 4 (adjust total-steps) with contract needs.\n" +
				"If no contracts: invoke the final verification step (current total-steps).",
		}
	case 4:
		return Guidance{
			Actions: []string{
				"CONTRACT SPECIFICATION: define contracts inline in each",
				"milestone for the components identified in step 3.",
				"",
				"For each component:",
				"  Preconditions:  what the caller must provide",
				"  Postconditions: what the function guarantees",
				"  Boundary conditions: empty, null, zero, max (concrete values)",
				"  Error behaviors: specific error types and conditions",
				"",
				"TESTABILITY CHECK: for each condition, what test would verify",
				"it? If you can't describe a concrete test, rewrite the",
				"condition.",
			},
			Next: fmt.Sprintf("Invoke step %d with contracts defined, ready for final verification.", next),
		}
	}

	// Steps 5+
	remaining := totalSteps - stepNumber
	return Guidance{
		Actions: []string{
			"BACKTRACK CHECK: before proceeding, verify no dead ends:",
			"  - Has new information invalidated a prior decision?",
			"  - Is a milestone now impossible given discovered constraints?",
			"  - Are you adding complexity to work around a fundamental issue?",
			"If yes to any: backtrack to the relevant earlier step with a reason.",
			"",
			"GAP ANALYSIS: what's missing?",
			"  - Any milestone without exact file paths?",
			"  - Any acceptance criteria not testable pass/fail?",
			"  - Any non-trivial logic without diff-format code?",
			"  - Any milestone missing uncertainty flags where applicable?",
			"",
			"PLANNING CONTEXT CHECK:",
			"  - Decision Log: every major choice has multi-step reasoning?",
			"  - Rejected Alternatives: at least one per major decision?",
			"  - Known Risks: all failure modes identified with mitigations?",
			"",
			"DEVELOPER WALKTHROUGH: can each milestone be implemented from",
			"the spec alone? If gaps remain, address them. If complete,",
			"reduce total-steps.",
		},
		Next: fmt.Sprintf("Invoke step %d. %d step(s) remaining until completion. (Or backtrack to an earlier step.)", stepNumber+1, remaining),
	}
}

// planningFinal is the terminal planning checklist. Completing it emits the
// phase-complete signal that unlocks the review phase.
func planningFinal() Guidance {
	return Guidance{
		Actions: []string{
			"FINAL VERIFICATION - complete each section before writing.",
			"",
			"PLANNING CONTEXT: reviewers consume this section VERBATIM.",
			"  Decision Log: major choices with multi-step reasoning chains,",
			"  including micro-decisions (timeouts, data structures).",
			"  Rejected Alternatives: what you did NOT do, and the concrete",
			"  reason that ruled it out.",
			"  Known Risks: failure modes with mitigation or acceptance",
			"  rationale for each.",
			"",
			"INVISIBLE KNOWLEDGE (sources README content, skip if trivial):",
			"  component relationship diagram, data flow, module organization",
			"  rationale, invariants, tradeoffs with costs/benefits.",
			"",
			"MILESTONES: for each, verify exact file paths, specific",
			"requirements, testable pass/fail acceptance criteria, diff-format",
			"code changes, uncertainty flags, and contracts for public APIs",
			"and complex logic.",
			"",
			"DOCUMENTATION MILESTONE: exists, uses tabular index format,",
			"includes README only if Invisible Knowledge has content.",
			"",
			"COMMENT HYGIENE: comments in code snippets are transcribed",
			"verbatim. Write in timeless present - describe what the code IS,",
			"not what you are changing.",
		},
		Next: "PLANNING PHASE COMPLETE.\n\n" +
			"1. Write the plan to its file.\n" +
			"2. Start the review phase:\n\n" +
			"   seqplan step --phase review --step-number 1 --total-steps 4 --thoughts \"Plan written to [path]\"\n\n" +
			"Skipping review means code ships without WHY documentation and\n" +
			"review findings surface during execution instead of before it.\n\n" +
			"Review phase:\n" +
			"  Step 1: annotate          - technical writer annotates code snippets\n" +
			"  Step 2: specify-contracts - contract specifier validates/defines contracts\n" +
			"  Step 3: specify-tests     - test specifier defines test specifications\n" +
			"  Step 4: quality-review    - quality reviewer validates the plan\n" +
			"  Then: record the verdict and enter execution",
	}
}

// ReviewStep returns guidance for a review phase step.
//
// stepName is the sequence entry being consumed; agent is the collaborator
// responsible for it (from the sequence manifest or config). Steps past the
// end of the sequence get the completion checklist.
func ReviewStep(stepNumber, totalSteps int, stepName, agent string) Guidance {
	if stepNumber > totalSteps {
		return reviewComplete()
	}

	next := stepNumber + 1
	switch stepName {
	case "annotate":
		return Guidance{
			Actions: delegation(agent, stepName,
				"1. Read the Planning Context section FIRST",
				"2. Prioritize annotation by uncertainty (HIGH/MEDIUM/LOW)",
				"3. Add WHY comments to code snippets from the Decision Log",
				"4. Enrich plan prose with rationale",
				"5. Add a documentation milestone if missing",
				"6. FLAG any non-obvious logic lacking rationale",
			),
			Next: fmt.Sprintf("After %s completes, invoke review step %d with a summary of changes.", agent, next),
		}
	case "specify-contracts":
		return Guidance{
			Actions: delegation(agent, stepName,
				"Determine the contract coverage scenario:",
				"",
				"SCENARIO A (contracts exist in the plan):",
				"  validate contracts are testable, check boundary coverage",
				"  (empty, null, max, zero), identify gaps, enhance where",
				"  needed, return a validation report.",
				"",
				"SCENARIO B (no contracts or incomplete):",
				"  identify components needing contracts, categorize by",
				"  priority, define contracts for HIGH priority components",
				"  inline in milestones, flag MEDIUM priority.",
			),
			Next: fmt.Sprintf("After %s completes, invoke review step %d with a summary.", agent, next),
		}
	case "specify-tests":
		return Guidance{
			Actions: delegation(agent, stepName,
				"1. Analyze the plan and contracts to determine test strategies",
				"2. Define unit tests for function-level behavior",
				"3. Define integration tests for component interactions",
				"4. Define property-based tests for invariants where applicable",
				"5. Identify edge cases and boundaries from contracts",
				"6. Specify which test types verify which behaviors",
				"7. Add test specifications to each milestone",
			),
			Next: fmt.Sprintf("After %s completes, invoke review step %d with a summary.", agent, next),
		}
	case "quality-review":
		return Guidance{
			Actions: delegation(agent, stepName,
				"1. Read the Planning Context (constraints, known risks)",
				"2. Apply production-reliability review with open questions",
				"3. Apply project-conformance review",
				"4. Check for contract circumvention",
				"5. Verify contracts are testable and complete",
				"6. Verify test specifications cover all contract conditions",
				"7. Accept risks documented in Known Risks as acknowledged",
				"8. Pay extra attention to milestones with uncertainty flags",
				"",
				"Expected output verdict:",
				"  PASS | PASS_WITH_CONCERNS | NEEDS_CHANGES | CRITICAL_ISSUES",
			),
			Next: "After the verdict is returned, record it:\n" +
				"  seqplan verdict --report <findings file>\n" +
				"PASS or PASS_WITH_CONCERNS: run `seqplan execute`.\n" +
				"NEEDS_CHANGES or CRITICAL_ISSUES: address the findings, then restart review from step 1.",
		}
	}

	return Guidance{
		Actions: []string{"Continue the review process as needed."},
		Next:    fmt.Sprintf("Invoke review step %d when ready.", next),
	}
}

// reviewComplete is the checklist confirming all review steps are consumed.
func reviewComplete() Guidance {
	return Guidance{
		Actions: []string{
			"REVIEW COMPLETE - confirm before proceeding to execution:",
			"  - Code snippets annotated with WHY comments?",
			"  - Plan prose enriched with rationale?",
			"  - Contracts defined for public APIs and complex components?",
			"  - Contracts verified testable?",
			"  - Test specifications defined for all non-trivial milestones?",
			"  - Test specifications cover all contract conditions?",
			"  - Verdict is PASS or PASS_WITH_CONCERNS?",
			"  - Any concerns documented or addressed?",
		},
		Next: "PLAN APPROVED.\n\nRun `seqplan execute` to enter the execution phase.",
	}
}

// delegation renders a standard delegation block for a reviewer step.
func delegation(agent, mode string, task ...string) []string {
	actions := []string{
		fmt.Sprintf("DELEGATE to %s (mode: %s):", agent, mode),
		"",
	}
	for _, line := range task {
		if line == "" {
			actions = append(actions, "")
			continue
		}
		actions = append(actions, "  "+line)
	}
	actions = append(actions, "", fmt.Sprintf("Wait for %s to complete.", agent))
	return actions
}
