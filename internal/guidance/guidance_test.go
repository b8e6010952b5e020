package guidance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joined(g Guidance) string {
	return strings.Join(g.Actions, "\n")
}

func TestPlanningStep_DedicatedSteps(t *testing.T) {
	tests := []struct {
		step     int
		contains string
	}{
		{1, "CONTEXT"},
		{2, "DECIDE"},
		{3, "RISKS"},
		{4, "CONTRACT SPECIFICATION"},
	}

	for _, tt := range tests {
		g := PlanningStep(tt.step, 6)
		assert.Contains(t, joined(g), tt.contains, "step %d", tt.step)
		assert.NotEmpty(t, g.Next, "step %d", tt.step)
	}
}

func TestPlanningStep_GenericGapAnalysis(t *testing.T) {
	g := PlanningStep(5, 8)

	text := joined(g)
	assert.Contains(t, text, "BACKTRACK CHECK")
	assert.Contains(t, text, "GAP ANALYSIS")
	assert.Contains(t, g.Next, "step 6")
	assert.Contains(t, g.Next, "3 step(s) remaining")
}

func TestPlanningStep_TerminalChecklist(t *testing.T) {
	g := PlanningStep(3, 3)

	assert.Contains(t, joined(g), "FINAL VERIFICATION")
	assert.Contains(t, g.Next, "PLANNING PHASE COMPLETE")
	assert.Contains(t, g.Next, "--phase review")
}

func TestPlanningStep_TerminalWinsOverDedicated(t *testing.T) {
	// A two-step plan ends on step 2: the checklist, not step 2 guidance.
	g := PlanningStep(2, 2)
	assert.Contains(t, joined(g), "FINAL VERIFICATION")
}

func TestReviewStep_DelegationBlocks(t *testing.T) {
	tests := []struct {
		step     int
		name     string
		agent    string
		contains string
	}{
		{1, "annotate", "@agent-technical-writer", "WHY comments"},
		{2, "specify-contracts", "@agent-contract-specifier", "SCENARIO A"},
		{3, "specify-tests", "@agent-test-specifier", "property-based"},
		{4, "quality-review", "@agent-quality-reviewer", "PASS_WITH_CONCERNS"},
	}

	for _, tt := range tests {
		g := ReviewStep(tt.step, 4, tt.name, tt.agent)
		text := joined(g)
		assert.Contains(t, text, "DELEGATE to "+tt.agent, "step %s", tt.name)
		assert.Contains(t, text, "mode: "+tt.name, "step %s", tt.name)
		assert.Contains(t, text, tt.contains, "step %s", tt.name)
	}
}

func TestReviewStep_IntermediateNextPointsForward(t *testing.T) {
	g := ReviewStep(1, 4, "annotate", "@agent-technical-writer")
	assert.Contains(t, g.Next, "review step 2")
}

func TestReviewStep_QualityReviewNextRecordsVerdict(t *testing.T) {
	g := ReviewStep(4, 4, "quality-review", "@agent-quality-reviewer")
	assert.Contains(t, g.Next, "seqplan verdict")
	assert.Contains(t, g.Next, "restart review from step 1")
}

func TestReviewStep_CompletionChecklist(t *testing.T) {
	g := ReviewStep(5, 4, "", "")

	assert.Contains(t, joined(g), "REVIEW COMPLETE")
	assert.Contains(t, g.Next, "PLAN APPROVED")
	assert.Contains(t, g.Next, "seqplan execute")
}

func TestDelegation_WaitsForAgent(t *testing.T) {
	g := ReviewStep(1, 4, "annotate", "@agent-docs")
	last := g.Actions[len(g.Actions)-1]
	require.Contains(t, last, "Wait for @agent-docs to complete.")
}
