package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqplan/internal/config"
	"seqplan/internal/controller"
	"seqplan/internal/output"
	"seqplan/internal/store"
)

// newTestApp wires an App against a temp-dir run file and a buffer writer.
func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	t.Setenv("SEQPLAN_RUN_PATH", "")

	cfg := config.DefaultConfig()
	st := store.NewStoreWithPath(t.TempDir(), "run.yaml")

	var buf bytes.Buffer
	printer := output.NewPrinterWithWriter(&buf)
	printer.SetTruncateLength(cfg.Output.TruncateLength)

	return &App{
		Config:     cfg,
		Store:      st,
		Controller: controller.New(st, cfg),
		Printer:    printer,
	}, &buf
}

func planningStep(t *testing.T, app *App, step, total int) {
	t.Helper()
	res := Run(app, []string{
		"step", "--phase", "planning",
		"--step-number", fmt.Sprint(step),
		"--total-steps", fmt.Sprint(total),
		"--thoughts", fmt.Sprintf("planning step %d", step),
	})
	require.Zero(t, res.ExitCode)
}

func reviewStep(t *testing.T, app *App, step int) {
	t.Helper()
	res := Run(app, []string{
		"step", "--phase", "review",
		"--step-number", fmt.Sprint(step),
		"--thoughts", fmt.Sprintf("review step %d", step),
	})
	require.Zero(t, res.ExitCode)
}

func TestStepCommand_Planning(t *testing.T) {
	app, buf := newTestApp(t)

	res := Run(app, []string{
		"step", "--phase", "planning",
		"--step-number", "1", "--total-steps", "4",
		"--thoughts", "Design the auth system",
	})

	assert.Zero(t, res.ExitCode)
	out := buf.String()
	assert.Contains(t, out, "PLANNING PHASE")
	assert.Contains(t, out, "Step 1 of 4")
	assert.Contains(t, out, "phase_in_progress")
	assert.Contains(t, out, "Design the auth system")
	assert.Contains(t, out, "REQUIRED ACTIONS:")
	assert.True(t, app.Store.Exists(), "run persisted")
}

func TestStepCommand_TerminalStepShowsChecklist(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	buf.Reset()

	planningStep(t, app, 3, 3)

	out := buf.String()
	assert.Contains(t, out, "phase_complete")
	assert.Contains(t, out, "FINAL CHECKLIST:")
	assert.Contains(t, out, "PLANNING PHASE COMPLETE")
}

func TestStepCommand_RejectsUnknownPhase(t *testing.T) {
	app, buf := newTestApp(t)

	res := Run(app, []string{
		"step", "--phase", "execution",
		"--step-number", "1", "--total-steps", "1",
		"--thoughts", "nope",
	})

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, buf.String(), "ERROR:")
}

func TestStepCommand_RequiresFlags(t *testing.T) {
	app, _ := newTestApp(t)

	res := Run(app, []string{"step", "--thoughts", "missing step number"})
	assert.Equal(t, 1, res.ExitCode)
	assert.Error(t, res.Err)
}

func TestStepCommand_StepRegressionRemediation(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	buf.Reset()

	res := Run(app, []string{
		"step", "--phase", "planning",
		"--step-number", "1", "--total-steps", "3",
		"--thoughts", "silently going back",
	})

	assert.Equal(t, 1, res.ExitCode)
	out := buf.String()
	assert.Contains(t, out, "ERROR:")
	assert.Contains(t, out, "seqplan backtrack")
}

func TestStepCommand_ReviewOutOfOrder(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	reviewStep(t, app, 1)
	buf.Reset()

	res := Run(app, []string{
		"step", "--phase", "review",
		"--step-number", "4",
		"--thoughts", "skipping to quality review",
	})

	assert.Equal(t, 1, res.ExitCode)
	out := buf.String()
	assert.Contains(t, out, `"specify-contracts"`)
	assert.Contains(t, out, "fixed order")
}

func TestBacktrackCommand(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 4)
	planningStep(t, app, 3, 4)
	buf.Reset()

	res := Run(app, []string{
		"backtrack", "--step-number", "2",
		"--reason", "new constraint invalidates approach",
	})

	assert.Zero(t, res.ExitCode)
	assert.Contains(t, buf.String(), "Step 2 of 4")

	r, err := app.Controller.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, r.StepNumber)
}

func TestVerdictCommand_PassFromFlags(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	for i := 1; i <= 4; i++ {
		reviewStep(t, app, i)
	}
	buf.Reset()

	res := Run(app, []string{"verdict", "--verdict", "PASS"})

	assert.Zero(t, res.ExitCode)
	out := buf.String()
	assert.Contains(t, out, "VERDICT:")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "seqplan execute")
}

func TestVerdictCommand_FindingsAggregateAndExitCode(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	for i := 1; i <= 4; i++ {
		reviewStep(t, app, i)
	}
	buf.Reset()

	res := Run(app, []string{
		"verdict",
		"--finding", "high:Retry loop lacks backoff:src/sync.go",
		"--finding", "suggestion:Rename helper",
	})

	assert.Equal(t, 1, res.ExitCode, "failing verdict exits non-zero")
	out := buf.String()
	assert.Contains(t, out, "NEEDS_CHANGES")
	assert.Contains(t, out, "[high] Retry loop lacks backoff (src/sync.go)")
	assert.Contains(t, out, "Return to planning")
}

func TestVerdictCommand_ReportFile(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	for i := 1; i <= 4; i++ {
		reviewStep(t, app, i)
	}
	buf.Reset()

	reportPath := filepath.Join(t.TempDir(), "findings.jsonl")
	report := `{"severity":"should-fix","title":"tighten validation"}
{"severity":"suggestion","title":"rename helper"}
`
	require.NoError(t, os.WriteFile(reportPath, []byte(report), 0644))

	res := Run(app, []string{"verdict", "--report", reportPath})

	assert.Zero(t, res.ExitCode, "PASS_WITH_CONCERNS still proceeds")
	assert.Contains(t, buf.String(), "PASS_WITH_CONCERNS")
}

func TestVerdictCommand_UppercaseSeverityReportBlocksExecution(t *testing.T) {
	// Reviewer output using the upper-case wire vocabulary must aggregate
	// to the failing verdict, not slip through as PASS.
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	for i := 1; i <= 4; i++ {
		reviewStep(t, app, i)
	}
	buf.Reset()

	reportPath := filepath.Join(t.TempDir(), "findings.jsonl")
	report := `{"severity":"CRITICAL","title":"data loss"}
{"verdict":"CRITICAL_ISSUES"}
`
	require.NoError(t, os.WriteFile(reportPath, []byte(report), 0644))

	res := Run(app, []string{"verdict", "--report", reportPath})
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, buf.String(), "CRITICAL_ISSUES")

	buf.Reset()
	res = Run(app, []string{"execute"})
	assert.Equal(t, 1, res.ExitCode)
}

func TestVerdictCommand_JSONFinding(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	for i := 1; i <= 4; i++ {
		reviewStep(t, app, i)
	}
	buf.Reset()

	res := Run(app, []string{
		"verdict",
		"--finding", `{"severity":"high","title":"Retry loop lacks backoff","location":"src/sync.go"}`,
	})

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, buf.String(), "[high] Retry loop lacks backoff (src/sync.go)")
}

func TestVerdictCommand_MixedCaseFindingSpec(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	for i := 1; i <= 4; i++ {
		reviewStep(t, app, i)
	}
	buf.Reset()

	res := Run(app, []string{"verdict", "--finding", "SHOULD_FIX:tighten validation"})

	assert.Zero(t, res.ExitCode)
	assert.Contains(t, buf.String(), "PASS_WITH_CONCERNS")
}

func TestVerdictCommand_UnknownVerdict(t *testing.T) {
	app, _ := newTestApp(t)

	res := Run(app, []string{"verdict", "--verdict", "MAYBE"})
	assert.Equal(t, 1, res.ExitCode)
}

func TestVerdictCommand_MalformedFinding(t *testing.T) {
	app, _ := newTestApp(t)

	res := Run(app, []string{"verdict", "--finding", "no-colon-here"})
	assert.Equal(t, 1, res.ExitCode)

	res = Run(app, []string{"verdict", "--finding", "blocker:bad severity"})
	assert.Equal(t, 1, res.ExitCode)
}

func TestExecuteCommand_FullHappyPath(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	for i := 1; i <= 4; i++ {
		reviewStep(t, app, i)
	}
	res := Run(app, []string{"verdict", "--verdict", "PASS"})
	require.Zero(t, res.ExitCode)
	buf.Reset()

	res = Run(app, []string{"execute"})

	assert.Zero(t, res.ExitCode)
	out := buf.String()
	assert.Contains(t, out, "EXECUTION PHASE")
	assert.Contains(t, out, "milestone")
}

func TestExecuteCommand_BlockedWithoutVerdict(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	for i := 1; i <= 4; i++ {
		reviewStep(t, app, i)
	}
	buf.Reset()

	res := Run(app, []string{"execute"})

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, buf.String(), "seqplan verdict")
}

func TestExecuteCommand_BlockedByFailingVerdict(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	planningStep(t, app, 3, 3)
	for i := 1; i <= 4; i++ {
		reviewStep(t, app, i)
	}
	Run(app, []string{"verdict", "--finding", "critical:data loss on retry"})
	buf.Reset()

	res := Run(app, []string{"execute"})

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, buf.String(), "address the findings")
}

func TestStatusCommand(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 2, 5)
	buf.Reset()

	res := Run(app, []string{"status"})

	assert.Zero(t, res.ExitCode)
	out := buf.String()
	assert.Contains(t, out, "planning")
	assert.Contains(t, out, "2 of 5")
}

func TestStatusCommand_NoRun(t *testing.T) {
	app, buf := newTestApp(t)

	res := Run(app, []string{"status"})

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, buf.String(), "No workflow run is active.")
}

func TestNotesCommand(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)
	planningStep(t, app, 2, 3)
	Run(app, []string{"backtrack", "--step-number", "1", "--reason", "redo the analysis"})
	buf.Reset()

	res := Run(app, []string{"notes"})

	assert.Zero(t, res.ExitCode)
	out := buf.String()
	assert.Contains(t, out, "planning step 1")
	assert.Contains(t, out, "redo the analysis")
	assert.Contains(t, out, "backtrack")
}

func TestAbortCommand(t *testing.T) {
	app, buf := newTestApp(t)
	planningStep(t, app, 1, 3)

	res := Run(app, []string{"abort", "--reason", "task abandoned"})
	assert.Zero(t, res.ExitCode)

	buf.Reset()
	res = Run(app, []string{
		"step", "--phase", "planning",
		"--step-number", "2", "--total-steps", "3",
		"--thoughts", "still going",
	})
	assert.Equal(t, 1, res.ExitCode)
}

func TestAbortCommand_RequiresReason(t *testing.T) {
	app, _ := newTestApp(t)
	planningStep(t, app, 1, 3)

	res := Run(app, []string{"abort"})
	assert.Equal(t, 1, res.ExitCode)
}

func TestRun_UnknownCommand(t *testing.T) {
	app, _ := newTestApp(t)

	res := Run(app, []string{"bogus"})
	assert.Equal(t, 1, res.ExitCode)
	assert.Error(t, res.Err)
}

func TestExitError(t *testing.T) {
	err := NewExitError(3)
	assert.Equal(t, "exit status 3", err.Error())

	code, ok := IsExitError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, code)

	_, ok = IsExitError(assert.AnError)
	assert.False(t, ok)
	_, ok = IsExitError(nil)
	assert.False(t, ok)
}
