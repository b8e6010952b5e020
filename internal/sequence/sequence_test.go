package sequence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `phase,step,agent,command
review,annotate,technical-writer,@agent-technical-writer
review,specify-contracts,contract-specifier,@agent-contract-specifier
review,specify-tests,test-specifier,@agent-test-specifier
review,quality-review,quality-reviewer,@agent-quality-reviewer
`

func TestReadFromString(t *testing.T) {
	m, err := ReadFromString(validManifest)
	require.NoError(t, err)
	require.Len(t, m.Entries, 4)

	assert.Equal(t, "review", m.Entries[0].Phase)
	assert.Equal(t, StepAnnotate, m.Entries[0].Step)
	assert.Equal(t, "technical-writer", m.Entries[0].Agent)
	assert.Equal(t, "@agent-technical-writer", m.Entries[0].Command)
}

func TestReadFromString_ColumnOrderIndependent(t *testing.T) {
	data := `step,agent,phase
annotate,technical-writer,review
specify-contracts,contract-specifier,review
specify-tests,test-specifier,review
quality-review,quality-reviewer,review
`
	m, err := ReadFromString(data)
	require.NoError(t, err)
	require.Len(t, m.Entries, 4)
	assert.Equal(t, StepSpecifyContracts, m.Entries[1].Step)
	assert.Equal(t, "contract-specifier", m.Entries[1].Agent)
	assert.Empty(t, m.Entries[1].Command, "missing column yields empty field")
}

func TestReadFromString_MissingRequiredColumn(t *testing.T) {
	_, err := ReadFromString("step,agent\nannotate,writer\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phase")
}

func TestReadFromString_MissingStepName(t *testing.T) {
	data := `phase,step
review,annotate
review,
`
	_, err := ReadFromString(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadFromString_Empty(t *testing.T) {
	_, err := ReadFromString("phase,step\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no step entries")
}

func TestReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequence.csv")
	require.NoError(t, os.WriteFile(path, []byte(validManifest), 0644))

	m, err := ReadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, m.Entries, 4)
}

func TestReadFromFile_Missing(t *testing.T) {
	_, err := ReadFromFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestValidate_RejectsReorderedReviewSteps(t *testing.T) {
	data := `phase,step
review,annotate
review,specify-tests
review,specify-contracts
review,quality-review
`
	_, err := ReadFromString(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"specify-contracts"`)
}

func TestValidate_RejectsMissingReviewStep(t *testing.T) {
	data := `phase,step
review,annotate
review,specify-contracts
review,quality-review
`
	_, err := ReadFromString(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 steps")
}

func TestValidate_NonReviewPhasesUnconstrained(t *testing.T) {
	data := `phase,step
planning,context-analysis
planning,approach-selection
`
	m, err := ReadFromString(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"context-analysis", "approach-selection"}, m.StepsForPhase("planning"))
}

func TestStepsForPhase(t *testing.T) {
	m, err := ReadFromString(validManifest)
	require.NoError(t, err)

	assert.Equal(t, DefaultReviewSteps(), m.StepsForPhase("review"))
	assert.Empty(t, m.StepsForPhase("execution"))
}

func TestGetEntry(t *testing.T) {
	m, err := ReadFromString(validManifest)
	require.NoError(t, err)

	e := m.GetEntry("review", StepQualityReview)
	require.NotNil(t, e)
	assert.Equal(t, "quality-reviewer", e.Agent)

	assert.Nil(t, m.GetEntry("review", "nonexistent"))
	assert.Nil(t, m.GetEntry("planning", StepAnnotate))
}

func TestAgentFor(t *testing.T) {
	m, err := ReadFromString(validManifest)
	require.NoError(t, err)

	assert.Equal(t, "test-specifier", m.AgentFor("review", StepSpecifyTests))
	assert.Empty(t, m.AgentFor("review", "nonexistent"))
}

func TestDefaultReviewSteps(t *testing.T) {
	steps := DefaultReviewSteps()
	require.Len(t, steps, 4)
	assert.Equal(t, StepAnnotate, steps[0])
	assert.Equal(t, StepQualityReview, steps[3])
}
