// Package sequence reads step-sequence manifest files.
//
// A sequence manifest catalogs the named steps of each workflow phase with
// the reviewer agent and command responsible for each step. This lets a
// project rename agents or commands without recompiling, while the gate
// still enforces ordering against the declared sequence.
//
// CSV format:
//
//	phase,step,agent,command
//	review,annotate,technical-writer,@agent-technical-writer
//	review,specify-contracts,contract-specifier,@agent-contract-specifier
//	review,specify-tests,test-specifier,@agent-test-specifier
//	review,quality-review,quality-reviewer,@agent-quality-reviewer
//
// Rows are ordered by execution sequence within their phase. The review
// phase is special: its four canonical steps are safety-critical and must
// appear in canonical order, so [Manifest.Validate] rejects manifests that
// omit or reorder them.
package sequence

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Canonical review step names, in their fixed order. Annotation precedes
// contract specification, which precedes test specification; quality review
// is always last.
const (
	StepAnnotate         = "annotate"
	StepSpecifyContracts = "specify-contracts"
	StepSpecifyTests     = "specify-tests"
	StepQualityReview    = "quality-review"
)

// DefaultReviewSteps returns the canonical review step sequence.
func DefaultReviewSteps() []string {
	return []string{StepAnnotate, StepSpecifyContracts, StepSpecifyTests, StepQualityReview}
}

// Entry represents a single row in the sequence manifest CSV.
type Entry struct {
	// Phase is the workflow phase this step belongs to (e.g. "review").
	Phase string

	// Step is the step name, unique within its phase.
	Step string

	// Agent is the collaborator responsible for the step (e.g. "quality-reviewer").
	Agent string

	// Command is the invocation used to delegate the step (e.g. "@agent-quality-reviewer").
	Command string
}

// Manifest holds all step entries parsed from a manifest CSV file.
type Manifest struct {
	// Entries are the step entries in execution order.
	Entries []Entry
}

// ReadFromFile reads and parses a sequence manifest CSV file.
func ReadFromFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sequence manifest: %w", err)
	}
	defer f.Close()

	return readFromReader(f)
}

// ReadFromString parses a sequence manifest from a CSV string.
// This is useful for testing and for embedding manifest data.
func ReadFromString(data string) (*Manifest, error) {
	return readFromReader(strings.NewReader(data))
}

func readFromReader(r io.Reader) (*Manifest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}

	colIndex := buildColumnIndex(header)
	if err := validateColumns(colIndex); err != nil {
		return nil, err
	}

	var entries []Entry
	lineNum := 1 // header was line 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest line %d: %w", lineNum, err)
		}

		entry := Entry{
			Phase:   getField(record, colIndex, "phase"),
			Step:    getField(record, colIndex, "step"),
			Agent:   getField(record, colIndex, "agent"),
			Command: getField(record, colIndex, "command"),
		}

		if entry.Phase == "" {
			return nil, fmt.Errorf("manifest line %d: phase is required", lineNum)
		}
		if entry.Step == "" {
			return nil, fmt.Errorf("manifest line %d: step name is required", lineNum)
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("manifest contains no step entries")
	}

	m := &Manifest{Entries: entries}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// requiredColumns are the columns that must be present in the manifest CSV.
var requiredColumns = []string{"phase", "step"}

func buildColumnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return index
}

func validateColumns(colIndex map[string]int) error {
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return fmt.Errorf("manifest missing required column: %s", col)
		}
	}
	return nil
}

func getField(record []string, colIndex map[string]int, column string) string {
	idx, ok := colIndex[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Validate checks that any review-phase entries form exactly the canonical
// review sequence, in canonical order. The four review steps gate execution
// safety; a manifest may rename their agents and commands, but not skip or
// reorder the steps themselves.
func (m *Manifest) Validate() error {
	reviewSteps := m.StepsForPhase("review")
	if len(reviewSteps) == 0 {
		return nil
	}

	canonical := DefaultReviewSteps()
	if len(reviewSteps) != len(canonical) {
		return fmt.Errorf("review sequence must contain exactly %d steps, got %d", len(canonical), len(reviewSteps))
	}
	for i, name := range canonical {
		if reviewSteps[i] != name {
			return fmt.Errorf("review sequence position %d must be %q, got %q", i+1, name, reviewSteps[i])
		}
	}
	return nil
}

// StepsForPhase returns the step names declared for the given phase,
// in manifest order.
func (m *Manifest) StepsForPhase(phase string) []string {
	var steps []string
	for _, e := range m.Entries {
		if e.Phase == phase {
			steps = append(steps, e.Step)
		}
	}
	return steps
}

// GetEntry returns the entry for the given phase and step name.
// Returns nil if not found.
func (m *Manifest) GetEntry(phase, step string) *Entry {
	for _, e := range m.Entries {
		if e.Phase == phase && e.Step == step {
			return &e
		}
	}
	return nil
}

// AgentFor returns the agent responsible for a review step, or empty if the
// manifest does not declare one.
func (m *Manifest) AgentFor(phase, step string) string {
	if e := m.GetEntry(phase, step); e != nil {
		return e.Agent
	}
	return ""
}
