// Package output formats seqplan's terminal output.
//
// All user-facing text flows through [Printer]; nothing else in the module
// writes to the terminal directly. The printer renders phase banners, step
// guidance, verdict summaries, and error remediation with lipgloss styling.
//
// For testing, create a printer with [NewPrinterWithWriter] and assert on
// the buffer contents.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"seqplan/internal/review"
	"seqplan/internal/run"
)

// rule is the horizontal separator used in banners.
var rule = strings.Repeat("=", 64)

// Printer renders workflow output to a writer.
//
// Create instances with [NewPrinter] (stdout) or [NewPrinterWithWriter].
type Printer struct {
	w              io.Writer
	truncateLength int

	headerStyle  lipgloss.Style
	statusStyle  lipgloss.Style
	labelStyle   lipgloss.Style
	errorStyle   lipgloss.Style
	passStyle    lipgloss.Style
	concernStyle lipgloss.Style
	failStyle    lipgloss.Style
}

// NewPrinter creates a [Printer] writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a [Printer] writing to the given writer.
func NewPrinterWithWriter(w io.Writer) *Printer {
	p := &Printer{
		w:              w,
		truncateLength: 100,
	}
	p.SetColorEnabled(true)
	return p
}

// SetTruncateLength sets the maximum length of echoed thought lines.
// Values <= 0 disable truncation.
func (p *Printer) SetTruncateLength(n int) {
	p.truncateLength = n
}

// SetColorEnabled toggles styled output. When disabled, all text renders
// unstyled, for dumb terminals and captured output.
func (p *Printer) SetColorEnabled(enabled bool) {
	if !enabled {
		plain := lipgloss.NewStyle()
		p.headerStyle = plain
		p.statusStyle = plain
		p.labelStyle = plain
		p.errorStyle = plain
		p.passStyle = plain
		p.concernStyle = plain
		p.failStyle = plain
		return
	}

	p.headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	p.statusStyle = lipgloss.NewStyle().Bold(true)
	p.labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	p.errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	p.passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	p.concernStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	p.failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
}

// PhaseHeader prints the invocation banner with phase and step position.
func (p *Printer) PhaseHeader(phase run.Phase, stepNumber, totalSteps int) {
	fmt.Fprintln(p.w, rule)
	title := fmt.Sprintf("SEQPLAN - %s PHASE - Step %d of %d", strings.ToUpper(string(phase)), stepNumber, totalSteps)
	fmt.Fprintln(p.w, p.headerStyle.Render(title))
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w)
}

// Status prints the invocation status line (phase_in_progress / phase_complete).
func (p *Printer) Status(status string) {
	fmt.Fprintf(p.w, "%s %s\n\n", p.labelStyle.Render("STATUS:"), p.statusStyle.Render(status))
}

// Thoughts echoes the caller's thoughts verbatim, truncating long lines.
func (p *Printer) Thoughts(text string) {
	fmt.Fprintln(p.w, p.labelStyle.Render("YOUR THOUGHTS:"))
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(p.w, p.truncate(line))
	}
	fmt.Fprintln(p.w)
}

// Actions prints the required actions list under the given heading.
// Empty entries render as blank lines for spacing.
func (p *Printer) Actions(heading string, actions []string) {
	if len(actions) == 0 {
		return
	}
	fmt.Fprintln(p.w, p.labelStyle.Render(heading+":"))
	for _, action := range actions {
		if action == "" {
			fmt.Fprintln(p.w)
			continue
		}
		fmt.Fprintf(p.w, "  %s\n", action)
	}
	fmt.Fprintln(p.w)
}

// Next prints the next-step directive block.
func (p *Printer) Next(text string) {
	fmt.Fprintln(p.w, p.labelStyle.Render("NEXT:"))
	fmt.Fprintln(p.w, text)
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, rule)
}

// VerdictSummary prints the recorded verdict with its findings.
func (p *Printer) VerdictSummary(v review.Verdict, findings []review.Finding) {
	fmt.Fprintf(p.w, "%s %s\n", p.labelStyle.Render("VERDICT:"), p.verdictStyle(v).Render(string(v)))

	if len(findings) == 0 {
		fmt.Fprintln(p.w, "  No findings.")
		fmt.Fprintln(p.w)
		return
	}

	for _, f := range findings {
		sev := p.severityStyle(f.Severity).Render(fmt.Sprintf("[%s]", f.Severity))
		if f.Location != "" {
			fmt.Fprintf(p.w, "  %s %s (%s)\n", sev, f.Title, f.Location)
		} else {
			fmt.Fprintf(p.w, "  %s %s\n", sev, f.Title)
		}
	}
	fmt.Fprintln(p.w)
}

// RunStatus prints the current run position for the status command.
func (p *Printer) RunStatus(r *run.WorkflowRun) {
	phase, step, total := r.CurrentStep()
	fmt.Fprintf(p.w, "%s %s\n", p.labelStyle.Render("Run:"), r.ID)
	fmt.Fprintf(p.w, "%s %s\n", p.labelStyle.Render("Phase:"), phase)
	if total > 0 {
		fmt.Fprintf(p.w, "%s %d of %d\n", p.labelStyle.Render("Step:"), step, total)
	}
	if r.Phase == run.PhasePlanning {
		fmt.Fprintf(p.w, "%s %v\n", p.labelStyle.Render("Planning complete:"), r.PlanningComplete)
	}
	if r.Verdict != review.VerdictNone {
		p.VerdictSummary(r.Verdict, r.Findings)
	}
	if r.Aborted() {
		fmt.Fprintf(p.w, "%s %s\n", p.errorStyle.Render("Aborted:"), r.AbortReason)
	}
}

// NotesLedger prints the append-only note ledger in insertion order.
func (p *Printer) NotesLedger(notes []run.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(p.w, "No notes recorded.")
		return
	}
	for i, n := range notes {
		kind := string(n.Kind)
		if n.Kind == run.NoteBacktrack {
			kind = p.concernStyle.Render(kind)
		}
		fmt.Fprintf(p.w, "%3d. [%s] %s step %d: %s\n", i+1, kind, n.Phase, n.Step, p.truncate(n.Text))
	}
}

// Error prints an error followed by its remediation actions.
func (p *Printer) Error(err error, remediation []string) {
	fmt.Fprintf(p.w, "%s %v\n", p.errorStyle.Render("ERROR:"), err)
	if len(remediation) > 0 {
		fmt.Fprintln(p.w)
		p.Actions("REQUIRED ACTIONS", remediation)
	}
}

func (p *Printer) verdictStyle(v review.Verdict) lipgloss.Style {
	switch v {
	case review.VerdictPass:
		return p.passStyle
	case review.VerdictPassWithConcerns:
		return p.concernStyle
	default:
		return p.failStyle
	}
}

func (p *Printer) severityStyle(s review.Severity) lipgloss.Style {
	switch s {
	case review.SeverityCritical, review.SeverityHigh:
		return p.failStyle
	case review.SeverityShouldFix:
		return p.concernStyle
	default:
		return p.statusStyle
	}
}

// truncate shortens s to the configured rune count. Counting runes rather
// than bytes keeps multi-byte UTF-8 text intact at the boundary.
func (p *Printer) truncate(s string) string {
	if p.truncateLength <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= p.truncateLength {
		return s
	}
	if p.truncateLength <= 3 {
		return string(runes[:p.truncateLength])
	}
	return string(runes[:p.truncateLength-3]) + "..."
}
