package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"seqplan/internal/controller"
	"seqplan/internal/review"
)

func newVerdictCommand(app *App) *cobra.Command {
	var (
		reportPath  string
		verdictName string
		findings    []string
	)

	cmd := &cobra.Command{
		Use:   "verdict",
		Short: "Record the quality reviewer's verdict",
		Long: `Record the terminal review verdict from the quality reviewer.

Findings can come from a JSON-lines report file (one finding object per
line, severity/title/location fields) or from repeated --finding flags in
severity:title[:location] form or as single JSON objects. When findings are
present their aggregate determines the verdict: the maximum severity wins
(critical > high > should-fix > suggestion). A --verdict stated without
findings is honored as-is.

Examples:
  seqplan verdict --report findings.jsonl
  seqplan verdict --finding "high:Retry loop lacks backoff:src/sync.go" --finding "suggestion:Rename helper"
  seqplan verdict --finding '{"severity":"high","title":"Retry loop lacks backoff"}'
  seqplan verdict --verdict PASS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := buildReport(reportPath, verdictName, findings)
			if err != nil {
				return app.fail(err)
			}

			d, err := app.Controller.RecordVerdict(report)
			if err != nil {
				return app.fail(err)
			}

			r, err := app.Controller.Current()
			if err != nil {
				return app.fail(err)
			}

			app.Printer.VerdictSummary(r.Verdict, r.Findings)
			app.Printer.Actions("REQUIRED ACTIONS", d.RequiredActions)
			app.Printer.Next(d.Next)

			if d.Action == review.DirectiveReturnToPlanning {
				return NewExitError(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "JSON-lines findings report file (\"-\" for stdin)")
	cmd.Flags().StringVar(&verdictName, "verdict", "", "explicit verdict (PASS, PASS_WITH_CONCERNS, NEEDS_CHANGES, CRITICAL_ISSUES)")
	cmd.Flags().StringArrayVar(&findings, "finding", nil, "finding in severity:title[:location] form (repeatable)")

	return cmd
}

// buildReport assembles a reviewer report from the command flags.
func buildReport(reportPath, verdictName string, findingSpecs []string) (review.Report, error) {
	var report review.Report

	if reportPath != "" {
		f := os.Stdin
		if reportPath != "-" {
			var err error
			f, err = os.Open(reportPath)
			if err != nil {
				return report, fmt.Errorf("failed to open report: %w", err)
			}
			defer f.Close()
		}

		parsed, err := review.NewParser().ParseReport(f)
		if err != nil {
			return report, fmt.Errorf("failed to parse report: %w", err)
		}
		report = parsed
	}

	for _, spec := range findingSpecs {
		finding, err := parseFindingSpec(spec)
		if err != nil {
			return report, err
		}
		report.Findings = append(report.Findings, finding)
	}

	if verdictName != "" {
		v, err := review.ParseVerdict(verdictName)
		if err != nil {
			return report, fmt.Errorf("%w: %v", controller.ErrInvalidInput, err)
		}
		report.Verdict = v
	}

	return report, nil
}

// parseFindingSpec parses a --finding flag value: either a single JSON
// finding object or the shorthand severity:title[:location] form.
func parseFindingSpec(spec string) (review.Finding, error) {
	if strings.HasPrefix(strings.TrimSpace(spec), "{") {
		finding, err := review.ParseSingle(spec)
		if err != nil {
			return review.Finding{}, fmt.Errorf("%w: finding %q: %v", controller.ErrInvalidInput, spec, err)
		}
		return finding, nil
	}

	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 {
		return review.Finding{}, fmt.Errorf("%w: finding %q must be severity:title[:location]", controller.ErrInvalidInput, spec)
	}

	severity, err := review.ParseSeverity(parts[0])
	if err != nil {
		return review.Finding{}, fmt.Errorf("%w: %v", controller.ErrInvalidInput, err)
	}

	finding := review.Finding{
		Severity: severity,
		Title:    strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		finding.Location = strings.TrimSpace(parts[2])
	}
	return finding, nil
}
