package review

import (
	"bufio"
	"encoding/json"
	"io"
)

// reportLine is the raw JSON structure of a single reviewer output line.
//
// A line carries either a finding (severity set) or a terminal verdict
// (verdict set). Reviewers stream findings as they are discovered and emit
// the verdict line last.
type reportLine struct {
	Severity string `json:"severity,omitempty"`
	Title    string `json:"title,omitempty"`
	Location string `json:"location,omitempty"`
	Verdict  string `json:"verdict,omitempty"`
}

// Parser parses streaming JSON-lines reviewer output into a [Report].
//
// Each line of output is a complete JSON object: a finding
// ({"severity":"high","title":"...","location":"..."}) or a verdict
// ({"verdict":"NEEDS_CHANGES"}). Malformed JSON lines are silently skipped
// to provide resilience against partial or corrupted output.
type Parser interface {
	// ParseReport reads reviewer output from the reader until EOF and
	// returns the assembled [Report]. Finding order is preserved.
	ParseReport(reader io.Reader) (Report, error)
}

// DefaultParser implements [Parser] for the JSON-lines report format.
//
// The BufferSize field controls the maximum allowed line length, which
// matters because finding titles may quote large plan excerpts. Create
// instances with [NewParser] to get proper defaults.
type DefaultParser struct {
	// BufferSize is the maximum size in bytes for a single JSON line.
	// Defaults to 1MB if not set or <= 0.
	BufferSize int
}

// defaultBufferSize is the scanner limit used when BufferSize is unset.
const defaultBufferSize = 1024 * 1024

// NewParser creates a [DefaultParser] with default settings.
func NewParser() *DefaultParser {
	return &DefaultParser{
		BufferSize: defaultBufferSize,
	}
}

// ParseReport reads JSON-lines reviewer output and assembles a [Report].
//
// Behavior:
//   - Empty lines are skipped
//   - Lines that fail JSON parsing are skipped
//   - A line with a severity becomes a [Finding], in stream order;
//     severities are normalized via [ParseSeverity], and a severity outside
//     the known tiers is retained as-is so [Aggregate] fails closed on it
//   - A line with a verdict sets the report verdict (normalized via
//     [ParseVerdict]); a later verdict line replaces an earlier one
//
// A scanner error (e.g. a line exceeding BufferSize) is returned along
// with the findings collected so far.
func (p *DefaultParser) ParseReport(reader io.Reader) (Report, error) {
	var report Report

	scanner := bufio.NewScanner(reader)

	bufSize := p.BufferSize
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, bufSize)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var raw reportLine
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			// Skip unparseable lines
			continue
		}

		switch {
		case raw.Severity != "":
			sev, err := ParseSeverity(raw.Severity)
			if err != nil {
				// Keep the unrecognized severity; Aggregate fails closed
				// on it rather than dropping a possibly blocking finding.
				sev = Severity(raw.Severity)
			}
			report.Findings = append(report.Findings, Finding{
				Severity: sev,
				Title:    raw.Title,
				Location: raw.Location,
			})
		case raw.Verdict != "":
			if v, err := ParseVerdict(raw.Verdict); err == nil {
				report.Verdict = v
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// ParseSingle parses one JSON line into a [Finding].
//
// Unlike [Parser.ParseReport], this function does not tolerate invalid
// input: malformed JSON and unrecognized severities are errors. It backs
// findings passed individually on the command line, where the caller can
// correct and retry.
func ParseSingle(line string) (Finding, error) {
	var raw reportLine
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Finding{}, err
	}
	sev, err := ParseSeverity(raw.Severity)
	if err != nil {
		return Finding{}, err
	}
	return Finding{Severity: sev, Title: raw.Title, Location: raw.Location}, nil
}
