package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stevehiehn/schemapush/internal/engine"
)

// maxPreview caps how much of a statement is echoed per line.
const maxPreview = 72

// PrettyReporter renders results for a terminal.
type PrettyReporter struct {
	out io.Writer

	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
	body    lipgloss.Style
}

// NewPretty creates a PrettyReporter writing to out. Colors are dropped
// when out is not a terminal.
func NewPretty(out io.Writer) *PrettyReporter {
	r := lipgloss.NewRenderer(out)
	return &PrettyReporter{
		out:     out,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("244")),
		body:    r.NewStyle().PaddingLeft(6),
	}
}

func (p *PrettyReporter) Report(report *engine.Report) error {
	var buf bytes.Buffer

	header := "Run " + report.RunID
	if report.Source != "" {
		header += " (" + report.Source + ")"
	}
	fmt.Fprintln(&buf, p.title.Render(header))

	for _, o := range report.Outcomes {
		glyph := p.success.Render("✓")
		if o.Status == engine.StatusFailure {
			glyph = p.failure.Render("✗")
		}
		fmt.Fprintf(&buf, "  %s [%d] %s\n", glyph, o.Index, preview(o.Statement))
		if o.Status != engine.StatusFailure {
			continue
		}
		detail := o.Error
		if o.StatusCode > 0 {
			detail = fmt.Sprintf("HTTP %d", o.StatusCode)
			if o.Error != "" {
				detail += ": " + o.Error
			}
		}
		fmt.Fprintln(&buf, p.body.Render(p.failure.Render(detail)))
		if o.Body != "" {
			fmt.Fprintln(&buf, p.body.Render(strings.TrimSpace(o.Body)))
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d succeeded, %d failed", report.Succeeded, report.Failed)
	if report.Duration != "" {
		summary += " (" + report.Duration + ")"
	}
	if report.Failed > 0 {
		fmt.Fprintln(&buf, p.failure.Render(summary))
	} else {
		fmt.Fprintln(&buf, p.success.Render(summary))
	}
	for _, path := range report.Artifacts {
		fmt.Fprintln(&buf, p.muted.Render("artifact: "+path))
	}

	_, err := buf.WriteTo(p.out)
	return err
}

func (p *PrettyReporter) Statements(source string, statements []string) error {
	var buf bytes.Buffer
	label := source
	if label == "" {
		label = "input"
	}
	fmt.Fprintln(&buf, p.title.Render(fmt.Sprintf("%d statements in %s", len(statements), label)))
	for i, stmt := range statements {
		fmt.Fprintf(&buf, "%s %s\n", p.muted.Render(fmt.Sprintf("[%d]", i+1)), stmt)
	}
	_, err := buf.WriteTo(p.out)
	return err
}

func (p *PrettyReporter) Probe(result ProbeResult) error {
	var line string
	switch {
	case result.OK:
		line = p.success.Render("✓ connected to " + result.URL)
	case result.StatusCode > 0:
		line = p.failure.Render(fmt.Sprintf("✗ %s answered %d", result.URL, result.StatusCode))
	default:
		line = p.failure.Render(fmt.Sprintf("✗ %s unreachable: %s", result.URL, result.Error))
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}

// preview flattens a statement onto one line and truncates it.
func preview(stmt string) string {
	flat := strings.Join(strings.Fields(stmt), " ")
	if r := []rune(flat); len(r) > maxPreview {
		return string(r[:maxPreview-3]) + "..."
	}
	return flat
}
