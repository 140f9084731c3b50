// Package output renders run reports for people and for machines.
package output

import (
	"io"

	"github.com/stevehiehn/schemapush/internal/engine"
)

// Reporter renders the results of the CLI commands.
type Reporter interface {
	Report(report *engine.Report) error
	Statements(source string, statements []string) error
	Probe(result ProbeResult) error
}

// ProbeResult is the outcome of a connection check.
type ProbeResult struct {
	URL        string `json:"url"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// New picks a reporter for format. Anything other than "json" is pretty.
func New(format string, w io.Writer) Reporter {
	if format == "json" {
		return NewJSON(w)
	}
	return NewPretty(w)
}
