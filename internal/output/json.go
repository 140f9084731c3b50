package output

import (
	"encoding/json"
	"io"

	"github.com/stevehiehn/schemapush/internal/engine"
)

// JSONReporter emits structured results.
type JSONReporter struct {
	out io.Writer
}

// NewJSON creates a JSON reporter writing to out.
func NewJSON(out io.Writer) *JSONReporter {
	return &JSONReporter{out: out}
}

type statementList struct {
	Source     string   `json:"source,omitempty"`
	Count      int      `json:"count"`
	Statements []string `json:"statements"`
}

func (j *JSONReporter) Report(report *engine.Report) error {
	return j.encode(report)
}

func (j *JSONReporter) Statements(source string, statements []string) error {
	if statements == nil {
		statements = []string{}
	}
	return j.encode(statementList{Source: source, Count: len(statements), Statements: statements})
}

func (j *JSONReporter) Probe(result ProbeResult) error {
	return j.encode(result)
}

func (j *JSONReporter) encode(v any) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
