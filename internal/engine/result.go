package engine

import sperrors "github.com/stevehiehn/schemapush/internal/errors"

// Status tags an Outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Report is the structured record of one run.
type Report struct {
	RunID     string              `json:"run_id"`
	Source    string              `json:"source,omitempty"`
	Success   bool                `json:"success"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Outcomes  []Outcome           `json:"outcomes"`
	Duration  string              `json:"duration,omitempty"`
	Artifacts []string            `json:"artifacts,omitempty"`
	Errors    []sperrors.RunError `json:"errors,omitempty"`
}

// Outcome describes what happened to a single statement.
type Outcome struct {
	Index      int    `json:"index"`
	Statement  string `json:"statement"`
	Status     Status `json:"status"`
	Kind       string `json:"kind,omitempty"` // TRANSPORT_ERROR or REMOTE_REJECTION
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
	Duration   string `json:"duration,omitempty"`
}

// Total is the number of statements that were attempted.
func (r *Report) Total() int {
	return len(r.Outcomes)
}

// FailedOutcomes returns the failures in submission order.
func (r *Report) FailedOutcomes() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailure {
			out = append(out, o)
		}
	}
	return out
}
