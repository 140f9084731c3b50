package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stevehiehn/schemapush/internal/artifact"
	sperrors "github.com/stevehiehn/schemapush/internal/errors"
	"github.com/stevehiehn/schemapush/internal/logging"
	"github.com/stevehiehn/schemapush/internal/source"
	"github.com/stevehiehn/schemapush/internal/sqlsplit"
)

// accepted lists the status codes treated as a successful statement.
var accepted = map[int]bool{200: true, 201: true, 204: true}

// Push loads the SQL file at path, splits it and runs every statement.
// Only a source error is returned; statement failures end up in the report.
func Push(ctx context.Context, path string, opts sqlsplit.Options, rc *RunContext) (*Report, error) {
	sql, err := source.LoadFile(path)
	if err != nil {
		return nil, err
	}
	rc.Source = path
	if rc.Logger == nil {
		rc.Logger = logging.NewNop()
	}
	statements := opts.Split(sql)
	rc.Logger.Info("loaded SQL source",
		"run_id", rc.RunID, "path", path, "bytes", len(sql), "statements", len(statements))
	return Run(ctx, statements, rc), nil
}

// Run submits statements one at a time, in order, and records an outcome
// for each. A failed statement never stops the run.
func Run(ctx context.Context, statements []string, rc *RunContext) *Report {
	report := &Report{
		RunID:    rc.RunID,
		Source:   rc.Source,
		Outcomes: []Outcome{},
	}
	if rc.Logger == nil {
		rc.Logger = logging.NewNop()
	}
	log := rc.Logger.With("run_id", rc.RunID)
	start := time.Now()

	for i, stmt := range statements {
		index := i + 1
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" || trimmed == sqlsplit.Terminator {
			log.Debug("skipping empty statement", "index", index)
			continue
		}

		log.Debug("executing statement", "index", index, "total", len(statements))
		outcome := executeStatement(ctx, rc.Executor, index, trimmed)
		report.Outcomes = append(report.Outcomes, outcome)

		if outcome.Status == StatusSuccess {
			report.Succeeded++
			log.Info("statement applied", "index", index, "status", outcome.StatusCode)
			continue
		}
		report.Failed++
		report.Errors = append(report.Errors, *failureError(outcome))
		log.Warn("statement failed",
			"index", index, "kind", outcome.Kind, "status", outcome.StatusCode, "error", outcome.Error)
	}

	report.Success = report.Failed == 0
	report.Duration = time.Since(start).Round(time.Millisecond).String()

	if rc.Artifacts {
		writeArtifacts(report, rc)
	}
	log.Infof("Run finished: %d/%d statements applied", report.Succeeded, report.Total())
	return report
}

func executeStatement(ctx context.Context, exec Executor, index int, stmt string) Outcome {
	o := Outcome{Index: index, Statement: stmt}
	start := time.Now()
	status, body, err := exec.Execute(ctx, stmt)
	o.Duration = time.Since(start).Round(time.Millisecond).String()

	switch {
	case err != nil:
		o.Status = StatusFailure
		o.Kind = sperrors.TransportError
		o.StatusCode = status
		o.Body = body
		o.Error = err.Error()
	case accepted[status]:
		o.Status = StatusSuccess
		o.StatusCode = status
	default:
		o.Status = StatusFailure
		o.Kind = sperrors.RemoteRejection
		o.StatusCode = status
		o.Body = body
	}
	return o
}

func failureError(o Outcome) *sperrors.RunError {
	if o.Kind == sperrors.TransportError {
		return sperrors.NewTransportError(o.Index, errors.New(o.Error))
	}
	return sperrors.NewRejection(o.Index, o.StatusCode, o.Body)
}

func writeArtifacts(report *Report, rc *RunContext) {
	store, err := artifact.New(rc.RunID, rc.WorkDir)
	if err != nil {
		rc.Logger.Warn("artifacts disabled for this run", "error", err)
		return
	}
	report.Artifacts = []string{store.BaseDir}

	if report.Failed > 0 {
		failed := report.FailedOutcomes()
		stmts := make([]string, 0, len(failed))
		for _, o := range failed {
			stmts = append(stmts, o.Statement)
		}
		if err := store.WriteFailed(stmts); err != nil {
			rc.Logger.Warn("writing failed statements", "error", err)
		}
	}
	if err := store.WriteReport(report); err != nil {
		rc.Logger.Warn("writing run report", "error", err)
	}
}
