package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/stevehiehn/schemapush/internal/logging"
)

// Executor submits one statement to the remote database.
type Executor interface {
	Execute(ctx context.Context, statement string) (status int, body string, err error)
}

// RunContext holds state for one batch run.
type RunContext struct {
	RunID     string
	WorkDir   string
	Source    string
	Executor  Executor
	Logger    logging.Logger
	Artifacts bool // write report.json and failed.sql under WorkDir
}

// NewRunContext creates a new execution context.
func NewRunContext(workDir string, executor Executor, logger logging.Logger, artifacts bool) *RunContext {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RunContext{
		RunID:     uuid.New().String(),
		WorkDir:   workDir,
		Executor:  executor,
		Logger:    logger,
		Artifacts: artifacts,
	}
}
