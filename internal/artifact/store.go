package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store manages artifact storage for a run.
type Store struct {
	RunID   string
	BaseDir string // defaults to .schemapush/runs/<run_id>
}

// New creates a store for a given run ID, rooted at workDir.
func New(runID, workDir string) (*Store, error) {
	base := filepath.Join(workDir, ".schemapush", "runs", runID)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}
	return &Store{RunID: runID, BaseDir: base}, nil
}

// FailedPath is where WriteFailed puts the statements to re-apply.
func (s *Store) FailedPath() string {
	return filepath.Join(s.BaseDir, "failed.sql")
}

// WriteFailed writes the failed statements, one per line, so they can be
// re-applied as a unit.
func (s *Store) WriteFailed(statements []string) error {
	if len(statements) == 0 {
		return nil
	}
	content := strings.Join(statements, "\n") + "\n"
	return os.WriteFile(s.FailedPath(), []byte(content), 0o644)
}

// WriteReport writes the final report JSON.
func (s *Store) WriteReport(report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.BaseDir, "report.json"), data, 0o644)
}
