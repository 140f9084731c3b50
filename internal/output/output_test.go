package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevehiehn/schemapush/internal/engine"
)

func sampleReport() *engine.Report {
	return &engine.Report{
		RunID:     "run-1",
		Source:    "schema.sql",
		Succeeded: 1,
		Failed:    1,
		Duration:  "12ms",
		Outcomes: []engine.Outcome{
			{Index: 1, Statement: "CREATE TABLE a (id int);", Status: engine.StatusSuccess, StatusCode: 200},
			{Index: 2, Statement: "DROP TABLE missing;", Status: engine.StatusFailure,
				Kind: "REMOTE_REJECTION", StatusCode: 400, Body: `{"message":"table missing does not exist"}`},
		},
		Artifacts: []string{".schemapush/runs/run-1/failed.sql"},
	}
}

func TestPrettyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPretty(&buf).Report(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Run run-1 (schema.sql)")
	assert.Contains(t, out, "[1] CREATE TABLE a (id int);")
	assert.Contains(t, out, "[2] DROP TABLE missing;")
	assert.Contains(t, out, "HTTP 400")
	assert.Contains(t, out, "table missing does not exist")
	assert.Contains(t, out, "SUMMARY: 1 succeeded, 1 failed (12ms)")
	assert.Contains(t, out, "artifact: .schemapush/runs/run-1/failed.sql")
}

func TestPrettyReportTransportFailure(t *testing.T) {
	report := &engine.Report{
		RunID:  "run-2",
		Failed: 1,
		Outcomes: []engine.Outcome{
			{Index: 1, Statement: "SELECT 1;", Status: engine.StatusFailure,
				Kind: "TRANSPORT_ERROR", Error: "connection refused"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, NewPretty(&buf).Report(report))
	assert.Contains(t, buf.String(), "connection refused")
	assert.Contains(t, buf.String(), "SUMMARY: 0 succeeded, 1 failed")
}

func TestPrettyReportStatusWithError(t *testing.T) {
	report := &engine.Report{
		RunID:  "run-3",
		Failed: 1,
		Outcomes: []engine.Outcome{
			{Index: 1, Statement: "SELECT 1;", Status: engine.StatusFailure,
				Kind: "TRANSPORT_ERROR", StatusCode: 200, Error: "remote: failed to read response: unexpected EOF"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, NewPretty(&buf).Report(report))
	assert.Contains(t, buf.String(), "HTTP 200: remote: failed to read response: unexpected EOF")
}

func TestPrettyStatements(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPretty(&buf).Statements("x.sql", []string{"A;", "B;"}))

	out := buf.String()
	assert.Contains(t, out, "2 statements in x.sql")
	assert.Contains(t, out, "A;")
	assert.Contains(t, out, "B;")
}

func TestPrettyProbe(t *testing.T) {
	var buf bytes.Buffer
	p := NewPretty(&buf)
	require.NoError(t, p.Probe(ProbeResult{URL: "https://x", OK: true}))
	require.NoError(t, p.Probe(ProbeResult{URL: "https://y", StatusCode: 401}))
	require.NoError(t, p.Probe(ProbeResult{URL: "https://z", Error: "dial tcp: refused"}))

	out := buf.String()
	assert.Contains(t, out, "connected to https://x")
	assert.Contains(t, out, "https://y answered 401")
	assert.Contains(t, out, "https://z unreachable: dial tcp: refused")
}

func TestPreviewTruncates(t *testing.T) {
	long := "SELECT " + strings.Repeat("x", 200) + ";"
	got := preview(long)
	assert.Len(t, []rune(got), maxPreview)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "SELECT 1;", preview("SELECT\n   1;"))
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSON(&buf).Report(sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.EqualValues(t, 1, decoded["failed"])
	outcomes, ok := decoded["outcomes"].([]any)
	require.True(t, ok)
	assert.Len(t, outcomes, 2)
}

func TestJSONStatementsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSON(&buf).Statements("", nil))
	assert.JSONEq(t, `{"count":0,"statements":[]}`, buf.String())
}

func TestNewPicksFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.IsType(t, &JSONReporter{}, New("json", &buf))
	assert.IsType(t, &PrettyReporter{}, New("pretty", &buf))
}
