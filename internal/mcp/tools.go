package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/stevehiehn/schemapush/internal/engine"
	sperrors "github.com/stevehiehn/schemapush/internal/errors"
	"github.com/stevehiehn/schemapush/internal/retry"
	"github.com/stevehiehn/schemapush/internal/source"
	"github.com/stevehiehn/schemapush/internal/sqlsplit"
)

const serverVersion = "0.1.0"

type toolDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

var fileProperty = map[string]any{"type": "string", "description": "Path to a .sql file, relative to the working directory"}

var builtinTools = []toolDef{
	{Name: "sql.split", Description: "Split a SQL file into the statements that would be sent", InputSchema: map[string]any{
		"type": "object", "properties": map[string]any{
			"file":          fileProperty,
			"lexical":       map[string]any{"type": "boolean", "description": "Respect quotes, comments and dollar-quoted bodies"},
			"keep_trailing": map[string]any{"type": "boolean", "description": "Keep text after the last semicolon"},
		}, "required": []string{"file"}}},
	{Name: "sql.push", Description: "Submit every statement of a SQL file to the remote and return the run report", InputSchema: map[string]any{
		"type": "object", "properties": map[string]any{"file": fileProperty}, "required": []string{"file"}}},
	{Name: "remote.probe", Description: "Check that the configured endpoint is reachable", InputSchema: map[string]any{
		"type": "object", "properties": map[string]any{}}},
	{Name: "config.schema", Description: "Describe the configuration keys and environment variables", InputSchema: map[string]any{
		"type": "object", "properties": map[string]any{}}},
}

func (s *server) dispatch(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return &JSONRPCResponse{Result: map[string]any{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": "schemapush", "version": serverVersion},
		}}
	case "tools/list":
		return &JSONRPCResponse{Result: map[string]any{"tools": builtinTools}}
	case "tools/call":
		return s.handleToolCall(ctx, req.Params)
	case "notifications/initialized", "ping":
		return &JSONRPCResponse{Result: map[string]any{}}
	default:
		return &JSONRPCResponse{Error: &RPCError{Code: -32601, Message: "Method not found"}}
	}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolArgs struct {
	File         string `json:"file"`
	Lexical      *bool  `json:"lexical"`
	KeepTrailing *bool  `json:"keep_trailing"`
}

func (s *server) handleToolCall(ctx context.Context, params json.RawMessage) *JSONRPCResponse {
	var tc toolCallParams
	if err := json.Unmarshal(params, &tc); err != nil {
		return &JSONRPCResponse{Error: &RPCError{Code: -32602, Message: "Invalid params"}}
	}

	var args toolArgs
	if len(tc.Arguments) > 0 {
		if err := json.Unmarshal(tc.Arguments, &args); err != nil {
			return &JSONRPCResponse{Error: &RPCError{Code: -32602, Message: "Invalid arguments: " + err.Error()}}
		}
	}

	switch tc.Name {
	case "sql.split":
		return s.toolSplit(args)
	case "sql.push":
		return s.toolPush(ctx, args)
	case "remote.probe":
		return s.toolProbe(ctx)
	case "config.schema":
		return &JSONRPCResponse{Result: toolContent(schemaText)}
	default:
		return &JSONRPCResponse{Error: &RPCError{Code: -32602, Message: "Unknown tool: " + tc.Name}}
	}
}

func (s *server) toolSplit(args toolArgs) *JSONRPCResponse {
	if resp := checkFile(args.File); resp != nil {
		return resp
	}
	opts := s.opts.Config.SplitOptions()
	if args.Lexical != nil {
		opts.Mode = sqlsplit.ModeNaive
		if *args.Lexical {
			opts.Mode = sqlsplit.ModeLexical
		}
	}
	if args.KeepTrailing != nil {
		opts.KeepTrailing = *args.KeepTrailing
	}

	text, err := source.LoadFile(resolvePath(args.File, s.opts.WorkDir))
	if err != nil {
		return &JSONRPCResponse{Result: toolError(err.Error())}
	}
	statements := opts.Split(text)
	if statements == nil {
		statements = []string{}
	}
	return jsonResult(map[string]any{"count": len(statements), "statements": statements})
}

func (s *server) toolPush(ctx context.Context, args toolArgs) *JSONRPCResponse {
	if resp := checkFile(args.File); resp != nil {
		return resp
	}
	cfg := s.opts.Config
	if err := cfg.Validate(); err != nil {
		return &JSONRPCResponse{Result: toolError(err.Error())}
	}
	client, err := s.opts.Connect(cfg)
	if err != nil {
		return &JSONRPCResponse{Result: toolError(err.Error())}
	}
	if cfg.Probe {
		if status, err := client.Probe(ctx); err != nil {
			re := &sperrors.RunError{Type: sperrors.ProbeFailed, StatusCode: status, Message: err.Error(), Err: err,
				Hint: "Call remote.probe to diagnose, or set probe: false"}
			return &JSONRPCResponse{Result: toolError(re.Error())}
		}
	}
	executor, err := retry.Wrap(client, cfg.Retry, s.opts.Logger)
	if err != nil {
		return &JSONRPCResponse{Result: toolError(err.Error())}
	}

	rc := engine.NewRunContext(s.opts.WorkDir, executor, s.opts.Logger, cfg.Artifacts)
	report, err := engine.Push(ctx, resolvePath(args.File, s.opts.WorkDir), cfg.SplitOptions(), rc)
	if err != nil {
		return &JSONRPCResponse{Result: toolError(err.Error())}
	}
	resp := jsonResult(report)
	if report.Failed > 0 {
		resp.Result.(map[string]any)["isError"] = true
	}
	return resp
}

func (s *server) toolProbe(ctx context.Context) *JSONRPCResponse {
	cfg := s.opts.Config
	if err := cfg.Validate(); err != nil {
		return &JSONRPCResponse{Result: toolError(err.Error())}
	}
	client, err := s.opts.Connect(cfg)
	if err != nil {
		return &JSONRPCResponse{Result: toolError(err.Error())}
	}
	status, err := client.Probe(ctx)
	result := map[string]any{"url": cfg.BaseURL, "ok": err == nil, "status_code": status}
	if err != nil {
		result["error"] = err.Error()
		resp := jsonResult(result)
		resp.Result.(map[string]any)["isError"] = true
		return resp
	}
	return jsonResult(result)
}

func jsonResult(v any) *JSONRPCResponse {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &JSONRPCResponse{Result: toolError(err.Error())}
	}
	return &JSONRPCResponse{Result: toolContent(string(data))}
}

func toolContent(text string) map[string]any {
	return map[string]any{"content": []map[string]any{{"type": "text", "text": text}}}
}

func toolError(text string) map[string]any {
	result := toolContent(text)
	result["isError"] = true
	return result
}

// checkFile rejects a missing path and stdin, which carries the JSON-RPC
// stream itself.
func checkFile(file string) *JSONRPCResponse {
	switch file {
	case "":
		return &JSONRPCResponse{Result: toolError("file is required")}
	case source.Stdin:
		return &JSONRPCResponse{Result: toolError("stdin is not available over MCP; pass a file path")}
	}
	return nil
}

func resolvePath(file, workDir string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(workDir, file)
}

const schemaText = `schemapush configuration (.schemapush.yaml, .schemapush.yml or .schemapush.toml):
  base_url: string (required, e.g. https://<project>.supabase.co)
  api_key: string (prefer SCHEMAPUSH_API_KEY)
  rpc_path: string (default: /rest/v1/rpc/exec_sql)
  probe_path: string (default: /rest/v1/)
  timeout: duration (default: 30s)
  probe_timeout: duration (default: 10s)
  probe: bool (default: true)
  splitter: naive | lexical (default: naive)
  keep_trailing: bool (default: false)
  format: pretty | json (default: pretty)
  log_level: debug | info | warn | error (default: warn)
  artifacts: bool (default: true)
  retry:
    max_attempts: int (default: 1, no retry)
    initial_delay: duration (default: 1s)
    max_delay: duration (default: 30s)
    backoff_factor: float (default: 2.0)
    jitter_factor: float 0..1 (default: 0.2)
Environment: SCHEMAPUSH_URL, SCHEMAPUSH_API_KEY, SCHEMAPUSH_TIMEOUT, SCHEMAPUSH_LOG_LEVEL.
A .env file in the working directory is loaded first and never overrides the environment.`
