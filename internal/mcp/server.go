package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/stevehiehn/schemapush/internal/config"
	"github.com/stevehiehn/schemapush/internal/logging"
	"github.com/stevehiehn/schemapush/internal/remote"
)

// JSONRPCRequest is a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse is a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Remote is the endpoint the push and probe tools talk to.
type Remote interface {
	Execute(ctx context.Context, statement string) (int, string, error)
	Probe(ctx context.Context) (int, error)
}

// Options configures the server.
type Options struct {
	WorkDir string
	Config  config.Config
	Logger  logging.Logger
	// Connect builds the remote for push and probe. Nil uses remote.New.
	Connect func(cfg config.Config) (Remote, error)
}

type server struct {
	opts Options
}

func newServer(opts Options) *server {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Connect == nil {
		logger := opts.Logger
		opts.Connect = func(cfg config.Config) (Remote, error) {
			return remote.New(cfg.Remote(), logger)
		}
	}
	return &server{opts: opts}
}

// Serve runs the MCP stdio server until stdin closes.
func Serve(ctx context.Context, opts Options) error {
	return newServer(opts).serve(ctx, os.Stdin, os.Stdout)
}

func (s *server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			writeResponse(out, &JSONRPCResponse{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: -32700, Message: "Parse error"},
			})
			continue
		}

		resp := s.dispatch(ctx, req)
		if req.ID == nil {
			// notification, no reply expected
			continue
		}
		resp.JSONRPC = "2.0"
		resp.ID = req.ID
		writeResponse(out, resp)
	}
	return scanner.Err()
}

func writeResponse(w io.Writer, resp *JSONRPCResponse) {
	data, _ := json.Marshal(resp)
	fmt.Fprintf(w, "%s\n", data)
}
