package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stevehiehn/schemapush/internal/logging"
)

const (
	DefaultRPCPath      = "/rest/v1/rpc/exec_sql"
	DefaultProbePath    = "/rest/v1/"
	DefaultTimeout      = 30 * time.Second
	DefaultProbeTimeout = 10 * time.Second
)

// Config describes how to reach the SQL RPC endpoint.
type Config struct {
	BaseURL      string
	APIKey       string
	RPCPath      string
	ProbePath    string
	Timeout      time.Duration
	ProbeTimeout time.Duration
}

// Client submits SQL statements to the remote RPC endpoint.
type Client struct {
	cfg         Config
	client      *http.Client
	probeClient *http.Client
	logger      logging.Logger
}

type execRequest struct {
	SQL string `json:"sql"`
}

// New creates a client. Unset paths and timeouts take their defaults.
func New(cfg Config, logger logging.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: base url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("remote: invalid base url %q", cfg.BaseURL)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("remote: api key is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RPCPath == "" {
		cfg.RPCPath = DefaultRPCPath
	}
	if cfg.ProbePath == "" {
		cfg.ProbePath = DefaultProbePath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		cfg:         cfg,
		client:      &http.Client{Timeout: cfg.Timeout},
		probeClient: &http.Client{Timeout: cfg.ProbeTimeout},
		logger:      logger,
	}, nil
}

// RPCURL is the full URL statements are posted to.
func (c *Client) RPCURL() string {
	return c.cfg.BaseURL + ensureSlash(c.cfg.RPCPath)
}

// Execute posts one statement and returns the status code and raw body.
// A non-nil error means the request never produced a response.
func (c *Client) Execute(ctx context.Context, statement string) (int, string, error) {
	payload, err := json.Marshal(execRequest{SQL: statement})
	if err != nil {
		return 0, "", fmt.Errorf("remote: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RPCURL(), bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("remote: failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("remote: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, string(body), fmt.Errorf("remote: failed to read response: %w", err)
	}
	c.logger.Debug("rpc call finished",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return resp.StatusCode, string(body), nil
}

// Probe checks that the REST root answers 200. Only the api key header is
// sent.
func (c *Client) Probe(ctx context.Context) (int, error) {
	target := c.cfg.BaseURL + ensureSlash(c.cfg.ProbePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("remote: failed to create probe request: %w", err)
	}
	req.Header.Set("apikey", c.cfg.APIKey)

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("remote: probe failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("remote: probe returned %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func ensureSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
