package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	sperrors "github.com/stevehiehn/schemapush/internal/errors"
	"github.com/stevehiehn/schemapush/internal/logging"
	"github.com/stevehiehn/schemapush/internal/remote"
	"github.com/stevehiehn/schemapush/internal/retry"
	"github.com/stevehiehn/schemapush/internal/sqlsplit"
)

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"

	EnvURL      = "SCHEMAPUSH_URL"
	EnvAPIKey   = "SCHEMAPUSH_API_KEY"
	EnvTimeout  = "SCHEMAPUSH_TIMEOUT"
	EnvLogLevel = "SCHEMAPUSH_LOG_LEVEL"
)

// DefaultFiles are probed in order in the working directory when no
// explicit config path is given.
var DefaultFiles = []string{".schemapush.yaml", ".schemapush.yml", ".schemapush.toml"}

// Config is the resolved configuration for a run.
type Config struct {
	BaseURL      string
	APIKey       string
	RPCPath      string
	ProbePath    string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	Probe        bool

	Splitter     sqlsplit.Mode
	KeepTrailing bool

	Retry retry.Config

	Format    string
	LogLevel  string
	Artifacts bool
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		RPCPath:      remote.DefaultRPCPath,
		ProbePath:    remote.DefaultProbePath,
		Timeout:      remote.DefaultTimeout,
		ProbeTimeout: remote.DefaultProbeTimeout,
		Probe:        true,
		Splitter:     sqlsplit.ModeNaive,
		Retry:        retry.DefaultConfig(),
		Format:       FormatPretty,
		LogLevel:     logging.LevelWarn,
		Artifacts:    true,
	}
}

// fileConfig mirrors the on-disk layout. Pointers mark keys that were set.
type fileConfig struct {
	BaseURL      string    `yaml:"base_url" toml:"base_url"`
	APIKey       string    `yaml:"api_key" toml:"api_key"`
	RPCPath      string    `yaml:"rpc_path" toml:"rpc_path"`
	ProbePath    string    `yaml:"probe_path" toml:"probe_path"`
	Timeout      string    `yaml:"timeout" toml:"timeout"`
	ProbeTimeout string    `yaml:"probe_timeout" toml:"probe_timeout"`
	Probe        *bool     `yaml:"probe" toml:"probe"`
	Splitter     string    `yaml:"splitter" toml:"splitter"`
	KeepTrailing *bool     `yaml:"keep_trailing" toml:"keep_trailing"`
	Format       string    `yaml:"format" toml:"format"`
	LogLevel     string    `yaml:"log_level" toml:"log_level"`
	Artifacts    *bool     `yaml:"artifacts" toml:"artifacts"`
	Retry        fileRetry `yaml:"retry" toml:"retry"`
}

type fileRetry struct {
	MaxAttempts   int      `yaml:"max_attempts" toml:"max_attempts"`
	InitialDelay  string   `yaml:"initial_delay" toml:"initial_delay"`
	MaxDelay      string   `yaml:"max_delay" toml:"max_delay"`
	BackoffFactor float64  `yaml:"backoff_factor" toml:"backoff_factor"`
	JitterFactor  *float64 `yaml:"jitter_factor" toml:"jitter_factor"`
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// Load resolves defaults, the config file and the environment. When path
// is empty the DefaultFiles in root are tried and a missing file is fine;
// an explicit path must exist.
func Load(root, path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	candidates := []string{path}
	if !explicit {
		candidates = candidates[:0]
		for _, name := range DefaultFiles {
			candidates = append(candidates, filepath.Join(root, name))
		}
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !explicit {
				continue
			}
			return cfg, fmt.Errorf("read config %q: %w", candidate, err)
		}
		fc, err := parse(candidate, data)
		if err != nil {
			return cfg, err
		}
		if cfg, err = merge(cfg, fc); err != nil {
			return cfg, fmt.Errorf("config %q: %w", candidate, err)
		}
		break
	}

	return applyEnv(cfg)
}

func parse(path string, data []byte) (fileConfig, error) {
	var fc fileConfig
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	default:
		err = yaml.Unmarshal(data, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse config %q: %w", path, err)
	}
	return fc, nil
}

func merge(base Config, fc fileConfig) (Config, error) {
	out := base

	if fc.BaseURL != "" {
		out.BaseURL = fc.BaseURL
	}
	if fc.APIKey != "" {
		out.APIKey = fc.APIKey
	}
	if fc.RPCPath != "" {
		out.RPCPath = fc.RPCPath
	}
	if fc.ProbePath != "" {
		out.ProbePath = fc.ProbePath
	}
	if err := setDuration(&out.Timeout, "timeout", fc.Timeout); err != nil {
		return out, err
	}
	if err := setDuration(&out.ProbeTimeout, "probe_timeout", fc.ProbeTimeout); err != nil {
		return out, err
	}
	if fc.Probe != nil {
		out.Probe = *fc.Probe
	}
	if fc.Splitter != "" {
		out.Splitter = sqlsplit.Mode(strings.ToLower(fc.Splitter))
	}
	if fc.KeepTrailing != nil {
		out.KeepTrailing = *fc.KeepTrailing
	}
	if fc.Format != "" {
		out.Format = strings.ToLower(fc.Format)
	}
	if fc.LogLevel != "" {
		out.LogLevel = strings.ToLower(fc.LogLevel)
	}
	if fc.Artifacts != nil {
		out.Artifacts = *fc.Artifacts
	}

	if fc.Retry.MaxAttempts != 0 {
		out.Retry.MaxAttempts = fc.Retry.MaxAttempts
	}
	if err := setDuration(&out.Retry.InitialDelay, "retry.initial_delay", fc.Retry.InitialDelay); err != nil {
		return out, err
	}
	if err := setDuration(&out.Retry.MaxDelay, "retry.max_delay", fc.Retry.MaxDelay); err != nil {
		return out, err
	}
	if fc.Retry.BackoffFactor != 0 {
		out.Retry.BackoffFactor = fc.Retry.BackoffFactor
	}
	if fc.Retry.JitterFactor != nil {
		out.Retry.JitterFactor = *fc.Retry.JitterFactor
	}

	return out, nil
}

func setDuration(dst *time.Duration, key, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	*dst = d
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v, ok := os.LookupEnv(EnvURL); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvAPIKey); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok && v != "" {
		if err := setDuration(&cfg.Timeout, EnvTimeout, v); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Remote returns the settings for the RPC client.
func (c Config) Remote() remote.Config {
	return remote.Config{
		BaseURL:      c.BaseURL,
		APIKey:       c.APIKey,
		RPCPath:      c.RPCPath,
		ProbePath:    c.ProbePath,
		Timeout:      c.Timeout,
		ProbeTimeout: c.ProbeTimeout,
	}
}

// SplitOptions returns the statement splitter settings.
func (c Config) SplitOptions() sqlsplit.Options {
	return sqlsplit.Options{Mode: c.Splitter, KeepTrailing: c.KeepTrailing}
}

// ValidateLocal checks the settings that do not involve the remote.
func (c Config) ValidateLocal() error {
	switch c.Splitter {
	case sqlsplit.ModeNaive, sqlsplit.ModeLexical:
	default:
		return sperrors.NewConfigError(
			fmt.Sprintf("unknown splitter %q", c.Splitter),
			"Use splitter: naive or splitter: lexical")
	}
	switch c.Format {
	case FormatPretty, FormatJSON:
	default:
		return sperrors.NewConfigError(fmt.Sprintf("unsupported format %q", c.Format), "Use pretty or json")
	}
	switch c.LogLevel {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return sperrors.NewConfigError(fmt.Sprintf("unknown log level %q", c.LogLevel), "Use debug, info, warn or error")
	}
	return nil
}

// Validate checks everything a push needs.
func (c Config) Validate() error {
	if err := c.ValidateLocal(); err != nil {
		return err
	}
	if c.BaseURL == "" {
		return sperrors.NewConfigError("no endpoint configured",
			fmt.Sprintf("Set %s, base_url in the config file, or pass --url", EnvURL))
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return sperrors.NewConfigError(fmt.Sprintf("invalid base url %q", c.BaseURL),
			"Use an absolute http(s) URL such as https://<project>.supabase.co")
	}
	if c.APIKey == "" {
		return sperrors.NewConfigError("no api key configured",
			fmt.Sprintf("Set %s in the environment or a .env file", EnvAPIKey))
	}
	if c.Timeout <= 0 {
		return sperrors.NewConfigError("timeout must be positive", "")
	}
	if err := c.Retry.Validate(); err != nil {
		return sperrors.NewConfigError("retry: "+err.Error(), "")
	}
	return nil
}
