package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sperrors "github.com/stevehiehn/schemapush/internal/errors"
	"github.com/stevehiehn/schemapush/internal/sqlsplit"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvURL, EnvAPIKey, EnvTimeout, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
	assert.True(t, cfg.Probe)
	assert.Equal(t, sqlsplit.ModeNaive, cfg.Splitter)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".schemapush.yaml", `
base_url: https://example.supabase.co
rpc_path: /rest/v1/rpc/run_sql
timeout: 45s
probe: false
splitter: lexical
keep_trailing: true
artifacts: false
format: json
retry:
  max_attempts: 3
  initial_delay: 500ms
  max_delay: 5s
  jitter_factor: 0
`)
	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.supabase.co", cfg.BaseURL)
	assert.Equal(t, "/rest/v1/rpc/run_sql", cfg.RPCPath)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.False(t, cfg.Probe)
	assert.Equal(t, sqlsplit.ModeLexical, cfg.Splitter)
	assert.True(t, cfg.KeepTrailing)
	assert.False(t, cfg.Artifacts)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, 5*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 0.0, cfg.Retry.JitterFactor)
	assert.Equal(t, 2.0, cfg.Retry.BackoffFactor)
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".schemapush.toml", `
base_url = "https://toml.example.com"
probe_timeout = "3s"
log_level = "DEBUG"

[retry]
max_attempts = 2
backoff_factor = 1.5
`)
	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://toml.example.com", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
	assert.Equal(t, 1.5, cfg.Retry.BackoffFactor)
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	clearEnv(t)
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yml", "timeout: soon\n")
	_, err := Load(dir, path)
	assert.ErrorContains(t, err, "timeout")
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".schemapush.yaml", "base_url: [unclosed")
	_, err := Load(dir, "")
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".schemapush.yaml", "base_url: https://file.example.com\napi_key: from-file\n")
	t.Setenv(EnvURL, "https://env.example.com")
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvTimeout, "12s")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, 12*time.Second, cfg.Timeout)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv(EnvAPIKey))
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", EnvAPIKey+"=dotenv-key\n")

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv(EnvAPIKey) })

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.APIKey)
}

func TestLoadDotEnvMissingIsIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestApplyFlags(t *testing.T) {
	cfg := Default()
	ApplyFlags(&cfg, FlagValues{
		BaseURL:      StringFlag{Value: "https://flag.example.com", Set: true},
		Timeout:      DurationFlag{Value: 5 * time.Second, Set: true},
		Retries:      IntFlag{Value: 2, Set: true},
		NoProbe:      BoolFlag{Value: true, Set: true},
		Lexical:      BoolFlag{Value: true, Set: true},
		KeepTrailing: BoolFlag{Value: true, Set: true},
		NoArtifacts:  BoolFlag{Value: true, Set: true},
	})
	assert.Equal(t, "https://flag.example.com", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.False(t, cfg.Probe)
	assert.Equal(t, sqlsplit.ModeLexical, cfg.Splitter)
	assert.True(t, cfg.KeepTrailing)
	assert.False(t, cfg.Artifacts)
	assert.Equal(t, FormatPretty, cfg.Format, "unset flags keep their value")
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.BaseURL = "https://example.supabase.co"
	valid.APIKey = "key"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing url", func(c *Config) { c.BaseURL = "" }},
		{"relative url", func(c *Config) { c.BaseURL = "example.com" }},
		{"missing key", func(c *Config) { c.APIKey = "" }},
		{"bad splitter", func(c *Config) { c.Splitter = "regex" }},
		{"bad format", func(c *Config) { c.Format = "xml" }},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"bad retry", func(c *Config) { c.Retry.MaxAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			re, ok := sperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, sperrors.ConfigError, re.Type)
		})
	}
}

func TestRemoteAndSplitOptions(t *testing.T) {
	cfg := Default()
	cfg.BaseURL = "https://example.com"
	cfg.APIKey = "k"
	cfg.Splitter = sqlsplit.ModeLexical
	cfg.KeepTrailing = true

	rc := cfg.Remote()
	assert.Equal(t, "https://example.com", rc.BaseURL)
	assert.Equal(t, "k", rc.APIKey)
	assert.Equal(t, cfg.Timeout, rc.Timeout)
	assert.Equal(t, sqlsplit.Options{Mode: sqlsplit.ModeLexical, KeepTrailing: true}, cfg.SplitOptions())
}
