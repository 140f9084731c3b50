package config

import (
	"time"

	"github.com/stevehiehn/schemapush/internal/sqlsplit"
)

// FlagValues captures CLI flag state with knowledge of whether each flag
// was set explicitly.
type FlagValues struct {
	BaseURL      StringFlag
	RPCPath      StringFlag
	Format       StringFlag
	LogLevel     StringFlag
	Timeout      DurationFlag
	Retries      IntFlag
	NoProbe      BoolFlag
	Lexical      BoolFlag
	KeepTrailing BoolFlag
	NoArtifacts  BoolFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

// IntFlag represents an int flag and whether it was set.
type IntFlag struct {
	Value int
	Set   bool
}

// DurationFlag represents a duration flag and whether it was set.
type DurationFlag struct {
	Value time.Duration
	Set   bool
}

// ApplyFlags mutates cfg with the flags that were set explicitly.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.BaseURL.Set {
		cfg.BaseURL = flags.BaseURL.Value
	}
	if flags.RPCPath.Set {
		cfg.RPCPath = flags.RPCPath.Value
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.LogLevel.Set {
		cfg.LogLevel = flags.LogLevel.Value
	}
	if flags.Timeout.Set {
		cfg.Timeout = flags.Timeout.Value
	}
	if flags.Retries.Set {
		cfg.Retry.MaxAttempts = flags.Retries.Value + 1
	}
	if flags.NoProbe.Set {
		cfg.Probe = !flags.NoProbe.Value
	}
	if flags.Lexical.Set {
		if flags.Lexical.Value {
			cfg.Splitter = sqlsplit.ModeLexical
		} else {
			cfg.Splitter = sqlsplit.ModeNaive
		}
	}
	if flags.KeepTrailing.Set {
		cfg.KeepTrailing = flags.KeepTrailing.Value
	}
	if flags.NoArtifacts.Set {
		cfg.Artifacts = !flags.NoArtifacts.Value
	}
}
