package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/schemapush/internal/config"
	"github.com/stevehiehn/schemapush/internal/logging"
	"github.com/stevehiehn/schemapush/internal/output"
)

// settings is everything a command needs after flags, files and the
// environment have been merged.
type settings struct {
	root     string
	cfg      config.Config
	logger   logging.Logger
	reporter output.Reporter
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}

	flags := cmd.Flags()
	envFile, _ := flags.GetString("env-file")
	if envFile != "" && !filepath.IsAbs(envFile) {
		envFile = filepath.Join(root, envFile)
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfgPath, _ := flags.GetString("config")
	cfg, err := config.Load(root, cfgPath)
	if err != nil {
		return nil, err
	}

	values, err := gatherFlags(cmd)
	if err != nil {
		return nil, err
	}
	config.ApplyFlags(&cfg, values)
	if err := cfg.ValidateLocal(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return &settings{
		root:     root,
		cfg:      cfg,
		logger:   logger,
		reporter: output.New(cfg.Format, cmd.OutOrStdout()),
	}, nil
}

// gatherFlags records only the flags the user set, so unset flags never
// mask file or environment values. Flags a command does not define are
// never Changed.
func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("url") {
		v, err := flags.GetString("url")
		if err != nil {
			return values, fmt.Errorf("parse --url: %w", err)
		}
		values.BaseURL = config.StringFlag{Value: v, Set: true}
	}
	if flags.Changed("rpc-path") {
		v, err := flags.GetString("rpc-path")
		if err != nil {
			return values, fmt.Errorf("parse --rpc-path: %w", err)
		}
		values.RPCPath = config.StringFlag{Value: v, Set: true}
	}
	if flags.Changed("json") {
		v, err := flags.GetBool("json")
		if err != nil {
			return values, fmt.Errorf("parse --json: %w", err)
		}
		format := config.FormatPretty
		if v {
			format = config.FormatJSON
		}
		values.Format = config.StringFlag{Value: format, Set: true}
	}
	if flags.Changed("log-level") {
		v, err := flags.GetString("log-level")
		if err != nil {
			return values, fmt.Errorf("parse --log-level: %w", err)
		}
		values.LogLevel = config.StringFlag{Value: v, Set: true}
	}
	if flags.Changed("timeout") {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			return values, fmt.Errorf("parse --timeout: %w", err)
		}
		values.Timeout = config.DurationFlag{Value: v, Set: true}
	}
	if flags.Changed("retries") {
		v, err := flags.GetInt("retries")
		if err != nil {
			return values, fmt.Errorf("parse --retries: %w", err)
		}
		if v < 0 {
			return values, fmt.Errorf("--retries must not be negative")
		}
		values.Retries = config.IntFlag{Value: v, Set: true}
	}

	for name, dst := range map[string]*config.BoolFlag{
		"no-probe":      &values.NoProbe,
		"lexical":       &values.Lexical,
		"keep-trailing": &values.KeepTrailing,
		"no-artifacts":  &values.NoArtifacts,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", name, err)
		}
		*dst = config.BoolFlag{Value: v, Set: true}
	}

	return values, nil
}

// addSplitFlags registers the splitter flags shared by push and split.
func addSplitFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("lexical", false, "only split on semicolons outside quotes, comments and $$ bodies")
	cmd.Flags().Bool("keep-trailing", false, "send text after the last semicolon as a final statement")
}
