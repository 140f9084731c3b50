package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/schemapush/internal/engine"
	sperrors "github.com/stevehiehn/schemapush/internal/errors"
	"github.com/stevehiehn/schemapush/internal/remote"
	"github.com/stevehiehn/schemapush/internal/retry"
)

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <file.sql>",
		Short: "Submit every statement in a SQL file to the remote",
		Long:  "Split the file and submit each statement in order. A failed statement is reported and the run continues. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  runPush,
	}

	cmd.Flags().String("url", "", "project base URL (overrides SCHEMAPUSH_URL)")
	cmd.Flags().String("rpc-path", "", "path of the SQL execution RPC")
	cmd.Flags().Duration("timeout", remote.DefaultTimeout, "per-statement request timeout")
	cmd.Flags().Bool("no-probe", false, "skip the connection check before the run")
	cmd.Flags().Bool("force", false, "run even if the connection check fails")
	cmd.Flags().Int("retries", 0, "extra attempts for transport errors, 429 and 5xx")
	cmd.Flags().Bool("no-artifacts", false, "do not write report.json and failed.sql")
	addSplitFlags(cmd)

	return cmd
}

func runPush(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	if err := s.cfg.Validate(); err != nil {
		return err
	}
	client, err := remote.New(s.cfg.Remote(), s.logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if s.cfg.Probe {
		force, _ := cmd.Flags().GetBool("force")
		start := time.Now()
		status, err := client.Probe(ctx)
		if err != nil {
			if !force {
				return &sperrors.RunError{
					Type:       sperrors.ProbeFailed,
					StatusCode: status,
					Message:    err.Error(),
					Hint:       "Check the URL and API key, or pass --force to run anyway",
					Err:        err,
				}
			}
			s.logger.Warn("connection check failed, continuing", "error", err)
		} else {
			s.logger.Info("connection check passed", "elapsed", time.Since(start).Round(time.Millisecond).String())
		}
	}

	executor, err := retry.Wrap(client, s.cfg.Retry, s.logger)
	if err != nil {
		return err
	}
	rc := engine.NewRunContext(s.root, executor, s.logger, s.cfg.Artifacts)
	report, err := engine.Push(ctx, args[0], s.cfg.SplitOptions(), rc)
	if err != nil {
		return err
	}

	if err := s.reporter.Report(report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d statements failed", report.Failed, report.Total())
	}
	return nil
}
