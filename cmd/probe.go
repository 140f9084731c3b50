package cmd

import (
	"github.com/spf13/cobra"

	sperrors "github.com/stevehiehn/schemapush/internal/errors"
	"github.com/stevehiehn/schemapush/internal/output"
	"github.com/stevehiehn/schemapush/internal/remote"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that the configured endpoint is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			status, probeErr := client.Probe(cmd.Context())
			result := output.ProbeResult{URL: s.cfg.BaseURL, OK: probeErr == nil, StatusCode: status}
			if probeErr != nil {
				result.Error = probeErr.Error()
			}
			if err := s.reporter.Probe(result); err != nil {
				return err
			}
			if probeErr != nil {
				return &sperrors.RunError{Type: sperrors.ProbeFailed, StatusCode: status, Message: probeErr.Error(), Err: probeErr}
			}
			return nil
		},
	}
	cmd.Flags().String("url", "", "project base URL (overrides SCHEMAPUSH_URL)")
	return cmd
}
