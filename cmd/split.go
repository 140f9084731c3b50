package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stevehiehn/schemapush/internal/source"
)

func newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <file.sql>",
		Short: "Show the statements that would be sent, without contacting the remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			text, err := source.LoadFile(args[0])
			if err != nil {
				return err
			}
			statements := s.cfg.SplitOptions().Split(text)
			s.logger.Debug("split source", "path", args[0], "mode", string(s.cfg.Splitter), "statements", len(statements))
			return s.reporter.Statements(args[0], statements)
		},
	}
	addSplitFlags(cmd)
	return cmd
}
