package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stevehiehn/schemapush/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP stdio server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()
			return mcp.Serve(cmd.Context(), mcp.Options{
				WorkDir: s.root,
				Config:  s.cfg,
				Logger:  s.logger,
			})
		},
	}
}
