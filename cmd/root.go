package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	sperrors "github.com/stevehiehn/schemapush/internal/errors"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "schemapush",
		Short:         "Apply a SQL file to a remote database one statement at a time",
		Long:          "schemapush splits a SQL file into statements and submits each one to a SQL-execution RPC endpoint, reporting what succeeded and what failed.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.Bool("json", false, "Output raw JSON")
	persistent.String("config", "", "config file (default .schemapush.yaml, .schemapush.yml or .schemapush.toml)")
	persistent.String("env-file", ".env", "dotenv file to load credentials from")
	persistent.String("log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newPushCmd())
	cmd.AddCommand(newSplitCmd())
	cmd.AddCommand(newProbeCmd())
	cmd.AddCommand(newMCPCmd())

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
	if re, ok := sperrors.As(err); ok && re.Hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", re.Hint)
	}
}
