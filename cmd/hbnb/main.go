package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ferdiebergado/hbnb/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var settings app.Settings

	cmd := &cobra.Command{
		Use:          "hbnb",
		Short:        "hbnb: command interpreter for the AirBnB clone records",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdin) {
				settings.Quiet = true
			}

			if err := app.Run(cmd.Context(), settings, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				slog.Error("Application failed.", "reason", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&settings.ConfigFile, "config", "c", "config.json", "Path to the JSON config file")
	cmd.Flags().StringVarP(&settings.StorageFile, "file", "f", "", "Storage file (overrides storage.file)")
	cmd.Flags().BoolVarP(&settings.Quiet, "quiet", "q", false, "Do not print the prompt")
	return cmd
}

// isTerminal reports whether f is a character device, i.e. an interactive
// session rather than piped input.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
