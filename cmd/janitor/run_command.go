package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"janitor/internal/janitor"
	"janitor/internal/retention"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one cleanup pass: media first, then torrents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, _, err := ctx.logger("")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runner, err := janitor.NewRunner(cfg, janitor.NewDeps(cfg, logger, nil))
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := runner.Run(runCtx, janitor.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate and notify without deleting anything")
	return cmd
}

func printSummary(out io.Writer, summary janitor.Summary) {
	mediaRemoved := summary.Media.Count(retention.ActionDeleted) + summary.Media.Count(retention.ActionSimulated)
	torrentsRemoved := summary.Torrents.Count(retention.ActionDeleted) + summary.Torrents.Count(retention.ActionSimulated)
	verb := "removed"
	if summary.DryRun {
		verb = "would be removed"
	}
	fmt.Fprintf(out, "Run %s finished: %s\n", summary.RunID, summary.Result)
	fmt.Fprintf(out, "Media %s: %d\n", verb, mediaRemoved)
	fmt.Fprintf(out, "Torrents %s: %d\n", verb, torrentsRemoved)
	if failed := summary.Torrents.Count(retention.ActionDeleteFailed); failed > 0 {
		fmt.Fprintf(out, "Torrent deletes failed: %d\n", failed)
	}
	if summary.Torrents.Aborted != "" {
		fmt.Fprintf(out, "Torrent evaluation stopped: %s\n", summary.Torrents.Aborted)
	}
}
