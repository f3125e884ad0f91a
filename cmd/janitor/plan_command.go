package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"janitor/internal/janitor"
	"janitor/internal/notifications"
	"janitor/internal/retention"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var showKept bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a run would delete without deleting or notifying",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, _, err := ctx.logger("warn")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			recorder := &notifications.Recorder{}
			deps := janitor.NewDeps(cfg, logger, nil)
			deps.Notifier = recorder
			runner, err := janitor.NewRunner(cfg, deps)
			if err != nil {
				return err
			}

			summary, err := runner.Run(cmd.Context(), janitor.Options{DryRun: true})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fancy := isTerminal(out)
			writePlan(out, summary, recorder.Messages, showKept, fancy)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showKept, "all", false, "Include kept and protected items")
	return cmd
}

func writePlan(out io.Writer, summary janitor.Summary, messages []string, showKept, fancy bool) {
	fmt.Fprintln(out, "Media")
	mediaRows := make([][]string, 0, len(summary.Media.Decisions))
	for _, d := range summary.Media.Decisions {
		if !showKept && !d.Removed() {
			continue
		}
		idle := "-"
		if d.Watched {
			idle = strconv.Itoa(d.IdleDays)
		}
		mediaRows = append(mediaRows, []string{string(d.Kind), d.Title, d.Show, idle, planAction(d), d.Reason})
	}
	if len(mediaRows) == 0 {
		fmt.Fprintln(out, "  nothing to delete")
	} else {
		fmt.Fprintln(out, renderTable(
			[]string{"Kind", "Title", "Show", "Idle Days", "Action", "Reason"},
			mediaRows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			fancy,
		))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Torrents")
	if summary.Torrents.Aborted != "" {
		fmt.Fprintf(out, "  %s\n", summary.Torrents.Aborted)
	} else {
		torrentRows := make([][]string, 0, len(summary.Torrents.Decisions))
		for _, d := range summary.Torrents.Decisions {
			if !showKept && !d.Removed() {
				continue
			}
			torrentRows = append(torrentRows, []string{
				d.Title,
				retention.FormatRatio(d.Ratio),
				fmt.Sprintf("%.2f", d.SeedDays),
				planAction(d),
				d.Reason,
			})
		}
		if len(torrentRows) == 0 {
			fmt.Fprintln(out, "  nothing to delete")
		} else {
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Ratio", "Seed Days", "Action", "Reason"},
				torrentRows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				fancy,
			))
		}
	}

	if len(messages) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Notifications suppressed (%d)\n", len(messages))
		for _, msg := range messages {
			fmt.Fprintf(out, "---\n%s\n", msg)
		}
	}
}

func planAction(d retention.Decision) string {
	if d.Action == retention.ActionSimulated {
		return "delete"
	}
	return string(d.Action)
}
