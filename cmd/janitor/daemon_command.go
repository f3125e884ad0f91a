package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"janitor/internal/janitor"
	"janitor/internal/logging"
	"janitor/internal/metrics"
	"janitor/internal/schedule"
)

const shutdownTimeout = 10 * time.Second

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run cleanup passes on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, logPath, err := ctx.logger("")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			if removed := logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, time.Now(), logging.RetentionTarget{
				Dir:     cfg.Logging.Dir,
				Pattern: "janitor-*.log",
				Exclude: []string{logPath},
			}); removed > 0 {
				logger.Info("old run logs removed",
					logging.Int("removed", removed),
					logging.String("dir", filepath.Clean(cfg.Logging.Dir)),
				)
			}

			collector := metrics.NewCollector(nil)
			runner, err := janitor.NewRunner(cfg, janitor.NewDeps(cfg, logger, collector))
			if err != nil {
				return err
			}

			daemonCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			scheduler, err := schedule.New(cfg.Schedule.Cron, scheduledRun(runner, logger), logger)
			if err != nil {
				return err
			}
			if err := scheduler.Start(daemonCtx); err != nil {
				return err
			}
			defer scheduler.Stop()

			var server *http.Server
			if cfg.Schedule.MetricsBind != "" {
				server, err = serveMetrics(daemonCtx, cfg.Schedule.MetricsBind, collector, logger)
				if err != nil {
					return err
				}
			}

			attrs := []logging.Attr{
				logging.String("schedule", cfg.Schedule.Cron),
				logging.Bool(logging.FieldDryRun, cfg.TestMode),
				logging.String(logging.FieldEventType, "daemon_started"),
			}
			if next := scheduler.NextRun(); next != nil {
				attrs = append(attrs, logging.Time("next_run", *next))
			}
			logger.Info("janitor daemon started", logging.Args(attrs...)...)
			fmt.Fprintf(cmd.OutOrStdout(), "Janitor daemon running on schedule %q\n", cfg.Schedule.Cron)

			if runNow {
				go scheduler.RunNow()
			}

			<-daemonCtx.Done()
			logger.Info("shutdown requested", logging.String(logging.FieldEventType, "daemon_stopping"))
			scheduler.Stop()
			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logging.WarnWithContext(logger, "metrics server shutdown failed", "metrics_shutdown_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "pending scrapes were cut off"),
					)
				}
			}
			logger.Info("janitor daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&runNow, "run-now", false, "Start one run immediately in addition to the schedule")
	return cmd
}

// scheduledRun adapts the runner to a cron job. Errors are logged by the
// runner itself; an overlapping run from another process is only a warning.
func scheduledRun(runner *janitor.Runner, logger *slog.Logger) schedule.Job {
	return func(ctx context.Context) {
		if ctx.Err() != nil {
			return
		}
		if _, err := runner.Run(ctx, janitor.Options{}); err != nil {
			if errors.Is(err, janitor.ErrLocked) {
				logging.WarnWithContext(logger, "scheduled run skipped", "run_locked",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "another janitor process holds the run lock"),
					logging.String(logging.FieldImpact, "this trigger was skipped"),
				)
			}
		}
	}
}

func serveMetrics(ctx context.Context, bind string, collector *metrics.Collector, logger *slog.Logger) (*http.Server, error) {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", bind, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(logger, "metrics server stopped", "metrics_server_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "metrics are no longer exported"),
			)
		}
	}()
	logger.Info("metrics endpoint listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "metrics_listening"),
	)
	return server, nil
}
