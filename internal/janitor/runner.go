package janitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"janitor/internal/config"
	"janitor/internal/logging"
	"janitor/internal/metrics"
	"janitor/internal/notifications"
	"janitor/internal/retention"
	"janitor/internal/services"
	"janitor/internal/services/plex"
	"janitor/internal/services/qbittorrent"
)

// ErrLocked is returned when another run holds the lock.
var ErrLocked = errors.New("another janitor run is already in progress")

// Deps are the collaborators of a run. Metrics may be nil.
type Deps struct {
	Media    retention.MediaServer
	Torrents retention.TorrentClient
	Notifier retention.Notifier
	Metrics  *metrics.Collector
	Logger   *slog.Logger
	Clock    func() time.Time
}

// NewDeps builds production dependencies from configuration.
func NewDeps(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) Deps {
	return Deps{
		Media:    plexLibrary{client: plex.NewConfiguredClient(cfg)},
		Torrents: qbitClient{client: qbittorrent.NewConfiguredClient(cfg)},
		Notifier: notifications.NewService(cfg, logger),
		Metrics:  collector,
		Logger:   logger,
	}
}

// Options tune a single run.
type Options struct {
	// DryRun forces test mode regardless of configuration.
	DryRun bool
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Result   string
	DryRun   bool
	Started  time.Time
	Finished time.Time
	Media    retention.Report
	Torrents retention.Report
}

// Runner executes janitor runs.
type Runner struct {
	cfg    *config.Config
	deps   Deps
	lock   *flock.Flock
	logger *slog.Logger
}

// NewRunner validates dependencies and prepares the run lock.
func NewRunner(cfg *config.Config, deps Deps) (*Runner, error) {
	if cfg == nil || deps.Media == nil || deps.Torrents == nil || deps.Notifier == nil {
		return nil, errors.New("janitor runner requires config, media server, torrent client and notifier")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Runner{
		cfg:    cfg,
		deps:   deps,
		lock:   flock.New(cfg.LockPath()),
		logger: logging.NewComponentLogger(deps.Logger, "janitor"),
	}, nil
}

// Run evaluates media then torrents. The returned error is nil for completed
// runs, including runs whose torrent evaluation aborted.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	summary := Summary{
		RunID:   uuid.NewString(),
		Started: r.deps.Clock(),
	}

	if err := os.MkdirAll(filepath.Dir(r.lock.Path()), 0o755); err != nil {
		return summary, fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := r.lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		summary.Result = metrics.ResultLocked
		summary.Finished = r.deps.Clock()
		r.deps.Metrics.RecordRun(summary.Result, summary.Finished, 0)
		return summary, fmt.Errorf("%w (lock %s)", ErrLocked, r.lock.Path())
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			logging.WarnWithContext(r.logger, "failed to release run lock", "run_lock_release_failed",
				logging.Error(err),
				logging.String("lock", r.lock.Path()),
			)
		}
	}()

	policy, err := retention.NewPolicy(r.cfg)
	if err != nil {
		return summary, err
	}
	if opts.DryRun {
		policy.DryRun = true
	}
	summary.DryRun = policy.DryRun

	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))
	ctx = services.WithRunID(ctx, summary.RunID)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.Bool(logging.FieldDryRun, policy.DryRun),
		logging.Int("days_to_keep", policy.IdleDays),
		logging.Float64("min_ratio", policy.MinRatio),
		logging.Int("min_seed_days", policy.MinSeedDays),
	)

	mediaEval := retention.NewMediaEvaluator(r.deps.Media, r.deps.Notifier, policy, logger)
	mediaEval.SetClock(r.deps.Clock)
	summary.Media, err = mediaEval.Run(services.WithPhase(ctx, "media"))
	if err != nil {
		return r.finish(logger, summary, metrics.ResultFailed, fmt.Errorf("media evaluation: %w", err))
	}

	torrentEval := retention.NewTorrentEvaluator(r.deps.Torrents, r.deps.Notifier, policy, logger)
	summary.Torrents, err = torrentEval.Run(services.WithPhase(ctx, "torrents"))
	switch {
	case errors.Is(err, retention.ErrAborted):
		return r.finish(logger, summary, metrics.ResultAborted, nil)
	case err != nil:
		return r.finish(logger, summary, metrics.ResultFailed, fmt.Errorf("torrent evaluation: %w", err))
	}
	return r.finish(logger, summary, metrics.ResultSuccess, nil)
}

func (r *Runner) finish(logger *slog.Logger, summary Summary, result string, runErr error) (Summary, error) {
	summary.Result = result
	summary.Finished = r.deps.Clock()
	duration := summary.Finished.Sub(summary.Started)
	r.deps.Metrics.RecordRun(result, summary.Finished, duration, summary.Media, summary.Torrents)

	attrs := []logging.Attr{
		logging.String("result", result),
		logging.Bool(logging.FieldDryRun, summary.DryRun),
		logging.Duration("duration", duration),
		logging.Int("media_removed", summary.Media.Count(retention.ActionDeleted)+summary.Media.Count(retention.ActionSimulated)),
		logging.Int("torrents_removed", summary.Torrents.Count(retention.ActionDeleted)+summary.Torrents.Count(retention.ActionSimulated)),
		logging.Int("torrent_delete_failures", summary.Torrents.Count(retention.ActionDeleteFailed)),
		logging.String("freed", retention.FormatGB(summary.Torrents.FreedBytes())),
	}
	if summary.Torrents.Aborted != "" {
		attrs = append(attrs, logging.String("torrent_abort", summary.Torrents.Aborted))
	}
	if runErr != nil {
		label, hint := services.Classify(runErr)
		attrs = append(attrs,
			logging.Error(runErr),
			logging.String("error_class", label),
			logging.String(logging.FieldErrorHint, hint),
		)
		logging.ErrorWithContext(logger, "run failed", "run_failed", attrs...)
		return summary, runErr
	}
	attrs = append(attrs, logging.String(logging.FieldEventType, "run_finished"))
	logger.Info("run finished", logging.Args(attrs...)...)
	return summary, nil
}
