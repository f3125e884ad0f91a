package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"janitor/internal/logging"
)

const (
	msgLoginFailed     = "Failed to log in to qBittorrent"
	msgListFailed      = "Failed to fetch torrent list"
	msgFreeSpaceFailed = "Failed to fetch free space"
)

var errEmptyTorrentList = errors.New("torrent list is empty")

// TorrentEvaluator removes torrents that reached the seed thresholds and
// reports the free-space change after each removal.
type TorrentEvaluator struct {
	client   TorrentClient
	notifier Notifier
	policy   Policy
	logger   *slog.Logger
}

// NewTorrentEvaluator constructs a torrent evaluator.
func NewTorrentEvaluator(client TorrentClient, notifier Notifier, policy Policy, logger *slog.Logger) *TorrentEvaluator {
	return &TorrentEvaluator{
		client:   client,
		notifier: notifier,
		policy:   policy,
		logger:   logging.NewComponentLogger(logger, "torrents"),
	}
}

// Run evaluates every torrent. Login, listing and initial free-space failures
// are notified once and returned wrapped in ErrAborted. Individual delete
// failures are notified and evaluation moves on.
func (e *TorrentEvaluator) Run(ctx context.Context) (Report, error) {
	var report Report
	if err := e.client.Login(ctx); err != nil {
		return e.abort(ctx, &report, msgLoginFailed, err)
	}
	e.logger.Info("logged in to qBittorrent", logging.String(logging.FieldEventType, "torrent_login"))

	torrents, err := e.client.Torrents(ctx)
	if err != nil {
		return e.abort(ctx, &report, msgListFailed, err)
	}
	if len(torrents) == 0 {
		return e.abort(ctx, &report, msgListFailed, errEmptyTorrentList)
	}

	initial, err := e.client.FreeSpace(ctx)
	if err != nil {
		return e.abort(ctx, &report, msgFreeSpaceFailed, err)
	}
	e.logger.Debug("initial free space sampled", logging.Int64("free_bytes", initial))

	last := initial
	for _, torrent := range torrents {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		last = e.evaluate(ctx, torrent, initial, last, &report)
	}
	return report, nil
}

func (e *TorrentEvaluator) abort(ctx context.Context, report *Report, message string, cause error) (Report, error) {
	logging.ErrorWithContext(e.logger, message, "torrent_evaluation_aborted",
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "verify qBittorrent url, credentials and WebUI availability"),
	)
	e.notifier.Notify(ctx, message)
	report.Aborted = message
	return *report, fmt.Errorf("%w: %s: %w", ErrAborted, message, cause)
}

// evaluate handles one torrent and returns the most recent free-space sample.
func (e *TorrentEvaluator) evaluate(ctx context.Context, torrent Torrent, initial, last int64, report *Report) int64 {
	seedDays := SeedDays(torrent.SeedingTimeSeconds)
	decision := Decision{
		Kind:     KindTorrent,
		ID:       torrent.Hash,
		Title:    torrent.Name,
		Ratio:    torrent.Ratio,
		SeedDays: seedDays,
	}
	eligible, reason := e.policy.TorrentEligible(torrent)
	if !eligible {
		decision.Action = ActionKept
		decision.Reason = fmt.Sprintf("Ratio: %s, Seed Time: %.2f days", FormatRatio(torrent.Ratio), seedDays)
		attrs := append([]logging.Attr{
			logging.String("name", torrent.Name),
			logging.Float64("ratio", torrent.Ratio),
			logging.String("seed_days", fmt.Sprintf("%.2f", seedDays)),
		}, logging.DecisionAttrs("seed_threshold", "kept", "below ratio and seed time")...)
		e.logger.Info("torrent kept", logging.Args(attrs...)...)
		report.add(decision)
		return last
	}

	decision.SeedReason = reason
	decision.Reason = seedReasonText(reason, torrent)
	decision.Action = ActionSimulated
	if !e.policy.DryRun {
		if err := e.client.Delete(ctx, torrent.Hash, true); err != nil {
			logging.ErrorWithContext(e.logger, "torrent delete failed", "torrent_delete_failed",
				logging.String("name", torrent.Name),
				logging.String("hash", torrent.Hash),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check qBittorrent permissions on the download directory"),
			)
			e.notifier.Notify(ctx, fmt.Sprintf("Failed to delete torrent: %s", torrent.Hash))
			decision.Action = ActionDeleteFailed
			report.add(decision)
			// No free-space report for a failed delete: nothing was removed,
			// so a "Torrent deleted" message would be false.
			return last
		}
		decision.Action = ActionDeleted
	}

	current, err := e.client.FreeSpace(ctx)
	if err != nil {
		message := missingSpaceReport(torrent.Name, e.policy.DryRun)
		e.logger.Info(message,
			logging.String(logging.FieldEventType, "torrent_removed"),
			logging.Bool(logging.FieldDryRun, e.policy.DryRun),
			logging.Error(err),
		)
		e.notifier.Notify(ctx, message)
		report.add(decision)
		return last
	}

	decision.FreedBytes = current - last
	message := freeSpaceReport(torrent.Name, decision.Reason, e.policy.DryRun, initial, current)
	e.notifier.Notify(ctx, message)
	e.logger.Info("torrent removed",
		logging.String("name", torrent.Name),
		logging.String(logging.FieldEventType, "torrent_removed"),
		logging.String("reason", decision.Reason),
		logging.Bool(logging.FieldDryRun, e.policy.DryRun),
		logging.String("initial_free", FormatGB(initial)),
		logging.String("new_free", FormatGB(current)),
		logging.String("free_change", FormatGBChange(current-initial)),
	)
	report.add(decision)
	return current
}
