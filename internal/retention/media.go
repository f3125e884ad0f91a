package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"janitor/internal/logging"
)

// MediaEvaluator removes watched movies and episodes that sat idle past the
// policy threshold.
type MediaEvaluator struct {
	server   MediaServer
	notifier Notifier
	policy   Policy
	logger   *slog.Logger
	now      func() time.Time
}

// NewMediaEvaluator constructs a media evaluator.
func NewMediaEvaluator(server MediaServer, notifier Notifier, policy Policy, logger *slog.Logger) *MediaEvaluator {
	return &MediaEvaluator{
		server:   server,
		notifier: notifier,
		policy:   policy,
		logger:   logging.NewComponentLogger(logger, "media"),
		now:      time.Now,
	}
}

// SetClock overrides the time source used for idle calculations.
func (e *MediaEvaluator) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Run evaluates every movie and show section. A failed listing or delete
// stops evaluation and is returned; decisions made so far are kept in the
// report.
func (e *MediaEvaluator) Run(ctx context.Context) (Report, error) {
	var report Report
	sections, err := e.server.Sections(ctx)
	if err != nil {
		return report, fmt.Errorf("list library sections: %w", err)
	}
	now := e.now()
	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		switch section.Kind {
		case SectionMovie:
			err = e.movies(ctx, now, section, &report)
		case SectionShow:
			err = e.shows(ctx, now, section, &report)
		default:
			e.logger.Debug("section skipped",
				logging.String("section", section.Title),
				logging.String("section_kind", string(section.Kind)),
			)
			continue
		}
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (e *MediaEvaluator) movies(ctx context.Context, now time.Time, section Section, report *Report) error {
	items, err := e.server.Items(ctx, section)
	if err != nil {
		return fmt.Errorf("list section %q: %w", section.Title, err)
	}
	for _, movie := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.logger.Debug("checking movie", logging.String("title", movie.Title))
		if e.policy.KeepsMovie(movie.Title) {
			e.logProtected(movie, "title in keep_movies")
			report.add(Decision{Kind: KindMovie, ID: movie.RatingKey, Title: movie.Title, Action: ActionProtected, Reason: "keep list"})
			continue
		}
		movie.Kind = KindMovie
		if err := e.evaluate(ctx, now, movie, movieMessage(movie), report); err != nil {
			return fmt.Errorf("delete movie %q: %w", movie.Title, err)
		}
	}
	return nil
}

func (e *MediaEvaluator) shows(ctx context.Context, now time.Time, section Section, report *Report) error {
	shows, err := e.server.Items(ctx, section)
	if err != nil {
		return fmt.Errorf("list section %q: %w", section.Title, err)
	}
	for _, show := range shows {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.logger.Debug("checking show", logging.String("title", show.Title))
		if e.policy.KeepsShow(show.Title) {
			e.logProtected(show, "title in keep_shows")
			report.add(Decision{Kind: KindShow, ID: show.RatingKey, Title: show.Title, Action: ActionProtected, Reason: "keep list"})
			continue
		}
		episodes, err := e.server.Episodes(ctx, show)
		if err != nil {
			return fmt.Errorf("list episodes of %q: %w", show.Title, err)
		}
		for _, episode := range episodes {
			episode.Kind = KindEpisode
			if episode.ShowTitle == "" {
				episode.ShowTitle = show.Title
			}
			if err := e.evaluate(ctx, now, episode, episodeMessage(episode), report); err != nil {
				return fmt.Errorf("delete episode %q of %q: %w", episode.Title, show.Title, err)
			}
		}
	}
	return nil
}

// evaluate applies the idle test to a single movie or episode. Notification
// always precedes the delete.
func (e *MediaEvaluator) evaluate(ctx context.Context, now time.Time, item Item, message string, report *Report) error {
	decision := Decision{Kind: item.Kind, ID: item.RatingKey, Title: item.Title, Show: item.ShowTitle, Watched: item.LastViewedAt != nil}
	expired, days := e.policy.Expired(now, item.LastViewedAt)
	decision.IdleDays = days
	if !expired {
		decision.Action = ActionKept
		if item.LastViewedAt == nil {
			decision.Reason = "never viewed"
		} else {
			decision.Reason = fmt.Sprintf("idle %d of %d days", days, e.policy.IdleDays)
		}
		attrs := append([]logging.Attr{
			logging.String("title", item.Title),
			logging.String("kind", string(item.Kind)),
		}, logging.DecisionAttrs("idle", "kept", decision.Reason)...)
		e.logger.Debug("item not old enough to delete", logging.Args(attrs...)...)
		report.add(decision)
		return nil
	}

	decision.Reason = fmt.Sprintf("idle %d days (threshold %d)", days, e.policy.IdleDays)
	e.logger.Info(message,
		logging.String(logging.FieldEventType, "media_expired"),
		logging.Bool(logging.FieldDryRun, e.policy.DryRun),
		logging.Int("idle_days", days),
	)
	e.notifier.Notify(ctx, message)
	if e.policy.DryRun {
		decision.Action = ActionSimulated
		report.add(decision)
		return nil
	}
	if err := e.server.Delete(ctx, item); err != nil {
		decision.Action = ActionDeleteFailed
		report.add(decision)
		return err
	}
	decision.Action = ActionDeleted
	report.add(decision)
	return nil
}

func (e *MediaEvaluator) logProtected(item Item, reason string) {
	attrs := append([]logging.Attr{logging.String("title", item.Title)}, logging.DecisionAttrs("keep_list", "protected", reason)...)
	e.logger.Debug("skipping kept title", logging.Args(attrs...)...)
}
