package retention_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"janitor/internal/logging"
	"janitor/internal/retention"
)

func newMediaLibrary() *fakeServer {
	return &fakeServer{
		sections: []retention.Section{
			{Key: "1", Title: "Movies", Kind: retention.SectionMovie},
			{Key: "2", Title: "TV", Kind: retention.SectionShow},
			{Key: "3", Title: "Music", Kind: retention.SectionOther},
		},
		items: map[string][]retention.Item{
			"1": {
				{RatingKey: "m1", Title: "Heat", LastViewedAt: viewedDaysAgo(31)},
				{RatingKey: "m2", Title: "Ronin", LastViewedAt: viewedDaysAgo(30)},
				{RatingKey: "m3", Title: "Thief"},
				{RatingKey: "m4", Title: "Collateral", LastViewedAt: viewedDaysAgo(400)},
			},
			"2": {
				{RatingKey: "s1", Title: "The Wire"},
				{RatingKey: "s2", Title: "Deadwood"},
			},
		},
		episodes: map[string][]retention.Item{
			"s1": {{RatingKey: "e1", Title: "The Target", LastViewedAt: viewedDaysAgo(90)}},
			"s2": {
				{RatingKey: "e2", Title: "Deep Water", LastViewedAt: viewedDaysAgo(45)},
				{RatingKey: "e3", Title: "Reconnoitering the Rim", LastViewedAt: viewedDaysAgo(2)},
				{RatingKey: "e4", Title: "Here Was a Man"},
			},
		},
	}
}

func runMedia(t *testing.T, server *fakeServer, policy retention.Policy) (retention.Report, *recorder, error) {
	t.Helper()
	notes := &recorder{}
	evaluator := retention.NewMediaEvaluator(server, notes, policy, logging.NewNop())
	evaluator.SetClock(func() time.Time { return fixedNow })
	report, err := evaluator.Run(context.Background())
	return report, notes, err
}

func TestMediaEvaluatorDeletesExpiredItems(t *testing.T) {
	server := newMediaLibrary()
	report, notes, err := runMedia(t, server, newPolicy(30, 1, 14, false))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantDeleted := []string{"m1", "m4", "e1", "e2"}
	if !reflect.DeepEqual(server.deleted, wantDeleted) {
		t.Fatalf("deleted = %v, want %v", server.deleted, wantDeleted)
	}
	wantMessages := []string{
		"Deleting movie: Heat (last viewed: 2024-05-01 12:00:00)",
		"Deleting movie: Collateral (last viewed: 2023-04-28 12:00:00)",
		"Deleting episode: The Target from show The Wire (last viewed: 2024-03-03 12:00:00)",
		"Deleting episode: Deep Water from show Deadwood (last viewed: 2024-04-17 12:00:00)",
	}
	if !reflect.DeepEqual(notes.messages, wantMessages) {
		t.Fatalf("messages = %q, want %q", notes.messages, wantMessages)
	}
	if got := report.Count(retention.ActionDeleted); got != 4 {
		t.Fatalf("expected 4 deleted decisions, got %d", got)
	}
	if got := report.Count(retention.ActionKept); got != 4 {
		t.Fatalf("expected 4 kept decisions, got %d", got)
	}
}

func TestMediaEvaluatorSkipsOtherSections(t *testing.T) {
	server := newMediaLibrary()
	if _, _, err := runMedia(t, server, newPolicy(30, 1, 14, false)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !reflect.DeepEqual(server.itemCalls, []string{"1", "2"}) {
		t.Fatalf("expected only movie and show sections listed, got %v", server.itemCalls)
	}
}

func TestMediaEvaluatorHonorsKeepLists(t *testing.T) {
	server := newMediaLibrary()
	policy := newPolicy(30, 1, 14, false)
	policy.KeepMovies["Heat"] = struct{}{}
	policy.KeepShows["The Wire"] = struct{}{}

	report, notes, err := runMedia(t, server, policy)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !reflect.DeepEqual(server.deleted, []string{"m4", "e2"}) {
		t.Fatalf("unexpected deletions %v", server.deleted)
	}
	if !reflect.DeepEqual(server.episodeCalls, []string{"s2"}) {
		t.Fatalf("kept show must not have episodes listed, got %v", server.episodeCalls)
	}
	if len(notes.messages) != 2 {
		t.Fatalf("expected 2 notifications, got %q", notes.messages)
	}
	if got := report.Count(retention.ActionProtected); got != 2 {
		t.Fatalf("expected 2 protected decisions, got %d", got)
	}
}

func TestMediaEvaluatorDryRunMatchesRealNotifications(t *testing.T) {
	realServer := newMediaLibrary()
	_, realNotes, err := runMedia(t, realServer, newPolicy(30, 1, 14, false))
	if err != nil {
		t.Fatalf("real run returned error: %v", err)
	}

	dryServer := newMediaLibrary()
	report, dryNotes, err := runMedia(t, dryServer, newPolicy(30, 1, 14, true))
	if err != nil {
		t.Fatalf("dry run returned error: %v", err)
	}
	if len(dryServer.deleted) != 0 {
		t.Fatalf("dry run must not delete, got %v", dryServer.deleted)
	}
	if !reflect.DeepEqual(realNotes.messages, dryNotes.messages) {
		t.Fatalf("dry run messages differ:\nreal %q\ndry  %q", realNotes.messages, dryNotes.messages)
	}
	if got := report.Count(retention.ActionSimulated); got != 4 {
		t.Fatalf("expected 4 simulated decisions, got %d", got)
	}
}

func TestMediaEvaluatorNeverDeletesUnwatched(t *testing.T) {
	server := &fakeServer{
		sections: []retention.Section{{Key: "1", Kind: retention.SectionMovie}},
		items:    map[string][]retention.Item{"1": {{RatingKey: "m1", Title: "Unseen"}}},
	}
	report, notes, err := runMedia(t, server, newPolicy(0, 1, 14, false))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(server.deleted) != 0 || len(notes.messages) != 0 {
		t.Fatalf("unwatched movie must be kept, deleted=%v messages=%q", server.deleted, notes.messages)
	}
	if len(report.Decisions) != 1 || report.Decisions[0].Watched || report.Decisions[0].Reason != "never viewed" {
		t.Fatalf("unexpected decision %+v", report.Decisions)
	}
}

func TestMediaEvaluatorStopsOnDeleteFailure(t *testing.T) {
	server := newMediaLibrary()
	server.deleteErr = map[string]error{"m1": errors.New("plex returned 500")}

	report, notes, err := runMedia(t, server, newPolicy(30, 1, 14, false))
	if err == nil {
		t.Fatal("expected delete failure to propagate")
	}
	if errors.Is(err, retention.ErrAborted) {
		t.Fatalf("media delete failure must not be a handled abort: %v", err)
	}
	if len(server.deleted) != 0 {
		t.Fatalf("no further deletes expected, got %v", server.deleted)
	}
	if len(notes.messages) != 1 {
		t.Fatalf("notification precedes the failed delete, got %q", notes.messages)
	}
	if got := report.Count(retention.ActionDeleteFailed); got != 1 {
		t.Fatalf("expected a delete_failed decision, got %d", got)
	}
}
