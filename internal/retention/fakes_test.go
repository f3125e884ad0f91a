package retention_test

import (
	"context"
	"errors"
	"time"

	"janitor/internal/retention"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func viewedDaysAgo(days int) *time.Time {
	ts := fixedNow.Add(-time.Duration(days) * 24 * time.Hour)
	return &ts
}

type recorder struct {
	messages []string
}

func (r *recorder) Notify(_ context.Context, message string) {
	r.messages = append(r.messages, message)
}

type fakeServer struct {
	sections  []retention.Section
	items     map[string][]retention.Item
	episodes  map[string][]retention.Item
	deleteErr map[string]error

	itemCalls    []string
	episodeCalls []string
	deleted      []string
}

func (f *fakeServer) Sections(context.Context) ([]retention.Section, error) {
	return f.sections, nil
}

func (f *fakeServer) Items(_ context.Context, section retention.Section) ([]retention.Item, error) {
	f.itemCalls = append(f.itemCalls, section.Key)
	return f.items[section.Key], nil
}

func (f *fakeServer) Episodes(_ context.Context, show retention.Item) ([]retention.Item, error) {
	f.episodeCalls = append(f.episodeCalls, show.RatingKey)
	return f.episodes[show.RatingKey], nil
}

func (f *fakeServer) Delete(_ context.Context, item retention.Item) error {
	if err := f.deleteErr[item.RatingKey]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, item.RatingKey)
	return nil
}

type fakeTorrents struct {
	loginErr  error
	listErr   error
	torrents  []retention.Torrent
	space     []int64
	spaceErrs map[int]error
	deleteErr map[string]error

	spaceCalls int
	deleted    []string
}

func (f *fakeTorrents) Login(context.Context) error { return f.loginErr }

func (f *fakeTorrents) Torrents(context.Context) ([]retention.Torrent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.torrents, nil
}

func (f *fakeTorrents) FreeSpace(context.Context) (int64, error) {
	call := f.spaceCalls
	f.spaceCalls++
	if err := f.spaceErrs[call]; err != nil {
		return 0, err
	}
	if call >= len(f.space) {
		return 0, errors.New("no free space sample scripted")
	}
	return f.space[call], nil
}

func (f *fakeTorrents) Delete(_ context.Context, hash string, deleteFiles bool) error {
	if !deleteFiles {
		return errors.New("expected deleteFiles=true")
	}
	if err := f.deleteErr[hash]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, hash)
	return nil
}

func newPolicy(idleDays int, minRatio float64, minSeedDays int, dryRun bool) retention.Policy {
	return retention.Policy{
		KeepMovies:  map[string]struct{}{},
		KeepShows:   map[string]struct{}{},
		IdleDays:    idleDays,
		MinRatio:    minRatio,
		MinSeedDays: minSeedDays,
		DryRun:      dryRun,
	}
}
