package retention_test

import (
	"testing"
	"time"

	"janitor/internal/retention"
	"janitor/internal/testsupport"
)

func TestNewPolicyFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithDaysToKeep(45),
		testsupport.WithSeedThresholds(1.5, 7),
		testsupport.WithKeepLists([]string{"Heat"}, []string{"The Wire"}),
		testsupport.WithTestMode(true),
	)
	policy, err := retention.NewPolicy(cfg)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	if policy.IdleDays != 45 || policy.MinRatio != 1.5 || policy.MinSeedDays != 7 || !policy.DryRun {
		t.Fatalf("unexpected policy %+v", policy)
	}
	if !policy.KeepsMovie("Heat") || policy.KeepsMovie("heat") {
		t.Fatal("expected exact keep_movies matching")
	}
	if !policy.KeepsShow("The Wire") || policy.KeepsShow("The Wire ") {
		t.Fatal("expected exact keep_shows matching")
	}
}

func TestNewPolicyRequiresThresholds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.DaysToKeep = nil
	if _, err := retention.NewPolicy(cfg); err == nil {
		t.Fatal("expected error when days_to_keep is missing")
	}
	cfg = testsupport.NewConfig(t)
	cfg.KeepMovies = nil
	policy, err := retention.NewPolicy(cfg)
	if err != nil {
		t.Fatalf("NewPolicy returned error for unset keep list: %v", err)
	}
	if policy.KeepsMovie("") {
		t.Fatal("expected unset keep list to protect nothing")
	}
	if _, err := retention.NewPolicy(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestIdleDaysRoundsDown(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{elapsed: 0, want: 0},
		{elapsed: 23 * time.Hour, want: 0},
		{elapsed: 24 * time.Hour, want: 1},
		{elapsed: 30*24*time.Hour + 23*time.Hour, want: 30},
		{elapsed: 31 * 24 * time.Hour, want: 31},
	}
	for _, tc := range tests {
		if got := retention.IdleDays(fixedNow, fixedNow.Add(-tc.elapsed)); got != tc.want {
			t.Fatalf("IdleDays(%s) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

func TestExpiredIsStrictAndIgnoresUnwatched(t *testing.T) {
	policy := newPolicy(30, 1, 14, false)
	if expired, _ := policy.Expired(fixedNow, nil); expired {
		t.Fatal("unwatched item must never expire")
	}
	if expired, days := policy.Expired(fixedNow, viewedDaysAgo(30)); expired || days != 30 {
		t.Fatalf("exactly threshold days must be kept, got expired=%v days=%d", expired, days)
	}
	if expired, days := policy.Expired(fixedNow, viewedDaysAgo(31)); !expired || days != 31 {
		t.Fatalf("threshold+1 days must expire, got expired=%v days=%d", expired, days)
	}
}

func TestTorrentEligibleUsesEitherThreshold(t *testing.T) {
	policy := newPolicy(30, 1.0, 3, false)
	tests := []struct {
		name       string
		torrent    retention.Torrent
		eligible   bool
		wantReason retention.SeedReason
	}{
		{name: "neither", torrent: retention.Torrent{Ratio: 0.5, SeedingTimeSeconds: 3600}, eligible: false},
		{name: "ratio only", torrent: retention.Torrent{Ratio: 1.0, SeedingTimeSeconds: 0}, eligible: true, wantReason: retention.ReasonRatio},
		{name: "seed time only", torrent: retention.Torrent{Ratio: 0.1, SeedingTimeSeconds: 259200}, eligible: true, wantReason: retention.ReasonSeedTime},
		{name: "both prefers ratio", torrent: retention.Torrent{Ratio: 2.0, SeedingTimeSeconds: 999999}, eligible: true, wantReason: retention.ReasonRatio},
		{name: "just under seed time", torrent: retention.Torrent{Ratio: 0.1, SeedingTimeSeconds: 259199}, eligible: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eligible, reason := policy.TorrentEligible(tc.torrent)
			if eligible != tc.eligible || reason != tc.wantReason {
				t.Fatalf("got (%v, %q), want (%v, %q)", eligible, reason, tc.eligible, tc.wantReason)
			}
		})
	}
}

func TestSeedDays(t *testing.T) {
	if got := retention.SeedDays(259200); got != 3.0 {
		t.Fatalf("SeedDays(259200) = %v, want 3.0", got)
	}
}

func TestFormatHelpers(t *testing.T) {
	for ratio, want := range map[float64]string{1: "1.0", 2.5: "2.5", 0.333: "0.333", 0: "0.0"} {
		if got := retention.FormatRatio(ratio); got != want {
			t.Fatalf("FormatRatio(%v) = %q, want %q", ratio, got, want)
		}
	}
	const gib = int64(1024 * 1024 * 1024)
	if got := retention.FormatGB(100 * gib); got != "100.00 GB" {
		t.Fatalf("FormatGB = %q", got)
	}
	if got := retention.FormatGBChange(5 * gib); got != "+5.00 GB" {
		t.Fatalf("FormatGBChange positive = %q", got)
	}
	if got := retention.FormatGBChange(-gib / 2); got != "-0.50 GB" {
		t.Fatalf("FormatGBChange negative = %q", got)
	}
}
