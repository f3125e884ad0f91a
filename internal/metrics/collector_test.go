package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"janitor/internal/retention"
)

func TestRecordRunCountsDeletions(t *testing.T) {
	c := NewCollector(nil)
	media := retention.Report{Decisions: []retention.Decision{
		{Kind: retention.KindMovie, Action: retention.ActionDeleted},
		{Kind: retention.KindEpisode, Action: retention.ActionDeleted},
		{Kind: retention.KindEpisode, Action: retention.ActionDeleted},
		{Kind: retention.KindMovie, Action: retention.ActionKept},
		{Kind: retention.KindMovie, Action: retention.ActionSimulated},
	}}
	torrents := retention.Report{Decisions: []retention.Decision{
		{Kind: retention.KindTorrent, Action: retention.ActionDeleted, SeedReason: retention.ReasonRatio, FreedBytes: 2048},
		{Kind: retention.KindTorrent, Action: retention.ActionDeleted, SeedReason: retention.ReasonSeedTime, FreedBytes: -10},
		{Kind: retention.KindTorrent, Action: retention.ActionDeleteFailed, SeedReason: retention.ReasonRatio},
	}}
	finished := time.Unix(1717243200, 0)

	c.RecordRun(ResultSuccess, finished, 3*time.Second, media, torrents)

	if got := testutil.ToFloat64(c.runsTotal.WithLabelValues(ResultSuccess)); got != 1 {
		t.Fatalf("runs_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.mediaDeleted.WithLabelValues("movie")); got != 1 {
		t.Fatalf("movie deletions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.mediaDeleted.WithLabelValues("episode")); got != 2 {
		t.Fatalf("episode deletions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.torrentsDeleted.WithLabelValues("ratio")); got != 1 {
		t.Fatalf("ratio deletions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.torrentsDeleted.WithLabelValues("seed_time")); got != 1 {
		t.Fatalf("seed_time deletions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.freedBytes); got != 2048 {
		t.Fatalf("freed bytes = %v, want 2048", got)
	}
	if got := testutil.ToFloat64(c.lastRun); got != 1717243200 {
		t.Fatalf("last run = %v", got)
	}
}

func TestRecordRunNilCollector(t *testing.T) {
	var c *Collector
	c.RecordRun(ResultFailed, time.Now(), time.Second)
}

func TestHandlerServesRegistry(t *testing.T) {
	c := NewCollector(nil)
	c.RecordRun(ResultAborted, time.Now(), time.Second)

	server := httptest.NewServer(c.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `janitor_runs_total{result="aborted"} 1`) {
		t.Fatalf("expected runs_total in exposition, got:\n%s", body)
	}
}
