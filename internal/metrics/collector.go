package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"janitor/internal/retention"
)

const namespace = "janitor"

// Run outcomes used for the result label.
const (
	ResultSuccess = "success"
	ResultAborted = "aborted"
	ResultFailed  = "failed"
	ResultLocked  = "locked"
)

// Collector records run outcomes.
type Collector struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	mediaDeleted    *prometheus.CounterVec
	torrentsDeleted *prometheus.CounterVec
	freedBytes      prometheus.Counter
	lastRun         prometheus.Gauge
}

// NewCollector creates and registers the janitor metrics. A nil registry gets
// a fresh private one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of janitor runs by result",
			},
			[]string{"result"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of janitor runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
			},
		),
		mediaDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "media_deleted_total",
				Help:      "Total number of media items deleted by kind",
			},
			[]string{"kind"},
		),
		torrentsDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "torrents_deleted_total",
				Help:      "Total number of torrents deleted by eligibility reason",
			},
			[]string{"reason"},
		),
		freedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "freed_bytes_total",
				Help:      "Free disk space gained from torrent deletions in bytes",
			},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix timestamp of the last finished run",
			},
		),
	}

	registry.MustRegister(
		c.runsTotal,
		c.runDuration,
		c.mediaDeleted,
		c.torrentsDeleted,
		c.freedBytes,
		c.lastRun,
	)
	return c
}

// RecordRun records one finished run and the deletions in its reports.
func (c *Collector) RecordRun(result string, finished time.Time, duration time.Duration, reports ...retention.Report) {
	if c == nil {
		return
	}
	c.runsTotal.WithLabelValues(result).Inc()
	c.runDuration.Observe(duration.Seconds())
	c.lastRun.Set(float64(finished.Unix()))

	for _, report := range reports {
		for _, d := range report.Decisions {
			if d.Action != retention.ActionDeleted {
				continue
			}
			if d.Kind == retention.KindTorrent {
				c.torrentsDeleted.WithLabelValues(string(d.SeedReason)).Inc()
				if d.FreedBytes > 0 {
					c.freedBytes.Add(float64(d.FreedBytes))
				}
				continue
			}
			c.mediaDeleted.WithLabelValues(string(d.Kind)).Inc()
		}
	}
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
