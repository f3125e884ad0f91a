package testsupport

import (
	"net/url"
	"path/filepath"
	"strconv"
	"testing"

	"janitor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a valid config seeded with a unique temp log directory per
// test. Service endpoints point at unroutable placeholders until overridden.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	days := 30
	minRatio := 1.0
	minSeedDays := 14
	cfgVal.DaysToKeep = &days
	cfgVal.KeepMovies = &[]string{}
	cfgVal.KeepShows = &[]string{}
	cfgVal.DiscordWebhookURL = "http://127.0.0.1:1/webhook"
	cfgVal.Plex = config.Plex{Host: "127.0.0.1", Port: 32400, Token: "test-token"}
	cfgVal.QBittorrent = config.QBittorrent{
		URL:             "http://127.0.0.1:8080",
		Username:        "admin",
		Password:        "adminadmin",
		MinRatio:        &minRatio,
		MinSeedTimeDays: &minSeedDays,
	}
	cfgVal.Logging.Dir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDaysToKeep overrides the idle threshold.
func WithDaysToKeep(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DaysToKeep = &days
	}
}

// WithSeedThresholds overrides the torrent ratio and seed-time thresholds.
func WithSeedThresholds(minRatio float64, minSeedDays int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.QBittorrent.MinRatio = &minRatio
		b.cfg.QBittorrent.MinSeedTimeDays = &minSeedDays
	}
}

// WithKeepLists sets the protected movie and show titles.
func WithKeepLists(movies, shows []string) ConfigOption {
	return func(b *configBuilder) {
		if movies == nil {
			movies = []string{}
		}
		if shows == nil {
			shows = []string{}
		}
		b.cfg.KeepMovies = &movies
		b.cfg.KeepShows = &shows
	}
}

// WithTestMode toggles dry-run evaluation.
func WithTestMode(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TestMode = enabled
	}
}

// WithEndpoints points the Plex, qBittorrent and Discord settings at test
// servers. Empty values leave the default in place.
func WithEndpoints(plexURL, qbitURL, discordURL string) ConfigOption {
	return func(b *configBuilder) {
		if plexURL != "" {
			parsed, err := url.Parse(plexURL)
			if err != nil {
				b.t.Fatalf("parse plex url: %v", err)
			}
			port, err := strconv.Atoi(parsed.Port())
			if err != nil {
				b.t.Fatalf("parse plex port: %v", err)
			}
			b.cfg.Plex.Host = parsed.Hostname()
			b.cfg.Plex.Port = port
		}
		if qbitURL != "" {
			b.cfg.QBittorrent.URL = qbitURL
		}
		if discordURL != "" {
			b.cfg.DiscordWebhookURL = discordURL
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Logging.Dir)
}
