package retention

import (
	"errors"
	"math"
	"time"

	"janitor/internal/config"
)

// SeedReason names which torrent threshold made a torrent eligible.
type SeedReason string

const (
	ReasonRatio    SeedReason = "ratio"
	ReasonSeedTime SeedReason = "seed_time"
)

// Policy holds the retention thresholds for a single run. It is immutable
// once built.
type Policy struct {
	KeepMovies  map[string]struct{}
	KeepShows   map[string]struct{}
	IdleDays    int
	MinRatio    float64
	MinSeedDays int
	DryRun      bool
}

// NewPolicy builds a Policy from validated configuration.
func NewPolicy(cfg *config.Config) (Policy, error) {
	if cfg == nil {
		return Policy{}, errors.New("retention policy requires configuration")
	}
	if cfg.DaysToKeep == nil || cfg.QBittorrent.MinRatio == nil || cfg.QBittorrent.MinSeedTimeDays == nil {
		return Policy{}, errors.New("retention policy requires days_to_keep, min_ratio and min_seed_time_days")
	}
	return Policy{
		KeepMovies:  titleSet(cfg.KeepMovies),
		KeepShows:   titleSet(cfg.KeepShows),
		IdleDays:    *cfg.DaysToKeep,
		MinRatio:    *cfg.QBittorrent.MinRatio,
		MinSeedDays: *cfg.QBittorrent.MinSeedTimeDays,
		DryRun:      cfg.TestMode,
	}, nil
}

func titleSet(titles *[]string) map[string]struct{} {
	if titles == nil {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(*titles))
	for _, title := range *titles {
		set[title] = struct{}{}
	}
	return set
}

// KeepsMovie reports whether the movie title is protected. Matching is exact.
func (p Policy) KeepsMovie(title string) bool {
	_, ok := p.KeepMovies[title]
	return ok
}

// KeepsShow reports whether the show title is protected. Matching is exact.
func (p Policy) KeepsShow(title string) bool {
	_, ok := p.KeepShows[title]
	return ok
}

// IdleDays returns the whole days elapsed since lastViewed, rounded down.
func IdleDays(now, lastViewed time.Time) int {
	return int(math.Floor(now.Sub(lastViewed).Hours() / 24))
}

// Expired reports whether a watched item sat idle for strictly more than the
// threshold. Unwatched items never expire.
func (p Policy) Expired(now time.Time, lastViewed *time.Time) (bool, int) {
	if lastViewed == nil {
		return false, 0
	}
	days := IdleDays(now, *lastViewed)
	return days > p.IdleDays, days
}

// SeedDays converts seeding seconds to fractional days.
func SeedDays(seconds int64) float64 {
	return float64(seconds) / 3600 / 24
}

// TorrentEligible reports whether the torrent reached either threshold. When
// both hold, the ratio wins as the reported reason.
func (p Policy) TorrentEligible(t Torrent) (bool, SeedReason) {
	if t.Ratio >= p.MinRatio {
		return true, ReasonRatio
	}
	if SeedDays(t.SeedingTimeSeconds) >= float64(p.MinSeedDays) {
		return true, ReasonSeedTime
	}
	return false, ""
}
