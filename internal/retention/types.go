package retention

import (
	"context"
	"errors"
	"time"
)

// ErrAborted reports that an evaluator stopped early after a handled failure
// (for example a rejected qBittorrent login). The failure was already
// notified; callers treat it as a completed run.
var ErrAborted = errors.New("evaluation aborted")

// SectionKind classifies a library section.
type SectionKind string

const (
	SectionMovie SectionKind = "movie"
	SectionShow  SectionKind = "show"
	SectionOther SectionKind = "other"
)

// ItemKind classifies an evaluated item.
type ItemKind string

const (
	KindMovie   ItemKind = "movie"
	KindShow    ItemKind = "show"
	KindEpisode ItemKind = "episode"
	KindTorrent ItemKind = "torrent"
)

// Section is a library section as reported by the media server.
type Section struct {
	Key   string
	Title string
	Kind  SectionKind
}

// Item is a movie, show or episode. LastViewedAt is nil when the item has
// never been watched.
type Item struct {
	RatingKey    string
	Title        string
	Kind         ItemKind
	ShowTitle    string
	LastViewedAt *time.Time
}

// Torrent is a torrent entry with its seed statistics.
type Torrent struct {
	Hash               string
	Name               string
	Ratio              float64
	SeedingTimeSeconds int64
}

// MediaServer is the subset of the media server API the media evaluator needs.
type MediaServer interface {
	Sections(ctx context.Context) ([]Section, error)
	Items(ctx context.Context, section Section) ([]Item, error)
	Episodes(ctx context.Context, show Item) ([]Item, error)
	Delete(ctx context.Context, item Item) error
}

// TorrentClient is the subset of the torrent client API the torrent evaluator
// needs. FreeSpace returns bytes available on the download disk.
type TorrentClient interface {
	Login(ctx context.Context) error
	Torrents(ctx context.Context) ([]Torrent, error)
	FreeSpace(ctx context.Context) (int64, error)
	Delete(ctx context.Context, hash string, deleteFiles bool) error
}

// Notifier delivers audit messages. Implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, message string)
}
