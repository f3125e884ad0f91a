package janitor

import (
	"context"

	"janitor/internal/retention"
	"janitor/internal/services/plex"
	"janitor/internal/services/qbittorrent"
)

// plexLibrary adapts the Plex client to retention.MediaServer.
type plexLibrary struct {
	client *plex.Client
}

func (p plexLibrary) Sections(ctx context.Context) ([]retention.Section, error) {
	sections, err := p.client.Sections(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]retention.Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, retention.Section{Key: s.Key, Title: s.Title, Kind: sectionKind(s.Type)})
	}
	return out, nil
}

func sectionKind(plexType string) retention.SectionKind {
	switch plexType {
	case "movie":
		return retention.SectionMovie
	case "show":
		return retention.SectionShow
	default:
		return retention.SectionOther
	}
}

func (p plexLibrary) Items(ctx context.Context, section retention.Section) ([]retention.Item, error) {
	entries, err := p.client.All(ctx, section.Key)
	if err != nil {
		return nil, err
	}
	kind := retention.KindMovie
	if section.Kind == retention.SectionShow {
		kind = retention.KindShow
	}
	items := make([]retention.Item, 0, len(entries))
	for _, m := range entries {
		items = append(items, retention.Item{
			RatingKey:    m.RatingKey,
			Title:        m.Title,
			Kind:         kind,
			LastViewedAt: m.LastViewed(),
		})
	}
	return items, nil
}

func (p plexLibrary) Episodes(ctx context.Context, show retention.Item) ([]retention.Item, error) {
	entries, err := p.client.AllLeaves(ctx, show.RatingKey)
	if err != nil {
		return nil, err
	}
	items := make([]retention.Item, 0, len(entries))
	for _, m := range entries {
		showTitle := m.GrandparentTitle
		if showTitle == "" {
			showTitle = show.Title
		}
		items = append(items, retention.Item{
			RatingKey:    m.RatingKey,
			Title:        m.Title,
			Kind:         retention.KindEpisode,
			ShowTitle:    showTitle,
			LastViewedAt: m.LastViewed(),
		})
	}
	return items, nil
}

func (p plexLibrary) Delete(ctx context.Context, item retention.Item) error {
	return p.client.Delete(ctx, item.RatingKey)
}

// qbitClient adapts the qBittorrent client to retention.TorrentClient.
type qbitClient struct {
	client *qbittorrent.Client
}

func (q qbitClient) Login(ctx context.Context) error {
	return q.client.Login(ctx)
}

func (q qbitClient) Torrents(ctx context.Context) ([]retention.Torrent, error) {
	torrents, err := q.client.Torrents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]retention.Torrent, 0, len(torrents))
	for _, t := range torrents {
		out = append(out, retention.Torrent{
			Hash:               t.Hash,
			Name:               t.Name,
			Ratio:              t.Ratio,
			SeedingTimeSeconds: t.SeedingTime,
		})
	}
	return out, nil
}

func (q qbitClient) FreeSpace(ctx context.Context) (int64, error) {
	return q.client.FreeSpace(ctx)
}

func (q qbitClient) Delete(ctx context.Context, hash string, deleteFiles bool) error {
	return q.client.Delete(ctx, hash, deleteFiles)
}
