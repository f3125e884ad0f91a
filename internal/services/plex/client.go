package plex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"janitor/internal/config"
	"janitor/internal/services"
)

const userAgent = "janitor/0.1.0"

// ErrUnauthorized is returned when Plex rejects the configured token.
var ErrUnauthorized = errors.New("plex rejected token")

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Section is a library section entry from /library/sections.
type Section struct {
	Key   string `xml:"key,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// Metadata is a movie, show or episode entry.
type Metadata struct {
	RatingKey        string `xml:"ratingKey,attr"`
	Title            string `xml:"title,attr"`
	Type             string `xml:"type,attr"`
	GrandparentTitle string `xml:"grandparentTitle,attr"`
	LastViewedAt     int64  `xml:"lastViewedAt,attr"`
}

// LastViewed returns the last view time, or nil when the item was never watched.
func (m Metadata) LastViewed() *time.Time {
	if m.LastViewedAt <= 0 {
		return nil
	}
	ts := time.Unix(m.LastViewedAt, 0)
	return &ts
}

type mediaContainer struct {
	Directories []Metadata `xml:"Directory"`
	Videos      []Metadata `xml:"Video"`
}

type sectionContainer struct {
	Directories []Section `xml:"Directory"`
}

// Client issues authenticated requests against a single Plex server.
type Client struct {
	baseURL string
	token   string
	client  HTTPDoer
}

// NewClient constructs a Plex client. When client is nil a default HTTP client
// with a 30 second timeout is used.
func NewClient(baseURL, token string, client HTTPDoer) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  client,
	}
}

// NewConfiguredClient builds a client from the plex configuration section.
func NewConfiguredClient(cfg *config.Config) *Client {
	return NewClient(cfg.PlexBaseURL(), cfg.Plex.Token, &http.Client{Timeout: cfg.RequestTimeout()})
}

// Sections lists every library section.
func (c *Client) Sections(ctx context.Context) ([]Section, error) {
	var container sectionContainer
	if err := c.getXML(ctx, "/library/sections", "list sections", &container); err != nil {
		return nil, err
	}
	sections := make([]Section, 0, len(container.Directories))
	for _, dir := range container.Directories {
		if dir.Key == "" {
			continue
		}
		sections = append(sections, dir)
	}
	return sections, nil
}

// All lists the top-level items of a section: movies for movie sections,
// shows for show sections.
func (c *Client) All(ctx context.Context, sectionKey string) ([]Metadata, error) {
	var container mediaContainer
	path := fmt.Sprintf("/library/sections/%s/all", url.PathEscape(sectionKey))
	if err := c.getXML(ctx, path, "list section items", &container); err != nil {
		return nil, err
	}
	return append(container.Videos, container.Directories...), nil
}

// AllLeaves lists every episode of a show.
func (c *Client) AllLeaves(ctx context.Context, ratingKey string) ([]Metadata, error) {
	var container mediaContainer
	path := fmt.Sprintf("/library/metadata/%s/allLeaves", url.PathEscape(ratingKey))
	if err := c.getXML(ctx, path, "list episodes", &container); err != nil {
		return nil, err
	}
	return container.Videos, nil
}

// Delete removes an item and its media files from the library.
func (c *Client) Delete(ctx context.Context, ratingKey string) error {
	path := fmt.Sprintf("/library/metadata/%s", url.PathEscape(ratingKey))
	resp, err := c.do(ctx, http.MethodDelete, path, "delete item")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getXML(ctx context.Context, path, operation string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, operation)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, "plex", operation, "decode response", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, operation string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build plex %s request: %w", operation, err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.TransportMarker(err), "plex", operation, "request failed", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, services.Wrap(services.ErrConfiguration, "plex", operation, fmt.Sprintf("status %d", resp.StatusCode), ErrUnauthorized)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		marker := services.ErrTransient
		if resp.StatusCode == http.StatusNotFound {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "plex", operation, fmt.Sprintf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return resp, nil
}
