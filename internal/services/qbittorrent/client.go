package qbittorrent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"janitor/internal/config"
	"janitor/internal/services"
)

const userAgent = "janitor/0.1.0"

// ErrLoginFailed is returned when qBittorrent rejects the credentials.
var ErrLoginFailed = errors.New("qbittorrent login failed")

// Torrent is the subset of /api/v2/torrents/info fields the janitor reads.
type Torrent struct {
	Hash        string  `json:"hash"`
	Name        string  `json:"name"`
	Ratio       float64 `json:"ratio"`
	SeedingTime int64   `json:"seeding_time"`
	Size        int64   `json:"size"`
	State       string  `json:"state"`
}

type mainData struct {
	ServerState *struct {
		FreeSpaceOnDisk *int64 `json:"free_space_on_disk"`
	} `json:"server_state"`
}

// Client talks to one qBittorrent WebUI instance.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// NewClient creates a client with its own cookie jar. A zero timeout falls
// back to 30 seconds.
func NewClient(baseURL, username, password string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:  strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// NewConfiguredClient builds a client from the qBittorrent configuration section.
func NewConfiguredClient(cfg *config.Config) *Client {
	return NewClient(cfg.QBittorrent.URL, cfg.QBittorrent.Username, cfg.QBittorrent.Password, cfg.RequestTimeout())
}

// Login authenticates and stores the session cookie. qBittorrent answers a bad
// password with 200 and the body "Fails.", so the body is checked as well.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	resp, err := c.post(ctx, "/api/v2/auth/login", form, "login")
	if err != nil {
		if status := unwrapStatus(err); status == http.StatusForbidden || status == http.StatusUnauthorized {
			return services.Wrap(services.ErrConfiguration, "qbittorrent", "login", err.Error(), ErrLoginFailed)
		}
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if strings.TrimSpace(string(body)) == "Fails." {
		return services.Wrap(services.ErrConfiguration, "qbittorrent", "login", "invalid credentials", ErrLoginFailed)
	}
	return nil
}

// Torrents lists every torrent.
func (c *Client) Torrents(ctx context.Context) ([]Torrent, error) {
	var torrents []Torrent
	if err := c.getJSON(ctx, "/api/v2/torrents/info", "list torrents", &torrents); err != nil {
		return nil, err
	}
	return torrents, nil
}

// FreeSpace returns the free bytes on the download disk as reported by the
// sync endpoint.
func (c *Client) FreeSpace(ctx context.Context) (int64, error) {
	var data mainData
	if err := c.getJSON(ctx, "/api/v2/sync/maindata", "fetch free space", &data); err != nil {
		return 0, err
	}
	if data.ServerState == nil || data.ServerState.FreeSpaceOnDisk == nil {
		return 0, services.Wrap(services.ErrTransient, "qbittorrent", "fetch free space", "server_state.free_space_on_disk missing", nil)
	}
	return *data.ServerState.FreeSpaceOnDisk, nil
}

// Delete removes a torrent, and its downloaded data when deleteFiles is set.
func (c *Client) Delete(ctx context.Context, hash string, deleteFiles bool) error {
	form := url.Values{}
	form.Set("hashes", hash)
	form.Set("deleteFiles", strconv.FormatBool(deleteFiles))

	resp, err := c.post(ctx, "/api/v2/torrents/delete", form, "delete torrent")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path, operation string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build qbittorrent %s request: %w", operation, err)
	}
	resp, err := c.do(req, operation)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, "qbittorrent", operation, "decode response", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, operation string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build qbittorrent %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// The WebUI CSRF check compares Referer/Origin with the host.
	req.Header.Set("Referer", c.baseURL)
	return c.do(req, operation)
}

func (c *Client) do(req *http.Request, operation string) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.TransportMarker(err), "qbittorrent", operation, "request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &StatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

// StatusError reports a non-200 WebUI response.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("qbittorrent %s returned %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Unwrap tags the status with a service marker.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return services.ErrConfiguration
	case http.StatusNotFound:
		return services.ErrNotFound
	default:
		return services.ErrTransient
	}
}

func unwrapStatus(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
