package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Plex contains the media server connection settings.
type Plex struct {
	Host  string `toml:"host"`
	Port  int    `toml:"port"`
	Token string `toml:"token"`
}

// QBittorrent contains the torrent client connection settings and seed thresholds.
type QBittorrent struct {
	URL             string   `toml:"url"`
	Username        string   `toml:"username"`
	Password        string   `toml:"password"`
	MinRatio        *float64 `toml:"min_ratio"`
	MinSeedTimeDays *int     `toml:"min_seed_time_days"`
}

// Notifications contains transport settings shared by all notifiers.
type Notifications struct {
	NtfyURL        string `toml:"ntfy_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Schedule contains daemon mode settings.
type Schedule struct {
	Cron        string `toml:"cron"`
	MetricsBind string `toml:"metrics_bind"`
}

// Config encapsulates all configuration values for a janitor run.
//
// The retention thresholds live at the top level of the document so existing
// Cleaner.conf-style layouts map onto it directly:
//   - keep_movies / keep_shows: exact titles that are never deleted
//   - days_to_keep: idle days a watched item may sit before deletion
//   - test_mode: evaluate and notify without deleting anything
//   - discord_webhook_url: destination for audit and error messages
type Config struct {
	KeepMovies        *[]string `toml:"keep_movies"`
	KeepShows         *[]string `toml:"keep_shows"`
	DaysToKeep        *int     `toml:"days_to_keep"`
	TestMode          bool     `toml:"test_mode"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`

	Plex          Plex          `toml:"plex"`
	QBittorrent   QBittorrent   `toml:"qBittorrent"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Schedule      Schedule      `toml:"schedule"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file is reported as an error because
// the required fields cannot be defaulted.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if !exists {
		return nil, resolvedPath, false, fmt.Errorf("config file %s not found (create one with 'janitor config init')", resolvedPath)
	}

	file, err := os.Open(resolvedPath)
	if err != nil {
		return nil, "", false, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, true, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory when file logging is enabled.
func (c *Config) EnsureDirectories() error {
	if dir := strings.TrimSpace(c.Logging.Dir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PlexBaseURL returns the media server base URL built from host and port.
func (c *Config) PlexBaseURL() string {
	host := strings.TrimRight(strings.TrimSpace(c.Plex.Host), "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return fmt.Sprintf("%s:%d", host, c.Plex.Port)
	}
	return fmt.Sprintf("http://%s:%d", host, c.Plex.Port)
}

// RequestTimeout returns the HTTP timeout applied to every external call.
func (c *Config) RequestTimeout() time.Duration {
	if c.Notifications.RequestTimeout <= 0 {
		return time.Duration(defaultRequestTimeout) * time.Second
	}
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

// LockPath returns the file used to keep two runs from overlapping.
func (c *Config) LockPath() string {
	dir := strings.TrimSpace(c.Logging.Dir)
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "janitor.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
