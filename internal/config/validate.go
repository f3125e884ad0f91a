package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRetention(); err != nil {
		return err
	}
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateQBittorrent(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.DaysToKeep == nil {
		return errors.New("days_to_keep is required")
	}
	if *c.DaysToKeep < 0 {
		return errors.New("days_to_keep must be >= 0")
	}
	if c.KeepMovies == nil {
		return errors.New("keep_movies is required (use [] to protect nothing)")
	}
	if c.KeepShows == nil {
		return errors.New("keep_shows is required (use [] to protect nothing)")
	}
	return nil
}

func (c *Config) validatePlex() error {
	if c.Plex.Host == "" {
		return errors.New("plex.host is required")
	}
	if c.Plex.Port <= 0 || c.Plex.Port > 65535 {
		return errors.New("plex.port is required and must be between 1 and 65535")
	}
	if c.Plex.Token == "" {
		return errors.New("plex.token is required (or set PLEX_TOKEN)")
	}
	return nil
}

func (c *Config) validateQBittorrent() error {
	if c.QBittorrent.URL == "" {
		return errors.New("qBittorrent.url is required")
	}
	if err := validateHTTPURL("qBittorrent.url", c.QBittorrent.URL); err != nil {
		return err
	}
	if c.QBittorrent.Username == "" {
		return errors.New("qBittorrent.username is required")
	}
	if c.QBittorrent.Password == "" {
		return errors.New("qBittorrent.password is required (or set QBITTORRENT_PASSWORD)")
	}
	if c.QBittorrent.MinRatio == nil {
		return errors.New("qBittorrent.min_ratio is required")
	}
	if *c.QBittorrent.MinRatio < 0 {
		return errors.New("qBittorrent.min_ratio must be >= 0")
	}
	if c.QBittorrent.MinSeedTimeDays == nil {
		return errors.New("qBittorrent.min_seed_time_days is required")
	}
	if *c.QBittorrent.MinSeedTimeDays < 0 {
		return errors.New("qBittorrent.min_seed_time_days must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.DiscordWebhookURL == "" {
		return errors.New("discord_webhook_url is required (or set DISCORD_WEBHOOK_URL)")
	}
	if err := validateHTTPURL("discord_webhook_url", c.DiscordWebhookURL); err != nil {
		return err
	}
	if c.Notifications.NtfyURL != "" {
		if err := validateHTTPURL("notifications.ntfy_url", c.Notifications.NtfyURL); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.Cron == "" {
		return errors.New("schedule.cron must not be empty")
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron %q is invalid: %w", c.Schedule.Cron, err)
	}
	return nil
}

func validateHTTPURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
	}
	return nil
}
