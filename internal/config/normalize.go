package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizePlex()
	c.normalizeQBittorrent()
	c.normalizeNotifications()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.Schedule.Cron = strings.TrimSpace(c.Schedule.Cron)
	c.Schedule.MetricsBind = strings.TrimSpace(c.Schedule.MetricsBind)
	return nil
}

func (c *Config) normalizePlex() {
	c.Plex.Host = strings.TrimSpace(c.Plex.Host)
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	if c.Plex.Token == "" {
		if value, ok := os.LookupEnv("PLEX_TOKEN"); ok {
			c.Plex.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeQBittorrent() {
	c.QBittorrent.URL = strings.TrimRight(strings.TrimSpace(c.QBittorrent.URL), "/")
	c.QBittorrent.Username = strings.TrimSpace(c.QBittorrent.Username)
	if c.QBittorrent.Password == "" {
		if value, ok := os.LookupEnv("QBITTORRENT_PASSWORD"); ok {
			c.QBittorrent.Password = value
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.DiscordWebhookURL = strings.TrimSpace(c.DiscordWebhookURL)
	if c.DiscordWebhookURL == "" {
		if value, ok := os.LookupEnv("DISCORD_WEBHOOK_URL"); ok {
			c.DiscordWebhookURL = strings.TrimSpace(value)
		}
	}
	c.Notifications.NtfyURL = strings.TrimSpace(c.Notifications.NtfyURL)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
