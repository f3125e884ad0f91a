package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"janitor/internal/config"
	"janitor/internal/logging"
	"janitor/internal/services"
)

const userAgent = "janitor/0.1.0"

// Notifier delivers human-readable status messages. Notify never fails from the
// caller's point of view; delivery problems are logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Sender is a single delivery transport that reports failures.
type Sender interface {
	Name() string
	Send(ctx context.Context, message string) error
}

// NewSenders builds the configured transports: the Discord webhook and, when
// set, an ntfy topic URL.
func NewSenders(cfg *config.Config) []Sender {
	if cfg == nil {
		return nil
	}
	client := &http.Client{Timeout: cfg.RequestTimeout()}
	var senders []Sender
	if url := strings.TrimSpace(cfg.DiscordWebhookURL); url != "" {
		senders = append(senders, &DiscordSender{endpoint: url, client: client})
	}
	if topicURL := strings.TrimSpace(cfg.Notifications.NtfyURL); topicURL != "" {
		senders = append(senders, &NtfySender{endpoint: topicURL, client: client})
	}
	return senders
}

// NewService returns a fire-and-forget notifier over the configured transports.
// When nothing is configured, a noop implementation is returned.
func NewService(cfg *config.Config, logger *slog.Logger) Notifier {
	senders := NewSenders(cfg)
	if len(senders) == 0 {
		return Noop{}
	}
	return NewBestEffort(logger, senders...)
}

// NewBestEffort wraps senders so every failure is logged and swallowed.
func NewBestEffort(logger *slog.Logger, senders ...Sender) Notifier {
	return &bestEffort{
		senders: senders,
		logger:  logging.NewComponentLogger(logger, "notify"),
	}
}

type bestEffort struct {
	senders []Sender
	logger  *slog.Logger
}

func (b *bestEffort) Notify(ctx context.Context, message string) {
	logger := b.logger
	if runID, ok := services.RunIDFromContext(ctx); ok {
		logger = logger.With(logging.String(logging.FieldRunID, runID))
	}
	for _, sender := range b.senders {
		if err := sender.Send(ctx, message); err != nil {
			logging.WarnWithContext(logger, "notification not delivered", "notification_failed",
				logging.String("transport", sender.Name()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "verify the webhook URL and network reachability"),
				logging.String(logging.FieldImpact, "message dropped; run continues"),
			)
			continue
		}
		logger.Info("notification sent",
			logging.String("transport", sender.Name()),
			logging.String(logging.FieldEventType, "notification_sent"),
		)
	}
}

// DiscordSender posts messages to a Discord webhook. Discord acknowledges a
// webhook execution with 204 No Content; any other status is a failure.
type DiscordSender struct {
	endpoint string
	client   *http.Client
}

// NewDiscordSender constructs a webhook sender using the provided HTTP client.
func NewDiscordSender(endpoint string, client *http.Client) *DiscordSender {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &DiscordSender{endpoint: strings.TrimSpace(endpoint), client: client}
}

func (d *DiscordSender) Name() string { return "discord" }

func (d *DiscordSender) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("encode discord payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discord request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// NtfySender publishes plain-text messages to an ntfy topic URL.
type NtfySender struct {
	endpoint string
	client   *http.Client
}

// NewNtfySender constructs an ntfy sender using the provided HTTP client.
func NewNtfySender(endpoint string, client *http.Client) *NtfySender {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &NtfySender{endpoint: strings.TrimSpace(endpoint), client: client}
}

func (n *NtfySender) Name() string { return "ntfy" }

func (n *NtfySender) Send(ctx context.Context, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", "Janitor")
	req.Header.Set("Tags", "janitor,wastebasket")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Noop discards every message.
type Noop struct{}

func (Noop) Notify(context.Context, string) {}

// Recorder keeps every message in memory. It backs tests and the plan command.
type Recorder struct {
	Messages []string
}

func (r *Recorder) Notify(_ context.Context, message string) {
	r.Messages = append(r.Messages, message)
}
