package whatsapp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	coreconfig "github.com/terra-agro/terrabot/core/config"
	"github.com/terra-agro/terrabot/core/logger"
	"log/slog"
)

// Sender is the outbound message surface used by conversation handlers.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
	SendButtons(ctx context.Context, to, text string, buttons []Button) error
	SendList(ctx context.Context, to, text, buttonText string, sections []ListSection) error
	MarkRead(ctx context.Context, messageID string) error
}

// Client talks to the 360dialog WhatsApp gateway.
type Client struct {
	http *resty.Client
}

// NewClient builds a gateway client. Message posts are not idempotent,
// so a failed call is never retried: the gateway may have accepted the
// message even when the response was lost.
func NewClient(cfg coreconfig.WhatsAppConfig) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(defaultClientTimeout).
		SetTransport(BuildTransport()).
		SetHeader("D360-API-KEY", cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{http: http}
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	return c.post(ctx, "message.text", to, newTextMessage(to, text))
}

// SendButtons sends an interactive message with up to three reply buttons.
// Extra buttons are dropped and long titles are shortened to the gateway limits.
func (c *Client) SendButtons(ctx context.Context, to, text string, buttons []Button) error {
	return c.post(ctx, "message.buttons", to, newButtonMessage(to, text, buttons))
}

// SendList sends an interactive list message.
func (c *Client) SendList(ctx context.Context, to, text, buttonText string, sections []ListSection) error {
	return c.post(ctx, "message.list", to, newListMessage(to, text, buttonText, sections))
}

// MarkRead marks an inbound message as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		Put(fmt.Sprintf("/v1/messages/%s/mark_as_read", messageID))
	if err != nil {
		logger.WA.Warn("mark read failed",
			slog.String("event", "message.mark_read"),
			slog.String("status", "fail"),
			slog.String("msg_id", messageID),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("mark as read: %w", err)
	}
	if resp.StatusCode() != 200 {
		logger.WA.Warn("mark read rejected",
			slog.String("event", "message.mark_read"),
			slog.String("status", "fail"),
			slog.String("msg_id", messageID),
			slog.Int("http_code", resp.StatusCode()),
		)
		return fmt.Errorf("mark as read: unexpected status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) post(ctx context.Context, event, to string, payload any) error {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/v1/messages")
	took := logger.Took(start)
	if err != nil {
		logger.WA.Error("send failed",
			slog.String("event", event),
			slog.String("status", "fail"),
			slog.String("user_id", to),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("send message: %w", err)
	}
	code := resp.StatusCode()
	if code != 200 && code != 201 {
		logger.WA.Error("send rejected",
			slog.String("event", event),
			slog.String("status", "rejected"),
			slog.String("user_id", to),
			slog.Int("http_code", code),
			slog.Duration("duration", took),
			slog.String("payload", logger.SanitizeLimit(resp.String(), 300)),
		)
		return fmt.Errorf("send message: unexpected status %d", code)
	}
	logger.WA.Debug("send ok",
		slog.String("event", event),
		slog.String("status", "ok"),
		slog.String("user_id", to),
		slog.Int("http_code", code),
		slog.Duration("duration", took),
	)
	return nil
}
