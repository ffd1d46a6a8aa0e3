// Package telegram sends lead notifications through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JakeFAU/vera-landing/internal/channel"
	"github.com/JakeFAU/vera-landing/internal/lead"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// ChannelName labels this channel in results, logs and metrics.
const ChannelName = "telegram"

// Config carries the bot credential and chat target.
type Config struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// Client calls the sendMessage method of the Bot API.
type Client struct {
	baseURL string
	token   string
	chatID  string
	timeout time.Duration
	http    *http.Client
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// New builds a Client. A nil httpClient uses a plain http.Client.
func New(cfg Config, httpClient *http.Client) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.BotToken),
		chatID:  strings.TrimSpace(cfg.ChatID),
		timeout: channel.Timeout(cfg.Timeout),
		http:    channel.Client(httpClient),
	}
}

// Configured reports whether both the bot token and the chat id are set.
func (c *Client) Configured() bool {
	return c.token != "" && c.chatID != ""
}

// SendMessage posts text to the configured chat. It succeeds only when the
// call returns 2xx and the API acknowledges with ok=true.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if !c.Configured() {
		return &lead.DeliveryError{Channel: ChannelName, Err: lead.ErrConfiguration}
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                c.chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return &lead.DeliveryError{Channel: ChannelName, Err: fmt.Errorf("encode request: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/bot" + c.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &lead.DeliveryError{Channel: ChannelName, Err: channel.Redact(err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &lead.DeliveryError{Channel: ChannelName, Err: channel.Redact(err)}
	}
	defer channel.Drain(resp)

	body := channel.ReadBody(resp)
	if !channel.Success(resp.StatusCode) {
		return &lead.DeliveryError{
			Channel:    ChannelName,
			StatusCode: resp.StatusCode,
			Body:       channel.Snippet(body),
		}
	}

	var ack apiResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return &lead.DeliveryError{
			Channel:    ChannelName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode acknowledgement: %w", err),
		}
	}
	if !ack.OK {
		return &lead.DeliveryError{
			Channel:    ChannelName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("not acknowledged: %s", ack.Description),
		}
	}
	return nil
}
