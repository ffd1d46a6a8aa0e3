// Package endpoint delivers leads to the site's own lead endpoint as JSON.
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JakeFAU/vera-landing/internal/channel"
	"github.com/JakeFAU/vera-landing/internal/lead"
)

// ChannelName labels this channel in results, logs and metrics.
const ChannelName = "endpoint"

// ErrNoURL is returned by Deliver when no endpoint URL is configured.
var ErrNoURL = errors.New("lead endpoint not configured")

// InternalTokenHeader carries the token that marks the site's own calls to
// its lead endpoint.
const InternalTokenHeader = "X-Landing-Internal-Token"

// Config points the channel at a lead endpoint.
type Config struct {
	URL     string
	Timeout time.Duration
	// InternalToken is sent in InternalTokenHeader when set. Set it only for
	// an endpoint served by this site.
	InternalToken string
}

// Client implements lead.Channel.
type Client struct {
	url     string
	token   string
	timeout time.Duration
	http    *http.Client
}

type payload struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	ContactMethod string `json:"contact_method"`
	PageURL       string `json:"page_url"`
	Source        string `json:"source,omitempty"`
	Message       string `json:"message,omitempty"`
	Quiz          string `json:"quiz,omitempty"`
	UTMSource     string `json:"utm_source"`
	UTMMedium     string `json:"utm_medium"`
	UTMCampaign   string `json:"utm_campaign"`
	UTMTerm       string `json:"utm_term"`
	UTMContent    string `json:"utm_content"`
}

// New builds a Client. A nil httpClient uses a plain http.Client.
func New(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		url:     strings.TrimSpace(cfg.URL),
		token:   strings.TrimSpace(cfg.InternalToken),
		timeout: channel.Timeout(cfg.Timeout),
		http:    channel.Client(httpClient),
	}
}

// Name implements lead.Channel.
func (c *Client) Name() string {
	return ChannelName
}

// Deliver implements lead.Channel. Any 2xx status is a success whatever the
// response body holds. The submitter's origin, when present in ctx, is sent
// as X-Forwarded-For and User-Agent.
func (c *Client) Deliver(ctx context.Context, l lead.Lead) error {
	if c.url == "" {
		return &lead.DeliveryError{Channel: ChannelName, Err: errors.Join(lead.ErrConfiguration, ErrNoURL)}
	}

	body, err := json.Marshal(payload{
		Name:          l.Name,
		Phone:         l.Phone,
		Email:         l.Email,
		ContactMethod: l.ContactMethod,
		PageURL:       l.PageURL,
		Source:        l.Source,
		Message:       l.Message,
		Quiz:          l.Quiz,
		UTMSource:     l.UTM.Source,
		UTMMedium:     l.UTM.Medium,
		UTMCampaign:   l.UTM.Campaign,
		UTMTerm:       l.UTM.Term,
		UTMContent:    l.UTM.Content,
	})
	if err != nil {
		return &lead.DeliveryError{Channel: ChannelName, Err: fmt.Errorf("encode lead: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &lead.DeliveryError{Channel: ChannelName, Err: channel.Redact(err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if origin, ok := lead.OriginFrom(ctx); ok {
		if origin.ClientIP != "" {
			req.Header.Set("X-Forwarded-For", origin.ClientIP)
		}
		if origin.UserAgent != "" {
			req.Header.Set("User-Agent", origin.UserAgent)
		}
	}
	if c.token != "" {
		req.Header.Set(InternalTokenHeader, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &lead.DeliveryError{Channel: ChannelName, Err: channel.Redact(err)}
	}
	defer channel.Drain(resp)

	if !channel.Success(resp.StatusCode) {
		return &lead.DeliveryError{
			Channel:    ChannelName,
			StatusCode: resp.StatusCode,
			Body:       channel.Snippet(channel.ReadBody(resp)),
		}
	}
	return nil
}
