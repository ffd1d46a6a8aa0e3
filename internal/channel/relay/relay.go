// Package relay posts leads to a form-relay script endpoint that records them
// into a spreadsheet.
package relay

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/JakeFAU/vera-landing/internal/channel"
	"github.com/JakeFAU/vera-landing/internal/lead"
)

// ChannelName labels this channel in results, logs and metrics.
const ChannelName = "relay"

// ErrNoEndpoint is returned by Deliver when no relay endpoint is configured.
var ErrNoEndpoint = errors.New("relay endpoint not configured")

// Config describes the relay endpoint and the site identity sent with every lead.
type Config struct {
	Endpoint string
	Site     lead.SiteIdentity
	Timeout  time.Duration
}

// Client implements lead.Channel over a form-encoded POST.
type Client struct {
	endpoint string
	site     lead.SiteIdentity
	timeout  time.Duration
	http     *http.Client
}

// New builds a Client. A nil httpClient uses a plain http.Client.
func New(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		site:     cfg.Site,
		timeout:  channel.Timeout(cfg.Timeout),
		http:     channel.Client(httpClient),
	}
}

// Name implements lead.Channel.
func (c *Client) Name() string {
	return ChannelName
}

// Deliver implements lead.Channel. The call is aborted once the timeout
// elapses; any non-2xx response is a failure carrying the start of the body.
func (c *Client) Deliver(ctx context.Context, l lead.Lead) error {
	if c.endpoint == "" {
		return &lead.DeliveryError{Channel: ChannelName, Err: errors.Join(lead.ErrConfiguration, ErrNoEndpoint)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := l.Form(c.site).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return &lead.DeliveryError{Channel: ChannelName, Err: channel.Redact(err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

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
