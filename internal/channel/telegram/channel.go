package telegram

import (
	"context"

	"github.com/JakeFAU/vera-landing/internal/lead"
)

// Channel adapts a Client to lead.Channel by composing the operator message.
type Channel struct {
	client *Client
	clock  lead.Clock
	meta   lead.MessageMeta
}

// NewChannel builds a Channel. meta supplies the site domain and phone region;
// the submission time comes from clock.
func NewChannel(client *Client, clock lead.Clock, meta lead.MessageMeta) *Channel {
	return &Channel{client: client, clock: clock, meta: meta}
}

// Name implements lead.Channel.
func (c *Channel) Name() string {
	return ChannelName
}

// Deliver implements lead.Channel.
func (c *Channel) Deliver(ctx context.Context, l lead.Lead) error {
	meta := c.meta
	meta.SubmittedAt = c.clock.Now()
	return c.client.SendMessage(ctx, lead.ComposeMessage(l, meta))
}
