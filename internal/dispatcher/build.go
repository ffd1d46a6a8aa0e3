package dispatcher

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/vera-landing/internal/channel/endpoint"
	"github.com/JakeFAU/vera-landing/internal/channel/relay"
	"github.com/JakeFAU/vera-landing/internal/channel/telegram"
	"github.com/JakeFAU/vera-landing/internal/clock/system"
	"github.com/JakeFAU/vera-landing/internal/config"
	"github.com/JakeFAU/vera-landing/internal/lead"
)

// Deps carries the collaborators shared by the configured channels.
type Deps struct {
	Logger     *zap.Logger
	HTTPClient *http.Client
	Clock      lead.Clock
}

// Build assembles a Dispatcher from dispatch.channels. The telegram entry uses
// the client-exposed fallback credentials and is left out unless the fallback
// is enabled and fully configured.
func Build(cfg config.Config, deps Deps) (*Dispatcher, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var clock lead.Clock = system.New()
	if deps.Clock != nil {
		clock = deps.Clock
	}

	channels := make([]lead.Channel, 0, len(cfg.Dispatch.Channels))
	for _, name := range cfg.Dispatch.Channels {
		switch strings.TrimSpace(name) {
		case config.ChannelEndpoint:
			ec := endpoint.Config{
				URL:     cfg.LeadEndpoint(),
				Timeout: config.Seconds(cfg.Dispatch.TimeoutSeconds),
			}
			if cfg.SelfEndpoint() {
				ec.InternalToken = cfg.Dispatch.InternalToken
			}
			channels = append(channels, endpoint.New(ec, deps.HTTPClient))
		case config.ChannelTelegram:
			if !cfg.FallbackActive() {
				logger.Info("telegram fallback disabled, channel skipped",
					zap.Bool("enabled", cfg.Dispatch.Fallback.Enabled))
				continue
			}
			client := telegram.New(telegram.Config{
				BaseURL:  cfg.Telegram.APIBaseURL,
				BotToken: cfg.Dispatch.Fallback.BotToken,
				ChatID:   cfg.Dispatch.Fallback.ChatID,
				Timeout:  config.Seconds(cfg.Dispatch.TimeoutSeconds),
			}, deps.HTTPClient)
			channels = append(channels, telegram.NewChannel(client, clock, lead.MessageMeta{
				SiteDomain:  cfg.Site.Domain,
				PhoneRegion: cfg.Site.PhoneRegion,
			}))
		case config.ChannelRelay:
			channels = append(channels, relay.New(relay.Config{
				Endpoint: cfg.Relay.Endpoint,
				Site: lead.SiteIdentity{
					ID:     cfg.Site.ID,
					URL:    cfg.Site.URL,
					ChatID: cfg.Site.ChatID,
				},
				Timeout: config.Seconds(cfg.Relay.TimeoutSeconds),
			}, deps.HTTPClient))
		default:
			return nil, fmt.Errorf("dispatch.channels: unknown channel %q", name)
		}
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("no usable delivery channels: %w", lead.ErrConfiguration)
	}

	d := New(logger, channels...)
	logger.Info("dispatcher ready", zap.Strings("channels", d.Channels()))
	return d, nil
}
