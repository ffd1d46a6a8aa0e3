// Package config loads and validates landing service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Channel names accepted in dispatch.channels.
const (
	ChannelEndpoint = "endpoint"
	ChannelTelegram = "telegram"
	ChannelRelay    = "relay"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Site      SiteConfig      `mapstructure:"site"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
	ShutdownSeconds       int `mapstructure:"shutdown_seconds"`
}

// SiteConfig is the static identity of the landing site.
type SiteConfig struct {
	ID          string `mapstructure:"id"`
	URL         string `mapstructure:"url"`
	Domain      string `mapstructure:"domain"`
	Name        string `mapstructure:"name"`
	ChatID      string `mapstructure:"chat_id"`
	PhoneRegion string `mapstructure:"phone_region"`
}

// TelegramConfig holds the server-side bot credentials used by the proxy.
type TelegramConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	ChatID         string `mapstructure:"chat_id"`
	APIBaseURL     string `mapstructure:"api_base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RelayConfig points at the form relay script.
type RelayConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DispatchConfig orders the channels tried by the dispatcher.
type DispatchConfig struct {
	LeadEndpoint   string         `mapstructure:"lead_endpoint"`
	Channels       []string       `mapstructure:"channels"`
	TimeoutSeconds int            `mapstructure:"timeout_seconds"`
	Fallback       FallbackConfig `mapstructure:"fallback"`
	// InternalToken marks the form handler's own calls to /api/lead so they
	// skip the per-client limiter. Instances behind one site must share it;
	// a single instance generates one at startup when it is empty.
	InternalToken string `mapstructure:"internal_token"`
}

// FallbackConfig carries the client-exposed Telegram credentials. They are
// used and published only when Enabled is set.
type FallbackConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// RateLimitConfig throttles lead submissions per client IP.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
	MaxKeys int     `mapstructure:"max_keys"`
	// TrustForwarded keys clients on the last X-Forwarded-For hop. Enable it
	// only behind a proxy that appends that header.
	TrustForwarded bool `mapstructure:"trust_forwarded"`
}

// CORSConfig lists origins allowed to call the lead API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
}

// legacyEnv maps keys to the environment names used by earlier deployments.
var legacyEnv = map[string]string{
	"server.port":                 "PORT",
	"telegram.bot_token":          "TELEGRAM_BOT_TOKEN",
	"telegram.chat_id":            "TELEGRAM_CHAT_ID",
	"dispatch.lead_endpoint":      "NEXT_PUBLIC_LEAD_WEBHOOK_URL",
	"dispatch.fallback.bot_token": "NEXT_PUBLIC_TELEGRAM_BOT_TOKEN",
	"dispatch.fallback.chat_id":   "NEXT_PUBLIC_TELEGRAM_CHAT_ID",
}

// Load builds a Config from .env, disk and environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("LANDING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		prefixed := "LANDING_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.shutdown_seconds", 10)
	v.SetDefault("site.id", "vera")
	v.SetDefault("site.url", "https://вера-лок.рф")
	v.SetDefault("site.domain", "вера-лок.рф")
	v.SetDefault("site.name", "ЛОК VERA")
	v.SetDefault("site.chat_id", "")
	v.SetDefault("site.phone_region", "RU")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.api_base_url", "https://api.telegram.org")
	v.SetDefault("telegram.timeout_seconds", 10)
	v.SetDefault("relay.endpoint", "")
	v.SetDefault("relay.timeout_seconds", 10)
	v.SetDefault("dispatch.lead_endpoint", "")
	v.SetDefault("dispatch.channels", []string{ChannelEndpoint, ChannelTelegram})
	v.SetDefault("dispatch.timeout_seconds", 10)
	v.SetDefault("dispatch.fallback.enabled", false)
	v.SetDefault("dispatch.fallback.bot_token", "")
	v.SetDefault("dispatch.fallback.chat_id", "")
	v.SetDefault("dispatch.internal_token", "")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 0.2)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("rate_limit.max_keys", 10000)
	v.SetDefault("rate_limit.trust_forwarded", false)
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("logging.development", false)
	v.SetDefault("telemetry.service_name", "vera-landing")
	v.SetDefault("telemetry.tracing_enabled", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Telegram.TimeoutSeconds <= 0 {
		return fmt.Errorf("telegram.timeout_seconds must be > 0")
	}
	if c.Relay.TimeoutSeconds <= 0 {
		return fmt.Errorf("relay.timeout_seconds must be > 0")
	}
	if c.Dispatch.TimeoutSeconds <= 0 {
		return fmt.Errorf("dispatch.timeout_seconds must be > 0")
	}
	if len(c.Dispatch.Channels) == 0 {
		return fmt.Errorf("dispatch.channels must not be empty")
	}
	for _, name := range c.Dispatch.Channels {
		switch strings.TrimSpace(name) {
		case ChannelEndpoint, ChannelTelegram:
		case ChannelRelay:
			if strings.TrimSpace(c.Relay.Endpoint) == "" {
				return fmt.Errorf("relay.endpoint must be set when dispatch.channels lists relay")
			}
		default:
			return fmt.Errorf("dispatch.channels: unknown channel %q", name)
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.rps and rate_limit.burst must be > 0 when rate limiting is enabled")
	}
	return nil
}

// LeadEndpoint returns the dispatcher's primary target, defaulting to the
// site's own proxy route.
func (c Config) LeadEndpoint() string {
	if endpoint := strings.TrimSpace(c.Dispatch.LeadEndpoint); endpoint != "" {
		return endpoint
	}
	return strings.TrimRight(c.Site.URL, "/") + "/api/lead"
}

// SelfEndpoint reports whether the lead endpoint is served by this site.
func (c Config) SelfEndpoint() bool {
	endpoint, err := url.Parse(c.LeadEndpoint())
	if err != nil {
		return false
	}
	site, err := url.Parse(strings.TrimSpace(c.Site.URL))
	if err != nil {
		return false
	}
	return endpoint.Host != "" && strings.EqualFold(endpoint.Host, site.Host)
}

// TelegramConfigured reports whether the proxy has both bot credentials.
func (c Config) TelegramConfigured() bool {
	return strings.TrimSpace(c.Telegram.BotToken) != "" && strings.TrimSpace(c.Telegram.ChatID) != ""
}

// FallbackActive reports whether the client-exposed Telegram fallback may be
// used: it must be enabled and carry both credentials.
func (c Config) FallbackActive() bool {
	f := c.Dispatch.Fallback
	return f.Enabled && strings.TrimSpace(f.BotToken) != "" && strings.TrimSpace(f.ChatID) != ""
}

// Seconds converts a whole-second setting into a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
