package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  request_timeout_seconds: 15
site:
  id: vera-test
  url: https://example.com/
  domain: example.com
  chat_id: "-100"
telegram:
  bot_token: token
  chat_id: "-1001"
  timeout_seconds: 5
relay:
  endpoint: https://script.example.com/exec
dispatch:
  channels: [endpoint, relay, telegram]
  fallback:
    enabled: true
    bot_token: public-token
    chat_id: "-1002"
rate_limit:
  rps: 2
  burst: 3
  max_keys: 50
  trust_forwarded: true
cors:
  allowed_origins: ["https://example.com"]
logging:
  development: true
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.RequestTimeoutSeconds != 15 {
		t.Fatalf("expected server overrides, got %+v", cfg.Server)
	}
	if cfg.Site.ID != "vera-test" || cfg.Site.ChatID != "-100" {
		t.Fatalf("expected site overrides, got %+v", cfg.Site)
	}
	if !cfg.TelegramConfigured() {
		t.Fatalf("expected telegram to be configured")
	}
	if got := strings.Join(cfg.Dispatch.Channels, ","); got != "endpoint,relay,telegram" {
		t.Fatalf("expected channel order to be preserved, got %q", got)
	}
	if !cfg.FallbackActive() {
		t.Fatalf("expected fallback to be active")
	}
	if got := cfg.LeadEndpoint(); got != "https://example.com/api/lead" {
		t.Fatalf("expected lead endpoint derived from site url, got %q", got)
	}
	if cfg.RateLimit.RPS != 2 || cfg.RateLimit.Burst != 3 || cfg.RateLimit.MaxKeys != 50 || !cfg.RateLimit.TrustForwarded {
		t.Fatalf("expected rate limit overrides, got %+v", cfg.RateLimit)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || !cfg.Logging.Development {
		t.Fatalf("expected cors and logging overrides")
	}
	if got := Seconds(cfg.Telegram.TimeoutSeconds); got != 5*time.Second {
		t.Fatalf("expected telegram timeout 5s, got %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port <= 0 {
		t.Fatalf("expected a default port")
	}
	if got := strings.Join(cfg.Dispatch.Channels, ","); got != "endpoint,telegram" {
		t.Fatalf("expected default channels endpoint,telegram, got %q", got)
	}
	if cfg.Site.PhoneRegion != "RU" {
		t.Fatalf("expected default phone region RU, got %q", cfg.Site.PhoneRegion)
	}
	if Seconds(cfg.Dispatch.TimeoutSeconds) != 10*time.Second {
		t.Fatalf("expected default dispatch timeout 10s")
	}
	if cfg.RateLimit.TrustForwarded {
		t.Fatalf("forwarded addresses must not be trusted by default")
	}
	if !cfg.SelfEndpoint() {
		t.Fatalf("expected the default lead endpoint to be served by the site")
	}
}

func TestLoadLegacyEnvironmentNames(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "legacy-token")
	t.Setenv("TELEGRAM_CHAT_ID", "-42")
	t.Setenv("NEXT_PUBLIC_LEAD_WEBHOOK_URL", "https://hook.example.com/lead")
	t.Setenv("NEXT_PUBLIC_TELEGRAM_BOT_TOKEN", "public-token")
	t.Setenv("NEXT_PUBLIC_TELEGRAM_CHAT_ID", "-43")
	t.Setenv("PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.BotToken != "legacy-token" || cfg.Telegram.ChatID != "-42" {
		t.Fatalf("expected legacy telegram env, got %+v", cfg.Telegram)
	}
	if got := cfg.LeadEndpoint(); got != "https://hook.example.com/lead" {
		t.Fatalf("expected legacy webhook url, got %q", got)
	}
	if cfg.Dispatch.Fallback.BotToken != "public-token" || cfg.Dispatch.Fallback.ChatID != "-43" {
		t.Fatalf("expected legacy fallback env, got %+v", cfg.Dispatch.Fallback)
	}
	if cfg.FallbackActive() {
		t.Fatalf("fallback must stay inactive until explicitly enabled")
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected PORT to set server.port, got %d", cfg.Server.Port)
	}
}

func TestLoadPrefixedEnvironmentWins(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "legacy-token")
	t.Setenv("LANDING_TELEGRAM_BOT_TOKEN", "prefixed-token")
	t.Setenv("LANDING_DISPATCH_CHANNELS", "telegram")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telegram.BotToken != "prefixed-token" {
		t.Fatalf("expected prefixed env to win, got %q", cfg.Telegram.BotToken)
	}
	if got := strings.Join(cfg.Dispatch.Channels, ","); got != "telegram" {
		t.Fatalf("expected channels from env, got %q", got)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:   ServerConfig{Port: 8080, RequestTimeoutSeconds: 30},
		Telegram: TelegramConfig{TimeoutSeconds: 10},
		Relay:    RelayConfig{TimeoutSeconds: 10},
		Dispatch: DispatchConfig{TimeoutSeconds: 10, Channels: []string{ChannelEndpoint}},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to validate, got %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid telegram timeout",
			cfg: func() Config {
				c := base
				c.Telegram.TimeoutSeconds = 0
				return c
			}(),
			want: "telegram.timeout_seconds",
		},
		{
			name: "no channels",
			cfg: func() Config {
				c := base
				c.Dispatch.Channels = nil
				return c
			}(),
			want: "dispatch.channels",
		},
		{
			name: "unknown channel",
			cfg: func() Config {
				c := base
				c.Dispatch.Channels = []string{"email"}
				return c
			}(),
			want: "unknown channel",
		},
		{
			name: "relay without endpoint",
			cfg: func() Config {
				c := base
				c.Dispatch.Channels = []string{ChannelRelay}
				return c
			}(),
			want: "relay.endpoint",
		},
		{
			name: "rate limit without burst",
			cfg: func() Config {
				c := base
				c.RateLimit = RateLimitConfig{Enabled: true, RPS: 1}
				return c
			}(),
			want: "rate_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSelfEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		want     bool
	}{
		{name: "derived from site", want: true},
		{name: "same host", endpoint: "https://EXAMPLE.com/api/lead", want: true},
		{name: "external webhook", endpoint: "https://hook.example.net/lead", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Config{
				Site:     SiteConfig{URL: "https://example.com"},
				Dispatch: DispatchConfig{LeadEndpoint: tt.endpoint},
			}
			if got := cfg.SelfEndpoint(); got != tt.want {
				t.Fatalf("SelfEndpoint() = %v, want %v", got, tt.want)
			}
		})
	}
}
