package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/vera-landing/internal/channel/endpoint"
	"github.com/JakeFAU/vera-landing/internal/channel/telegram"
	"github.com/JakeFAU/vera-landing/internal/config"
	"github.com/JakeFAU/vera-landing/internal/dispatcher"
	"github.com/JakeFAU/vera-landing/internal/id/uuid"
	"github.com/JakeFAU/vera-landing/internal/lead"
	"github.com/JakeFAU/vera-landing/internal/metrics"
	"github.com/JakeFAU/vera-landing/internal/middleware"
	"github.com/JakeFAU/vera-landing/internal/policy/ratelimit"
)

// Paths of the lead entry points.
const (
	PathAPILead  = "/api/lead"
	PathFormLead = "/lead"
)

// TooManyRequestsMessage is returned to rate limited clients.
const TooManyRequestsMessage = "Too many requests"

// Server wires HTTP handlers to the dispatcher and the Telegram proxy client.
type Server struct {
	router     chi.Router
	cfg        config.Config
	dispatcher *dispatcher.Dispatcher
	telegram   *telegram.Client
	clock      lead.Clock
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	cfg config.Config,
	dispatch *dispatcher.Dispatcher,
	tg *telegram.Client,
	clock lead.Clock,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:        cfg,
		dispatcher: dispatch,
		telegram:   tg,
		clock:      clock,
		logger:     logger.Named("api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID(uuid.New()))
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recover(s.logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(requestTimeout(cfg)))

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Config{
			DefaultRPS:   cfg.RateLimit.RPS,
			DefaultBurst: cfg.RateLimit.Burst,
			MaxKeys:      cfg.RateLimit.MaxKeys,
		})
		perClient := limiter.Middleware(middleware.ClientKey(cfg.RateLimit.TrustForwarded), http.HandlerFunc(s.tooManyRequests))
		// The form handler's own calls to /api/lead were already limited on /lead.
		limit = func(next http.Handler) http.Handler {
			limited := perClient(next)
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if s.internalHop(r) {
					next.ServeHTTP(w, r)
					return
				}
				limited.ServeHTTP(w, r)
			})
		}
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/robots.txt", s.robots)
	r.Get("/sitemap.xml", s.sitemap)
	r.Get("/manifest.webmanifest", s.manifest)
	r.Get("/runtime-config.js", s.runtimeConfig)

	r.Get("/", s.landing)
	r.With(limit).Post(PathFormLead, s.submitForm)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
		r.Options(PathAPILead, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(limit).Post(PathAPILead, s.proxyLead)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	channels := []string{}
	if s.dispatcher != nil {
		channels = s.dispatcher.Channels()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ready",
		"telegram_configured": s.telegram != nil && s.telegram.Configured(),
		"channels":            channels,
	})
}

func (s *Server) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	metrics.ObserveRateLimited()
	s.logger.Info("lead submission rate limited",
		zap.String("request_id", middleware.RequestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
	)
	writeResult(w, http.StatusTooManyRequests, false, TooManyRequestsMessage)
}

// internalHop reports whether r carries this site's internal token.
func (s *Server) internalHop(r *http.Request) bool {
	token := s.cfg.Dispatch.InternalToken
	if token == "" {
		return false
	}
	got := r.Header.Get(endpoint.InternalTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

func requestTimeout(cfg config.Config) time.Duration {
	if cfg.Server.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return config.Seconds(cfg.Server.RequestTimeoutSeconds)
}

// leadResponse is the JSON body of the lead endpoint.
type leadResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func writeResult(w http.ResponseWriter, status int, ok bool, msg string) {
	writeJSON(w, status, leadResponse{OK: ok, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}
