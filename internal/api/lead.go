package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/vera-landing/internal/channel/telegram"
	"github.com/JakeFAU/vera-landing/internal/lead"
	"github.com/JakeFAU/vera-landing/internal/logging"
	"github.com/JakeFAU/vera-landing/internal/metrics"
	"github.com/JakeFAU/vera-landing/internal/middleware"
	"github.com/JakeFAU/vera-landing/internal/web"
)

// MaxBodyBytes bounds lead request bodies.
const MaxBodyBytes = 64 << 10

// Proxy responses.
const (
	TelegramNotConfiguredMessage = "Telegram is not configured"
	TelegramFailedMessage        = "Failed to send lead to Telegram"
)

// proxyLead relays a JSON lead to Telegram with the server-held credentials.
// Checks run in order: required fields, honeypot, configuration, delivery.
// Empty name or phone is a 400 whatever else the body carries.
func (s *Server) proxyLead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFrom(r.Context())
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.logBodyError(reqID, err)
		body = nil
	}
	l := lead.NormalizeExplicit(lead.ParseJSON(body))
	log := s.logger.With(logging.LeadFields(reqID, l)...)

	if err := lead.Validate(l); err != nil {
		metrics.ObserveSubmission(PathAPILead, metrics.OutcomeInvalid)
		writeResult(w, http.StatusBadRequest, false, lead.MissingFieldsMessage)
		return
	}

	if l.Spam() {
		metrics.ObserveSubmission(PathAPILead, metrics.OutcomeSpam)
		log.Info("honeypot filled, lead dropped")
		writeResult(w, http.StatusOK, true, "")
		return
	}

	if s.telegram == nil || !s.telegram.Configured() {
		metrics.ObserveSubmission(PathAPILead, metrics.OutcomeMisconfig)
		log.Error("telegram credentials missing")
		writeResult(w, http.StatusInternalServerError, false, TelegramNotConfiguredMessage)
		return
	}

	text := lead.ComposeMessage(l, lead.MessageMeta{
		SiteDomain:  s.cfg.Site.Domain,
		PhoneRegion: s.cfg.Site.PhoneRegion,
		SubmittedAt: s.clock.Now(),
		ClientIP:    middleware.ForwardedIP(r),
		UserAgent:   middleware.UserAgent(r),
	})

	start := time.Now()
	err = s.telegram.SendMessage(r.Context(), text)
	metrics.ObserveDelivery(telegram.ChannelName, err, time.Since(start))
	if err != nil {
		metrics.ObserveSubmission(PathAPILead, metrics.OutcomeFailed)
		log.Warn("telegram delivery failed", zap.Error(err))
		writeResult(w, http.StatusBadGateway, false, TelegramFailedMessage)
		return
	}

	metrics.ObserveSubmission(PathAPILead, metrics.OutcomeDelivered)
	log.Info("lead relayed to telegram")
	writeResult(w, http.StatusOK, true, "")
}

// logBodyError separates oversize bodies from unreadable ones. Both are
// answered as an empty submission.
func (s *Server) logBodyError(reqID string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.logger.Warn("lead body exceeds limit, treating as empty",
			zap.String("request_id", reqID), zap.Int64("limit_bytes", tooLarge.Limit))
		return
	}
	s.logger.Info("lead body unreadable, treating as empty",
		zap.String("request_id", reqID), zap.Error(err))
}

// submitForm handles the landing page form through the dispatcher and
// renders the page again with the outcome.
func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.logBodyError(middleware.RequestIDFrom(r.Context()), err)
	}

	raw := lead.RawFromForm(r.PostForm)
	if _, ok := raw[web.FieldPageURL]; !ok {
		if ref := strings.TrimSpace(r.Referer()); ref != "" {
			raw[web.FieldPageURL] = ref
		}
	}

	state := web.FormState{
		PageURL:       r.PostForm.Get(web.FieldPageURL),
		Name:          r.PostForm.Get(web.FieldName),
		Phone:         r.PostForm.Get(web.FieldPhone),
		ContactMethod: r.PostForm.Get(web.FieldContactMethod),
		UTM: lead.UTM{
			Source:   r.PostForm.Get("utm_source"),
			Medium:   r.PostForm.Get("utm_medium"),
			Campaign: r.PostForm.Get("utm_campaign"),
			Term:     r.PostForm.Get("utm_term"),
			Content:  r.PostForm.Get("utm_content"),
		},
	}

	ctx := lead.WithOrigin(r.Context(), lead.Origin{
		ClientIP:  submitterIP(r),
		UserAgent: middleware.UserAgent(r),
	})
	res := s.dispatcher.Dispatch(ctx, raw)
	status := http.StatusOK
	switch {
	case res.Skipped:
		metrics.ObserveSubmission(PathFormLead, metrics.OutcomeSpam)
		state = web.FormState{Success: true}
	case res.OK:
		metrics.ObserveSubmission(PathFormLead, metrics.OutcomeDelivered)
		state = web.FormState{Success: true, PageURL: state.PageURL, UTM: state.UTM}
	case errors.Is(res.Err, lead.ErrValidation):
		metrics.ObserveSubmission(PathFormLead, metrics.OutcomeInvalid)
		status = http.StatusBadRequest
		state.Error = web.ErrorText
	default:
		metrics.ObserveSubmission(PathFormLead, metrics.OutcomeFailed)
		status = http.StatusBadGateway
		state.Error = web.ErrorText
	}

	s.renderLanding(w, status, state)
}

func (s *Server) landing(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	s.renderLanding(w, http.StatusOK, web.FormState{
		PageURL: strings.TrimRight(s.cfg.Site.URL, "/") + r.URL.RequestURI(),
		UTM: lead.UTM{
			Source:   query.Get("utm_source"),
			Medium:   query.Get("utm_medium"),
			Campaign: query.Get("utm_campaign"),
			Term:     query.Get("utm_term"),
			Content:  query.Get("utm_content"),
		},
	})
}

func (s *Server) renderLanding(w http.ResponseWriter, status int, state web.FormState) {
	page := web.LandingPage(web.Site{Name: s.cfg.Site.Name, URL: s.cfg.Site.URL}, state)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(w); err != nil {
		s.logger.Error("render landing page failed", zap.Error(err))
	}
}

// submitterIP is the address shown to operators: the forwarded client when a
// proxy reported one, else the connection's peer.
func submitterIP(r *http.Request) string {
	if ip := middleware.ForwardedIP(r); ip != middleware.UnknownClient {
		return ip
	}
	return middleware.RemoteIP(r)
}
