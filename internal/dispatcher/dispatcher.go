// Package dispatcher delivers a lead through an ordered list of channels,
// stopping at the first one that accepts it.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/vera-landing/internal/id/uuid"
	"github.com/JakeFAU/vera-landing/internal/lead"
	"github.com/JakeFAU/vera-landing/internal/logging"
	"github.com/JakeFAU/vera-landing/internal/metrics"
	"github.com/JakeFAU/vera-landing/internal/telemetry"
)

// FailureMessage is reported when every channel failed.
const FailureMessage = "Failed to send lead"

// Attempt records one channel delivery.
type Attempt struct {
	Channel  string
	Err      error
	Duration time.Duration
}

// Result is the outcome of a dispatch.
type Result struct {
	OK           bool
	Message      string
	Skipped      bool
	SubmissionID string
	Attempts     []Attempt
	Err          error
}

// Dispatcher tries channels in order until one succeeds. No retries.
type Dispatcher struct {
	logger   *zap.Logger
	channels []lead.Channel
	ids      *uuid.Generator
	tracer   trace.Tracer
}

// New creates a Dispatcher over channels, tried in the given order.
func New(logger *zap.Logger, channels ...lead.Channel) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		logger:   logger.Named("dispatcher"),
		channels: channels,
		ids:      uuid.New(),
		tracer:   telemetry.Tracer(),
	}
}

// Channels returns the configured channel names in order.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Dispatch normalizes raw and delivers it.
func (d *Dispatcher) Dispatch(ctx context.Context, raw lead.Raw) Result {
	return d.DispatchLead(ctx, lead.Normalize(raw))
}

// DispatchLead delivers an already normalized lead. A filled honeypot is
// reported as success without touching any channel; an invalid lead is
// rejected the same way.
func (d *Dispatcher) DispatchLead(ctx context.Context, l lead.Lead) Result {
	res := Result{SubmissionID: d.ids.MustID()}
	log := d.logger.With(logging.LeadFields(res.SubmissionID, l)...)

	if l.Spam() {
		log.Info("honeypot filled, lead dropped")
		res.OK = true
		res.Skipped = true
		return res
	}

	if err := lead.Validate(l); err != nil {
		log.Info("lead rejected", zap.Error(err))
		res.Message = err.Error()
		res.Err = err
		return res
	}

	ctx, span := d.tracer.Start(ctx, "lead.dispatch",
		trace.WithAttributes(attribute.String("lead.submission_id", res.SubmissionID)))
	defer span.End()

	if len(d.channels) == 0 {
		res.Message = FailureMessage
		res.Err = fmt.Errorf("no delivery channels: %w", lead.ErrConfiguration)
		span.SetStatus(codes.Error, "no channels")
		log.Error("lead not delivered", zap.Error(res.Err))
		return res
	}

	errs := make([]error, 0, len(d.channels))
	for _, ch := range d.channels {
		attempt := d.attempt(ctx, ch, l)
		res.Attempts = append(res.Attempts, attempt)
		if attempt.Err == nil {
			log.Info("lead delivered",
				zap.String("channel", attempt.Channel),
				zap.Duration("duration", attempt.Duration),
				zap.Int("attempts", len(res.Attempts)),
			)
			res.OK = true
			span.SetAttributes(attribute.String("lead.channel", attempt.Channel))
			return res
		}
		log.Warn("lead channel failed",
			zap.String("channel", attempt.Channel),
			zap.Duration("duration", attempt.Duration),
			zap.Error(attempt.Err),
		)
		errs = append(errs, attempt.Err)
	}

	res.Message = FailureMessage
	res.Err = errors.Join(errs...)
	span.RecordError(res.Err)
	span.SetStatus(codes.Error, FailureMessage)
	log.Error("lead not delivered", zap.Int("attempts", len(res.Attempts)))
	return res
}

func (d *Dispatcher) attempt(ctx context.Context, ch lead.Channel, l lead.Lead) Attempt {
	name := ch.Name()
	ctx, span := d.tracer.Start(ctx, "lead.deliver",
		trace.WithAttributes(attribute.String("lead.channel", name)))
	defer span.End()

	start := time.Now()
	err := ch.Deliver(ctx, l)
	elapsed := time.Since(start)

	metrics.ObserveDelivery(name, err, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
	}
	return Attempt{Channel: name, Err: err, Duration: elapsed}
}
