// Package telemetry wires Sentry tracing and error capture into the services.
package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const serverName = "dupefinder"

// untracedPaths are the operational endpoints polled by load balancers and
// scrapers.
var untracedPaths = map[string]bool{
	"/health":      true,
	"/metrics":     true,
	"/test":        true,
	"/test-db":     true,
	"/test-openai": true,
}

// Traced reports whether requests to path get a Sentry transaction.
func Traced(path string) bool {
	return !untracedPaths[path]
}

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
	Release          string
}

// Init configures the global Sentry client and returns a flush function.
// An empty DSN leaves Sentry disabled and returns a no-op.
func Init(cfg Config, logger *zap.Logger) (func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DSN == "" {
		return func() {}, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate <= 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serverName,
		TracesSampler: func(ctx sentry.SamplingContext) float64 {
			return sampleRate(ctx, cfg.TracesSampleRate)
		},
	})
	if err != nil {
		logger.Warn("sentry init failed, tracing disabled", zap.Error(err))
		return func() {}, nil
	}

	logger.Info("sentry tracing enabled",
		zap.String("environment", cfg.Environment),
		zap.Float64("sample_rate", cfg.TracesSampleRate))

	return func() { sentry.Flush(5 * time.Second) }, nil
}

func sampleRate(ctx sentry.SamplingContext, base float64) float64 {
	if ctx.Span == nil {
		return base
	}
	if _, path, ok := strings.Cut(ctx.Span.Name, " "); ok && !Traced(path) {
		return 0
	}
	var noParent sentry.SpanID
	if ctx.Span.ParentSpanID != noParent {
		if ctx.Span.Sampled.Bool() {
			return 1
		}
		return 0
	}
	return base
}

// SpanAttributes are the dupe-finder tags attached to a span.
type SpanAttributes struct {
	ProductID string
	DupeID    string
	QueryType string
	Operation string
}

func (a SpanAttributes) apply(span *sentry.Span) {
	if a.ProductID != "" {
		span.SetTag("product_id", a.ProductID)
	}
	if a.DupeID != "" {
		span.SetTag("dupe_id", a.DupeID)
	}
	if a.QueryType != "" {
		span.SetTag("query_type", a.QueryType)
	}
	if a.Operation != "" {
		span.SetData("operation", a.Operation)
	}
}

// Span is a service-level Sentry span.
type Span struct {
	inner *sentry.Span
}

// StartSpan opens a child of the span already in ctx, or a new transaction
// when there is none.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}
	attrs.apply(span)
	return span.Context(), &Span{inner: span}
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetError records err on the span. Validation and not-found errors only
// set the status; everything else is also captured as a Sentry event.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.Status = spanStatus(err)
	if !Reportable(err) {
		return
	}
	if hub := sentry.GetHubFromContext(s.inner.Context()); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// Reportable reports whether err is worth a Sentry event. Caller mistakes
// and missing products are routine.
func Reportable(err error) bool {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return !errors.Is(err, context.Canceled)
	}
	switch de.Code {
	case domain.ErrCodeValidation, domain.ErrCodeNotFound, domain.ErrCodeAlreadyExists:
		return false
	}
	return true
}

func spanStatus(err error) sentry.SpanStatus {
	var de *domain.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case domain.ErrCodeValidation:
			return sentry.SpanStatusInvalidArgument
		case domain.ErrCodeNotFound:
			return sentry.SpanStatusNotFound
		case domain.ErrCodeAlreadyExists:
			return sentry.SpanStatusAlreadyExists
		case domain.ErrCodeUpstream:
			return sentry.SpanStatusUnavailable
		}
	}
	if errors.Is(err, context.Canceled) {
		return sentry.SpanStatusCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return sentry.SpanStatusDeadlineExceeded
	}
	return sentry.SpanStatusInternalError
}

// AddBreadcrumb records a step on the current scope.
func AddBreadcrumb(ctx context.Context, category, message string) {
	breadcrumb := &sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(breadcrumb, nil)
		return
	}
	sentry.AddBreadcrumb(breadcrumb)
}
