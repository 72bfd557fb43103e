package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestInit_EmptyDSN(t *testing.T) {
	flush, err := Init(Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NotPanics(t, flush)
}

func TestReportable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation", domain.ErrInvalidQueryType, false},
		{"not found", domain.ErrProductNotFound, false},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrProductNotFound), false},
		{"already exists", domain.ErrProductAlreadyExists, false},
		{"upstream", domain.WithCause(domain.ErrExtractionFailed, errors.New("timeout")), true},
		{"plain", errors.New("connection reset"), true},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reportable(tt.err))
		})
	}
}

func TestSpanStatus(t *testing.T) {
	assert.Equal(t, sentry.SpanStatusNotFound, spanStatus(domain.ErrProductNotFound))
	assert.Equal(t, sentry.SpanStatusInvalidArgument, spanStatus(domain.ErrSelfDupe))
	assert.Equal(t, sentry.SpanStatusUnavailable, spanStatus(domain.ErrComparisonFailed))
	assert.Equal(t, sentry.SpanStatusDeadlineExceeded, spanStatus(context.DeadlineExceeded))
	assert.Equal(t, sentry.SpanStatusInternalError, spanStatus(errors.New("boom")))
}

func TestTraced(t *testing.T) {
	assert.False(t, Traced("/health"))
	assert.False(t, Traced("/metrics"))
	assert.False(t, Traced("/test-openai"))
	assert.True(t, Traced("/search"))
	assert.True(t, Traced("/products/p-1"))
}

func TestSampleRate(t *testing.T) {
	ctx := context.Background()

	health := sentry.StartSpan(ctx, "http.server", sentry.WithTransactionName("GET /health"))
	assert.Equal(t, 0.0, sampleRate(sentry.SamplingContext{Span: health}, 0.5))

	search := sentry.StartSpan(ctx, "http.server", sentry.WithTransactionName("POST /search"))
	assert.Equal(t, 0.5, sampleRate(sentry.SamplingContext{Span: search}, 0.5))

	assert.Equal(t, 0.25, sampleRate(sentry.SamplingContext{}, 0.25))
}

func TestStartSpan_WithoutClient(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "SearchService.Search", SpanAttributes{
		ProductID: "p-1",
		QueryType: "text",
	})
	require.NotNil(t, span)
	assert.NotNil(t, sentry.SpanFromContext(ctx))
	assert.Equal(t, "p-1", span.inner.Tags["product_id"])

	childCtx, child := StartSpan(ctx, "DupeService.FindDupes", SpanAttributes{})
	assert.Equal(t, span.inner.SpanID, child.inner.ParentSpanID)
	assert.NotNil(t, childCtx)

	child.SetError(domain.ErrProductNotFound)
	assert.Equal(t, sentry.SpanStatusNotFound, child.inner.Status)

	assert.NotPanics(t, func() {
		child.End()
		span.End()
	})
}
