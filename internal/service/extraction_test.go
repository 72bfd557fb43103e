package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubProductInfoAPI struct {
	extracted *domain.ExtractedProduct
	err       error
}

func (s stubProductInfoAPI) ExtractProductInfo(context.Context, string) (*domain.ExtractedProduct, error) {
	return s.extracted, s.err
}

func TestKeywordExtractor_Analyze(t *testing.T) {
	k := NewKeywordExtractor()

	tests := []struct {
		query     string
		brand     string
		category  string
		newSearch bool
	}{
		{"Charlotte Tilbury Pillow Talk Lipstick", "charlotte tilbury", "lipstick", true},
		{"dior lip oil", "dior", "lip oil", true},
		{"Huda Beauty setting powder", "huda beauty", "powder", true},
		{"macadamia hair serum", "", "serum", true},
		{"MAC Ruby Woo", "mac", "", true},
		{"anything cheaper?", "", "", false},
		{"a dupe for my favourite", "", "", true},
		{"an alternative to that one", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			a := k.Analyze(tt.query)
			assert.Equal(t, tt.brand, a.Brand)
			assert.Equal(t, tt.category, a.ProductType)
			assert.Equal(t, tt.newSearch, a.IsNewProductSearch)
			assert.Equal(t, tt.query, a.QueryText)
		})
	}
}

func TestKeywordExtractor_Extract(t *testing.T) {
	k := NewKeywordExtractor()

	got, err := k.Extract(context.Background(), "Charlotte Tilbury Pillow Talk Lipstick")
	require.NoError(t, err)
	assert.Equal(t, "charlotte tilbury", got.Brand)
	assert.Equal(t, "lipstick", got.Category)
	assert.True(t, got.IsMakeup)
	assert.False(t, got.IsSkincare)

	got, err = k.Extract(context.Background(), "tatcha moisturizer")
	require.NoError(t, err)
	assert.True(t, got.IsSkincare)

	got, err = k.Extract(context.Background(), "xyz")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestLLMExtractor_WrapsErrors(t *testing.T) {
	e := NewLLMExtractor(stubProductInfoAPI{err: errors.New("connection reset")})

	_, err := e.Extract(context.Background(), "query")

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestLLMExtractor_PassesThrough(t *testing.T) {
	want := &domain.ExtractedProduct{Brand: "Dior"}
	e := NewLLMExtractor(stubProductInfoAPI{extracted: want})

	got, err := e.Extract(context.Background(), "dior")

	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestFallbackExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("uses primary when it succeeds", func(t *testing.T) {
		primary := new(MockProductExtractor)
		secondary := new(MockProductExtractor)
		primary.On("Extract", ctx, "q").Return(&domain.ExtractedProduct{Brand: "nars"}, nil)

		got, err := NewFallbackExtractor(primary, secondary, zaptest.NewLogger(t)).Extract(ctx, "q")

		require.NoError(t, err)
		assert.Equal(t, "nars", got.Brand)
		secondary.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	})

	t.Run("falls back on error", func(t *testing.T) {
		primary := new(MockProductExtractor)
		secondary := new(MockProductExtractor)
		primary.On("Extract", ctx, "q").Return(nil, domain.ErrExtractionFailed)
		secondary.On("Extract", ctx, "q").Return(&domain.ExtractedProduct{Brand: "dior"}, nil)

		got, err := NewFallbackExtractor(primary, secondary, nil).Extract(ctx, "q")

		require.NoError(t, err)
		assert.Equal(t, "dior", got.Brand)
	})
}

func TestNewSearchExtractor(t *testing.T) {
	ctx := context.Background()
	outage := stubProductInfoAPI{err: errors.New("openai: 503 service unavailable")}

	t.Run("LLM failure is surfaced by default", func(t *testing.T) {
		_, err := NewSearchExtractor(outage, false, zaptest.NewLogger(t)).Extract(ctx, "charlotte tilbury lipstick")

		assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	})

	t.Run("keyword fallback when enabled", func(t *testing.T) {
		got, err := NewSearchExtractor(outage, true, zaptest.NewLogger(t)).Extract(ctx, "charlotte tilbury lipstick")

		require.NoError(t, err)
		assert.Equal(t, "charlotte tilbury", got.Brand)
		assert.Equal(t, "lipstick", got.Category)
	})
}
