package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/telemetry"
	"go.uber.org/zap"
)

// ProductExtractor turns a free-form query into a structured product guess
type ProductExtractor interface {
	Extract(ctx context.Context, query string) (*domain.ExtractedProduct, error)
}

// ProductInfoAPI is the LLM call behind LLMExtractor
type ProductInfoAPI interface {
	ExtractProductInfo(ctx context.Context, query string) (*domain.ExtractedProduct, error)
}

// LLMExtractor delegates extraction to a hosted language model
type LLMExtractor struct {
	api ProductInfoAPI
}

func NewLLMExtractor(api ProductInfoAPI) *LLMExtractor {
	return &LLMExtractor{api: api}
}

func (e *LLMExtractor) Extract(ctx context.Context, query string) (*domain.ExtractedProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "LLMExtractor.Extract", telemetry.SpanAttributes{Operation: "extract"})
	defer span.End()

	extracted, err := e.api.ExtractProductInfo(ctx, query)
	if err != nil {
		span.SetError(err)
		if errors.Is(err, domain.ErrExtractionFailed) {
			return nil, err
		}
		return nil, domain.WithCause(domain.ErrExtractionFailed, err)
	}
	return extracted, nil
}

// KnownBrands are matched against queries in order
var KnownBrands = []string{
	"charlotte tilbury", "dior", "nars", "fenty", "mac", "huda beauty",
	"rare beauty", "glossier", "estee lauder", "lancome", "tom ford",
	"chanel", "ysl", "gucci", "armani", "hourglass", "tatcha", "drunk elephant",
	"summer fridays", "bobbi brown", "laura mercier", "pat mcgrath", "natasha denona",
}

var brandPatterns = compileBrandPatterns(KnownBrands)

func compileBrandPatterns(brands []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(brands))
	for i, b := range brands {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(b) + `\b`)
	}
	return out
}

// KeywordExtractor recognizes product types and brands from fixed word lists.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Analyze reports the first known product type and brand in the query.
func (KeywordExtractor) Analyze(query string) domain.QueryAnalysis {
	lower := strings.ToLower(query)

	var productType string
	for _, t := range domain.ProductTypes {
		if strings.Contains(lower, string(t)) {
			productType = string(t)
			break
		}
	}

	var brand string
	for i, re := range brandPatterns {
		if re.MatchString(lower) {
			brand = KnownBrands[i]
			break
		}
	}

	return domain.QueryAnalysis{
		ProductType: productType,
		Brand:       brand,
		IsNewProductSearch: brand != "" || productType != "" ||
			strings.Contains(lower, "dupe for") ||
			strings.Contains(lower, "alternative to"),
		QueryText: query,
	}
}

// Extract never fails; an unrecognized query yields an empty extraction.
func (k KeywordExtractor) Extract(_ context.Context, query string) (*domain.ExtractedProduct, error) {
	a := k.Analyze(query)
	lower := strings.ToLower(query)
	out := &domain.ExtractedProduct{
		Brand:    a.Brand,
		Category: a.ProductType,
	}
	switch {
	case a.ProductType == "":
	case isSkincareType(a.ProductType):
		out.IsSkincare = true
	default:
		out.IsMakeup = true
	}
	if strings.Contains(lower, "hair") || strings.Contains(lower, "shampoo") {
		out.IsHaircare = true
	}
	if a.Brand != "" || a.ProductType != "" {
		out.Confidence = 50
	}
	return out, nil
}

func isSkincareType(t string) bool {
	switch domain.Category(t) {
	case domain.CategoryMoisturizer, domain.CategorySerum, domain.CategorySunscreen,
		domain.CategoryCleanser, domain.CategoryToner, domain.CategoryFaceMask, domain.CategoryEyeCream:
		return true
	}
	return false
}

// FallbackExtractor uses the secondary extractor when the primary fails.
type FallbackExtractor struct {
	primary   ProductExtractor
	secondary ProductExtractor
	logger    *zap.Logger
}

func NewFallbackExtractor(primary, secondary ProductExtractor, logger *zap.Logger) *FallbackExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackExtractor{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackExtractor) Extract(ctx context.Context, query string) (*domain.ExtractedProduct, error) {
	extracted, err := f.primary.Extract(ctx, query)
	if err == nil {
		return extracted, nil
	}
	f.logger.Warn("primary extraction failed, using fallback", zap.Error(err))
	return f.secondary.Extract(ctx, query)
}

// NewSearchExtractor returns the extractor used by search. Without
// keywordFallback an LLM failure is returned as ErrExtractionFailed so the
// search is logged as unsuccessful; with it the keyword extractor answers.
func NewSearchExtractor(api ProductInfoAPI, keywordFallback bool, logger *zap.Logger) ProductExtractor {
	llm := NewLLMExtractor(api)
	if !keywordFallback {
		return llm
	}
	return NewFallbackExtractor(llm, NewKeywordExtractor(), logger)
}
