package service

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/telemetry"
	"go.uber.org/zap"
)

// IngredientComparer asks a language model to compare ingredient lists
type IngredientComparer interface {
	CompareIngredients(ctx context.Context, original, dupe []string) (*domain.IngredientComparison, error)
}

// ComparisonResult is the outcome of comparing two stored products
type ComparisonResult struct {
	Original        *domain.Product
	Dupe            *domain.Product
	Comparison      domain.IngredientComparison
	PriceDifference float64
	RelationshipID  string
}

// CompareService compares two products' ingredients and records the
// resulting dupe relationship.
type CompareService struct {
	products ProductRepositoryInterface
	dupes    DupeRepositoryInterface
	comparer IngredientComparer
	uuidGen  UUIDGenerator
	logger   *zap.Logger
	now      func() time.Time
}

func NewCompareService(
	products ProductRepositoryInterface,
	dupes DupeRepositoryInterface,
	comparer IngredientComparer,
	logger *zap.Logger,
) *CompareService {
	return NewCompareServiceWithUUIDGen(products, dupes, comparer, logger, &DefaultUUIDGenerator{})
}

// NewCompareServiceWithUUIDGen creates a CompareService with a custom UUID generator (for testing)
func NewCompareServiceWithUUIDGen(
	products ProductRepositoryInterface,
	dupes DupeRepositoryInterface,
	comparer IngredientComparer,
	logger *zap.Logger,
	uuidGen UUIDGenerator,
) *CompareService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompareService{
		products: products,
		dupes:    dupes,
		comparer: comparer,
		uuidGen:  uuidGen,
		logger:   logger.Named("compare"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Compare loads both products, compares their ingredients and upserts the
// relationship with the returned score.
func (s *CompareService) Compare(ctx context.Context, originalID, dupeID string) (*ComparisonResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "CompareService.Compare", telemetry.SpanAttributes{
		ProductID: originalID,
		DupeID:    dupeID,
		Operation: "compare",
	})
	defer span.End()

	if originalID == "" || dupeID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "both originalProductId and dupeProductId are required")
	}
	if originalID == dupeID {
		return nil, domain.ErrSelfDupe
	}

	original, err := s.products.GetByID(ctx, originalID)
	if err != nil {
		return nil, notFoundPair(err)
	}
	dupe, err := s.products.GetByID(ctx, dupeID)
	if err != nil {
		return nil, notFoundPair(err)
	}

	if !domain.HasIngredients(original) || !domain.HasIngredients(dupe) {
		return nil, domain.ErrMissingIngredients
	}

	comparison, err := s.comparer.CompareIngredients(ctx, original.Ingredients, dupe.Ingredients)
	if err != nil {
		span.SetError(err)
		s.logger.Error("ingredient comparison failed",
			zap.String("original_id", originalID),
			zap.String("dupe_id", dupeID),
			zap.Error(err))
		if errors.Is(err, domain.ErrComparisonFailed) {
			return nil, err
		}
		return nil, domain.WithCause(domain.ErrComparisonFailed, err)
	}
	comparison.SimilarityScore = domain.ClampScore(comparison.SimilarityScore)

	priceDiff := domain.PriceDifference(original, dupe)
	relationship := domain.NewDupe(
		s.uuidGen.NewString(),
		original.ID,
		dupe.ID,
		comparison.SimilarityScore,
		comparison.SimilarityScore,
		priceDiff,
		domain.DupeSourceAlgorithm,
		s.now(),
	)
	saved, err := s.dupes.Upsert(ctx, relationship)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &ComparisonResult{
		Original:        original,
		Dupe:            dupe,
		Comparison:      *comparison,
		PriceDifference: priceDiff,
		RelationshipID:  saved.ID,
	}, nil
}

var errProductPairNotFound = domain.NewDomainError(domain.ErrCodeNotFound, "one or both products not found")

func notFoundPair(err error) error {
	if errors.Is(err, domain.ErrProductNotFound) {
		return errProductPairNotFound
	}
	return err
}
