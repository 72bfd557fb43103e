package service

import (
	"context"
	"sort"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/telemetry"
	"go.uber.org/zap"
)

const (
	// MaxStoredDupes caps dupes listed for a product with stored relationships
	MaxStoredDupes = 10
	// MaxCandidateDupes caps synthesized candidates
	MaxCandidateDupes = 5
)

const defaultCategoryHint = "makeup"

// DupeService selects and scores dupe candidates for an original product
type DupeService struct {
	products ProductRepositoryInterface
	dupes    DupeRepositoryInterface
	scorer   Scorer
	uuidGen  UUIDGenerator
	logger   *zap.Logger
	now      func() time.Time
}

func NewDupeService(
	products ProductRepositoryInterface,
	dupes DupeRepositoryInterface,
	scorer Scorer,
	logger *zap.Logger,
) *DupeService {
	return NewDupeServiceWithUUIDGen(products, dupes, scorer, logger, &DefaultUUIDGenerator{})
}

// NewDupeServiceWithUUIDGen creates a DupeService with a custom UUID generator (for testing)
func NewDupeServiceWithUUIDGen(
	products ProductRepositoryInterface,
	dupes DupeRepositoryInterface,
	scorer Scorer,
	logger *zap.Logger,
	uuidGen UUIDGenerator,
) *DupeService {
	if scorer == nil {
		scorer = NewRandomScorer(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DupeService{
		products: products,
		dupes:    dupes,
		scorer:   scorer,
		uuidGen:  uuidGen,
		logger:   logger.Named("dupes"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FindDupes returns ranked dupes for original. Stored relationships win;
// otherwise same-category products from other brands are scored and
// persisted. Without an original, products matching extractedCategory are
// scored but not persisted.
func (s *DupeService) FindDupes(ctx context.Context, original *domain.Product, extractedCategory string) ([]domain.DupeWithProduct, error) {
	attrs := telemetry.SpanAttributes{Operation: "find_dupes"}
	if original != nil {
		attrs.ProductID = original.ID
	}
	ctx, span := telemetry.StartSpan(ctx, "DupeService.FindDupes", attrs)
	defer span.End()

	if original == nil {
		return s.fromCategory(ctx, extractedCategory)
	}

	stored, err := s.dupes.ListByOriginal(ctx, original.ID, MaxStoredDupes)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if len(stored) > 0 {
		return stored, nil
	}

	if original.Category == "" {
		return []domain.DupeWithProduct{}, nil
	}

	candidates, err := s.products.FindSimilar(ctx, original.Category, original.ID, original.Brand, MaxCandidateDupes)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	out := make([]domain.DupeWithProduct, 0, len(candidates))
	for _, candidate := range candidates {
		dupe := s.newDupe(original, candidate)
		saved, err := s.dupes.Upsert(ctx, dupe)
		if err != nil {
			s.logger.Warn("failed to persist synthesized dupe",
				zap.String("original_id", original.ID),
				zap.String("dupe_id", candidate.ID),
				zap.Error(err))
			saved = dupe
		}
		out = append(out, domain.DupeWithProduct{Dupe: saved, Product: candidate})
	}
	sortBySimilarity(out)
	return out, nil
}

func (s *DupeService) fromCategory(ctx context.Context, category string) ([]domain.DupeWithProduct, error) {
	if category == "" {
		category = defaultCategoryHint
	}
	candidates, err := s.products.FindByCategoryLike(ctx, category, MaxCandidateDupes)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DupeWithProduct, 0, len(candidates))
	for _, candidate := range candidates {
		scores := s.scorer.Score(nil, candidate)
		dupe := domain.NewDupe("", "", candidate.ID, scores.Similarity, scores.IngredientMatch, 0, domain.DupeSourceAlgorithm, s.now())
		dupe.ColorMatch = domain.ClampScore(scores.ColorMatch)
		dupe.FinishMatch = domain.ClampScore(scores.FinishMatch)
		out = append(out, domain.DupeWithProduct{Dupe: dupe, Product: candidate})
	}
	sortBySimilarity(out)
	return out, nil
}

func (s *DupeService) newDupe(original, candidate *domain.Product) *domain.Dupe {
	scores := s.scorer.Score(original, candidate)
	dupe := domain.NewDupe(
		s.uuidGen.NewString(),
		original.ID,
		candidate.ID,
		scores.Similarity,
		scores.IngredientMatch,
		domain.PriceDifference(original, candidate),
		domain.DupeSourceAlgorithm,
		s.now(),
	)
	dupe.ColorMatch = domain.ClampScore(scores.ColorMatch)
	dupe.FinishMatch = domain.ClampScore(scores.FinishMatch)
	return dupe
}

// ListForProduct returns the stored dupes of a product, best match first.
func (s *DupeService) ListForProduct(ctx context.Context, productID string) (*domain.Product, []domain.DupeWithProduct, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	dupes, err := s.dupes.ListByOriginal(ctx, productID, MaxStoredDupes)
	if err != nil {
		return nil, nil, err
	}
	return product, dupes, nil
}

func sortBySimilarity(dupes []domain.DupeWithProduct) {
	sort.SliceStable(dupes, func(i, j int) bool {
		return dupes[i].Dupe.SimilarityScore > dupes[j].Dupe.SimilarityScore
	})
}
