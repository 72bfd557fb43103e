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

// sequenceScorer hands out scores in order
type sequenceScorer struct {
	scores []Scores
	next   int
}

func (s *sequenceScorer) Score(_, _ *domain.Product) Scores {
	out := s.scores[s.next%len(s.scores)]
	s.next++
	return out
}

func TestDupeService_FindDupes(t *testing.T) {
	ctx := context.Background()
	original := testProduct("orig", "Pillow Talk", "Charlotte Tilbury", domain.CategoryLipstick, 34)

	t.Run("returns stored relationships", func(t *testing.T) {
		products := new(MockProductRepository)
		dupes := new(MockDupeRepository)
		stored := []domain.DupeWithProduct{{
			Dupe:    domain.NewDupe("d-1", "orig", "cheap", 90, 80, 20, domain.DupeSourceManual, original.CreatedAt),
			Product: testProduct("cheap", "Lip", "NYX", domain.CategoryLipstick, 14),
		}}
		dupes.On("ListByOriginal", ctx, "orig", MaxStoredDupes).Return(stored, nil)

		got, err := NewDupeService(products, dupes, nil, zaptest.NewLogger(t)).FindDupes(ctx, original, "")

		require.NoError(t, err)
		assert.Equal(t, stored, got)
		products.AssertNotCalled(t, "FindSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("synthesizes and persists candidates ranked by similarity", func(t *testing.T) {
		products := new(MockProductRepository)
		dupes := new(MockDupeRepository)
		a := testProduct("a", "A", "NYX", domain.CategoryLipstick, 10)
		b := testProduct("b", "B", "Maybelline", domain.CategoryLipstick, 0)

		dupes.On("ListByOriginal", ctx, "orig", MaxStoredDupes).Return([]domain.DupeWithProduct{}, nil)
		products.On("FindSimilar", ctx, domain.CategoryLipstick, "orig", "Charlotte Tilbury", MaxCandidateDupes).
			Return([]*domain.Product{a, b}, nil)
		dupes.On("Upsert", ctx, mock.MatchedBy(func(d *domain.Dupe) bool { return d.DupeProductID == "a" })).
			Return(func(d *domain.Dupe) *domain.Dupe { return d }, nil).Maybe()
		dupes.On("Upsert", ctx, mock.Anything).Return(nil, errors.New("write failed")).Maybe()

		svc := NewDupeServiceWithUUIDGen(products, dupes, &sequenceScorer{scores: []Scores{
			{Similarity: 75, IngredientMatch: 70},
			{Similarity: 95, IngredientMatch: 90, ColorMatch: 120},
		}}, nil, NewMockUUIDGenerator("dupe-a", "dupe-b"))

		got, err := svc.FindDupes(ctx, original, "")

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[0].Product.ID)
		assert.Equal(t, 95, got[0].Dupe.SimilarityScore)
		assert.Equal(t, 100, got[0].Dupe.ColorMatch)
		assert.Equal(t, "dupe-b", got[0].Dupe.ID)
		assert.Zero(t, got[0].Dupe.PriceDifference)
		assert.Equal(t, "a", got[1].Product.ID)
		assert.InDelta(t, 24, got[1].Dupe.PriceDifference, 0.0001)
		assert.Equal(t, domain.DupeSourceAlgorithm, got[1].Dupe.Source)
	})

	t.Run("no candidates", func(t *testing.T) {
		products := new(MockProductRepository)
		dupes := new(MockDupeRepository)
		dupes.On("ListByOriginal", ctx, "orig", MaxStoredDupes).Return([]domain.DupeWithProduct{}, nil)
		products.On("FindSimilar", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]*domain.Product{}, nil)

		got, err := NewDupeService(products, dupes, nil, nil).FindDupes(ctx, original, "")

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("without original scores category matches without persisting", func(t *testing.T) {
		products := new(MockProductRepository)
		dupes := new(MockDupeRepository)
		products.On("FindByCategoryLike", ctx, "makeup", MaxCandidateDupes).
			Return([]*domain.Product{testProduct("x", "X", "Elf", domain.CategoryMakeup, 6)}, nil)

		svc := NewDupeService(products, dupes, fixedScorer{Scores{Similarity: 80, IngredientMatch: 65}}, nil)
		got, err := svc.FindDupes(ctx, nil, "")

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Empty(t, got[0].Dupe.ID)
		assert.Empty(t, got[0].Dupe.OriginalProductID)
		assert.Equal(t, 80, got[0].Dupe.SimilarityScore)
		dupes.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("propagates list failure", func(t *testing.T) {
		dupes := new(MockDupeRepository)
		dupes.On("ListByOriginal", ctx, "orig", MaxStoredDupes).Return(nil, errors.New("db down"))

		_, err := NewDupeService(new(MockProductRepository), dupes, nil, nil).FindDupes(ctx, original, "")

		assert.Error(t, err)
	})
}

func TestDupeService_ListForProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		products := new(MockProductRepository)
		products.On("GetByID", ctx, "missing").Return(nil, domain.ErrProductNotFound)

		_, _, err := NewDupeService(products, new(MockDupeRepository), nil, nil).ListForProduct(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("returns product with dupes", func(t *testing.T) {
		products := new(MockProductRepository)
		dupes := new(MockDupeRepository)
		p := testProduct("p", "P", "Dior", domain.CategoryLipOil, 40)
		products.On("GetByID", ctx, "p").Return(p, nil)
		dupes.On("ListByOriginal", ctx, "p", MaxStoredDupes).Return([]domain.DupeWithProduct{}, nil)

		product, list, err := NewDupeService(products, dupes, nil, nil).ListForProduct(ctx, "p")

		require.NoError(t, err)
		assert.Same(t, p, product)
		assert.Empty(t, list)
	})
}
