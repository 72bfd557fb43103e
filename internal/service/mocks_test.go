package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepositoryInterface
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindOne(ctx context.Context, criteria ProductCriteria) (*domain.Product, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindSimilar(ctx context.Context, category domain.Category, excludeID, excludeBrand string, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, category, excludeID, excludeBrand, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategoryLike(ctx context.Context, category string, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, category, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) UpdatePrice(ctx context.Context, id string, price domain.Price) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateAvailability(ctx context.Context, id string, availability []domain.RetailerAvailability) error {
	args := m.Called(ctx, id, availability)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, filter ProductFilter, cursor *pagination.Cursor, limit int) (*ProductPageResult, error) {
	args := m.Called(ctx, filter, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProductPageResult), args.Error(1)
}

func (m *MockProductRepository) ListStalePrices(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

// MockDupeRepository is a mock implementation of DupeRepositoryInterface
type MockDupeRepository struct {
	mock.Mock
}

func (m *MockDupeRepository) Upsert(ctx context.Context, d *domain.Dupe) (*domain.Dupe, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(*domain.Dupe) *domain.Dupe); ok {
		return fn(d), args.Error(1)
	}
	return args.Get(0).(*domain.Dupe), args.Error(1)
}

func (m *MockDupeRepository) ListByOriginal(ctx context.Context, originalID string, limit int) ([]domain.DupeWithProduct, error) {
	args := m.Called(ctx, originalID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DupeWithProduct), args.Error(1)
}

func (m *MockDupeRepository) GetByPair(ctx context.Context, originalID, dupeID string) (*domain.Dupe, error) {
	args := m.Called(ctx, originalID, dupeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dupe), args.Error(1)
}

// MockSearchLogRepository is a mock implementation of SearchLogRepositoryInterface
type MockSearchLogRepository struct {
	mock.Mock
}

func (m *MockSearchLogRepository) Create(ctx context.Context, s *domain.Search) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

// MockProductExtractor is a mock implementation of ProductExtractor
type MockProductExtractor struct {
	mock.Mock
}

func (m *MockProductExtractor) Extract(ctx context.Context, query string) (*domain.ExtractedProduct, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedProduct), args.Error(1)
}

// MockIngredientSource is a mock implementation of IngredientSource
type MockIngredientSource struct {
	mock.Mock
}

func (m *MockIngredientSource) ExtractIngredients(ctx context.Context, pageURL string) ([]string, error) {
	args := m.Called(ctx, pageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPriceLookup is a mock implementation of PriceLookup
type MockPriceLookup struct {
	mock.Mock
}

func (m *MockPriceLookup) Lookup(ctx context.Context, name, brand string) ([]domain.RetailerPrice, error) {
	args := m.Called(ctx, name, brand)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RetailerPrice), args.Error(1)
}

// MockIngredientComparer is a mock implementation of IngredientComparer
type MockIngredientComparer struct {
	mock.Mock
}

func (m *MockIngredientComparer) CompareIngredients(ctx context.Context, original, dupe []string) (*domain.IngredientComparison, error) {
	args := m.Called(ctx, original, dupe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngredientComparison), args.Error(1)
}

// MockUUIDGenerator hands out the given ids in order, then "default-uuid"
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		uuid := m.uuids[m.callCount]
		m.callCount++
		return uuid
	}
	return "default-uuid"
}

// fixedScorer returns the same scores for every candidate
type fixedScorer struct {
	scores Scores
}

func (f fixedScorer) Score(_, _ *domain.Product) Scores {
	return f.scores
}

func priced(amount float64) *domain.Price {
	return &domain.Price{Amount: amount, Currency: "USD"}
}

func floatPtr(f float64) *float64 {
	return &f
}

func testProduct(id, name, brand string, category domain.Category, price float64, ingredients ...string) *domain.Product {
	p := domain.NewProduct(id, name, brand, category, ingredients, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if price > 0 {
		p.Price = priced(price)
	}
	return p
}
