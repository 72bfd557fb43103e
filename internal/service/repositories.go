package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/pagination"
	"github.com/google/uuid"
)

// ProductCriteria selects products by case-insensitive partial match on
// each non-empty field.
type ProductCriteria struct {
	Name     string
	Brand    string
	Category string
}

// IsEmpty reports whether no field would constrain the lookup
func (c ProductCriteria) IsEmpty() bool {
	return c.Name == "" && c.Brand == "" && c.Category == ""
}

// ProductFilter narrows product listings
type ProductFilter struct {
	Category string
	Brand    string
}

type ProductPageResult struct {
	Items      []*domain.Product
	NextCursor string
	HasMore    bool
}

// ProductRepositoryInterface defines the repository interface for product persistence
type ProductRepositoryInterface interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	FindOne(ctx context.Context, criteria ProductCriteria) (*domain.Product, error)
	FindSimilar(ctx context.Context, category domain.Category, excludeID, excludeBrand string, limit int) ([]*domain.Product, error)
	FindByCategoryLike(ctx context.Context, category string, limit int) ([]*domain.Product, error)
	UpdatePrice(ctx context.Context, id string, price domain.Price) error
	UpdateAvailability(ctx context.Context, id string, availability []domain.RetailerAvailability) error
	List(ctx context.Context, filter ProductFilter, cursor *pagination.Cursor, limit int) (*ProductPageResult, error)
	ListStalePrices(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Product, error)
}

// DupeRepositoryInterface defines the repository interface for dupe relationships
type DupeRepositoryInterface interface {
	Upsert(ctx context.Context, d *domain.Dupe) (*domain.Dupe, error)
	ListByOriginal(ctx context.Context, originalID string, limit int) ([]domain.DupeWithProduct, error)
	GetByPair(ctx context.Context, originalID, dupeID string) (*domain.Dupe, error)
}

// SearchLogRepositoryInterface appends search analytics records
type SearchLogRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Search) (string, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}
