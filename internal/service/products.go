package service

import (
	"context"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/pagination"
	"github.com/cloo-solutions/dupefinder/internal/telemetry"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ProductService exposes read access to the product catalog
type ProductService struct {
	products ProductRepositoryInterface
}

func NewProductService(products ProductRepositoryInterface) *ProductService {
	return &ProductService{products: products}
}

type ListProductsInput struct {
	Category string
	Brand    string
	Cursor   string
	Limit    int
}

type ListProductsOutput struct {
	Items   []*domain.Product
	Cursor  string
	HasMore bool
}

// Get returns a product by id
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// List pages through products newest first
func (s *ProductService) List(ctx context.Context, input ListProductsInput) (*ListProductsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductService.List", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	limit := pagination.ClampLimit(input.Limit, defaultListLimit, maxListLimit)

	result, err := s.products.List(ctx, ProductFilter{Category: input.Category, Brand: input.Brand}, cursor, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &ListProductsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}
