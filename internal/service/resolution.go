package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"go.uber.org/zap"
)

// IngredientSource reads an ingredient list from a product page
type IngredientSource interface {
	ExtractIngredients(ctx context.Context, pageURL string) ([]string, error)
}

// Resolver finds the stored product a query refers to, creating it from a
// product page URL when it is not yet known.
type Resolver struct {
	products    ProductRepositoryInterface
	ingredients IngredientSource
	prices      PriceLookup
	uuidGen     UUIDGenerator
	logger      *zap.Logger
	now         func() time.Time
}

func NewResolver(
	products ProductRepositoryInterface,
	ingredients IngredientSource,
	prices PriceLookup,
	logger *zap.Logger,
) *Resolver {
	return NewResolverWithUUIDGen(products, ingredients, prices, logger, &DefaultUUIDGenerator{})
}

// NewResolverWithUUIDGen creates a Resolver with a custom UUID generator (for testing)
func NewResolverWithUUIDGen(
	products ProductRepositoryInterface,
	ingredients IngredientSource,
	prices PriceLookup,
	logger *zap.Logger,
	uuidGen UUIDGenerator,
) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		products:    products,
		ingredients: ingredients,
		prices:      prices,
		uuidGen:     uuidGen,
		logger:      logger.Named("resolver"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ResolveOriginal returns the product matching the extraction, or nil when
// nothing could be identified.
func (r *Resolver) ResolveOriginal(
	ctx context.Context,
	extracted *domain.ExtractedProduct,
	query string,
	queryType domain.QueryType,
) (*domain.Product, error) {
	criteria := ProductCriteria{}
	if extracted != nil {
		criteria = ProductCriteria{
			Name:     strings.TrimSpace(extracted.ProductName),
			Brand:    strings.TrimSpace(extracted.Brand),
			Category: strings.TrimSpace(extracted.Category),
		}
	}

	if !criteria.IsEmpty() {
		product, err := r.products.FindOne(ctx, criteria)
		if err != nil {
			return nil, err
		}
		if product != nil {
			return product, nil
		}
	}

	if queryType != domain.QueryTypeURL || criteria.Name == "" || criteria.Brand == "" {
		return nil, nil
	}
	return r.createFromURL(ctx, criteria, query)
}

func (r *Resolver) createFromURL(ctx context.Context, criteria ProductCriteria, pageURL string) (*domain.Product, error) {
	ingredients, err := r.ingredients.ExtractIngredients(ctx, pageURL)
	if err != nil {
		r.logger.Info("continuing without ingredients", zap.String("url", pageURL), zap.Error(err))
		ingredients = []string{}
	}

	now := r.now()
	product := domain.NewProduct(
		r.uuidGen.NewString(),
		criteria.Name,
		criteria.Brand,
		domain.NormalizeCategory(criteria.Category),
		ingredients,
		now,
	)
	product.URL = pageURL

	prices, err := r.prices.Lookup(ctx, criteria.Name, criteria.Brand)
	if err != nil {
		r.logger.Info("continuing without price", zap.String("product", criteria.Name), zap.Error(err))
	} else if lowest := domain.LowestPriced(prices); lowest != nil {
		currency := lowest.Currency
		if currency == "" {
			currency = domain.DefaultCurrency
		}
		product.Price = &domain.Price{Amount: *lowest.Price, Currency: currency, LastUpdated: now}
	}

	if err := domain.ValidateProduct(product); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid product", err)
	}

	if err := r.products.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrProductAlreadyExists) {
			existing, findErr := r.products.FindOne(ctx, ProductCriteria{Name: criteria.Name, Brand: criteria.Brand})
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	r.logger.Info("created product from url",
		zap.String("product_id", product.ID),
		zap.String("brand", product.Brand),
		zap.String("name", product.Name))
	return product, nil
}
