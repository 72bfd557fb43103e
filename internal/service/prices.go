package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/cache"
	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/metrics"
	"github.com/cloo-solutions/dupefinder/internal/retail"
	"github.com/cloo-solutions/dupefinder/internal/telemetry"
	"go.uber.org/zap"
)

// PriceLookup returns sorted retailer quotes for a product
type PriceLookup interface {
	Lookup(ctx context.Context, name, brand string) ([]domain.RetailerPrice, error)
}

// PriceReport is the outcome of refreshing one product's prices
type PriceReport struct {
	Product *domain.Product
	Prices  []domain.RetailerPrice
	Lowest  *domain.RetailerPrice
}

// PriceService queries retailer price sources and keeps stored prices current
type PriceService struct {
	products ProductRepositoryInterface
	sources  []retail.PriceSource
	cache    cache.PriceCache
	logger   *zap.Logger
	now      func() time.Time
}

func NewPriceService(
	products ProductRepositoryInterface,
	sources []retail.PriceSource,
	priceCache cache.PriceCache,
	logger *zap.Logger,
) *PriceService {
	if priceCache == nil {
		priceCache = cache.NoopPriceCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceService{
		products: products,
		sources:  sources,
		cache:    priceCache,
		logger:   logger.Named("prices"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Lookup returns quotes sorted ascending with unpriced quotes last.
// Failing sources are skipped. No quotes at all yields ErrPricesUnavailable.
func (s *PriceService) Lookup(ctx context.Context, name, brand string) ([]domain.RetailerPrice, error) {
	cached, found, err := s.cache.Get(ctx, name, brand)
	if err != nil {
		s.logger.Warn("price cache read failed", zap.Error(err))
	}
	metrics.ObservePriceCache(found)
	if found && len(cached) > 0 {
		return cached, nil
	}

	prices := make([]domain.RetailerPrice, 0, len(s.sources))
	for _, src := range s.sources {
		quote, err := src.Quote(ctx, name, brand)
		if err != nil {
			s.logger.Warn("price source failed",
				zap.String("retailer", src.Name()),
				zap.String("product", name),
				zap.Error(err))
			continue
		}
		if quote != nil {
			prices = append(prices, *quote)
		}
	}
	if len(prices) == 0 {
		return nil, domain.ErrPricesUnavailable
	}

	retail.SortPrices(prices)
	if err := s.cache.Set(ctx, name, brand, prices); err != nil {
		s.logger.Warn("price cache write failed", zap.Error(err))
	}
	return prices, nil
}

// RefreshProduct looks up current quotes for a stored product, lowers its
// stored price when a cheaper quote exists and replaces its availability.
// A stored price that survives the check still gets a new LastUpdated.
func (s *PriceService) RefreshProduct(ctx context.Context, productID string) (*PriceReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "PriceService.RefreshProduct", telemetry.SpanAttributes{
		ProductID: productID,
		Operation: "refresh_prices",
	})
	defer span.End()

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	prices, err := s.Lookup(ctx, product.Name, product.Brand)
	if err != nil {
		if isSoft(err) {
			return &PriceReport{Product: product, Prices: []domain.RetailerPrice{}}, nil
		}
		span.SetError(err)
		return nil, err
	}

	lowest := domain.LowestPriced(prices)
	var price *domain.Price
	switch {
	case domain.ShouldReplacePrice(product.Price, lowest):
		price = &domain.Price{
			Amount:   *lowest.Price,
			Currency: lowest.Currency,
		}
		if price.Currency == "" {
			price.Currency = domain.DefaultCurrency
		}
	case product.Price != nil:
		// The stored price stays, but it was checked against live quotes
		// and must not be picked up again as stale.
		kept := *product.Price
		price = &kept
	}
	if price != nil {
		price.LastUpdated = s.now()
		if err := s.products.UpdatePrice(ctx, product.ID, *price); err != nil {
			span.SetError(err)
			return nil, err
		}
		product.Price = price
	}

	availability := domain.AvailabilityFromPrices(prices)
	if err := s.products.UpdateAvailability(ctx, product.ID, availability); err != nil {
		span.SetError(err)
		return nil, err
	}
	product.Availability = availability

	return &PriceReport{Product: product, Prices: prices, Lowest: lowest}, nil
}
