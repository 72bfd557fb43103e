package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/metrics"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"go.uber.org/zap"
)

// DefaultRefreshBatch caps how many products one pass refreshes
const DefaultRefreshBatch = 20

// StaleProductLister finds products whose stored price is out of date
type StaleProductLister interface {
	ListStalePrices(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Product, error)
}

// PriceRefresher refreshes one product's prices
type PriceRefresher interface {
	RefreshProduct(ctx context.Context, productID string) (*service.PriceReport, error)
}

// PriceRefreshProcessor re-quotes products whose price is older than maxAge
type PriceRefreshProcessor struct {
	products  StaleProductLister
	refresher PriceRefresher
	maxAge    time.Duration
	batch     int
	logger    *zap.Logger
	now       func() time.Time
}

// NewPriceRefreshProcessor creates a new PriceRefreshProcessor instance
func NewPriceRefreshProcessor(
	products StaleProductLister,
	refresher PriceRefresher,
	maxAge time.Duration,
	batch int,
	logger *zap.Logger,
) *PriceRefreshProcessor {
	if batch <= 0 {
		batch = DefaultRefreshBatch
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceRefreshProcessor{
		products:  products,
		refresher: refresher,
		maxAge:    maxAge,
		batch:     batch,
		logger:    logger.Named("price_refresh"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessJobs implements the JobProcessor interface. A failing product is
// logged and skipped.
func (p *PriceRefreshProcessor) ProcessJobs(ctx context.Context) error {
	stale, err := p.products.ListStalePrices(ctx, p.now().Add(-p.maxAge), p.batch)
	if err != nil {
		return fmt.Errorf("failed to list stale prices: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	p.logger.Info("refreshing stale prices", zap.Int("count", len(stale)))

	for _, product := range stale {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report, err := p.refresher.RefreshProduct(ctx, product.ID)
		metrics.ObservePriceRefresh(err)
		if err != nil {
			p.logger.Warn("price refresh failed",
				zap.String("product_id", product.ID),
				zap.Error(err))
			continue
		}
		if report.Lowest != nil {
			p.logger.Debug("price refreshed",
				zap.String("product_id", product.ID),
				zap.String("retailer", report.Lowest.Retailer),
				zap.Float64("price", *report.Lowest.Price))
		}
	}

	return nil
}
