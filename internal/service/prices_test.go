package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/cache"
	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/retail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubSource struct {
	name  string
	price *float64
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Quote(context.Context, string, string) (*domain.RetailerPrice, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.RetailerPrice{Retailer: s.name, Price: s.price, Currency: "USD", InStock: true}, nil
}

type memoryCache struct {
	entries map[string][]domain.RetailerPrice
}

func (c *memoryCache) Get(_ context.Context, name, brand string) ([]domain.RetailerPrice, bool, error) {
	p, ok := c.entries[cache.Key(name, brand)]
	return p, ok, nil
}

func (c *memoryCache) Set(_ context.Context, name, brand string, prices []domain.RetailerPrice) error {
	c.entries[cache.Key(name, brand)] = prices
	return nil
}

func TestPriceService_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("sorts quotes and skips failing sources", func(t *testing.T) {
		sources := []retail.PriceSource{
			&stubSource{name: "Sephora", price: floatPtr(34.99)},
			&stubSource{name: "Broken", err: errors.New("timeout")},
			&stubSource{name: "NoPrice"},
			&stubSource{name: "Amazon", price: floatPtr(29.99)},
		}
		svc := NewPriceService(nil, sources, nil, zaptest.NewLogger(t))

		prices, err := svc.Lookup(ctx, "Pillow Talk", "Charlotte Tilbury")

		require.NoError(t, err)
		require.Len(t, prices, 3)
		assert.Equal(t, "Amazon", prices[0].Retailer)
		assert.Equal(t, "Sephora", prices[1].Retailer)
		assert.Equal(t, "NoPrice", prices[2].Retailer)
	})

	t.Run("no quotes is a soft failure", func(t *testing.T) {
		svc := NewPriceService(nil, []retail.PriceSource{&stubSource{name: "Broken", err: errors.New("boom")}}, nil, nil)

		_, err := svc.Lookup(ctx, "x", "y")

		assert.ErrorIs(t, err, domain.ErrPricesUnavailable)
		assert.True(t, isSoft(err))
	})

	t.Run("serves from cache", func(t *testing.T) {
		src := &stubSource{name: "Ulta", price: floatPtr(32.99)}
		mem := &memoryCache{entries: map[string][]domain.RetailerPrice{}}
		svc := NewPriceService(nil, []retail.PriceSource{src}, mem, nil)

		first, err := svc.Lookup(ctx, "Pillow Talk", "Charlotte Tilbury")
		require.NoError(t, err)
		second, err := svc.Lookup(ctx, "pillow talk", "charlotte tilbury")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, src.calls)
	})
}

func TestPriceService_RefreshProduct(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("lowers stored price and replaces availability", func(t *testing.T) {
		repo := new(MockProductRepository)
		product := testProduct("p-1", "Pillow Talk", "Charlotte Tilbury", domain.CategoryLipstick, 34.00)
		repo.On("GetByID", ctx, "p-1").Return(product, nil)
		repo.On("UpdatePrice", ctx, "p-1", domain.Price{Amount: 29.99, Currency: "USD", LastUpdated: now}).Return(nil)
		repo.On("UpdateAvailability", ctx, "p-1", mock.MatchedBy(func(a []domain.RetailerAvailability) bool {
			return len(a) == 2 && a[0].Retailer == "Amazon"
		})).Return(nil)

		svc := NewPriceService(repo, []retail.PriceSource{
			&stubSource{name: "Sephora", price: floatPtr(34.99)},
			&stubSource{name: "Amazon", price: floatPtr(29.99)},
		}, nil, nil)
		svc.now = func() time.Time { return now }

		report, err := svc.RefreshProduct(ctx, "p-1")

		require.NoError(t, err)
		require.NotNil(t, report.Lowest)
		assert.Equal(t, "Amazon", report.Lowest.Retailer)
		assert.InDelta(t, 29.99, report.Product.Price.Amount, 0.0001)
		assert.Len(t, report.Product.Availability, 2)
		repo.AssertExpectations(t)
	})

	t.Run("keeps cheaper stored price but marks it fresh", func(t *testing.T) {
		repo := new(MockProductRepository)
		product := testProduct("p-1", "Lip", "Brand", domain.CategoryLipstick, 10.00)
		product.Price.LastUpdated = now.AddDate(0, -2, 0)
		repo.On("GetByID", ctx, "p-1").Return(product, nil)
		repo.On("UpdatePrice", ctx, "p-1", domain.Price{Amount: 10.00, Currency: "USD", LastUpdated: now}).Return(nil)
		repo.On("UpdateAvailability", ctx, "p-1", mock.Anything).Return(nil)

		svc := NewPriceService(repo, []retail.PriceSource{&stubSource{name: "Ulta", price: floatPtr(32.99)}}, nil, nil)
		svc.now = func() time.Time { return now }

		report, err := svc.RefreshProduct(ctx, "p-1")

		require.NoError(t, err)
		assert.InDelta(t, 10.00, report.Product.Price.Amount, 0.0001)
		assert.Equal(t, now, report.Product.Price.LastUpdated)
		repo.AssertExpectations(t)
	})

	t.Run("unpriced quotes leave a missing price alone", func(t *testing.T) {
		repo := new(MockProductRepository)
		product := testProduct("p-1", "Lip", "Brand", domain.CategoryLipstick, 0)
		repo.On("GetByID", ctx, "p-1").Return(product, nil)
		repo.On("UpdateAvailability", ctx, "p-1", mock.Anything).Return(nil)

		svc := NewPriceService(repo, []retail.PriceSource{&stubSource{name: "Ulta"}}, nil, nil)

		report, err := svc.RefreshProduct(ctx, "p-1")

		require.NoError(t, err)
		assert.Nil(t, report.Product.Price)
		repo.AssertNotCalled(t, "UpdatePrice", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no prices returns an empty report", func(t *testing.T) {
		repo := new(MockProductRepository)
		product := testProduct("p-1", "Lip", "Brand", domain.CategoryLipstick, 0)
		repo.On("GetByID", ctx, "p-1").Return(product, nil)

		svc := NewPriceService(repo, nil, nil, nil)

		report, err := svc.RefreshProduct(ctx, "p-1")

		require.NoError(t, err)
		assert.Empty(t, report.Prices)
		assert.Nil(t, report.Lowest)
		assert.Same(t, product, report.Product)
	})

	t.Run("unknown product", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByID", ctx, "missing").Return(nil, domain.ErrProductNotFound)

		_, err := NewPriceService(repo, nil, nil, nil).RefreshProduct(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}
