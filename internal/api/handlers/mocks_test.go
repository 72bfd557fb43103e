package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchOutput), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Respond(ctx context.Context, input service.ChatInput) (*service.ChatOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatOutput), args.Error(1)
}

type MockCompareService struct {
	mock.Mock
}

func (m *MockCompareService) Compare(ctx context.Context, originalID, dupeID string) (*service.ComparisonResult, error) {
	args := m.Called(ctx, originalID, dupeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ComparisonResult), args.Error(1)
}

type MockPriceRefresher struct {
	mock.Mock
}

func (m *MockPriceRefresher) RefreshProduct(ctx context.Context, productID string) (*service.PriceReport, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PriceReport), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, input service.ListProductsInput) (*service.ListProductsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListProductsOutput), args.Error(1)
}

type MockDupeLister struct {
	mock.Mock
}

func (m *MockDupeLister) ListForProduct(ctx context.Context, productID string) (*domain.Product, []domain.DupeWithProduct, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Product), args.Get(1).([]domain.DupeWithProduct), args.Error(2)
}

type MockDB struct {
	mock.Mock
}

func (m *MockDB) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDB) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDB) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

type MockOpenAI struct {
	mock.Mock
}

func (m *MockOpenAI) Ping(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockOpenAI) Model() string {
	return "gpt-4o"
}

func jsonRequest(method, url, body string) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func floatPtr(f float64) *float64 {
	return &f
}

func newTestProduct(id, name, brand string, price float64) *domain.Product {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := domain.NewProduct(id, name, brand, domain.CategoryLipstick, []string{"Dimethicone", "Mica"}, now)
	if price > 0 {
		p.Price = &domain.Price{Amount: price, Currency: domain.DefaultCurrency, LastUpdated: now}
	}
	p.URL = "https://example.com/" + id
	return p
}
