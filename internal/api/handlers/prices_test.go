package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPricesHandler_Get(t *testing.T) {
	mockSvc := new(MockPriceRefresher)
	handler := NewPricesHandler(mockSvc, nil)

	updated := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	prices := []domain.RetailerPrice{
		{Retailer: "Ulta", Price: floatPtr(29.99), URL: "https://ulta.test/p", InStock: true, LastUpdated: updated},
		{Retailer: "Sephora", Price: floatPtr(34), Currency: "USD", URL: "https://sephora.test/p", LastUpdated: updated},
		{Retailer: "Target", URL: "https://target.test/p", LastUpdated: updated},
	}
	mockSvc.On("RefreshProduct", mock.Anything, "p-1").Return(&service.PriceReport{
		Product: newTestProduct("p-1", "Pillow Talk", "Charlotte Tilbury", 29.99),
		Prices:  prices,
		Lowest:  &prices[0],
	}, nil)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/prices?productId=p-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp PricesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Charlotte Tilbury", resp.Product.Brand)
	require.Len(t, resp.Prices, 3)
	assert.Equal(t, "$29.99", resp.Prices[0].Price)
	assert.Equal(t, "USD", resp.Prices[0].Currency)
	assert.Equal(t, "2026-03-02T09:30:00Z", resp.Prices[0].LastUpdated)
	assert.Equal(t, "Price not available", resp.Prices[2].Price)
	require.NotNil(t, resp.LowestPrice)
	assert.Equal(t, "Ulta", resp.LowestPrice.Retailer)
}

func TestPricesHandler_NoQuotes(t *testing.T) {
	mockSvc := new(MockPriceRefresher)
	handler := NewPricesHandler(mockSvc, nil)

	mockSvc.On("RefreshProduct", mock.Anything, "p-1").Return(&service.PriceReport{
		Product: newTestProduct("p-1", "Pillow Talk", "Charlotte Tilbury", 0),
	}, nil)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/prices?productId=p-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []interface{}{}, resp["prices"])
	assert.Nil(t, resp["lowestPrice"])
}

func TestPricesHandler_MissingProductID(t *testing.T) {
	mockSvc := new(MockPriceRefresher)
	handler := NewPricesHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/prices", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Product ID is required"}`, w.Body.String())
}

func TestPricesHandler_NotFound(t *testing.T) {
	mockSvc := new(MockPriceRefresher)
	handler := NewPricesHandler(mockSvc, nil)

	mockSvc.On("RefreshProduct", mock.Anything, "nope").Return(nil, domain.ErrProductNotFound)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/prices?productId=nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"product not found","code":"NOT_FOUND"}`, w.Body.String())
}
