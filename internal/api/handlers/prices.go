package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/api"
	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"go.uber.org/zap"
)

type PriceRefresher interface {
	RefreshProduct(ctx context.Context, productID string) (*service.PriceReport, error)
}

type PricesHandler struct {
	svc    PriceRefresher
	logger *zap.Logger
}

func NewPricesHandler(svc PriceRefresher, logger *zap.Logger) *PricesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricesHandler{svc: svc, logger: logger.Named("prices_handler")}
}

type PriceProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

type PriceQuote struct {
	Retailer    string `json:"retailer"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	URL         string `json:"url"`
	InStock     bool   `json:"inStock"`
	LastUpdated string `json:"lastUpdated"`
}

type PricesResponse struct {
	Success     bool         `json:"success"`
	Product     PriceProduct `json:"product"`
	Prices      []PriceQuote `json:"prices"`
	LowestPrice *PriceQuote  `json:"lowestPrice"`
}

// Get fetches current retailer prices for a stored product and lowers the
// stored price when a cheaper quote turns up.
func (h *PricesHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("productId")
	if productID == "" {
		api.Error(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	report, err := h.svc.RefreshProduct(r.Context(), productID)
	if err != nil {
		writeError(w, h.logger, "price lookup failed", err)
		return
	}

	resp := PricesResponse{
		Success: true,
		Product: PriceProduct{
			ID:    report.Product.ID,
			Name:  report.Product.Name,
			Brand: report.Product.Brand,
		},
		Prices: make([]PriceQuote, 0, len(report.Prices)),
	}
	for _, p := range report.Prices {
		resp.Prices = append(resp.Prices, toPriceQuote(p))
	}
	if report.Lowest != nil {
		lowest := toPriceQuote(*report.Lowest)
		resp.LowestPrice = &lowest
	}

	api.JSON(w, http.StatusOK, resp)
}

func toPriceQuote(p domain.RetailerPrice) PriceQuote {
	currency := p.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return PriceQuote{
		Retailer:    p.Retailer,
		Price:       formatAmount(p.Price),
		Currency:    currency,
		URL:         p.URL,
		InStock:     p.InStock,
		LastUpdated: p.LastUpdated.UTC().Format(time.RFC3339),
	}
}
