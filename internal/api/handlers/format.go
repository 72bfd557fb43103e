package handlers

import (
	"net/http"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/api"
	"github.com/cloo-solutions/dupefinder/internal/domain"
	"go.uber.org/zap"
)

// PlaceholderImageURL is shown for products without an image
const PlaceholderImageURL = "https://via.placeholder.com/150"

func formatAmount(amount *float64) string {
	if amount == nil {
		return domain.FormatPrice(nil)
	}
	return domain.FormatPrice(&domain.Price{Amount: *amount})
}

func imageOrPlaceholder(url string) string {
	if url == "" {
		return PlaceholderImageURL
	}
	return url
}

// writeError logs server-side failures with their cause before writing the
// client-safe error response.
func writeError(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	if api.DomainErrorToHTTP(err) >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	}
	api.HandleError(w, err)
}

type ProductResponse struct {
	ID           string                        `json:"id"`
	Name         string                        `json:"name"`
	Brand        string                        `json:"brand"`
	Category     string                        `json:"category"`
	Description  string                        `json:"description,omitempty"`
	Price        *domain.Price                 `json:"price,omitempty"`
	DisplayPrice string                        `json:"displayPrice"`
	ImageURL     string                        `json:"imageUrl"`
	Ingredients  []string                      `json:"ingredients"`
	Color        string                        `json:"color,omitempty"`
	ColorHex     string                        `json:"colorHex,omitempty"`
	Finish       string                        `json:"finish,omitempty"`
	Rating       *float64                      `json:"rating,omitempty"`
	Availability []domain.RetailerAvailability `json:"availability"`
	SKU          string                        `json:"sku,omitempty"`
	URL          string                        `json:"url,omitempty"`
	Retailer     string                        `json:"retailer,omitempty"`
	CreatedAt    string                        `json:"createdAt"`
	UpdatedAt    string                        `json:"updatedAt"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	ingredients := p.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	availability := p.Availability
	if availability == nil {
		availability = []domain.RetailerAvailability{}
	}
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     string(p.Category),
		Description:  p.Description,
		Price:        p.Price,
		DisplayPrice: domain.FormatPrice(p.Price),
		ImageURL:     imageOrPlaceholder(p.ImageURL),
		Ingredients:  ingredients,
		Color:        p.Color,
		ColorHex:     p.ColorHex,
		Finish:       string(p.Finish),
		Rating:       p.Rating,
		Availability: availability,
		SKU:          p.SKU,
		URL:          p.URL,
		Retailer:     p.Retailer,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}
