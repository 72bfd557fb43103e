package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/dupefinder/internal/api"
	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"go.uber.org/zap"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
}

type SearchHandler struct {
	svc    SearchService
	logger *zap.Logger
}

func NewSearchHandler(svc SearchService, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{svc: svc, logger: logger.Named("search_handler")}
}

type SearchRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
	Type  string `json:"type" validate:"omitempty,oneof=text url image"`
}

type SearchProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Price    string `json:"price"`
	ImageURL string `json:"imageUrl"`
}

type SearchDupe struct {
	SearchProduct
	SimilarityScore int     `json:"similarityScore"`
	IngredientMatch int     `json:"ingredientMatch"`
	PriceDifference float64 `json:"priceDifference"`
	URL             string  `json:"url"`
}

type SearchResponse struct {
	Success         bool           `json:"success"`
	SearchID        string         `json:"searchId,omitempty"`
	OriginalProduct *SearchProduct `json:"originalProduct"`
	Dupes           []SearchDupe   `json:"dupes"`
	ProcessingTime  int64          `json:"processingTime"`
}

// Search identifies the product behind a free-text or URL query and returns
// its ranked dupes.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, err)
		return
	}

	out, err := h.svc.Search(r.Context(), service.SearchInput{Query: req.Query, Type: req.Type})
	if err != nil {
		writeError(w, h.logger, "search failed", err)
		return
	}

	api.JSON(w, http.StatusOK, toSearchResponse(out))
}

func toSearchProduct(p *domain.Product) SearchProduct {
	return SearchProduct{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Price:    domain.FormatPrice(p.Price),
		ImageURL: imageOrPlaceholder(p.ImageURL),
	}
}

func toSearchResponse(out *service.SearchOutput) SearchResponse {
	resp := SearchResponse{
		Success:        true,
		SearchID:       out.SearchID,
		Dupes:          make([]SearchDupe, 0, len(out.Dupes)),
		ProcessingTime: out.ProcessingTimeMs,
	}
	if out.OriginalProduct != nil {
		original := toSearchProduct(out.OriginalProduct)
		resp.OriginalProduct = &original
	}
	for _, d := range out.Dupes {
		resp.Dupes = append(resp.Dupes, SearchDupe{
			SearchProduct:   toSearchProduct(d.Product),
			SimilarityScore: d.Dupe.SimilarityScore,
			IngredientMatch: d.Dupe.IngredientMatch,
			PriceDifference: d.Dupe.PriceDifference,
			URL:             d.Product.URL,
		})
	}
	return resp
}
