package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/dupefinder/internal/api"
	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProductService interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, input service.ListProductsInput) (*service.ListProductsOutput, error)
}

type DupeLister interface {
	ListForProduct(ctx context.Context, productID string) (*domain.Product, []domain.DupeWithProduct, error)
}

type ProductHandler struct {
	products ProductService
	dupes    DupeLister
	logger   *zap.Logger
}

func NewProductHandler(products ProductService, dupes DupeLister, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{products: products, dupes: dupes, logger: logger.Named("product_handler")}
}

type ListProductsResponse struct {
	Items   []ProductResponse `json:"items"`
	Cursor  string            `json:"cursor,omitempty"`
	HasMore bool              `json:"has_more"`
}

type StoredDupe struct {
	ID              string          `json:"id"`
	SimilarityScore int             `json:"similarityScore"`
	IngredientMatch int             `json:"ingredientMatch"`
	ColorMatch      int             `json:"colorMatch"`
	FinishMatch     int             `json:"finishMatch"`
	PriceDifference float64         `json:"priceDifference"`
	Source          string          `json:"source"`
	CommunityRating *float64        `json:"communityRating,omitempty"`
	Product         ProductResponse `json:"product"`
}

type ProductDupesResponse struct {
	Product ProductResponse `json:"product"`
	Dupes   []StoredDupe    `json:"dupes"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	out, err := h.products.List(r.Context(), service.ListProductsInput{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Cursor:   q.Get("cursor"),
		Limit:    limit,
	})
	if err != nil {
		writeError(w, h.logger, "list products failed", err)
		return
	}

	items := make([]ProductResponse, 0, len(out.Items))
	for _, p := range out.Items {
		items = append(items, toProductResponse(p))
	}
	api.JSON(w, http.StatusOK, ListProductsResponse{Items: items, Cursor: out.Cursor, HasMore: out.HasMore})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, "get product failed", err)
		return
	}
	api.JSON(w, http.StatusOK, toProductResponse(product))
}

// Dupes returns the stored dupes of a product, best match first.
func (h *ProductHandler) Dupes(w http.ResponseWriter, r *http.Request) {
	product, dupes, err := h.dupes.ListForProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, "list product dupes failed", err)
		return
	}

	resp := ProductDupesResponse{
		Product: toProductResponse(product),
		Dupes:   make([]StoredDupe, 0, len(dupes)),
	}
	for _, d := range dupes {
		resp.Dupes = append(resp.Dupes, StoredDupe{
			ID:              d.Dupe.ID,
			SimilarityScore: d.Dupe.SimilarityScore,
			IngredientMatch: d.Dupe.IngredientMatch,
			ColorMatch:      d.Dupe.ColorMatch,
			FinishMatch:     d.Dupe.FinishMatch,
			PriceDifference: d.Dupe.PriceDifference,
			Source:          string(d.Dupe.Source),
			CommunityRating: d.Dupe.CommunityRating,
			Product:         toProductResponse(d.Product),
		})
	}
	api.JSON(w, http.StatusOK, resp)
}
