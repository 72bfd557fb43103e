package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/dupefinder/internal/api"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"go.uber.org/zap"
)

type ChatService interface {
	Respond(ctx context.Context, input service.ChatInput) (*service.ChatOutput, error)
}

type DupesHandler struct {
	svc    ChatService
	logger *zap.Logger
}

func NewDupesHandler(svc ChatService, logger *zap.Logger) *DupesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DupesHandler{svc: svc, logger: logger.Named("dupes_handler")}
}

type ChatMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type DupesRequest struct {
	Query          string               `json:"query" validate:"required,max=2000"`
	Type           string               `json:"type" validate:"omitempty,oneof=text url image"`
	MessageHistory []ChatMessageRequest `json:"messageHistory" validate:"max=50"`
}

type DupeProduct struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Brand           string `json:"brand"`
	Price           string `json:"price"`
	Image           string `json:"image"`
	Link            string `json:"link"`
	SimilarityScore int    `json:"similarityScore"`
	IngredientMatch int    `json:"ingredientMatch"`
	ColorMatch      int    `json:"colorMatch"`
	FinishMatch     int    `json:"finishMatch"`
	Source          string `json:"source"`
}

type NamedProduct struct {
	Name string `json:"name"`
}

type AnalysisInsights struct {
	OriginalProduct *NamedProduct `json:"originalProduct,omitempty"`
	Summary         string        `json:"summary"`
	Sources         string        `json:"sources,omitempty"`
}

type ComparedTo struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Price string `json:"price,omitempty"`
}

type DupesResponse struct {
	Message          string           `json:"message"`
	Products         []DupeProduct    `json:"products"`
	AnalysisInsights AnalysisInsights `json:"analysisInsights"`
	ComparedTo       *ComparedTo      `json:"comparedTo,omitempty"`
}

// Find answers a conversational dupe request. Search failures come back as
// an apologetic 200 reply from the service; only bad input is an error.
func (h *DupesHandler) Find(w http.ResponseWriter, r *http.Request) {
	var req DupesRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, err)
		return
	}

	history := make([]service.ChatMessage, 0, len(req.MessageHistory))
	for _, m := range req.MessageHistory {
		history = append(history, service.ChatMessage{Role: m.Role, Content: m.Content})
	}

	out, err := h.svc.Respond(r.Context(), service.ChatInput{
		Query:          req.Query,
		Type:           req.Type,
		MessageHistory: history,
	})
	if err != nil {
		writeError(w, h.logger, "dupe chat failed", err)
		return
	}

	api.JSON(w, http.StatusOK, toDupesResponse(out))
}

func toDupesResponse(out *service.ChatOutput) DupesResponse {
	resp := DupesResponse{
		Message:  out.Message,
		Products: make([]DupeProduct, 0, len(out.Products)),
		AnalysisInsights: AnalysisInsights{
			Summary: out.AnalysisInsights.Summary,
			Sources: out.AnalysisInsights.Sources,
		},
	}
	if out.AnalysisInsights.OriginalProduct != "" {
		resp.AnalysisInsights.OriginalProduct = &NamedProduct{Name: out.AnalysisInsights.OriginalProduct}
	}
	if out.ComparedTo != nil {
		resp.ComparedTo = &ComparedTo{
			Name:  out.ComparedTo.Name,
			Brand: out.ComparedTo.Brand,
			Price: out.ComparedTo.Price,
		}
	}
	for _, p := range out.Products {
		resp.Products = append(resp.Products, DupeProduct{
			ID:              p.ID,
			Name:            p.Name,
			Brand:           p.Brand,
			Price:           formatAmount(p.Price),
			Image:           imageOrPlaceholder(p.ImageURL),
			Link:            p.Link,
			SimilarityScore: p.SimilarityScore,
			IngredientMatch: p.IngredientMatch,
			ColorMatch:      p.ColorMatch,
			FinishMatch:     p.FinishMatch,
			Source:          p.Source,
		})
	}
	return resp
}
