package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/dupefinder/internal/api"
	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"go.uber.org/zap"
)

type CompareService interface {
	Compare(ctx context.Context, originalID, dupeID string) (*service.ComparisonResult, error)
}

type CompareHandler struct {
	svc    CompareService
	logger *zap.Logger
}

func NewCompareHandler(svc CompareService, logger *zap.Logger) *CompareHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompareHandler{svc: svc, logger: logger.Named("compare_handler")}
}

type CompareRequest struct {
	OriginalProductID string `json:"originalProductId" validate:"required"`
	DupeProductID     string `json:"dupeProductId" validate:"required"`
}

type ComparedProduct struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Ingredients []string `json:"ingredients"`
}

type ComparisonResponse struct {
	SimilarityScore int      `json:"similarityScore"`
	KeyMatches      []string `json:"keyMatches"`
	KeyDifferences  []string `json:"keyDifferences"`
	OverallAnalysis string   `json:"overallAnalysis"`
	PotentialIssues []string `json:"potentialIssues"`
	PriceDifference float64  `json:"priceDifference"`

	// Extra carries additional comparison fields through unchanged. Named
	// fields win on a key clash.
	Extra map[string]json.RawMessage `json:"-"`
}

func (c ComparisonResponse) MarshalJSON() ([]byte, error) {
	type plain ComparisonResponse
	known, err := json.Marshal(plain(c))
	if err != nil || len(c.Extra) == 0 {
		return known, err
	}
	merged := make(map[string]json.RawMessage, len(c.Extra)+6)
	for k, v := range c.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

type CompareResponse struct {
	Success            bool               `json:"success"`
	OriginalProduct    ComparedProduct    `json:"originalProduct"`
	DupeProduct        ComparedProduct    `json:"dupeProduct"`
	Comparison         ComparisonResponse `json:"comparison"`
	DupeRelationshipID string             `json:"dupeRelationshipId"`
}

// Compare runs an ingredient comparison between two stored products and
// records the relationship.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, err)
		return
	}

	result, err := h.svc.Compare(r.Context(), req.OriginalProductID, req.DupeProductID)
	if err != nil {
		writeError(w, h.logger, "ingredient comparison failed", err)
		return
	}

	c := result.Comparison
	api.JSON(w, http.StatusOK, CompareResponse{
		Success:         true,
		OriginalProduct: toComparedProduct(result.Original),
		DupeProduct:     toComparedProduct(result.Dupe),
		Comparison: ComparisonResponse{
			SimilarityScore: c.SimilarityScore,
			KeyMatches:      nonNilStrings(c.KeyMatches),
			KeyDifferences:  nonNilStrings(c.KeyDifferences),
			OverallAnalysis: c.OverallAnalysis,
			PotentialIssues: nonNilStrings(c.PotentialIssues),
			PriceDifference: result.PriceDifference,
			Extra:           c.Extra,
		},
		DupeRelationshipID: result.RelationshipID,
	})
}

func toComparedProduct(p *domain.Product) ComparedProduct {
	return ComparedProduct{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Ingredients: nonNilStrings(p.Ingredients),
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
