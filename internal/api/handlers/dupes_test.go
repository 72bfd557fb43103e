package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDupesHandler_Find(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewDupesHandler(mockSvc, nil)

	mockSvc.On("Respond", mock.Anything, mock.MatchedBy(func(in service.ChatInput) bool {
		return in.Query == "cheaper?" && len(in.MessageHistory) == 2 &&
			in.MessageHistory[1].Role == "assistant"
	})).Return(&service.ChatOutput{
		Message: "I found 1 dupes for Dior lip oil.",
		Products: []service.ChatProduct{{
			ID:              "p-1",
			Name:            "Lip Oil",
			Brand:           "NYX",
			Price:           floatPtr(9),
			SimilarityScore: 91,
			ColorMatch:      80,
			Source:          service.ChatSourceDatabase,
		}},
		AnalysisInsights: service.AnalysisInsights{OriginalProduct: "Dior lip oil", Summary: "Found 1 alternatives"},
		ComparedTo:       &service.ComparedTo{Name: "Lip Glow Oil", Brand: "Dior", Price: "$40.00"},
	}, nil)

	body := `{"query":"cheaper?","messageHistory":[{"role":"user","content":"dior lip oil"},{"role":"assistant","content":"Here are dupes for Dior lip oil."}]}`
	w := httptest.NewRecorder()
	handler.Find(w, jsonRequest(http.MethodPost, "/dupes", body))

	require.Equal(t, http.StatusOK, w.Code)
	var resp DupesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "$9.00", resp.Products[0].Price)
	assert.Equal(t, PlaceholderImageURL, resp.Products[0].Image)
	assert.Equal(t, "database", resp.Products[0].Source)
	require.NotNil(t, resp.AnalysisInsights.OriginalProduct)
	assert.Equal(t, "Dior lip oil", resp.AnalysisInsights.OriginalProduct.Name)
	require.NotNil(t, resp.ComparedTo)
	assert.Equal(t, "$40.00", resp.ComparedTo.Price)
	mockSvc.AssertExpectations(t)
}

func TestDupesHandler_NothingFound(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewDupesHandler(mockSvc, nil)

	mockSvc.On("Respond", mock.Anything, mock.Anything).Return(&service.ChatOutput{
		Message:          "I couldn't find any dupes",
		Products:         []service.ChatProduct{},
		AnalysisInsights: service.AnalysisInsights{Summary: "No results"},
	}, nil)

	w := httptest.NewRecorder()
	handler.Find(w, jsonRequest(http.MethodPost, "/dupes", `{"query":"zzz"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []interface{}{}, resp["products"])
	assert.NotContains(t, resp, "comparedTo")
	insights := resp["analysisInsights"].(map[string]interface{})
	assert.NotContains(t, insights, "originalProduct")
}

func TestDupesHandler_MissingQuery(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewDupesHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	handler.Find(w, jsonRequest(http.MethodPost, "/dupes", `{"messageHistory":[]}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "query is required")
	mockSvc.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything)
}

func TestDupesHandler_ServiceValidationError(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewDupesHandler(mockSvc, nil)

	mockSvc.On("Respond", mock.Anything, mock.Anything).
		Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "query is required"))

	w := httptest.NewRecorder()
	handler.Find(w, jsonRequest(http.MethodPost, "/dupes", `{"query":"   "}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
