package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractedProduct is a best-effort guess at the product a query refers to.
// All fields are advisory.
type ExtractedProduct struct {
	ProductName    string   `json:"productName"`
	Brand          string   `json:"brand"`
	Category       string   `json:"category"`
	KeyIngredients []string `json:"keyIngredients,omitempty"`
	PriceRange     string   `json:"priceRange,omitempty"`
	IsMakeup       bool     `json:"isMakeup"`
	IsSkincare     bool     `json:"isSkincare"`
	IsHaircare     bool     `json:"isHaircare"`
	Confidence     float64  `json:"confidence"`
}

// IsEmpty reports whether nothing usable was extracted
func (e *ExtractedProduct) IsEmpty() bool {
	return e == nil || (strings.TrimSpace(e.ProductName) == "" &&
		strings.TrimSpace(e.Brand) == "" &&
		strings.TrimSpace(e.Category) == "")
}

// UnmarshalJSON tolerates a numeric or string price range from the model.
func (e *ExtractedProduct) UnmarshalJSON(data []byte) error {
	type alias ExtractedProduct
	aux := struct {
		*alias
		PriceRange json.RawMessage `json:"priceRange,omitempty"`
		Confidence json.RawMessage `json:"confidence"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.PriceRange = rawToString(aux.PriceRange)
	e.Confidence = rawToFloat(aux.Confidence)
	return nil
}

// QueryAnalysis is the keyword-level reading of a chat query
type QueryAnalysis struct {
	ProductType        string
	Brand              string
	IsNewProductSearch bool
	QueryText          string
}

func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func rawToFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64); err == nil {
			return parsed
		}
	}
	return 0
}
