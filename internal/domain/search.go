package domain

import (
	"fmt"
	"strings"
	"time"
)

// QueryType describes what the user submitted
type QueryType string

const (
	QueryTypeText  QueryType = "text"
	QueryTypeURL   QueryType = "url"
	QueryTypeImage QueryType = "image"
)

// SearchResult is one ranked entry of a search
type SearchResult struct {
	ProductID string `json:"productId"`
	Position  int    `json:"position"`
}

// Search is a write-once analytics record of a query
type Search struct {
	ID               string
	Query            string
	QueryType        QueryType
	MatchedProductID string
	Results          []SearchResult
	Success          bool
	ProcessingTimeMs int64
	CreatedAt        time.Time
}

// NewSearch starts a search record that is assumed successful
func NewSearch(id, query string, queryType QueryType, createdAt time.Time) *Search {
	return &Search{
		ID:        id,
		Query:     query,
		QueryType: queryType,
		Results:   []SearchResult{},
		Success:   true,
		CreatedAt: createdAt,
	}
}

// ValidateSearch validates a Search instance
func ValidateSearch(s *Search) error {
	if s == nil {
		return fmt.Errorf("search cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("search ID is required")
	}

	if strings.TrimSpace(s.Query) == "" {
		return fmt.Errorf("search Query is required")
	}

	if !IsValidQueryType(s.QueryType) {
		return fmt.Errorf("search QueryType is invalid: %s", s.QueryType)
	}

	for i, r := range s.Results {
		if r.Position != i+1 {
			return fmt.Errorf("search result %d has position %d", i, r.Position)
		}
	}

	return nil
}

// IsValidQueryType checks the query type enum
func IsValidQueryType(t QueryType) bool {
	switch t {
	case QueryTypeText, QueryTypeURL, QueryTypeImage:
		return true
	}
	return false
}

// ParseQueryType defaults an empty type to text
func ParseQueryType(raw string) (QueryType, error) {
	if raw == "" {
		return QueryTypeText, nil
	}
	t := QueryType(strings.ToLower(raw))
	if !IsValidQueryType(t) {
		return "", ErrInvalidQueryType
	}
	return t, nil
}

// RankResults assigns 1-based positions in the given order
func RankResults(productIDs []string) []SearchResult {
	results := make([]SearchResult, 0, len(productIDs))
	for i, id := range productIDs {
		results = append(results, SearchResult{ProductID: id, Position: i + 1})
	}
	return results
}
