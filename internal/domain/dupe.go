package domain

import (
	"fmt"
	"time"
)

// DupeSource records how a dupe relationship was established
type DupeSource string

const (
	DupeSourceAlgorithm DupeSource = "algorithm"
	DupeSourceCommunity DupeSource = "community"
	DupeSourceManual    DupeSource = "manual"
)

const (
	MinScore = 0
	MaxScore = 100
)

// DupeSourceDetails describes where a community dupe was found
type DupeSourceDetails struct {
	Platform string `json:"platform,omitempty"`
	URL      string `json:"url,omitempty"`
	Mentions int    `json:"mentions"`
}

// DupeVerification records a manual review of a relationship
type DupeVerification struct {
	Verified   bool      `json:"verified"`
	VerifiedBy string    `json:"verifiedBy,omitempty"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

// DupeReview is a user or expert opinion on a dupe
type DupeReview struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
	Date   string `json:"date,omitempty"`
}

// Dupe is a directed relationship from an original product to a cheaper alternative
type Dupe struct {
	ID                string
	OriginalProductID string
	DupeProductID     string
	SimilarityScore   int
	IngredientMatch   int
	ColorMatch        int
	FinishMatch       int
	PriceDifference   float64
	Source            DupeSource
	CommunityRating   *float64
	SourceDetails     *DupeSourceDetails
	Verification      *DupeVerification
	Reviews           []DupeReview
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DupeWithProduct pairs a relationship with the hydrated dupe product
type DupeWithProduct struct {
	Dupe    *Dupe
	Product *Product
}

// NewDupe creates a new Dupe instance with clamped scores
func NewDupe(
	id, originalID, dupeID string,
	similarity, ingredientMatch int,
	priceDifference float64,
	source DupeSource,
	createdAt time.Time,
) *Dupe {
	return &Dupe{
		ID:                id,
		OriginalProductID: originalID,
		DupeProductID:     dupeID,
		SimilarityScore:   ClampScore(similarity),
		IngredientMatch:   ClampScore(ingredientMatch),
		PriceDifference:   priceDifference,
		Source:            source,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
}

// ValidateDupe validates a Dupe instance
func ValidateDupe(d *Dupe) error {
	if d == nil {
		return fmt.Errorf("dupe cannot be nil")
	}

	if d.OriginalProductID == "" {
		return fmt.Errorf("dupe OriginalProductID is required")
	}

	if d.DupeProductID == "" {
		return fmt.Errorf("dupe DupeProductID is required")
	}

	if d.OriginalProductID == d.DupeProductID {
		return ErrSelfDupe
	}

	for name, score := range map[string]int{
		"SimilarityScore": d.SimilarityScore,
		"IngredientMatch": d.IngredientMatch,
		"ColorMatch":      d.ColorMatch,
		"FinishMatch":     d.FinishMatch,
	} {
		if score < MinScore || score > MaxScore {
			return fmt.Errorf("dupe %s must be between 0 and 100, got %d", name, score)
		}
	}

	if !isValidDupeSource(d.Source) {
		return fmt.Errorf("dupe Source is invalid: %s", d.Source)
	}

	if d.CommunityRating != nil && (*d.CommunityRating < 0 || *d.CommunityRating > 5) {
		return fmt.Errorf("dupe CommunityRating must be between 0 and 5")
	}

	for _, r := range d.Reviews {
		if r.Rating < 1 || r.Rating > 5 {
			return fmt.Errorf("dupe review Rating must be between 1 and 5")
		}
	}

	return nil
}

func isValidDupeSource(s DupeSource) bool {
	switch s {
	case DupeSourceAlgorithm, DupeSourceCommunity, DupeSourceManual:
		return true
	}
	return false
}

// ClampScore bounds a score to [0,100]
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// PriceDifference is original minus dupe, or 0 when either price is unknown
func PriceDifference(original, dupe *Product) float64 {
	if original == nil || dupe == nil || original.Price == nil || dupe.Price == nil {
		return 0
	}
	if original.Price.Amount == 0 || dupe.Price.Amount == 0 {
		return 0
	}
	return original.Price.Amount - dupe.Price.Amount
}
