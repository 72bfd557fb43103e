package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDupe_ClampsScores(t *testing.T) {
	d := NewDupe("d1", "orig", "dupe", 140, -3, 12.5, DupeSourceAlgorithm, time.Now())

	assert.Equal(t, 100, d.SimilarityScore)
	assert.Equal(t, 0, d.IngredientMatch)
	assert.Equal(t, 12.5, d.PriceDifference)
	assert.Equal(t, DupeSourceAlgorithm, d.Source)
}

func TestValidateDupe(t *testing.T) {
	rating := 6.0

	tests := []struct {
		name    string
		mutate  func(d *Dupe)
		wantErr string
	}{
		{"valid", func(d *Dupe) {}, ""},
		{"missing original", func(d *Dupe) { d.OriginalProductID = "" }, "OriginalProductID is required"},
		{"missing dupe", func(d *Dupe) { d.DupeProductID = "" }, "DupeProductID is required"},
		{"score too high", func(d *Dupe) { d.ColorMatch = 101 }, "ColorMatch must be between"},
		{"negative score", func(d *Dupe) { d.FinishMatch = -1 }, "FinishMatch must be between"},
		{"bad source", func(d *Dupe) { d.Source = "reddit" }, "Source is invalid"},
		{"bad rating", func(d *Dupe) { d.CommunityRating = &rating }, "CommunityRating"},
		{"bad review", func(d *Dupe) { d.Reviews = []DupeReview{{Text: "meh", Rating: 0}} }, "review Rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDupe("d1", "orig", "dupe", 90, 80, 10, DupeSourceManual, time.Now())
			tt.mutate(d)
			err := ValidateDupe(d)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDupe_SelfReference(t *testing.T) {
	d := NewDupe("d1", "same", "same", 90, 80, 0, DupeSourceAlgorithm, time.Now())
	err := ValidateDupe(d)
	assert.True(t, errors.Is(err, ErrSelfDupe))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-10))
	assert.Equal(t, 55, ClampScore(55))
	assert.Equal(t, 100, ClampScore(250))
}

func TestPriceDifference(t *testing.T) {
	original := validProduct()
	original.Price = &Price{Amount: 34}
	dupe := validProduct()
	dupe.Price = &Price{Amount: 11.99}

	assert.InDelta(t, 22.01, PriceDifference(original, dupe), 0.0001)
	assert.InDelta(t, -22.01, PriceDifference(dupe, original), 0.0001)

	dupe.Price = nil
	assert.Equal(t, 0.0, PriceDifference(original, dupe))
	assert.Equal(t, 0.0, PriceDifference(nil, original))
}
