package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestLowestPriced(t *testing.T) {
	assert.Nil(t, LowestPriced(nil))
	assert.Nil(t, LowestPriced([]RetailerPrice{{Retailer: "Sephora"}}))

	lowest := LowestPriced([]RetailerPrice{
		{Retailer: "Amazon", Price: ptr(29.99)},
		{Retailer: "Sephora", Price: ptr(34.99)},
	})
	require.NotNil(t, lowest)
	assert.Equal(t, "Amazon", lowest.Retailer)
}

func TestShouldReplacePrice(t *testing.T) {
	quote := &RetailerPrice{Price: ptr(29.99)}

	assert.True(t, ShouldReplacePrice(nil, quote))
	assert.True(t, ShouldReplacePrice(&Price{Amount: 34}, quote))
	assert.False(t, ShouldReplacePrice(&Price{Amount: 20}, quote))
	assert.False(t, ShouldReplacePrice(&Price{Amount: 29.99}, quote))
	assert.False(t, ShouldReplacePrice(nil, &RetailerPrice{}))
	assert.False(t, ShouldReplacePrice(nil, nil))
}

func TestAvailabilityFromPrices(t *testing.T) {
	out := AvailabilityFromPrices([]RetailerPrice{
		{Retailer: "Ulta", Price: ptr(32.99), URL: "https://ulta.example", InStock: true},
		{Retailer: "Target", Currency: "CAD"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "Ulta", out[0].Retailer)
	assert.Equal(t, DefaultCurrency, out[0].Currency)
	assert.True(t, out[0].InStock)
	assert.Equal(t, "CAD", out[1].Currency)
	assert.Nil(t, out[1].Price)
}
