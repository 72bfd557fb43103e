package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() *Product {
	return NewProduct("p1", "Pillow Talk Matte Revolution", "Charlotte Tilbury", CategoryLipstick, nil, time.Now())
}

func TestNewProduct(t *testing.T) {
	now := time.Now()
	p := NewProduct("p1", "Double Wear", "Estée Lauder", CategoryFoundation, []string{"Water", "Water"}, now)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Double Wear", p.Name)
	assert.Equal(t, "Estée Lauder", p.Brand)
	assert.Equal(t, CategoryFoundation, p.Category)
	assert.Equal(t, []string{"Water", "Water"}, p.Ingredients)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.UpdatedAt)
	assert.Nil(t, p.Price)
}

func TestNewProduct_NilIngredients(t *testing.T) {
	p := NewProduct("p1", "n", "b", CategoryUnknown, nil, time.Now())
	require.NotNil(t, p.Ingredients)
	assert.Empty(t, p.Ingredients)
	assert.False(t, HasIngredients(p))
}

func TestValidateProduct(t *testing.T) {
	negative := -1.0
	tooHigh := 5.5

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr string
	}{
		{"valid", func(p *Product) {}, ""},
		{"missing id", func(p *Product) { p.ID = "" }, "ID is required"},
		{"missing name", func(p *Product) { p.Name = "  " }, "Name is required"},
		{"missing brand", func(p *Product) { p.Brand = "" }, "Brand is required"},
		{"bad category", func(p *Product) { p.Category = "perfume" }, "Category is invalid"},
		{"negative price", func(p *Product) { p.Price = &Price{Amount: negative} }, "Price must not be negative"},
		{"rating out of range", func(p *Product) { p.Rating = &tooHigh }, "Rating must be between"},
		{"bad hex", func(p *Product) { p.ColorHex = "#12345" }, "ColorHex is invalid"},
		{"valid hex", func(p *Product) { p.ColorHex = "#B5727A" }, ""},
		{"bad finish", func(p *Product) { p.Finish = "sparkly" }, "Finish is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(p)
			err := ValidateProduct(p)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateProduct_Nil(t *testing.T) {
	assert.Error(t, ValidateProduct(nil))
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"Lipstick", CategoryLipstick},
		{" lip gloss ", CategoryLipGloss},
		{"makeup", CategoryMakeup},
		{"perfume", CategoryUnknown},
		{"", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategory(tt.in))
		})
	}
}

func TestDetectFinish(t *testing.T) {
	assert.Equal(t, FinishMatte, DetectFinish("Velvet Matte Lipstick"))
	assert.Equal(t, FinishGlossy, DetectFinish("High shine lip gloss"))
	assert.Equal(t, FinishMetallic, DetectFinish("Chrome eyeshadow"))
	assert.Equal(t, FinishNone, DetectFinish("Lipstick"))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$12.99", FormatPrice(&Price{Amount: 12.99}))
	assert.Equal(t, "$7.00", FormatPrice(&Price{Amount: 7}))
	assert.Equal(t, "Price not available", FormatPrice(nil))
	assert.Equal(t, "Price not available", FormatPrice(&Price{Amount: 0}))
}

func TestPriceAmount(t *testing.T) {
	assert.Equal(t, 0.0, PriceAmount(nil))
	assert.Equal(t, 0.0, PriceAmount(validProduct()))

	p := validProduct()
	p.Price = &Price{Amount: 34, Currency: DefaultCurrency}
	assert.Equal(t, 34.0, PriceAmount(p))
}
