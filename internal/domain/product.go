package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Category is the cosmetic type of a product
type Category string

const (
	CategoryLipstick    Category = "lipstick"
	CategoryFoundation  Category = "foundation"
	CategoryMascara     Category = "mascara"
	CategoryEyeshadow   Category = "eyeshadow"
	CategoryBlush       Category = "blush"
	CategoryConcealer   Category = "concealer"
	CategoryPowder      Category = "powder"
	CategoryBronzer     Category = "bronzer"
	CategoryHighlighter Category = "highlighter"
	CategoryEyeliner    Category = "eyeliner"
	CategoryLipGloss    Category = "lip gloss"
	CategoryLipOil      Category = "lip oil"
	CategoryMoisturizer Category = "moisturizer"
	CategorySerum       Category = "serum"
	CategorySunscreen   Category = "sunscreen"
	CategoryCleanser    Category = "cleanser"
	CategoryToner       Category = "toner"
	CategoryFaceMask    Category = "face mask"
	CategoryEyeCream    Category = "eye cream"
	CategoryPrimer      Category = "primer"
	CategoryMakeup      Category = "makeup"
	CategorySkincare    Category = "skincare"
	CategoryHaircare    Category = "haircare"
	CategoryUnknown     Category = "unknown"
)

// ProductTypes lists the specific product types in keyword-match order.
var ProductTypes = []Category{
	CategoryLipstick, CategoryFoundation, CategoryMascara, CategoryEyeshadow, CategoryBlush,
	CategoryConcealer, CategoryPowder, CategoryBronzer, CategoryHighlighter, CategoryEyeliner,
	CategoryLipGloss, CategoryLipOil, CategoryMoisturizer, CategorySerum, CategorySunscreen,
	CategoryCleanser, CategoryToner, CategoryFaceMask, CategoryEyeCream, CategoryPrimer,
}

// Finish is the surface finish of a color product
type Finish string

const (
	FinishNone     Finish = ""
	FinishMatte    Finish = "matte"
	FinishSatin    Finish = "satin"
	FinishGlossy   Finish = "glossy"
	FinishCream    Finish = "cream"
	FinishMetallic Finish = "metallic"
)

// FinishKeywords maps description words to a finish.
var FinishKeywords = map[Finish][]string{
	FinishMatte:    {"matte", "velvet", "suede", "flat", "powdery"},
	FinishSatin:    {"satin", "semi-matte", "demi-matte", "natural", "soft"},
	FinishGlossy:   {"glossy", "shiny", "gloss", "wet", "dewy", "shine"},
	FinishCream:    {"cream", "creamy", "moisturizing", "hydrating", "balm"},
	FinishMetallic: {"metallic", "chrome", "foil", "metal", "shimmer"},
}

const DefaultCurrency = "USD"

var colorHexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Price is the stored price of a product
type Price struct {
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// RetailerAvailability records where a product can be bought
type RetailerAvailability struct {
	Retailer    string    `json:"retailer"`
	URL         string    `json:"url"`
	InStock     bool      `json:"inStock"`
	Price       *float64  `json:"price,omitempty"`
	Currency    string    `json:"currency"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Product represents a cosmetic product
type Product struct {
	ID           string
	Name         string
	Brand        string
	Category     Category
	Description  string
	Price        *Price
	ImageURL     string
	Ingredients  []string
	Color        string
	ColorHex     string
	Finish       Finish
	Rating       *float64
	Availability []RetailerAvailability
	SKU          string
	URL          string
	Retailer     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewProduct creates a new Product instance
func NewProduct(
	id, name, brand string,
	category Category,
	ingredients []string,
	createdAt time.Time,
) *Product {
	if ingredients == nil {
		ingredients = []string{}
	}
	return &Product{
		ID:          id,
		Name:        name,
		Brand:       brand,
		Category:    category,
		Ingredients: ingredients,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// ValidateProduct validates a Product instance
func ValidateProduct(p *Product) error {
	if p == nil {
		return fmt.Errorf("product cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("product ID is required")
	}

	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product Name is required")
	}

	if strings.TrimSpace(p.Brand) == "" {
		return fmt.Errorf("product Brand is required")
	}

	if !IsValidCategory(p.Category) {
		return fmt.Errorf("product Category is invalid: %s", p.Category)
	}

	if p.Price != nil && p.Price.Amount < 0 {
		return fmt.Errorf("product Price must not be negative")
	}

	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return fmt.Errorf("product Rating must be between 0 and 5")
	}

	if p.ColorHex != "" && !colorHexPattern.MatchString(p.ColorHex) {
		return fmt.Errorf("product ColorHex is invalid: %s", p.ColorHex)
	}

	if !isValidFinish(p.Finish) {
		return fmt.Errorf("product Finish is invalid: %s", p.Finish)
	}

	return nil
}

// IsValidCategory checks if a Category is one of the known values
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryMakeup, CategorySkincare, CategoryHaircare, CategoryUnknown:
		return true
	}
	for _, t := range ProductTypes {
		if c == t {
			return true
		}
	}
	return false
}

// NormalizeCategory lowercases a free-form category and maps anything
// unrecognised to CategoryUnknown.
func NormalizeCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" || !IsValidCategory(c) {
		return CategoryUnknown
	}
	return c
}

func isValidFinish(f Finish) bool {
	switch f {
	case FinishNone, FinishMatte, FinishSatin, FinishGlossy, FinishCream, FinishMetallic:
		return true
	}
	return false
}

// DetectFinish returns the first finish whose keywords appear in text.
func DetectFinish(text string) Finish {
	lower := strings.ToLower(text)
	for _, f := range []Finish{FinishMatte, FinishSatin, FinishGlossy, FinishCream, FinishMetallic} {
		for _, kw := range FinishKeywords[f] {
			if strings.Contains(lower, kw) {
				return f
			}
		}
	}
	return FinishNone
}

// HasIngredients reports whether the product carries a non-empty ingredient list
func HasIngredients(p *Product) bool {
	return p != nil && len(p.Ingredients) > 0
}

// PriceAmount returns the stored amount or 0 when no price is known
func PriceAmount(p *Product) float64 {
	if p == nil || p.Price == nil {
		return 0
	}
	return p.Price.Amount
}

// FormatPrice renders a price for display.
func FormatPrice(price *Price) string {
	if price == nil || price.Amount <= 0 {
		return "Price not available"
	}
	return fmt.Sprintf("$%.2f", price.Amount)
}
