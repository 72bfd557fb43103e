package domain

import "time"

// RetailerPrice is a single retailer quote for a product
type RetailerPrice struct {
	Retailer    string    `json:"retailer"`
	Price       *float64  `json:"price"`
	Currency    string    `json:"currency"`
	URL         string    `json:"url"`
	InStock     bool      `json:"inStock"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// LowestPriced returns the cheapest quote carrying a price, or nil.
// The input is expected to be sorted ascending with unpriced entries last.
func LowestPriced(prices []RetailerPrice) *RetailerPrice {
	if len(prices) == 0 || prices[0].Price == nil {
		return nil
	}
	lowest := prices[0]
	return &lowest
}

// ShouldReplacePrice reports whether a quote beats the stored price
func ShouldReplacePrice(stored *Price, quote *RetailerPrice) bool {
	if quote == nil || quote.Price == nil || *quote.Price <= 0 {
		return false
	}
	if stored == nil || stored.Amount <= 0 {
		return true
	}
	return *quote.Price < stored.Amount
}

// AvailabilityFromPrices maps quotes onto the stored availability list
func AvailabilityFromPrices(prices []RetailerPrice) []RetailerAvailability {
	out := make([]RetailerAvailability, 0, len(prices))
	for _, p := range prices {
		currency := p.Currency
		if currency == "" {
			currency = DefaultCurrency
		}
		out = append(out, RetailerAvailability{
			Retailer:    p.Retailer,
			URL:         p.URL,
			InStock:     p.InStock,
			Price:       p.Price,
			Currency:    currency,
			LastUpdated: p.LastUpdated,
		})
	}
	return out
}
