package retail

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/metrics"
	"github.com/gocolly/colly/v2"
)

// PriceSource quotes a price for a product at one retailer
type PriceSource interface {
	Name() string
	Quote(ctx context.Context, name, brand string) (*domain.RetailerPrice, error)
}

// StaticSource returns a fixed quote pointing at the retailer's search page.
type StaticSource struct {
	Retailer  string
	Price     float64
	SearchURL string
	Now       func() time.Time
}

// DefaultStaticSources returns the built-in Sephora, Ulta and Amazon quotes.
func DefaultStaticSources() []PriceSource {
	return []PriceSource{
		&StaticSource{Retailer: "Sephora", Price: 34.99, SearchURL: "https://www.sephora.com/search?keyword="},
		&StaticSource{Retailer: "Ulta", Price: 32.99, SearchURL: "https://www.ulta.com/search?search="},
		&StaticSource{Retailer: "Amazon", Price: 29.99, SearchURL: "https://www.amazon.com/s?k="},
	}
}

func (s *StaticSource) Name() string {
	return s.Retailer
}

func (s *StaticSource) Quote(ctx context.Context, name, brand string) (*domain.RetailerPrice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	price := s.Price
	return &domain.RetailerPrice{
		Retailer:    s.Retailer,
		Price:       &price,
		Currency:    domain.DefaultCurrency,
		URL:         s.SearchURL + url.QueryEscape(strings.TrimSpace(brand+" "+name)),
		InStock:     true,
		LastUpdated: now(s.Now),
	}, nil
}

var priceRe = regexp.MustCompile(`\$(\d+\.\d+)`)

// PageSource scrapes a retailer product page for its price and stock status.
type PageSource struct {
	Retailer      string
	PriceSelector string
	// URLFor builds the product page URL for a name and brand.
	URLFor    func(name, brand string) string
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
	Now       func() time.Time
}

// NewSephoraPageSource scrapes `.price-tag` from pages built by urlFor.
func NewSephoraPageSource(urlFor func(name, brand string) string) *PageSource {
	return &PageSource{Retailer: "Sephora", PriceSelector: ".price-tag", URLFor: urlFor}
}

// NewUltaPageSource scrapes `.product-price` from pages built by urlFor.
func NewUltaPageSource(urlFor func(name, brand string) string) *PageSource {
	return &PageSource{Retailer: "Ulta", PriceSelector: ".product-price", URLFor: urlFor}
}

// SearchPage builds page URLs by appending the escaped "brand name" to base.
func SearchPage(base string) func(name, brand string) string {
	return func(name, brand string) string {
		return base + url.QueryEscape(strings.TrimSpace(brand+" "+name))
	}
}

// DefaultPageSources scrapes the Sephora and Ulta search pages.
func DefaultPageSources(timeout time.Duration) []PriceSource {
	sephora := NewSephoraPageSource(SearchPage("https://www.sephora.com/search?keyword="))
	ulta := NewUltaPageSource(SearchPage("https://www.ulta.com/search?search="))
	sephora.Timeout = timeout
	ulta.Timeout = timeout
	return []PriceSource{sephora, ulta}
}

func (s *PageSource) Name() string {
	return s.Retailer
}

// Quote fetches the page. A page without a parseable price yields a quote
// with a nil price rather than an error.
func (s *PageSource) Quote(ctx context.Context, name, brand string) (*domain.RetailerPrice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pageURL := s.URLFor(name, brand)

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := s.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var priceText, stockText string
	c := newCollector(ctx, timeout, userAgent, s.Transport)
	c.OnHTML("html", func(e *colly.HTMLElement) {
		priceText = strings.TrimSpace(e.ChildText(s.PriceSelector))
		stockText = strings.TrimSpace(e.ChildText(".availability"))
	})

	err := c.Visit(pageURL)
	metrics.ObserveScrape("price", err)
	if err != nil {
		return nil, fetchError(pageURL, err)
	}

	return &domain.RetailerPrice{
		Retailer:    s.Retailer,
		Price:       ParsePrice(priceText),
		Currency:    domain.DefaultCurrency,
		URL:         pageURL,
		InStock:     strings.Contains(strings.ToLower(stockText), "in stock"),
		LastUpdated: now(s.Now),
	}, nil
}

// ParsePrice returns the first "$12.34" amount in text, or nil.
func ParsePrice(text string) *float64 {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// SortPrices orders quotes ascending by price with unpriced quotes last.
// Equal prices keep their input order.
func SortPrices(prices []domain.RetailerPrice) {
	sort.SliceStable(prices, func(i, j int) bool {
		a, b := prices[i].Price, prices[j].Price
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

func now(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now().UTC()
}
