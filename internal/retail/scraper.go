// Package retail fetches ingredient lists and price quotes from retailer pages.
package retail

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/metrics"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	acceptLanguage   = "en-US,en;q=0.9"
)

// IngredientSelectors are tried in order; the first with non-empty text wins.
var IngredientSelectors = []string{".ingredients-list", "#ingredients", "[data-ingredients]"}

// PageArchiver keeps the raw HTML of pages the scraper could not parse.
type PageArchiver interface {
	Archive(ctx context.Context, pageURL string, body []byte) error
}

type ScraperConfig struct {
	Timeout   time.Duration
	UserAgent string
	Archiver  PageArchiver
	Transport http.RoundTripper
}

// IngredientScraper reads ingredient lists from product pages
type IngredientScraper struct {
	cfg    ScraperConfig
	logger *zap.Logger
}

func NewIngredientScraper(cfg ScraperConfig, logger *zap.Logger) *IngredientScraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngredientScraper{cfg: cfg, logger: logger.Named("scraper")}
}

// ExtractIngredients fetches pageURL and returns its comma-separated
// ingredient list, trimmed with empty entries dropped.
func (s *IngredientScraper) ExtractIngredients(ctx context.Context, pageURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WithCause(domain.ErrPageFetchFailed, err)
	}

	var (
		raw  string
		body []byte
	)
	c := newCollector(ctx, s.cfg.Timeout, s.cfg.UserAgent, s.cfg.Transport)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnHTML("html", func(e *colly.HTMLElement) {
		for _, sel := range IngredientSelectors {
			if text := strings.TrimSpace(e.ChildText(sel)); text != "" {
				raw = text
				return
			}
		}
	})

	err := c.Visit(pageURL)
	metrics.ObserveScrape("ingredients", err)
	if err != nil {
		s.logger.Warn("ingredient page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil, fetchError(pageURL, err)
	}

	ingredients := SplitIngredients(raw)
	if len(ingredients) == 0 {
		s.archive(ctx, pageURL, body)
		return nil, domain.ErrIngredientsNotFound
	}
	return ingredients, nil
}

func (s *IngredientScraper) archive(ctx context.Context, pageURL string, body []byte) {
	if s.cfg.Archiver == nil || len(body) == 0 {
		return
	}
	if err := s.cfg.Archiver.Archive(ctx, pageURL, body); err != nil {
		s.logger.Warn("failed to archive page", zap.String("url", pageURL), zap.Error(err))
	}
}

// SplitIngredients splits a comma-separated list, trimming each entry and
// dropping empty ones.
func SplitIngredients(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// newCollector builds a single-use collector whose requests are bound to
// ctx, so cancelling ctx aborts an in-flight Visit.
func newCollector(ctx context.Context, timeout time.Duration, userAgent string, transport http.RoundTripper) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(timeout)
	if transport == nil {
		transport = http.DefaultTransport
	}
	c.WithTransport(contextTransport{ctx: ctx, next: transport})
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", acceptLanguage)
	})
	return c
}

type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}

func fetchError(pageURL string, err error) error {
	return domain.WithCause(domain.ErrPageFetchFailed, fmt.Errorf("%s: %w", pageURL, err))
}
