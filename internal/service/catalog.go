package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"go.uber.org/zap"
)

//go:embed seeddata/catalog.json
var defaultCatalogJSON []byte

// SeedProduct is a catalog entry keyed for reference by SeedDupe
type SeedProduct struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Ingredients []string `json:"ingredients"`
	Color       string   `json:"color"`
	ColorHex    string   `json:"colorHex"`
	Finish      string   `json:"finish"`
	SKU         string   `json:"sku"`
	URL         string   `json:"url"`
	Retailer    string   `json:"retailer"`
}

// SeedDupe links two SeedProduct keys
type SeedDupe struct {
	Original        string `json:"original"`
	Dupe            string `json:"dupe"`
	SimilarityScore int    `json:"similarityScore"`
	IngredientMatch int    `json:"ingredientMatch"`
	ColorMatch      int    `json:"colorMatch"`
	FinishMatch     int    `json:"finishMatch"`
}

type SeedData struct {
	Products []SeedProduct `json:"products"`
	Dupes    []SeedDupe    `json:"dupes"`
}

type SeedResult struct {
	ProductsCreated int
	ProductsReused  int
	DupesUpserted   int
}

// DefaultSeedData returns the built-in catalog of well-known products and
// their affordable alternatives.
func DefaultSeedData() (*SeedData, error) {
	var data SeedData
	if err := json.Unmarshal(defaultCatalogJSON, &data); err != nil {
		return nil, fmt.Errorf("failed to decode seed catalog: %w", err)
	}
	return &data, nil
}

// CatalogService loads reference products and dupe relationships
type CatalogService struct {
	products ProductRepositoryInterface
	dupes    DupeRepositoryInterface
	txRunner TxRunner
	uuidGen  UUIDGenerator
	logger   *zap.Logger
	now      func() time.Time
}

func NewCatalogService(products ProductRepositoryInterface, dupes DupeRepositoryInterface, logger *zap.Logger) *CatalogService {
	return NewCatalogServiceWithUUIDGen(products, dupes, logger, &DefaultUUIDGenerator{})
}

// NewCatalogServiceWithTx creates a CatalogService whose Seed runs in a
// single transaction.
func NewCatalogServiceWithTx(products ProductRepositoryInterface, dupes DupeRepositoryInterface, txRunner TxRunner, logger *zap.Logger) *CatalogService {
	s := NewCatalogService(products, dupes, logger)
	s.txRunner = txRunner
	return s
}

// NewCatalogServiceWithUUIDGen creates a CatalogService with a custom UUID generator (for testing)
func NewCatalogServiceWithUUIDGen(products ProductRepositoryInterface, dupes DupeRepositoryInterface, logger *zap.Logger, uuidGen UUIDGenerator) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		products: products,
		dupes:    dupes,
		uuidGen:  uuidGen,
		logger:   logger.Named("catalog"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Seed inserts missing products and upserts the dupe relationships between
// them. Running it again reuses existing products.
func (s *CatalogService) Seed(ctx context.Context, data *SeedData) (*SeedResult, error) {
	var (
		result *SeedResult
		err    error
	)
	if s.txRunner != nil {
		err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
			var txErr error
			result, txErr = s.seed(ctx, repos.Products(), repos.Dupes(), data)
			return txErr
		})
	} else {
		result, err = s.seed(ctx, s.products, s.dupes, data)
	}
	if err != nil {
		return result, err
	}

	s.logger.Info("catalog seeded",
		zap.Int("products_created", result.ProductsCreated),
		zap.Int("products_reused", result.ProductsReused),
		zap.Int("dupes_upserted", result.DupesUpserted))
	return result, nil
}

func (s *CatalogService) seed(ctx context.Context, products ProductRepositoryInterface, dupes DupeRepositoryInterface, data *SeedData) (*SeedResult, error) {
	result := &SeedResult{}
	byKey := make(map[string]*domain.Product, len(data.Products))

	for _, sp := range data.Products {
		product, created, err := s.ensureProduct(ctx, products, sp)
		if err != nil {
			return result, fmt.Errorf("seed product %q: %w", sp.Key, err)
		}
		if created {
			result.ProductsCreated++
		} else {
			result.ProductsReused++
		}
		byKey[sp.Key] = product
	}

	for _, sd := range data.Dupes {
		original, ok := byKey[sd.Original]
		if !ok {
			return result, fmt.Errorf("seed dupe references unknown product %q", sd.Original)
		}
		dupeProduct, ok := byKey[sd.Dupe]
		if !ok {
			return result, fmt.Errorf("seed dupe references unknown product %q", sd.Dupe)
		}

		dupe := domain.NewDupe(
			s.uuidGen.NewString(),
			original.ID,
			dupeProduct.ID,
			sd.SimilarityScore,
			sd.IngredientMatch,
			domain.PriceDifference(original, dupeProduct),
			domain.DupeSourceManual,
			s.now(),
		)
		dupe.ColorMatch = domain.ClampScore(sd.ColorMatch)
		dupe.FinishMatch = domain.ClampScore(sd.FinishMatch)
		if err := domain.ValidateDupe(dupe); err != nil {
			return result, fmt.Errorf("seed dupe %s -> %s: %w", sd.Original, sd.Dupe, err)
		}
		if _, err := dupes.Upsert(ctx, dupe); err != nil {
			return result, fmt.Errorf("seed dupe %s -> %s: %w", sd.Original, sd.Dupe, err)
		}
		result.DupesUpserted++
	}

	return result, nil
}

// ensureProduct looks the product up before inserting it. A failed insert
// would abort the surrounding transaction, so the unique constraint is never
// used as the existence check.
func (s *CatalogService) ensureProduct(ctx context.Context, products ProductRepositoryInterface, sp SeedProduct) (*domain.Product, bool, error) {
	existing, err := products.FindOne(ctx, ProductCriteria{Name: sp.Name, Brand: sp.Brand})
	if err != nil {
		return nil, false, err
	}
	if existing != nil && existing.Name == sp.Name && existing.Brand == sp.Brand {
		return existing, false, nil
	}

	now := s.now()
	product := domain.NewProduct(s.uuidGen.NewString(), sp.Name, sp.Brand, domain.NormalizeCategory(sp.Category), sp.Ingredients, now)
	product.Description = sp.Description
	product.ImageURL = sp.ImageURL
	product.Color = sp.Color
	product.ColorHex = sp.ColorHex
	product.Finish = domain.Finish(sp.Finish)
	product.SKU = sp.SKU
	product.URL = sp.URL
	product.Retailer = sp.Retailer
	if sp.Price > 0 {
		product.Price = &domain.Price{Amount: sp.Price, Currency: domain.DefaultCurrency, LastUpdated: now}
	}
	if err := domain.ValidateProduct(product); err != nil {
		return nil, false, err
	}

	if err := products.Create(ctx, product); err != nil {
		return nil, false, err
	}
	return product, true, nil
}
