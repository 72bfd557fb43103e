package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/pagination"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, brand, category, description, price, image_url, ingredients,
	color, color_hex, finish, rating, availability, sku, url, retailer, created_at, updated_at`

type ProductRepository struct {
	db dbtx
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: pool}
}

func NewProductRepositoryWithTx(tx pgx.Tx) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	priceJSON, err := marshalPrice(p.Price)
	if err != nil {
		return err
	}
	availability := p.Availability
	if availability == nil {
		availability = []domain.RetailerAvailability{}
	}
	availabilityJSON, err := json.Marshal(availability)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}
	ingredients := p.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		p.ID, p.Name, p.Brand, string(p.Category), p.Description, priceJSON, p.ImageURL, ingredients,
		p.Color, p.ColorHex, string(p.Finish), p.Rating, availabilityJSON, p.SKU, p.URL, p.Retailer,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return domain.WithCause(domain.ErrProductAlreadyExists, err)
		}
		return err
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if !isUUID(id) {
		return nil, domain.ErrProductNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgErrorCode(err) == pgInvalidTextRepresentation {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// FindOne returns the oldest product matching every non-empty criterion,
// or nil when nothing matches.
func (r *ProductRepository) FindOne(ctx context.Context, criteria service.ProductCriteria) (*domain.Product, error) {
	var where []string
	var args []any
	add := func(column, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		args = append(args, containsPattern(value))
		where = append(where, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, column, len(args)))
	}
	add("name", criteria.Name)
	add("brand", criteria.Brand)
	add("category", criteria.Category)

	if len(where) == 0 {
		return nil, nil
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at ASC, id ASC
		 LIMIT 1`,
		args...,
	)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) FindSimilar(ctx context.Context, category domain.Category, excludeID, excludeBrand string, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE category = $1 AND id <> $2 AND lower(brand) <> lower($3)
		 ORDER BY created_at ASC, id ASC
		 LIMIT $4`,
		string(category), excludeID, excludeBrand, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductRows(rows)
}

func (r *ProductRepository) FindByCategoryLike(ctx context.Context, category string, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE category ILIKE $1 ESCAPE '\'
		 ORDER BY created_at ASC, id ASC
		 LIMIT $2`,
		containsPattern(strings.TrimSpace(category)), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductRows(rows)
}

func (r *ProductRepository) UpdatePrice(ctx context.Context, id string, price domain.Price) error {
	if !isUUID(id) {
		return domain.ErrProductNotFound
	}
	priceJSON, err := marshalPrice(&price)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET price = $1, updated_at = $2 WHERE id = $3`,
		priceJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) UpdateAvailability(ctx context.Context, id string, availability []domain.RetailerAvailability) error {
	if !isUUID(id) {
		return domain.ErrProductNotFound
	}
	if availability == nil {
		availability = []domain.RetailerAvailability{}
	}
	availabilityJSON, err := json.Marshal(availability)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET availability = $1, updated_at = $2 WHERE id = $3`,
		availabilityJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List pages products newest first using a (created_at, id) keyset.
func (r *ProductRepository) List(ctx context.Context, filter service.ProductFilter, cursor *pagination.Cursor, limit int) (*service.ProductPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []any
	if c := strings.TrimSpace(filter.Category); c != "" {
		args = append(args, strings.ToLower(c))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if b := strings.TrimSpace(filter.Brand); b != "" {
		args = append(args, containsPattern(b))
		where = append(where, fmt.Sprintf(`brand ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if cursor != nil {
		if !isUUID(cursor.LastID) {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor")
		}
		args = append(args, cursor.Timestamp, cursor.LastID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanProductRows(rows)
	if err != nil {
		return nil, err
	}

	items, hasMore := pagination.TrimPage(items, limit)

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.ProductPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// ListStalePrices returns products with no price or a price last updated
// before olderThan, least recently touched first.
func (r *ProductRepository) ListStalePrices(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE price IS NULL OR (price->>'lastUpdated')::timestamptz < $1
		 ORDER BY updated_at ASC, id ASC
		 LIMIT $2`,
		olderThan, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductRows(rows)
}

// Count returns the number of stored products.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func marshalPrice(price *domain.Price) ([]byte, error) {
	if price == nil {
		return nil, nil
	}
	if price.Currency == "" {
		price.Currency = domain.DefaultCurrency
	}
	data, err := json.Marshal(price)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price: %w", err)
	}
	return data, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var category, finish string
	var priceJSON, availabilityJSON []byte

	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &category, &p.Description, &priceJSON, &p.ImageURL, &p.Ingredients,
		&p.Color, &p.ColorHex, &finish, &p.Rating, &availabilityJSON, &p.SKU, &p.URL, &p.Retailer,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Category = domain.Category(category)
	p.Finish = domain.Finish(finish)
	if p.Ingredients == nil {
		p.Ingredients = []string{}
	}

	if len(priceJSON) > 0 {
		var price domain.Price
		if err := json.Unmarshal(priceJSON, &price); err != nil {
			return nil, fmt.Errorf("failed to decode price for product %s: %w", p.ID, err)
		}
		p.Price = &price
	}

	if len(availabilityJSON) > 0 {
		if err := json.Unmarshal(availabilityJSON, &p.Availability); err != nil {
			return nil, fmt.Errorf("failed to decode availability for product %s: %w", p.ID, err)
		}
	}
	if p.Availability == nil {
		p.Availability = []domain.RetailerAvailability{}
	}

	return &p, nil
}

func scanProductRows(rows pgx.Rows) ([]*domain.Product, error) {
	var results []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
