package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dupeColumns = `id, original_product_id, dupe_product_id, similarity_score, ingredient_match,
	color_match, finish_match, price_difference, source, community_rating, source_details,
	verification, reviews, created_at, updated_at`

type DupeRepository struct {
	db dbtx
}

func NewDupeRepository(pool *pgxpool.Pool) *DupeRepository {
	return &DupeRepository{db: pool}
}

func NewDupeRepositoryWithTx(tx pgx.Tx) *DupeRepository {
	return &DupeRepository{db: tx}
}

// Upsert inserts a relationship or, when the pair already exists, updates
// its scores, price difference and source in place. The stored row is
// returned, so an existing pair keeps its original id.
func (r *DupeRepository) Upsert(ctx context.Context, d *domain.Dupe) (*domain.Dupe, error) {
	sourceDetails, err := marshalOptional(d.SourceDetails)
	if err != nil {
		return nil, err
	}
	verification, err := marshalOptional(d.Verification)
	if err != nil {
		return nil, err
	}
	reviews := d.Reviews
	if reviews == nil {
		reviews = []domain.DupeReview{}
	}
	reviewsJSON, err := json.Marshal(reviews)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reviews: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO dupes (`+dupeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (original_product_id, dupe_product_id) DO UPDATE SET
		   similarity_score = EXCLUDED.similarity_score,
		   ingredient_match = EXCLUDED.ingredient_match,
		   color_match = EXCLUDED.color_match,
		   finish_match = EXCLUDED.finish_match,
		   price_difference = EXCLUDED.price_difference,
		   source = EXCLUDED.source,
		   updated_at = EXCLUDED.updated_at
		 RETURNING `+dupeColumns,
		d.ID, d.OriginalProductID, d.DupeProductID, d.SimilarityScore, d.IngredientMatch,
		d.ColorMatch, d.FinishMatch, d.PriceDifference, string(d.Source), d.CommunityRating,
		sourceDetails, verification, reviewsJSON, d.CreatedAt, d.UpdatedAt,
	)
	stored, err := scanDupe(row)
	if err != nil {
		switch pgErrorCode(err) {
		case pgForeignKeyViolation:
			return nil, domain.WithCause(domain.ErrProductNotFound, err)
		case pgCheckViolation:
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid dupe relationship", err)
		}
		return nil, err
	}
	return stored, nil
}

// ListByOriginal returns stored dupes for an original, best match first.
func (r *DupeRepository) ListByOriginal(ctx context.Context, originalID string, limit int) ([]domain.DupeWithProduct, error) {
	if !isUUID(originalID) {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT d.id, d.original_product_id, d.dupe_product_id, d.similarity_score, d.ingredient_match,
		        d.color_match, d.finish_match, d.price_difference, d.source, d.community_rating, d.source_details,
		        d.verification, d.reviews, d.created_at, d.updated_at,
		        p.id, p.name, p.brand, p.category, p.description, p.price, p.image_url, p.ingredients,
		        p.color, p.color_hex, p.finish, p.rating, p.availability, p.sku, p.url, p.retailer,
		        p.created_at, p.updated_at
		 FROM dupes d
		 JOIN products p ON p.id = d.dupe_product_id
		 WHERE d.original_product_id = $1
		 ORDER BY d.similarity_score DESC, d.id ASC
		 LIMIT $2`,
		originalID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.DupeWithProduct
	for rows.Next() {
		d, p, err := scanDupeWithProduct(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.DupeWithProduct{Dupe: d, Product: p})
	}
	return results, rows.Err()
}

func (r *DupeRepository) GetByPair(ctx context.Context, originalID, dupeID string) (*domain.Dupe, error) {
	if !isUUID(originalID) || !isUUID(dupeID) {
		return nil, domain.ErrDupeNotFound
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+dupeColumns+` FROM dupes WHERE original_product_id = $1 AND dupe_product_id = $2`,
		originalID, dupeID,
	)
	d, err := scanDupe(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDupeNotFound
		}
		return nil, err
	}
	return d, nil
}

type dupeScan struct {
	d             domain.Dupe
	source        string
	sourceDetails []byte
	verification  []byte
	reviews       []byte
}

func (s *dupeScan) dest() []any {
	return []any{
		&s.d.ID, &s.d.OriginalProductID, &s.d.DupeProductID, &s.d.SimilarityScore, &s.d.IngredientMatch,
		&s.d.ColorMatch, &s.d.FinishMatch, &s.d.PriceDifference, &s.source, &s.d.CommunityRating,
		&s.sourceDetails, &s.verification, &s.reviews, &s.d.CreatedAt, &s.d.UpdatedAt,
	}
}

func (s *dupeScan) finish() (*domain.Dupe, error) {
	s.d.Source = domain.DupeSource(s.source)
	if len(s.sourceDetails) > 0 {
		var details domain.DupeSourceDetails
		if err := json.Unmarshal(s.sourceDetails, &details); err != nil {
			return nil, fmt.Errorf("failed to decode source details for dupe %s: %w", s.d.ID, err)
		}
		s.d.SourceDetails = &details
	}
	if len(s.verification) > 0 {
		var v domain.DupeVerification
		if err := json.Unmarshal(s.verification, &v); err != nil {
			return nil, fmt.Errorf("failed to decode verification for dupe %s: %w", s.d.ID, err)
		}
		s.d.Verification = &v
	}
	if len(s.reviews) > 0 {
		if err := json.Unmarshal(s.reviews, &s.d.Reviews); err != nil {
			return nil, fmt.Errorf("failed to decode reviews for dupe %s: %w", s.d.ID, err)
		}
	}
	if s.d.Reviews == nil {
		s.d.Reviews = []domain.DupeReview{}
	}
	d := s.d
	return &d, nil
}

func scanDupe(row rowScanner) (*domain.Dupe, error) {
	var s dupeScan
	if err := row.Scan(s.dest()...); err != nil {
		return nil, err
	}
	return s.finish()
}

// productRowScanner collects product columns after a leading set of
// destinations so one row can hydrate two records.
type productRowScanner struct {
	leading []any
	row     rowScanner
}

func (p productRowScanner) Scan(dest ...any) error {
	return p.row.Scan(append(p.leading, dest...)...)
}

func scanDupeWithProduct(row rowScanner) (*domain.Dupe, *domain.Product, error) {
	var s dupeScan
	product, err := scanProduct(productRowScanner{leading: s.dest(), row: row})
	if err != nil {
		return nil, nil, err
	}
	d, err := s.finish()
	if err != nil {
		return nil, nil, err
	}
	return d, product, nil
}

func marshalOptional(v any) ([]byte, error) {
	switch t := v.(type) {
	case *domain.DupeSourceDetails:
		if t == nil {
			return nil, nil
		}
	case *domain.DupeVerification:
		if t == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dupe detail: %w", err)
	}
	return data, nil
}
