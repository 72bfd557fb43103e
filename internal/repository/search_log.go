package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchLogRepository stores append-only search records for analytics.
type SearchLogRepository struct {
	pool *pgxpool.Pool
}

func NewSearchLogRepository(pool *pgxpool.Pool) *SearchLogRepository {
	return &SearchLogRepository{pool: pool}
}

func (r *SearchLogRepository) Create(ctx context.Context, s *domain.Search) (string, error) {
	results := s.Results
	if results == nil {
		results = []domain.SearchResult{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal search results: %w", err)
	}

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id string
	err = r.pool.QueryRow(ctx,
		`INSERT INTO searches (id, query, query_type, matched_product_id, results, success, processing_time_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		s.ID,
		s.Query,
		string(s.QueryType),
		nullableString(s.MatchedProductID),
		resultsJSON,
		s.Success,
		s.ProcessingTimeMs,
		createdAt,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CountSince returns how many searches were logged at or after since.
func (r *SearchLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM searches WHERE created_at >= $1`,
		since,
	).Scan(&n)
	return n, err
}

// EnsureMonthlyPartition creates the partition for the month containing
// month. It reports false when the partition already existed or could not
// be attached because the default partition holds rows for that month.
func (r *SearchLogRepository) EnsureMonthlyPartition(ctx context.Context, month time.Time) (bool, error) {
	var created bool
	err := r.pool.QueryRow(ctx,
		`SELECT ensure_searches_partition($1::date)`,
		month.UTC().Format("2006-01-02"),
	).Scan(&created)
	return created, err
}
