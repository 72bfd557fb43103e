//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchLogRepository_Create(t *testing.T) {
	ctx := context.Background()
	pool := testutil.SetupDatabase(ctx, t, "../../migrations")
	repo := NewSearchLogRepository(pool)

	s := domain.NewSearch(uuid.NewString(), "Charlotte Tilbury Pillow Talk Lipstick", domain.QueryTypeText, time.Now().UTC())
	s.Results = domain.RankResults([]string{uuid.NewString(), uuid.NewString()})
	s.ProcessingTimeMs = 42

	id, err := repo.Create(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, s.ID, id)

	var resultCount int
	var matched *string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT jsonb_array_length(results), matched_product_id FROM searches WHERE id = $1`, id,
	).Scan(&resultCount, &matched))
	assert.Equal(t, 2, resultCount)
	assert.Nil(t, matched)

	n, err := repo.CountSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSearchLogRepository_EnsureMonthlyPartition(t *testing.T) {
	ctx := context.Background()
	pool := testutil.SetupDatabase(ctx, t, "../../migrations")
	repo := NewSearchLogRepository(pool)

	nextYear := time.Now().UTC().AddDate(1, 0, 0)

	created, err := repo.EnsureMonthlyPartition(ctx, nextYear)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.EnsureMonthlyPartition(ctx, nextYear)
	require.NoError(t, err)
	assert.False(t, created)

	s := domain.NewSearch(uuid.NewString(), "future", domain.QueryTypeURL, nextYear)
	_, err = repo.Create(ctx, s)
	require.NoError(t, err)
}
