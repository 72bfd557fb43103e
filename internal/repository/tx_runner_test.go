//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/cloo-solutions/dupefinder/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRunner_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	pool := testutil.SetupDatabase(ctx, t, "../../migrations")
	runner := NewTxRunner(pool)

	original := newTestProduct("Pillow Talk", "Charlotte Tilbury", domain.CategoryLipstick, time.Now())
	dupe := newTestProduct("Super Stay Ink Crayon", "Maybelline", domain.CategoryLipstick, time.Now())

	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Products().Create(ctx, original); err != nil {
			return err
		}
		if err := repos.Products().Create(ctx, dupe); err != nil {
			return err
		}
		_, err := repos.Dupes().Upsert(ctx, domain.NewDupe(uuid.NewString(), original.ID, dupe.ID, 90, 80, 22, domain.DupeSourceManual, time.Now().UTC()))
		return err
	})
	require.NoError(t, err)

	stored, err := NewDupeRepository(pool).GetByPair(ctx, original.ID, dupe.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, stored.SimilarityScore)
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	pool := testutil.SetupDatabase(ctx, t, "../../migrations")
	runner := NewTxRunner(pool)
	boom := errors.New("boom")

	product := newTestProduct("Pillow Talk", "Charlotte Tilbury", domain.CategoryLipstick, time.Now())
	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Products().Create(ctx, product); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := NewProductRepository(pool).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTxRunner_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	pool := testutil.SetupDatabase(ctx, t, "../../migrations")
	runner := NewTxRunner(pool)

	product := newTestProduct("Pillow Talk", "Charlotte Tilbury", domain.CategoryLipstick, time.Now())
	assert.Panics(t, func() {
		_ = runner.WithTx(ctx, func(repos service.TxRepositories) error {
			if err := repos.Products().Create(ctx, product); err != nil {
				return err
			}
			panic("seed data corrupted")
		})
	})

	count, err := NewProductRepository(pool).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
