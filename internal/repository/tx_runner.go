package repository

import (
	"context"

	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner hands out product and dupe repositories bound to one transaction.
type TxRunner struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithTx commits when fn returns nil and rolls back on error or panic.
func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, r.opts, func(tx pgx.Tx) error {
		return fn(catalogTx{tx: tx})
	})
}

type catalogTx struct {
	tx pgx.Tx
}

func (c catalogTx) Products() service.ProductRepositoryInterface {
	return NewProductRepositoryWithTx(c.tx)
}

func (c catalogTx) Dupes() service.DupeRepositoryInterface {
	return NewDupeRepositoryWithTx(c.tx)
}
