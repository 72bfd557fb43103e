package service

import "context"

// TxRepositories are the catalog repositories sharing one transaction.
type TxRepositories interface {
	Products() ProductRepositoryInterface
	Dupes() DupeRepositoryInterface
}

// TxRunner runs fn atomically. Seeding uses it so a half-written catalog
// never becomes visible.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
