package service

import "context"

type testTxRepos struct {
	products ProductRepositoryInterface
	dupes    DupeRepositoryInterface
}

func (t *testTxRepos) Products() ProductRepositoryInterface {
	return t.products
}

func (t *testTxRepos) Dupes() DupeRepositoryInterface {
	return t.dupes
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
	err    error
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}
