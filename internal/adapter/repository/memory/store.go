// Package memory is an in-process backend for the ledger. A read-write transaction holds
// the whole store exclusively until it commits or rolls back; read-only transactions share
// it. Rollback replays an undo log.
package memory

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/usecase"
)

const exclusive = 1 << 30

var (
	errTxDone    = errors.New("memory: transaction already closed")
	errReadOnly  = errors.New("memory: write in read-only transaction")
	errForeignTx = errors.New("memory: transaction does not belong to this store")
)

// Store holds accounts and transactions and implements usecase.TransactionManager.
type Store struct {
	sem          *semaphore.Weighted
	accounts     map[string]*domain.Account
	transactions map[string]*domain.Transaction
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		sem:          semaphore.NewWeighted(exclusive),
		accounts:     make(map[string]*domain.Account),
		transactions: make(map[string]*domain.Transaction),
	}
}

// Begin starts an exclusive read-write transaction. It waits for running
// transactions and gives up when ctx is done.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	return s.begin(ctx, exclusive, false)
}

// BeginReadOnly starts a shared transaction.
func (s *Store) BeginReadOnly(ctx context.Context) (usecase.Transaction, error) {
	return s.begin(ctx, 1, true)
}

func (s *Store) begin(ctx context.Context, weight int64, readOnly bool) (*Tx, error) {
	if err := s.sem.Acquire(ctx, weight); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}

	return &Tx{store: s, weight: weight, readOnly: readOnly}, nil
}

// Tx is a memory transaction.
type Tx struct {
	store    *Store
	weight   int64
	readOnly bool
	undo     []func()
	done     bool
}

// Commit makes the changes permanent.
func (t *Tx) Commit(context.Context) error {
	if t.done {
		return errTxDone
	}

	t.done = true
	t.undo = nil
	t.store.sem.Release(t.weight)

	return nil
}

// Rollback discards the changes. Calling it after Commit is a no-op.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}

	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}

	t.done = true
	t.undo = nil
	t.store.sem.Release(t.weight)

	return nil
}

func (s *Store) open(tx usecase.Transaction, write bool) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, errForeignTx
	}

	if t.done {
		return nil, errTxDone
	}

	if write && t.readOnly {
		return nil, errReadOnly
	}

	return t, nil
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return &c
}
