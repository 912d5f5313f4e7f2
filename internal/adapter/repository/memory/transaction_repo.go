package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create stores a transaction.
func (r *TransactionRepository) Create(_ context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	mt, err := r.store.open(tx, true)
	if err != nil {
		return err
	}

	if _, ok := r.store.transactions[t.ID]; ok {
		return fmt.Errorf("memory: transaction %s already exists", t.ID)
	}

	id := t.ID
	mt.undo = append(mt.undo, func() { delete(r.store.transactions, id) })
	r.store.transactions[id] = cloneTransaction(t)

	return nil
}

// GetOwnedForUpdate retrieves an owned transaction.
func (r *TransactionRepository) GetOwnedForUpdate(_ context.Context, tx usecase.Transaction, ownerID, id string) (*domain.Transaction, error) {
	if _, err := r.store.open(tx, true); err != nil {
		return nil, err
	}

	t, ok := r.store.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTransactionNotFound
	}

	return cloneTransaction(t), nil
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	mt, err := r.store.open(tx, true)
	if err != nil {
		return err
	}

	t, ok := r.store.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}

	mt.undo = append(mt.undo, func() { r.store.transactions[id] = t })
	delete(r.store.transactions, id)

	return nil
}

// ExistsForAccount reports whether any transaction references the account.
func (r *TransactionRepository) ExistsForAccount(_ context.Context, tx usecase.Transaction, accountID string) (bool, error) {
	if _, err := r.store.open(tx, false); err != nil {
		return false, err
	}

	for _, t := range r.store.transactions {
		if t.AccountID == accountID {
			return true, nil
		}
	}

	return false, nil
}

// AccountTotals aggregates the account's history.
func (r *TransactionRepository) AccountTotals(_ context.Context, tx usecase.Transaction, ownerID, accountID string) (domain.AccountTotals, error) {
	totals := domain.AccountTotals{IncomeTotal: domain.Zero, ExpenseTotal: domain.Zero}

	if _, err := r.store.open(tx, false); err != nil {
		return totals, err
	}

	var err error
	for _, t := range r.store.transactions {
		if t.OwnerID != ownerID || t.AccountID != accountID {
			continue
		}

		switch t.Kind {
		case domain.KindIncome:
			if totals.IncomeTotal, err = totals.IncomeTotal.Add(t.Amount); err != nil {
				return totals, err
			}
			totals.IncomeCount++
		case domain.KindExpense:
			if totals.ExpenseTotal, err = totals.ExpenseTotal.Add(t.Amount); err != nil {
				return totals, err
			}
			totals.ExpenseCount++
		}
	}

	return totals, nil
}

// PeriodTotals sums the owner's INCOME and EXPENSE created at or after since.
func (r *TransactionRepository) PeriodTotals(_ context.Context, tx usecase.Transaction, ownerID string, since time.Time) (domain.Money, domain.Money, error) {
	income, expense := domain.Zero, domain.Zero

	if _, err := r.store.open(tx, false); err != nil {
		return income, expense, err
	}

	var err error
	for _, t := range r.store.transactions {
		if t.OwnerID != ownerID || t.CreatedAt.Before(since) {
			continue
		}

		switch t.Kind {
		case domain.KindIncome:
			income, err = income.Add(t.Amount)
		case domain.KindExpense:
			expense, err = expense.Add(t.Amount)
		}
		if err != nil {
			return domain.Zero, domain.Zero, err
		}
	}

	return income, expense, nil
}

// Count counts the owner's transactions.
func (r *TransactionRepository) Count(_ context.Context, tx usecase.Transaction, ownerID string) (int64, error) {
	if _, err := r.store.open(tx, false); err != nil {
		return 0, err
	}

	var n int64
	for _, t := range r.store.transactions {
		if t.OwnerID == ownerID {
			n++
		}
	}

	return n, nil
}

// ListPage returns one page of the owner's transactions ordered by creation time, then id.
func (r *TransactionRepository) ListPage(_ context.Context, tx usecase.Transaction, ownerID string, order domain.SortOrder, limit, offset int) ([]*domain.Transaction, error) {
	if _, err := r.store.open(tx, false); err != nil {
		return nil, err
	}

	if limit <= 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit %d offset %d", domain.ErrInvalidInput, limit, offset)
	}

	items := r.collect(func(t *domain.Transaction) bool { return t.OwnerID == ownerID }, order)

	if offset >= len(items) {
		return []*domain.Transaction{}, nil
	}

	end := offset + min(limit, len(items)-offset)

	return items[offset:end], nil
}

// List returns the owner's transactions matching filter, newest first.
func (r *TransactionRepository) List(_ context.Context, tx usecase.Transaction, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if _, err := r.store.open(tx, false); err != nil {
		return nil, err
	}

	return r.collect(func(t *domain.Transaction) bool {
		if t.OwnerID != ownerID {
			return false
		}
		if filter.Kind != nil && t.Kind != *filter.Kind {
			return false
		}
		if filter.From != nil && t.CreatedAt.Before(*filter.From) {
			return false
		}
		if filter.To != nil && t.CreatedAt.After(*filter.To) {
			return false
		}
		return true
	}, domain.SortDesc), nil
}

func (r *TransactionRepository) collect(match func(*domain.Transaction) bool, order domain.SortOrder) []*domain.Transaction {
	items := make([]*domain.Transaction, 0)
	for _, t := range r.store.transactions {
		if match(t) {
			items = append(items, cloneTransaction(t))
		}
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if order == domain.SortAsc {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	return items
}
