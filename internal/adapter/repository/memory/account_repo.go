package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create creates a new account in its own transaction.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	tx, err := r.store.begin(ctx, exclusive, false)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, ok := r.store.accounts[account.ID]; ok {
		return fmt.Errorf("memory: account %s already exists", account.ID)
	}

	r.store.accounts[account.ID] = cloneAccount(account)

	return tx.Commit(ctx)
}

// GetOwned retrieves an owned account.
func (r *AccountRepository) GetOwned(_ context.Context, tx usecase.Transaction, ownerID, id string) (*domain.Account, error) {
	if _, err := r.store.open(tx, false); err != nil {
		return nil, err
	}

	a, ok := r.store.accounts[id]
	if !ok || a.OwnerID != ownerID {
		return nil, domain.ErrAccountNotFound
	}

	return cloneAccount(a), nil
}

// GetOwnedForUpdate retrieves owned accounts in ascending id order. The store is already
// held exclusively by tx.
func (r *AccountRepository) GetOwnedForUpdate(_ context.Context, tx usecase.Transaction, ownerID string, ids []string) ([]*domain.Account, error) {
	if _, err := r.store.open(tx, true); err != nil {
		return nil, err
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	accounts := make([]*domain.Account, 0, len(sorted))
	for _, id := range sorted {
		if a, ok := r.store.accounts[id]; ok && a.OwnerID == ownerID {
			accounts = append(accounts, cloneAccount(a))
		}
	}

	return accounts, nil
}

// GetByIDForUpdate retrieves an account regardless of owner.
func (r *AccountRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if _, err := r.store.open(tx, true); err != nil {
		return nil, err
	}

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return cloneAccount(a), nil
}

// ListByOwner lists the owner's accounts by creation time, then id.
func (r *AccountRepository) ListByOwner(_ context.Context, tx usecase.Transaction, ownerID string) ([]*domain.Account, error) {
	if _, err := r.store.open(tx, false); err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0)
	for _, a := range r.store.accounts {
		if a.OwnerID == ownerID {
			accounts = append(accounts, cloneAccount(a))
		}
	}

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].ID < accounts[j].ID
	})

	return accounts, nil
}

// UpdateBalance updates the balance of an account.
func (r *AccountRepository) UpdateBalance(_ context.Context, tx usecase.Transaction, id string, balance domain.Money, updatedAt time.Time) error {
	t, err := r.store.open(tx, true)
	if err != nil {
		return err
	}

	a, ok := r.store.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}

	previous := cloneAccount(a)
	t.undo = append(t.undo, func() { r.store.accounts[id] = previous })

	updated := cloneAccount(a)
	updated.Balance = balance
	updated.UpdatedAt = updatedAt
	r.store.accounts[id] = updated

	return nil
}

// Delete removes an account.
func (r *AccountRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	t, err := r.store.open(tx, true)
	if err != nil {
		return err
	}

	a, ok := r.store.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}

	t.undo = append(t.undo, func() { r.store.accounts[id] = a })
	delete(r.store.accounts, id)

	return nil
}
