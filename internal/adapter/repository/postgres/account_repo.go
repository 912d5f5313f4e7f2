package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/infrastructure/postgres/generated"
	"github.com/iho/moneyledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository. db is normally a *pgxpool.Pool.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	err := r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		OwnerID:   account.OwnerID,
		Name:      account.Name,
		Type:      string(account.Type),
		Balance:   moneyToNumeric(account.Balance),
		CreatedAt: timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})

	return classify(err)
}

// GetOwned retrieves an account owned by ownerID.
func (r *AccountRepository) GetOwned(ctx context.Context, tx usecase.Transaction, ownerID, id string) (*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetOwnedAccount(ctx, generated.GetOwnedAccountParams{ID: id, OwnerID: ownerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, classify(err)
	}

	return rowToAccount(row)
}

// GetOwnedForUpdate locks the owner's accounts among ids with FOR UPDATE. Rows are locked
// in id order so two transfers over the same pair cannot deadlock.
func (r *AccountRepository) GetOwnedForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string, ids []string) ([]*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetOwnedAccountsForUpdate(ctx, generated.GetOwnedAccountsForUpdateParams{
		OwnerID: ownerID,
		Ids:     ids,
	})
	if err != nil {
		return nil, classify(err)
	}

	return rowsToAccounts(rows)
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, classify(err)
	}

	return rowToAccount(row)
}

// ListByOwner lists the owner's accounts by creation time.
func (r *AccountRepository) ListByOwner(ctx context.Context, tx usecase.Transaction, ownerID string) ([]*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, classify(err)
	}

	return rowsToAccounts(rows)
}

// UpdateBalance updates the balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, updatedAt time.Time) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:        id,
		Balance:   moneyToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return classify(err)
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Delete removes an account.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.DeleteAccount(ctx, id)
	if err != nil {
		return classify(err)
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}
