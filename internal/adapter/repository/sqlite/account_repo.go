package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
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

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.OwnerID,
		account.Name,
		string(account.Type),
		account.Balance.String(),
		toNanos(account.CreatedAt),
		toNanos(account.UpdatedAt),
	)

	return classify(err)
}

// GetOwned retrieves an account owned by ownerID.
func (r *AccountRepository) GetOwned(ctx context.Context, tx usecase.Transaction, ownerID, id string) (*domain.Account, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID)

	return accountOrNotFound(row)
}

// GetOwnedForUpdate returns the owner's accounts among ids in id order. The write lock
// is already held from BEGIN IMMEDIATE.
func (r *AccountRepository) GetOwnedForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string, ids []string) ([]*domain.Account, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*domain.Account{}, nil
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	args := make([]any, 0, len(sorted)+1)
	args = append(args, ownerID)
	for _, id := range sorted {
		args = append(args, id)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(sorted)), ", ")
	rows, err := q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? AND id IN (`+placeholders+`) ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, classify(err)
	}

	return scanAccounts(rows)
}

// GetByIDForUpdate retrieves an account regardless of owner.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	return accountOrNotFound(row)
}

// ListByOwner lists the owner's accounts by creation time.
func (r *AccountRepository) ListByOwner(ctx context.Context, tx usecase.Transaction, ownerID string) ([]*domain.Account, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, classify(err)
	}

	return scanAccounts(rows)
}

// UpdateBalance updates the balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, updatedAt time.Time) error {
	q, err := sqlTx(tx)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`, balance.String(), toNanos(updatedAt), id)

	return affectedOne(res, err, domain.ErrAccountNotFound)
}

// Delete removes an account.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	q, err := sqlTx(tx)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)

	return affectedOne(res, err, domain.ErrAccountNotFound)
}

func accountOrNotFound(row *sql.Row) (*domain.Account, error) {
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, classify(err)
	}

	return account, nil
}

func scanAccounts(rows *sql.Rows) ([]*domain.Account, error) {
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return accounts, nil
}

func affectedOne(res sql.Result, err error, missing error) error {
	if err != nil {
		return classify(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}

	if n == 0 {
		return missing
	}

	return nil
}
