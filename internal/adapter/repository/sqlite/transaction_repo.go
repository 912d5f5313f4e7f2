package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// Create inserts a transaction, deriving the source/destination columns from its kind.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	q, err := sqlTx(tx)
	if err != nil {
		return err
	}

	var source, destination sql.NullString
	if id := t.SourceAccountID(); id != "" {
		source = sql.NullString{String: id, Valid: true}
	}
	if id := t.DestinationAccountID(); id != "" {
		destination = sql.NullString{String: id, Valid: true}
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.OwnerID,
		string(t.Kind),
		t.Amount.String(),
		nullString(t.Description),
		source,
		destination,
		toNanos(t.CreatedAt),
	)

	return classify(err)
}

// GetOwnedForUpdate retrieves an owned transaction.
func (r *TransactionRepository) GetOwnedForUpdate(ctx context.Context, tx usecase.Transaction, ownerID, id string) (*domain.Transaction, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, classify(err)
	}

	return t, nil
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	q, err := sqlTx(tx)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)

	return affectedOne(res, err, domain.ErrTransactionNotFound)
}

// ExistsForAccount reports whether any transaction references the account on either side.
func (r *TransactionRepository) ExistsForAccount(ctx context.Context, tx usecase.Transaction, accountID string) (bool, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE source_account_id = ? OR destination_account_id = ?)`,
		accountID, accountID,
	).Scan(&exists)

	return exists, classify(err)
}

// AccountTotals aggregates an account's history. Amounts are summed in Go to stay exact.
func (r *TransactionRepository) AccountTotals(ctx context.Context, tx usecase.Transaction, ownerID, accountID string) (domain.AccountTotals, error) {
	totals := domain.AccountTotals{IncomeTotal: domain.Zero, ExpenseTotal: domain.Zero}

	q, err := sqlTx(tx)
	if err != nil {
		return totals, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT kind, amount FROM transactions
		 WHERE owner_id = ?
		   AND ((kind = 'INCOME' AND destination_account_id = ?) OR (kind = 'EXPENSE' AND source_account_id = ?))`,
		ownerID, accountID, accountID,
	)
	if err != nil {
		return totals, classify(err)
	}

	err = sumByKind(rows, func(kind domain.TransactionKind, amount domain.Money) (err error) {
		switch kind {
		case domain.KindIncome:
			totals.IncomeTotal, err = totals.IncomeTotal.Add(amount)
			totals.IncomeCount++
		case domain.KindExpense:
			totals.ExpenseTotal, err = totals.ExpenseTotal.Add(amount)
			totals.ExpenseCount++
		}
		return err
	})

	return totals, err
}

// PeriodTotals sums the owner's INCOME and EXPENSE created at or after since.
func (r *TransactionRepository) PeriodTotals(ctx context.Context, tx usecase.Transaction, ownerID string, since time.Time) (domain.Money, domain.Money, error) {
	income, expense := domain.Zero, domain.Zero

	q, err := sqlTx(tx)
	if err != nil {
		return income, expense, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT kind, amount FROM transactions WHERE owner_id = ? AND created_at >= ?`,
		ownerID, toNanos(since),
	)
	if err != nil {
		return income, expense, classify(err)
	}

	err = sumByKind(rows, func(kind domain.TransactionKind, amount domain.Money) (err error) {
		switch kind {
		case domain.KindIncome:
			income, err = income.Add(amount)
		case domain.KindExpense:
			expense, err = expense.Add(amount)
		}
		return err
	})
	if err != nil {
		return domain.Zero, domain.Zero, err
	}

	return income, expense, nil
}

// Count counts the owner's transactions.
func (r *TransactionRepository) Count(ctx context.Context, tx usecase.Transaction, ownerID string) (int64, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return 0, err
	}

	var n int64
	err = q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE owner_id = ?`, ownerID).Scan(&n)

	return n, classify(err)
}

// ListPage returns one page ordered by creation time, then id.
func (r *TransactionRepository) ListPage(ctx context.Context, tx usecase.Transaction, ownerID string, order domain.SortOrder, limit, offset int) ([]*domain.Transaction, error) {
	if limit <= 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit %d offset %d", domain.ErrInvalidInput, limit, offset)
	}

	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	direction := "DESC"
	if order == domain.SortAsc {
		direction = "ASC"
	}

	rows, err := q.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM transactions WHERE owner_id = ? ORDER BY created_at %s, id %s LIMIT ? OFFSET ?`,
			transactionColumns, direction, direction),
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, classify(err)
	}

	return scanTransactions(rows)
}

// List returns the owner's transactions matching filter, newest first.
func (r *TransactionRepository) List(ctx context.Context, tx usecase.Transaction, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	q, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	where := []string{"owner_id = ?"}
	args := []any{ownerID}

	if filter.Kind != nil {
		where = append(where, "kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, toNanos(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "created_at <= ?")
		args = append(args, toNanos(*filter.To))
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+strings.Join(where, " AND ")+` ORDER BY created_at DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, classify(err)
	}

	return scanTransactions(rows)
}

func sumByKind(rows *sql.Rows, add func(domain.TransactionKind, domain.Money) error) error {
	defer rows.Close()

	for rows.Next() {
		var kind, amount string
		if err := rows.Scan(&kind, &amount); err != nil {
			return classify(err)
		}

		money, err := domain.ParseMoney(amount)
		if err != nil {
			return err
		}

		if err := add(domain.TransactionKind(kind), money); err != nil {
			return err
		}
	}

	return classify(rows.Err())
}
