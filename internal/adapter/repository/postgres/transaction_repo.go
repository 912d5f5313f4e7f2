package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/infrastructure/postgres/generated"
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
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	source, destination := referenceColumns(t)

	err = queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:                   t.ID,
		OwnerID:              t.OwnerID,
		Kind:                 string(t.Kind),
		Amount:               moneyToNumeric(t.Amount),
		Description:          optionalText(t.Description),
		SourceAccountID:      source,
		DestinationAccountID: destination,
		CreatedAt:            timeToPgTimestamptz(t.CreatedAt),
	})

	return classify(err)
}

// GetOwnedForUpdate retrieves and locks an owned transaction.
func (r *TransactionRepository) GetOwnedForUpdate(ctx context.Context, tx usecase.Transaction, ownerID, id string) (*domain.Transaction, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetOwnedTransactionForUpdate(ctx, generated.GetOwnedTransactionForUpdateParams{ID: id, OwnerID: ownerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, classify(err)
	}

	return rowToTransaction(row)
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.DeleteTransaction(ctx, id)
	if err != nil {
		return classify(err)
	}

	if n == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ExistsForAccount reports whether any transaction references the account on either side.
func (r *TransactionRepository) ExistsForAccount(ctx context.Context, tx usecase.Transaction, accountID string) (bool, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return false, err
	}

	exists, err := queries.TransactionExistsForAccount(ctx, accountID)

	return exists, classify(err)
}

// AccountTotals aggregates an account's history.
func (r *TransactionRepository) AccountTotals(ctx context.Context, tx usecase.Transaction, ownerID, accountID string) (domain.AccountTotals, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return domain.AccountTotals{}, err
	}

	row, err := queries.GetAccountTotals(ctx, generated.GetAccountTotalsParams{AccountID: accountID, OwnerID: ownerID})
	if err != nil {
		return domain.AccountTotals{}, classify(err)
	}

	income, err := numericToMoney(row.IncomeTotal)
	if err != nil {
		return domain.AccountTotals{}, fmt.Errorf("income total: %w", err)
	}

	expense, err := numericToMoney(row.ExpenseTotal)
	if err != nil {
		return domain.AccountTotals{}, fmt.Errorf("expense total: %w", err)
	}

	return domain.AccountTotals{
		IncomeTotal:  income,
		IncomeCount:  row.IncomeCount,
		ExpenseTotal: expense,
		ExpenseCount: row.ExpenseCount,
	}, nil
}

// PeriodTotals sums the owner's INCOME and EXPENSE created at or after since.
func (r *TransactionRepository) PeriodTotals(ctx context.Context, tx usecase.Transaction, ownerID string, since time.Time) (domain.Money, domain.Money, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return domain.Zero, domain.Zero, err
	}

	row, err := queries.GetPeriodTotals(ctx, generated.GetPeriodTotalsParams{
		OwnerID:   ownerID,
		CreatedAt: timeToPgTimestamptz(since),
	})
	if err != nil {
		return domain.Zero, domain.Zero, classify(err)
	}

	income, err := numericToMoney(row.IncomeTotal)
	if err != nil {
		return domain.Zero, domain.Zero, fmt.Errorf("income total: %w", err)
	}

	expense, err := numericToMoney(row.ExpenseTotal)
	if err != nil {
		return domain.Zero, domain.Zero, fmt.Errorf("expense total: %w", err)
	}

	return income, expense, nil
}

// Count counts the owner's transactions.
func (r *TransactionRepository) Count(ctx context.Context, tx usecase.Transaction, ownerID string) (int64, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return 0, err
	}

	n, err := queries.CountTransactions(ctx, ownerID)

	return n, classify(err)
}

// ListPage returns one page ordered by creation time, then id.
func (r *TransactionRepository) ListPage(ctx context.Context, tx usecase.Transaction, ownerID string, order domain.SortOrder, limit, offset int) ([]*domain.Transaction, error) {
	if limit <= 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit %d offset %d", domain.ErrInvalidInput, limit, offset)
	}
	// LIMIT and OFFSET are int4 in the generated queries.
	if offset > math.MaxInt32 {
		return []*domain.Transaction{}, nil
	}
	limit = min(limit, math.MaxInt32)

	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	var rows []generated.Transaction
	if order == domain.SortAsc {
		rows, err = queries.ListTransactionsAsc(ctx, generated.ListTransactionsAscParams{
			OwnerID: ownerID,
			Limit:   int32(limit),
			Offset:  int32(offset),
		})
	} else {
		rows, err = queries.ListTransactionsDesc(ctx, generated.ListTransactionsDescParams{
			OwnerID: ownerID,
			Limit:   int32(limit),
			Offset:  int32(offset),
		})
	}
	if err != nil {
		return nil, classify(err)
	}

	return rowsToTransactions(rows)
}

// List returns the owner's transactions matching filter, newest first.
func (r *TransactionRepository) List(ctx context.Context, tx usecase.Transaction, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	var kind pgtype.Text
	if filter.Kind != nil {
		kind = pgtype.Text{String: string(*filter.Kind), Valid: true}
	}

	rows, err := queries.ListTransactionsFiltered(ctx, generated.ListTransactionsFilteredParams{
		OwnerID:  ownerID,
		Kind:     kind,
		FromTime: optionalTimestamptz(filter.From),
		ToTime:   optionalTimestamptz(filter.To),
	})
	if err != nil {
		return nil, classify(err)
	}

	return rowsToTransactions(rows)
}
