package postgres

import (
	"context"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/moneyledger/internal/domain"
)

var transactionColumns = []string{"id", "owner_id", "kind", "amount", "description", "source_account_id", "destination_account_id", "created_at"}

func TestTransactionRepositoryCreateDerivesReferences(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	repo := NewTransactionRepository()
	now := time.Now().UTC()

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs("t1", "user-1", "INCOME", pgxmock.AnyArg(), pgtype.Text{},
			pgtype.Text{}, pgtype.Text{String: "acc-1", Valid: true}, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), tx, domain.NewIncome("t1", "user-1", "acc-1", domain.MustMoney("5"), nil, now)))

	description := "coffee"
	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs("t2", "user-1", "EXPENSE", pgxmock.AnyArg(), pgtype.Text{String: "coffee", Valid: true},
			pgtype.Text{String: "acc-1", Valid: true}, pgtype.Text{}, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), tx, domain.NewExpense("t2", "user-1", "acc-1", domain.MustMoney("2"), &description, now)))

	assertExpectations(t, pool)
}

func TestTransactionRepositoryGetOwnedForUpdate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	repo := NewTransactionRepository()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("FROM transactions\nWHERE id = $1 AND owner_id = $2\nFOR UPDATE")).
		WithArgs("t1", "user-1").
		WillReturnRows(pgxmock.NewRows(transactionColumns).
			AddRow("t1", "user-1", "EXPENSE", "2.00", nil, "acc-1", nil, now))

	txn, err := repo.GetOwnedForUpdate(context.Background(), tx, "user-1", "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindExpense, txn.Kind)
	assert.Equal(t, "acc-1", txn.AccountID)
	assert.Nil(t, txn.Description)

	pool.ExpectQuery(regexp.QuoteMeta("FROM transactions\nWHERE id = $1 AND owner_id = $2\nFOR UPDATE")).
		WithArgs("t2", "user-1").
		WillReturnRows(pgxmock.NewRows(transactionColumns).
			AddRow("t2", "user-1", "INCOME", "2.00", nil, "acc-1", "acc-2", now))

	_, err = repo.GetOwnedForUpdate(context.Background(), tx, "user-1", "t2")
	require.Error(t, err)

	assertExpectations(t, pool)
}

func TestTransactionRepositoryAccountTotals(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	repo := NewTransactionRepository()

	pool.ExpectQuery(regexp.QuoteMeta("AS income_total")).
		WithArgs("acc-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"income_total", "income_count", "expense_total", "expense_count"}).
			AddRow("100.00", int64(1), "30.00", int64(1)))

	totals, err := repo.AccountTotals(context.Background(), tx, "user-1", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "100.00", totals.IncomeTotal.String())
	assert.Equal(t, "30.00", totals.ExpenseTotal.String())
	assert.Equal(t, int64(2), totals.IncomeCount+totals.ExpenseCount)

	assertExpectations(t, pool)
}

func TestTransactionRepositoryListPageOrder(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	repo := NewTransactionRepository()
	now := time.Now().UTC()

	pool.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, id ASC")).
		WithArgs("user-1", int32(10), int32(10)).
		WillReturnRows(pgxmock.NewRows(transactionColumns).
			AddRow("t1", "user-1", "INCOME", "1.00", "salary", nil, "acc-1", now))

	items, err := repo.ListPage(context.Background(), tx, "user-1", domain.SortAsc, 10, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "salary", *items[0].Description)

	pool.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC\nLIMIT")).
		WithArgs("user-1", int32(20), int32(0)).
		WillReturnRows(pgxmock.NewRows(transactionColumns))

	items, err = repo.ListPage(context.Background(), tx, "user-1", domain.SortDesc, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	assertExpectations(t, pool)
}

func TestTransactionRepositoryListPageBounds(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	repo := NewTransactionRepository()

	items, err := repo.ListPage(context.Background(), tx, "user-1", domain.SortDesc, 100, math.MaxInt32+1)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = repo.ListPage(context.Background(), tx, "user-1", domain.SortDesc, 100, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assertExpectations(t, pool)
}

func TestTransactionRepositoryListFiltered(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	repo := NewTransactionRepository()
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	kind := domain.KindIncome

	pool.ExpectQuery(regexp.QuoteMeta("$2::text IS NULL")).
		WithArgs("user-1", pgtype.Text{String: "INCOME", Valid: true}, pgtype.Timestamptz{Time: from, Valid: true}, pgtype.Timestamptz{}).
		WillReturnRows(pgxmock.NewRows(transactionColumns))

	items, err := repo.List(context.Background(), tx, "user-1", domain.TransactionFilter{Kind: &kind, From: &from})
	require.NoError(t, err)
	assert.Empty(t, items)

	assertExpectations(t, pool)
}
