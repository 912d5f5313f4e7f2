package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/moneyledger/internal/adapter/repository/sqlite"
	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/infrastructure/idgen"
	"github.com/iho/moneyledger/internal/usecase"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Ping(context.Background()))
	require.NoError(t, second.Close())
}

func TestRepositoriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	accounts := sqlite.NewAccountRepository(store)
	txns := sqlite.NewTransactionRepository()

	created := time.Date(2024, time.March, 1, 10, 0, 0, 123, time.UTC)
	require.NoError(t, accounts.Create(ctx, &domain.Account{
		ID: "a", OwnerID: "u1", Name: "Checking", Type: domain.AccountTypeChecking,
		Balance: domain.MustMoney("10.10"), CreatedAt: created, UpdatedAt: created,
	}))

	tx, err := store.Begin(ctx)
	require.NoError(t, err)

	note := "salary"
	require.NoError(t, txns.Create(ctx, tx, domain.NewIncome("t1", "u1", "a", domain.MustMoney("5.05"), &note, created.Add(time.Minute))))
	require.NoError(t, txns.Create(ctx, tx, domain.NewExpense("t2", "u1", "a", domain.MustMoney("1"), nil, created.Add(2*time.Minute))))
	require.NoError(t, accounts.UpdateBalance(ctx, tx, "a", domain.MustMoney("14.15"), created.Add(2*time.Minute)))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))

	read, err := store.BeginReadOnly(ctx)
	require.NoError(t, err)
	defer read.Rollback(ctx)

	account, err := accounts.GetOwned(ctx, read, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, "14.15", account.Balance.String())
	assert.Equal(t, created, account.CreatedAt)

	_, err = accounts.GetOwned(ctx, read, "u2", "a")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	totals, err := txns.AccountTotals(ctx, read, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, "5.05", totals.IncomeTotal.String())
	assert.Equal(t, "1.00", totals.ExpenseTotal.String())
	assert.Equal(t, int64(1), totals.IncomeCount)
	assert.Equal(t, int64(1), totals.ExpenseCount)

	income, expense, err := txns.PeriodTotals(ctx, read, "u1", created.Add(90*time.Second))
	require.NoError(t, err)
	assert.True(t, income.IsZero())
	assert.Equal(t, "1.00", expense.String())

	page, err := txns.ListPage(ctx, read, "u1", domain.SortDesc, 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "t2", page[0].ID)
	assert.Equal(t, "a", page[0].SourceAccountID())

	kind := domain.KindIncome
	listed, err := txns.List(ctx, read, "u1", domain.TransactionFilter{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "salary", *listed[0].Description)
	assert.Equal(t, "a", listed[0].DestinationAccountID())

	n, err := txns.Count(ctx, read, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	accounts := sqlite.NewAccountRepository(store)
	txns := sqlite.NewTransactionRepository()

	now := time.Now().UTC()
	require.NoError(t, accounts.Create(ctx, &domain.Account{
		ID: "a", OwnerID: "u1", Name: "Cash", Type: domain.AccountTypeCash,
		Balance: domain.Zero, CreatedAt: now, UpdatedAt: now,
	}))

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txns.Create(ctx, tx, domain.NewIncome("t1", "u1", "a", domain.MustMoney("1"), nil, now)))
	require.NoError(t, accounts.UpdateBalance(ctx, tx, "a", domain.MustMoney("1"), now))
	require.NoError(t, tx.Rollback(ctx))

	read, err := store.BeginReadOnly(ctx)
	require.NoError(t, err)
	defer read.Rollback(ctx)

	used, err := txns.ExistsForAccount(ctx, read, "a")
	require.NoError(t, err)
	assert.False(t, used)

	account, err := accounts.GetOwned(ctx, read, "u1", "a")
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestSchemaRejectsMalformedRows(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	txns := sqlite.NewTransactionRepository()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	// No such account: the foreign key fails.
	err = txns.Create(ctx, tx, domain.NewIncome("t1", "u1", "missing", domain.MustMoney("1"), nil, time.Now()))
	require.Error(t, err)
}

func TestLedgerOnSQLite(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	accountRepo := sqlite.NewAccountRepository(store)
	txRepo := sqlite.NewTransactionRepository()
	ids := idgen.NewULIDGenerator()

	accountsUC := usecase.NewAccountUseCase(store, accountRepo, txRepo, ids)
	ledger := usecase.NewLedgerUseCase(store, accountRepo, txRepo, ids)
	reports := usecase.NewReportUseCase(store, accountRepo, txRepo)

	from, err := accountsUC.CreateAccount(ctx, usecase.CreateAccountInput{OwnerID: "u1", Name: "Checking", Type: domain.AccountTypeChecking})
	require.NoError(t, err)
	to, err := accountsUC.CreateAccount(ctx, usecase.CreateAccountInput{OwnerID: "u1", Name: "Savings", Type: domain.AccountTypeSavings})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: "u1", AccountID: from.ID, Amount: domain.MustMoney("10").Decimal()})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err = ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: "u1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: domain.MustMoney("30").Decimal()})
	require.NoError(t, err)

	_, err = ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: "u1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: domain.MustMoney("500").Decimal()})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	summary, err := reports.PortfolioSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "100.00", summary.TotalBalance.String())
	require.Len(t, summary.Accounts, 2)
	assert.Equal(t, "70.00", summary.Accounts[0].Balance.String())
	assert.Equal(t, "30.00", summary.Accounts[1].Balance.String())

	err = accountsUC.DeleteAccount(ctx, "u1", to.ID)
	require.ErrorIs(t, err, domain.ErrNonZeroBalance)
}

func TestBusyErrorIsConflict(t *testing.T) {
	err := sqliteBusy()
	require.ErrorIs(t, sqlite.ClassifyForTest(err), domain.ErrConflict)
}

func sqliteBusy() error {
	return sqlite3.Error{Code: sqlite3.ErrBusy}
}
