package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/usecase"
)

func TestLedgerUseCase_CheckingScenario(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	checking := f.openAccount(t, "Checking", "0")

	income, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{
		OwnerID:     owner,
		AccountID:   checking.ID,
		Amount:      dec("100"),
		Description: strPtr("Paycheck"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindIncome, income.Kind)
	assert.Equal(t, checking.ID, income.DestinationAccountID())
	assert.Empty(t, income.SourceAccountID())
	assert.Equal(t, "100.00", f.balance(t, checking.ID))

	_, err = f.ledger.AddExpense(ctx, usecase.ExpenseInput{
		OwnerID:   owner,
		AccountID: checking.ID,
		Amount:    dec("30"),
	})
	require.NoError(t, err)

	summary, err := f.reports.AccountSummary(ctx, owner, checking.ID)
	require.NoError(t, err)
	assert.Equal(t, "70.00", summary.Balance.String())
	assert.Equal(t, "100.00", summary.TotalIncome.String())
	assert.Equal(t, "30.00", summary.TotalExpense.String())
	assert.Equal(t, int64(2), summary.TransactionCount)
	assert.Equal(t, int64(1), summary.IncomeCount)
	assert.Equal(t, int64(1), summary.ExpenseCount)
}

func TestLedgerUseCase_BalanceMatchesHistory(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a := f.openAccount(t, "Wallet", "0")
	b := f.openAccount(t, "Savings", "0")

	steps := []func() error{
		func() error {
			_, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: a.ID, Amount: dec("250.10")})
			return err
		},
		func() error {
			_, err := f.ledger.AddExpense(ctx, usecase.ExpenseInput{OwnerID: owner, AccountID: a.ID, Amount: dec("0.10")})
			return err
		},
		func() error {
			_, err := f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("100")})
			return err
		},
		func() error {
			_, err := f.ledger.AddExpense(ctx, usecase.ExpenseInput{OwnerID: owner, AccountID: b.ID, Amount: dec("99.99")})
			return err
		},
		func() error {
			_, err := f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: b.ID, ToAccountID: a.ID, Amount: dec("0.01")})
			return err
		},
		func() error {
			_, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: b.ID, Amount: dec("12.34")})
			return err
		},
	}

	for _, step := range steps {
		require.NoError(t, step())

		for _, id := range []string{a.ID, b.ID} {
			s, err := f.reports.AccountSummary(ctx, owner, id)
			require.NoError(t, err)

			want, err := s.TotalIncome.Sub(s.TotalExpense)
			require.NoError(t, err)
			assert.True(t, s.Balance.Equal(want), "account %s: balance %s, history %s", id, s.Balance, want)
		}
	}

	assert.Equal(t, "150.01", f.balance(t, a.ID))
	assert.Equal(t, "12.34", f.balance(t, b.ID))
}

func TestLedgerUseCase_InsufficientBalance(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	from := f.openAccount(t, "Cash", "50")
	to := f.openAccount(t, "Savings", "0")

	_, err := f.ledger.AddExpense(ctx, usecase.ExpenseInput{OwnerID: owner, AccountID: from.ID, Amount: dec("50.01")})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("60")})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.Equal(t, "50.00", f.balance(t, from.ID))
	assert.Equal(t, "0.00", f.balance(t, to.ID))

	page, err := f.reports.PaginateTransactions(ctx, usecase.PageInput{OwnerID: owner})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	// Spending the exact balance is allowed.
	_, err = f.ledger.AddExpense(ctx, usecase.ExpenseInput{OwnerID: owner, AccountID: from.ID, Amount: dec("50")})
	require.NoError(t, err)
	assert.Equal(t, "0.00", f.balance(t, from.ID))
}

func TestLedgerUseCase_SelfTransfer(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a := f.openAccount(t, "Checking", "10")

	_, err := f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: a.ID, ToAccountID: a.ID, Amount: dec("5")})
	require.ErrorIs(t, err, domain.ErrSelfTransfer)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	page, err := f.reports.PaginateTransactions(ctx, usecase.PageInput{OwnerID: owner})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Equal(t, "10.00", f.balance(t, a.ID))
}

func TestLedgerUseCase_Transfer(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	from := f.openAccount(t, "Checking", "100")
	to := f.openAccount(t, "Savings", "5")

	result, err := f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("40")})
	require.NoError(t, err)

	assert.Equal(t, domain.KindExpense, result.Out.Kind)
	assert.Equal(t, from.ID, result.Out.SourceAccountID())
	assert.Equal(t, domain.TransferOutDescription, *result.Out.Description)
	assert.Equal(t, domain.KindIncome, result.In.Kind)
	assert.Equal(t, to.ID, result.In.DestinationAccountID())
	assert.Equal(t, domain.TransferInDescription, *result.In.Description)
	assert.Equal(t, "60.00", f.balance(t, from.ID))
	assert.Equal(t, "45.00", f.balance(t, to.ID))

	result, err = f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: to.ID, ToAccountID: from.ID, Amount: dec("1"), Description: strPtr("rent share")})
	require.NoError(t, err)
	assert.Equal(t, "rent share", *result.Out.Description)
	assert.Equal(t, "rent share", *result.In.Description)
}

func TestLedgerUseCase_ValidationErrors(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a := f.openAccount(t, "Checking", "10")
	long := strings.Repeat("x", domain.MaxDescriptionLength+1)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name: "zero amount",
			run: func() error {
				_, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: a.ID, Amount: dec("0")})
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			run: func() error {
				_, err := f.ledger.AddExpense(ctx, usecase.ExpenseInput{OwnerID: owner, AccountID: a.ID, Amount: dec("-1")})
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "too many fractional digits",
			run: func() error {
				_, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: a.ID, Amount: dec("1.005")})
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "description too long",
			run: func() error {
				_, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: a.ID, Amount: dec("1"), Description: &long})
				return err
			},
			wantErr: domain.ErrInvalidDescription,
		},
		{
			name: "missing owner",
			run: func() error {
				_, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{AccountID: a.ID, Amount: dec("1")})
				return err
			},
			wantErr: domain.ErrInvalidOwner,
		},
		{
			name: "unknown account",
			run: func() error {
				_, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: "missing", Amount: dec("1")})
				return err
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "account of another owner",
			run: func() error {
				_, err := f.ledger.AddExpense(ctx, usecase.ExpenseInput{OwnerID: "intruder", AccountID: a.ID, Amount: dec("1")})
				return err
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "transfer to unknown account",
			run: func() error {
				_, err := f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: a.ID, ToAccountID: "missing", Amount: dec("1")})
				return err
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "credit overflow",
			run: func() error {
				_, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: a.ID, Amount: dec("999999999999999.99")})
				return err
			},
			wantErr: domain.ErrAmountOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "10.00", f.balance(t, a.ID))
		})
	}
}

func TestLedgerUseCase_DeleteTransaction(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a := f.openAccount(t, "Checking", "20")

	income, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: a.ID, Amount: dec("7.25")})
	require.NoError(t, err)
	assert.Equal(t, "27.25", f.balance(t, a.ID))

	deleted, err := f.ledger.DeleteTransaction(ctx, owner, income.ID)
	require.NoError(t, err)
	assert.Equal(t, income.ID, deleted.ID)
	assert.Equal(t, "20.00", f.balance(t, a.ID))

	expense, err := f.ledger.AddExpense(ctx, usecase.ExpenseInput{OwnerID: owner, AccountID: a.ID, Amount: dec("3.50")})
	require.NoError(t, err)
	assert.Equal(t, "16.50", f.balance(t, a.ID))

	_, err = f.ledger.DeleteTransaction(ctx, owner, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.00", f.balance(t, a.ID))

	_, err = f.ledger.DeleteTransaction(ctx, owner, expense.ID)
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)

	page, err := f.reports.PaginateTransactions(ctx, usecase.PageInput{OwnerID: owner})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestLedgerUseCase_DeleteTransactionEdgeCases(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a := f.openAccount(t, "Checking", "0")
	b := f.openAccount(t, "Savings", "0")

	income, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: a.ID, Amount: dec("10")})
	require.NoError(t, err)

	t.Run("foreign owner sees not found", func(t *testing.T) {
		_, err := f.ledger.DeleteTransaction(ctx, "intruder", income.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "10.00", f.balance(t, a.ID))
	})

	t.Run("reversing spent income fails", func(t *testing.T) {
		_, err := f.ledger.AddExpense(ctx, usecase.ExpenseInput{OwnerID: owner, AccountID: a.ID, Amount: dec("6")})
		require.NoError(t, err)

		_, err = f.ledger.DeleteTransaction(ctx, owner, income.ID)
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)
		assert.Equal(t, "4.00", f.balance(t, a.ID))
	})

	t.Run("deleting one transfer leg leaves the other", func(t *testing.T) {
		transfer, err := f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("4")})
		require.NoError(t, err)

		_, err = f.ledger.DeleteTransaction(ctx, owner, transfer.Out.ID)
		require.NoError(t, err)

		assert.Equal(t, "4.00", f.balance(t, a.ID))
		assert.Equal(t, "4.00", f.balance(t, b.ID))

		summary, err := f.reports.AccountSummary(ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.IncomeCount)
	})
}

func TestLedgerUseCase_ConcurrentCredits(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a := f.openAccount(t, "Checking", "1")

	const workers = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			amount := dec("1.50")
			if i%2 == 0 {
				amount = dec("2.25")
			}

			_, err := f.ledger.AddIncome(ctx, usecase.IncomeInput{OwnerID: owner, AccountID: a.ID, Amount: amount})
			errs <- err
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// 1 + 25*2.25 + 25*1.50
	assert.Equal(t, "94.75", f.balance(t, a.ID))
}

func TestLedgerUseCase_ConcurrentTransfersBothWays(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a := f.openAccount(t, "Checking", "100")
	b := f.openAccount(t, "Savings", "100")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("1")})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.ledger.AddTransfer(ctx, usecase.TransferInput{OwnerID: owner, FromAccountID: b.ID, ToAccountID: a.ID, Amount: dec("2")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "120.00", f.balance(t, a.ID))
	assert.Equal(t, "80.00", f.balance(t, b.ID))
}

func TestLedgerUseCase_ObserverSeesOutcome(t *testing.T) {
	store := newLedgerFixture(t).store

	var mu sync.Mutex
	seen := map[string]error{}
	observer := observerFunc(func(op string, err error) {
		mu.Lock()
		defer mu.Unlock()
		seen[op] = err
	})

	ledger := usecase.NewLedgerUseCase(store, memoryAccounts(store), memoryTransactions(store), &sequentialIDs{}, usecase.WithObserver(observer))

	_, err := ledger.AddIncome(context.Background(), usecase.IncomeInput{OwnerID: owner, AccountID: "missing", Amount: dec("1")})
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, errors.Is(seen[usecase.OpAddIncome], domain.ErrAccountNotFound))
}
