package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/moneyledger/internal/adapter/repository/memory"
	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/usecase"
)

const owner = "user-1"

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequentialIDs) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%05d", s.n)
}

// steppingClock advances by one second on every call so creation times are distinct.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type ledgerFixture struct {
	store    *memory.Store
	clock    *steppingClock
	accounts *usecase.AccountUseCase
	ledger   *usecase.LedgerUseCase
	reports  *usecase.ReportUseCase
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	store := memory.NewStore()
	accountRepo := memory.NewAccountRepository(store)
	txRepo := memory.NewTransactionRepository(store)
	ids := &sequentialIDs{}
	clock := &steppingClock{now: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)}

	return &ledgerFixture{
		store:    store,
		clock:    clock,
		accounts: usecase.NewAccountUseCase(store, accountRepo, txRepo, ids, usecase.WithClock(clock)),
		ledger:   usecase.NewLedgerUseCase(store, accountRepo, txRepo, ids, usecase.WithClock(clock)),
		reports:  usecase.NewReportUseCase(store, accountRepo, txRepo, usecase.WithClock(clock)),
	}
}

func (f *ledgerFixture) openAccount(t *testing.T, name, balance string) *domain.Account {
	t.Helper()

	account, err := f.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{
		OwnerID:        owner,
		Name:           name,
		Type:           domain.AccountTypeChecking,
		InitialBalance: decimal.RequireFromString(balance),
	})
	require.NoError(t, err)

	return account
}

func (f *ledgerFixture) balance(t *testing.T, accountID string) string {
	t.Helper()

	summary, err := f.reports.AccountSummary(context.Background(), owner, accountID)
	require.NoError(t, err)

	return summary.Balance.String()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

type observerFunc func(op string, err error)

func (f observerFunc) ObserveOperation(op string, _ time.Duration, err error) { f(op, err) }

func memoryAccounts(store *memory.Store) *memory.AccountRepository {
	return memory.NewAccountRepository(store)
}

func memoryTransactions(store *memory.Store) *memory.TransactionRepository {
	return memory.NewTransactionRepository(store)
}
