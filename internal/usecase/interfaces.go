package usecase

import (
	"context"
	"time"

	"github.com/iho/moneyledger/internal/domain"
)

// AccountRepository defines data access for accounts.
// Every lookup is scoped to an owner; an account owned by someone else is reported
// as domain.ErrAccountNotFound.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetOwned(ctx context.Context, tx Transaction, ownerID, id string) (*domain.Account, error)
	// GetOwnedForUpdate locks the requested accounts in ascending id order and returns the ones found.
	GetOwnedForUpdate(ctx context.Context, tx Transaction, ownerID string, ids []string) ([]*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	ListByOwner(ctx context.Context, tx Transaction, ownerID string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance domain.Money, updatedAt time.Time) error
	Delete(ctx context.Context, tx Transaction, id string) error
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetOwnedForUpdate(ctx context.Context, tx Transaction, ownerID, id string) (*domain.Transaction, error)
	Delete(ctx context.Context, tx Transaction, id string) error
	ExistsForAccount(ctx context.Context, tx Transaction, accountID string) (bool, error)
	AccountTotals(ctx context.Context, tx Transaction, ownerID, accountID string) (domain.AccountTotals, error)
	// PeriodTotals sums INCOME and EXPENSE amounts created at or after since.
	PeriodTotals(ctx context.Context, tx Transaction, ownerID string, since time.Time) (income, expense domain.Money, err error)
	Count(ctx context.Context, tx Transaction, ownerID string) (int64, error)
	ListPage(ctx context.Context, tx Transaction, ownerID string, order domain.SortOrder, limit, offset int) ([]*domain.Transaction, error)
	// List returns the filtered transactions newest first.
	List(ctx context.Context, tx Transaction, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
	// BeginReadOnly starts a transaction that sees one consistent snapshot.
	BeginReadOnly(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an atomic unit that failed with domain.ErrConflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Observer receives the outcome of every ledger operation.
type Observer interface {
	ObserveOperation(operation string, duration time.Duration, err error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so the client can retry it.
	Release(ctx context.Context, key string) error
}
