package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds one atomic unit, retries included.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyInFlight marks a key whose first request has not finished yet.
	IdempotencyInFlight = "processing"
)

// Operation names reported to the Observer.
const (
	OpAddIncome         = "add_income"
	OpAddExpense        = "add_expense"
	OpAddTransfer       = "add_transfer"
	OpDeleteTransaction = "delete_transaction"
	OpDeleteAccount     = "delete_account"
)
