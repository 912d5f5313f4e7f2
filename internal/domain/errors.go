package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the ledger wraps exactly one of these,
// so callers classify failures with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPreconditionFailed  = errors.New("precondition failed")
	// ErrConflict marks a concurrent-write conflict or timeout; the whole unit may be retried.
	ErrConflict = errors.New("concurrent update conflict")
	// ErrStoreUnavailable is fatal for the current request.
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	// Account errors
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrNonZeroBalance  = fmt.Errorf("%w: account balance must be zero", ErrPreconditionFailed)
	ErrHasHistory      = fmt.Errorf("%w: account has transactions", ErrPreconditionFailed)

	// Transaction errors
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be a positive decimal", ErrInvalidInput)
	ErrAmountOverflow      = fmt.Errorf("%w: amount out of range", ErrInvalidInput)
	ErrSelfTransfer        = fmt.Errorf("%w: cannot transfer to the same account", ErrInvalidInput)
	ErrInvalidKind         = fmt.Errorf("%w: unknown transaction kind", ErrInvalidInput)
)
