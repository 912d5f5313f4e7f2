package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/moneyledger/internal/domain"
)

// UTCClock is the production Clock.
type UTCClock struct{}

// Now returns the current UTC time.
func (UTCClock) Now() time.Time { return time.Now().UTC() }

type noopRetrier struct{}

func (noopRetrier) Retry(_ context.Context, operation func() error) error { return operation() }

type noopObserver struct{}

func (noopObserver) ObserveOperation(string, time.Duration, error) {}

// unitOfWork runs functions as atomic units against one TransactionManager.
type unitOfWork struct {
	txManager TransactionManager
	retrier   Retrier
}

// run executes fn inside a read-write transaction. Commit happens only when fn returns nil;
// otherwise the transaction is rolled back. Conflicts restart the whole unit through the retrier.
func (u unitOfWork) run(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	err := u.retrier.Retry(ctx, func() error {
		return u.attempt(ctx, u.txManager.Begin, fn)
	})

	return timeoutAsConflict(err)
}

// read executes fn inside a read-only snapshot. Nothing is retried: reads never conflict.
func (u unitOfWork) read(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	return timeoutAsConflict(u.attempt(ctx, u.txManager.BeginReadOnly, fn))
}

func (u unitOfWork) attempt(
	ctx context.Context,
	begin func(context.Context) (Transaction, error),
	fn func(ctx context.Context, tx Transaction) error,
) error {
	tx, err := begin(ctx)
	if err != nil {
		return err
	}
	// The rollback must reach the store even when the caller has gone away.
	defer tx.Rollback(context.WithoutCancel(ctx))

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func timeoutAsConflict(err error) error {
	if err == nil || errors.Is(err, domain.ErrConflict) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}

	return err
}
