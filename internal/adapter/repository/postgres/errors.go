package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/moneyledger/internal/domain"
)

// PostgreSQL error codes that mean "run the unit again".
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
	pgErrLockNotAvailable     = "55P03"
	pgErrQueryCanceled        = "57014"
)

// classify maps driver errors onto the domain taxonomy. Errors it does not recognize
// are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgErrSerializationFailure,
			pgErr.Code == pgErrDeadlock,
			pgErr.Code == pgErrLockNotAvailable,
			pgErr.Code == pgErrQueryCanceled:
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		case len(pgErr.Code) == 5 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "57"):
			// connection exception, operator intervention
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}

		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}

	return err
}
