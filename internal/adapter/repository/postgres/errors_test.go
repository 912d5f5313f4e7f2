package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/iho/moneyledger/internal/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	plain := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: domain.ErrConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: domain.ErrConflict},
		{name: "lock timeout", err: &pgconn.PgError{Code: "55P03"}, want: domain.ErrConflict},
		{name: "statement timeout", err: &pgconn.PgError{Code: "57014"}, want: domain.ErrConflict},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, want: domain.ErrStoreUnavailable},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, want: domain.ErrStoreUnavailable},
		{name: "check violation passes through", err: &pgconn.PgError{Code: "23514"}, want: nil},
		{name: "unknown passes through", err: plain, want: plain},
		{name: "context deadline keeps its identity", err: context.DeadlineExceeded, want: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classify(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}

			assert.ErrorIs(t, got, tt.err)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
			}
			assert.False(t, tt.want == nil && errors.Is(got, domain.ErrConflict))
		})
	}
}
