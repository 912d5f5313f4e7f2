package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/iho/moneyledger/internal/domain"
)

type scanner interface {
	Scan(dest ...any) error
}

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

const accountColumns = "id, owner_id, name, type, balance, created_at, updated_at"

func scanAccount(row scanner) (*domain.Account, error) {
	var (
		a                    domain.Account
		accountType, balance string
		created, updated     int64
	)

	if err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &accountType, &balance, &created, &updated); err != nil {
		return nil, err
	}

	money, err := domain.ParseMoney(balance)
	if err != nil {
		return nil, fmt.Errorf("account %s balance: %w", a.ID, err)
	}

	a.Type = domain.AccountType(accountType)
	a.Balance = money
	a.CreatedAt = fromNanos(created)
	a.UpdatedAt = fromNanos(updated)

	return &a, nil
}

const transactionColumns = "id, owner_id, kind, amount, description, source_account_id, destination_account_id, created_at"

func scanTransaction(row scanner) (*domain.Transaction, error) {
	var (
		t                       domain.Transaction
		kind, amount            string
		description             sql.NullString
		sourceID, destinationID sql.NullString
		created                 int64
	)

	if err := row.Scan(&t.ID, &t.OwnerID, &kind, &amount, &description, &sourceID, &destinationID, &created); err != nil {
		return nil, err
	}

	k, err := domain.ParseTransactionKind(kind)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
	}

	accountID, err := domain.FromReferences(k, stringPtr(sourceID), stringPtr(destinationID))
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
	}

	money, err := domain.ParseMoney(amount)
	if err != nil {
		return nil, fmt.Errorf("transaction %s amount: %w", t.ID, err)
	}

	t.Kind = k
	t.AccountID = accountID
	t.Amount = money
	t.Description = stringPtr(description)
	t.CreatedAt = fromNanos(created)

	return &t, nil
}

func scanTransactions(rows *sql.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()

	items := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return items, nil
}
