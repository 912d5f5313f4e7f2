package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/infrastructure/postgres/generated"
)

// Type conversion helpers.
func moneyToNumeric(m domain.Money) pgtype.Numeric {
	d := m.Decimal()
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func numericToMoney(n pgtype.Numeric) (domain.Money, error) {
	if !n.Valid || n.Int == nil {
		return domain.Zero, nil
	}

	return domain.NewMoney(decimal.NewFromBigInt(n.Int, n.Exp))
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}

func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func rowToAccount(row generated.Account) (*domain.Account, error) {
	balance, err := numericToMoney(row.Balance)
	if err != nil {
		return nil, fmt.Errorf("account %s balance: %w", row.ID, err)
	}

	return &domain.Account{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		Type:      domain.AccountType(row.Type),
		Balance:   balance,
		CreatedAt: row.CreatedAt.Time.UTC(),
		UpdatedAt: row.UpdatedAt.Time.UTC(),
	}, nil
}

func rowsToAccounts(rows []generated.Account) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		account, err := rowToAccount(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

func rowToTransaction(row generated.Transaction) (*domain.Transaction, error) {
	kind, err := domain.ParseTransactionKind(row.Kind)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", row.ID, err)
	}

	accountID, err := domain.FromReferences(kind, textPtr(row.SourceAccountID), textPtr(row.DestinationAccountID))
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", row.ID, err)
	}

	amount, err := numericToMoney(row.Amount)
	if err != nil {
		return nil, fmt.Errorf("transaction %s amount: %w", row.ID, err)
	}

	return &domain.Transaction{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Kind:        kind,
		AccountID:   accountID,
		Amount:      amount,
		Description: textPtr(row.Description),
		CreatedAt:   row.CreatedAt.Time.UTC(),
	}, nil
}

func rowsToTransactions(rows []generated.Transaction) ([]*domain.Transaction, error) {
	items := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}

	return items, nil
}

func referenceColumns(t *domain.Transaction) (source, destination pgtype.Text) {
	if id := t.SourceAccountID(); id != "" {
		source = pgtype.Text{String: id, Valid: true}
	}
	if id := t.DestinationAccountID(); id != "" {
		destination = pgtype.Text{String: id, Valid: true}
	}
	return source, destination
}
