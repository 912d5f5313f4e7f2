package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*) FROM transactions
WHERE owner_id = $1
`

func (q *Queries) CountTransactions(ctx context.Context, ownerID string) (int64, error) {
	row := q.db.QueryRow(ctx, countTransactions, ownerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, owner_id, kind, amount, description, source_account_id, destination_account_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateTransactionParams struct {
	ID                   string             `json:"id"`
	OwnerID              string             `json:"owner_id"`
	Kind                 string             `json:"kind"`
	Amount               pgtype.Numeric     `json:"amount"`
	Description          pgtype.Text        `json:"description"`
	SourceAccountID      pgtype.Text        `json:"source_account_id"`
	DestinationAccountID pgtype.Text        `json:"destination_account_id"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.Exec(ctx, createTransaction,
		arg.ID,
		arg.OwnerID,
		arg.Kind,
		arg.Amount,
		arg.Description,
		arg.SourceAccountID,
		arg.DestinationAccountID,
		arg.CreatedAt,
	)
	return err
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions
WHERE id = $1
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getAccountTotals = `-- name: GetAccountTotals :one
SELECT
    COALESCE(SUM(amount) FILTER (WHERE kind = 'INCOME' AND destination_account_id = $1::text), 0)::numeric AS income_total,
    COUNT(*) FILTER (WHERE kind = 'INCOME' AND destination_account_id = $1::text) AS income_count,
    COALESCE(SUM(amount) FILTER (WHERE kind = 'EXPENSE' AND source_account_id = $1::text), 0)::numeric AS expense_total,
    COUNT(*) FILTER (WHERE kind = 'EXPENSE' AND source_account_id = $1::text) AS expense_count
FROM transactions
WHERE owner_id = $2
`

type GetAccountTotalsParams struct {
	AccountID string `json:"account_id"`
	OwnerID   string `json:"owner_id"`
}

type GetAccountTotalsRow struct {
	IncomeTotal  pgtype.Numeric `json:"income_total"`
	IncomeCount  int64          `json:"income_count"`
	ExpenseTotal pgtype.Numeric `json:"expense_total"`
	ExpenseCount int64          `json:"expense_count"`
}

func (q *Queries) GetAccountTotals(ctx context.Context, arg GetAccountTotalsParams) (GetAccountTotalsRow, error) {
	row := q.db.QueryRow(ctx, getAccountTotals, arg.AccountID, arg.OwnerID)
	var i GetAccountTotalsRow
	err := row.Scan(
		&i.IncomeTotal,
		&i.IncomeCount,
		&i.ExpenseTotal,
		&i.ExpenseCount,
	)
	return i, err
}

const getOwnedTransactionForUpdate = `-- name: GetOwnedTransactionForUpdate :one
SELECT id, owner_id, kind, amount, description, source_account_id, destination_account_id, created_at
FROM transactions
WHERE id = $1 AND owner_id = $2
FOR UPDATE
`

type GetOwnedTransactionForUpdateParams struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

func (q *Queries) GetOwnedTransactionForUpdate(ctx context.Context, arg GetOwnedTransactionForUpdateParams) (Transaction, error) {
	row := q.db.QueryRow(ctx, getOwnedTransactionForUpdate, arg.ID, arg.OwnerID)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Kind,
		&i.Amount,
		&i.Description,
		&i.SourceAccountID,
		&i.DestinationAccountID,
		&i.CreatedAt,
	)
	return i, err
}

const getPeriodTotals = `-- name: GetPeriodTotals :one
SELECT
    COALESCE(SUM(amount) FILTER (WHERE kind = 'INCOME'), 0)::numeric AS income_total,
    COALESCE(SUM(amount) FILTER (WHERE kind = 'EXPENSE'), 0)::numeric AS expense_total
FROM transactions
WHERE owner_id = $1 AND created_at >= $2
`

type GetPeriodTotalsParams struct {
	OwnerID   string             `json:"owner_id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type GetPeriodTotalsRow struct {
	IncomeTotal  pgtype.Numeric `json:"income_total"`
	ExpenseTotal pgtype.Numeric `json:"expense_total"`
}

func (q *Queries) GetPeriodTotals(ctx context.Context, arg GetPeriodTotalsParams) (GetPeriodTotalsRow, error) {
	row := q.db.QueryRow(ctx, getPeriodTotals, arg.OwnerID, arg.CreatedAt)
	var i GetPeriodTotalsRow
	err := row.Scan(&i.IncomeTotal, &i.ExpenseTotal)
	return i, err
}

const listTransactionsAsc = `-- name: ListTransactionsAsc :many
SELECT id, owner_id, kind, amount, description, source_account_id, destination_account_id, created_at
FROM transactions
WHERE owner_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2 OFFSET $3
`

type ListTransactionsAscParams struct {
	OwnerID string `json:"owner_id"`
	Limit   int32  `json:"limit"`
	Offset  int32  `json:"offset"`
}

func (q *Queries) ListTransactionsAsc(ctx context.Context, arg ListTransactionsAscParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsAsc, arg.OwnerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Kind,
			&i.Amount,
			&i.Description,
			&i.SourceAccountID,
			&i.DestinationAccountID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTransactionsDesc = `-- name: ListTransactionsDesc :many
SELECT id, owner_id, kind, amount, description, source_account_id, destination_account_id, created_at
FROM transactions
WHERE owner_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListTransactionsDescParams struct {
	OwnerID string `json:"owner_id"`
	Limit   int32  `json:"limit"`
	Offset  int32  `json:"offset"`
}

func (q *Queries) ListTransactionsDesc(ctx context.Context, arg ListTransactionsDescParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsDesc, arg.OwnerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Kind,
			&i.Amount,
			&i.Description,
			&i.SourceAccountID,
			&i.DestinationAccountID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTransactionsFiltered = `-- name: ListTransactionsFiltered :many
SELECT id, owner_id, kind, amount, description, source_account_id, destination_account_id, created_at
FROM transactions
WHERE owner_id = $1
  AND ($2::text IS NULL OR kind = $2::text)
  AND ($3::timestamptz IS NULL OR created_at >= $3::timestamptz)
  AND ($4::timestamptz IS NULL OR created_at <= $4::timestamptz)
ORDER BY created_at DESC, id DESC
`

type ListTransactionsFilteredParams struct {
	OwnerID  string             `json:"owner_id"`
	Kind     pgtype.Text        `json:"kind"`
	FromTime pgtype.Timestamptz `json:"from_time"`
	ToTime   pgtype.Timestamptz `json:"to_time"`
}

func (q *Queries) ListTransactionsFiltered(ctx context.Context, arg ListTransactionsFilteredParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsFiltered,
		arg.OwnerID,
		arg.Kind,
		arg.FromTime,
		arg.ToTime,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Kind,
			&i.Amount,
			&i.Description,
			&i.SourceAccountID,
			&i.DestinationAccountID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const transactionExistsForAccount = `-- name: TransactionExistsForAccount :one
SELECT EXISTS (
    SELECT 1 FROM transactions
    WHERE source_account_id = $1::text OR destination_account_id = $1::text
)
`

func (q *Queries) TransactionExistsForAccount(ctx context.Context, accountID string) (bool, error) {
	row := q.db.QueryRow(ctx, transactionExistsForAccount, accountID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
