package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID        string             `json:"id"`
	OwnerID   string             `json:"owner_id"`
	Name      string             `json:"name"`
	Type      string             `json:"type"`
	Balance   pgtype.Numeric     `json:"balance"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Transaction struct {
	ID                   string             `json:"id"`
	OwnerID              string             `json:"owner_id"`
	Kind                 string             `json:"kind"`
	Amount               pgtype.Numeric     `json:"amount"`
	Description          pgtype.Text        `json:"description"`
	SourceAccountID      pgtype.Text        `json:"source_account_id"`
	DestinationAccountID pgtype.Text        `json:"destination_account_id"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
}
