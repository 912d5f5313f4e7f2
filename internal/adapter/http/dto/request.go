package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(ownerID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerID:        ownerID,
		Name:           r.Name,
		Type:           domain.AccountType(r.Type),
		InitialBalance: r.InitialBalance,
	}
}

// IncomeRequest represents a request to credit an account.
type IncomeRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *IncomeRequest) ToUseCaseInput(ownerID string) usecase.IncomeInput {
	return usecase.IncomeInput{
		OwnerID:     ownerID,
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// ExpenseRequest represents a request to debit an account.
type ExpenseRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ExpenseRequest) ToUseCaseInput(ownerID string) usecase.ExpenseInput {
	return usecase.ExpenseInput{
		OwnerID:     ownerID,
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// TransferRequest represents a request to move money between two accounts.
type TransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   *string         `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(ownerID string) usecase.TransferInput {
	return usecase.TransferInput{
		OwnerID:       ownerID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Description:   r.Description,
	}
}
