package domain

import (
	"time"
)

// AccountType tags what an account represents. It carries no ledger semantics.
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCash       AccountType = "CASH"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeOther      AccountType = "OTHER"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeChecking:   true,
	AccountTypeSavings:    true,
	AccountTypeCash:       true,
	AccountTypeCreditCard: true,
	AccountTypeInvestment: true,
	AccountTypeOther:      true,
}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// Account is a user-owned balance holder. Its balance is only ever changed by the ledger.
type Account struct {
	ID        string
	OwnerID   string
	Name      string
	Type      AccountType
	Balance   Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount Money) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount Money) (Money, error) {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount Money) (Money, error) {
	return a.Balance.Add(amount)
}

// ValidateDeletion checks the lifecycle preconditions that do not need the ledger history.
func (a *Account) ValidateDeletion() error {
	if !a.Balance.IsZero() {
		return ErrNonZeroBalance
	}
	return nil
}
