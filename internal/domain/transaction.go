package domain

import (
	"fmt"
	"time"
)

// TransactionKind tells which side of an account a transaction touches.
type TransactionKind string

const (
	// KindIncome credits its destination account.
	KindIncome TransactionKind = "INCOME"
	// KindExpense debits its source account.
	KindExpense TransactionKind = "EXPENSE"
)

// ParseTransactionKind validates a kind string.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch k := TransactionKind(s); k {
	case KindIncome, KindExpense:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Default descriptions for the two legs of a transfer.
const (
	TransferOutDescription = "Transfer out"
	TransferInDescription  = "Transfer in"
)

// Transaction is one ledger row. It references exactly one account: the destination
// for INCOME and the source for EXPENSE. A transfer is two independent rows, one of
// each kind, created in the same atomic unit.
type Transaction struct {
	ID          string
	OwnerID     string
	Kind        TransactionKind
	AccountID   string
	Amount      Money
	Description *string
	CreatedAt   time.Time
}

// NewIncome builds an INCOME transaction crediting destinationID.
func NewIncome(id, ownerID, destinationID string, amount Money, description *string, at time.Time) *Transaction {
	return &Transaction{
		ID:          id,
		OwnerID:     ownerID,
		Kind:        KindIncome,
		AccountID:   destinationID,
		Amount:      amount,
		Description: description,
		CreatedAt:   at,
	}
}

// NewExpense builds an EXPENSE transaction debiting sourceID.
func NewExpense(id, ownerID, sourceID string, amount Money, description *string, at time.Time) *Transaction {
	return &Transaction{
		ID:          id,
		OwnerID:     ownerID,
		Kind:        KindExpense,
		AccountID:   sourceID,
		Amount:      amount,
		Description: description,
		CreatedAt:   at,
	}
}

// SourceAccountID returns the debited account, or "" for INCOME.
func (t *Transaction) SourceAccountID() string {
	if t.Kind == KindExpense {
		return t.AccountID
	}
	return ""
}

// DestinationAccountID returns the credited account, or "" for EXPENSE.
func (t *Transaction) DestinationAccountID() string {
	if t.Kind == KindIncome {
		return t.AccountID
	}
	return ""
}

// Validate checks the row invariants: known kind, account reference, positive amount.
func (t *Transaction) Validate() error {
	if t.Kind != KindIncome && t.Kind != KindExpense {
		return ErrInvalidKind
	}

	if t.AccountID == "" {
		return fmt.Errorf("%w: transaction must reference an account", ErrInvalidInput)
	}

	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	return ValidateDescription(t.Description)
}

// FromReferences rebuilds the variant from the persisted nullable columns.
// Rows with neither or both references are rejected.
func FromReferences(kind TransactionKind, sourceID, destinationID *string) (string, error) {
	switch {
	case kind == KindIncome && destinationID != nil && sourceID == nil:
		return *destinationID, nil
	case kind == KindExpense && sourceID != nil && destinationID == nil:
		return *sourceID, nil
	default:
		return "", fmt.Errorf("malformed %s row: source=%v destination=%v", kind, sourceID != nil, destinationID != nil)
	}
}

// TransactionView is a transaction decorated with the name of the account it references.
type TransactionView struct {
	*Transaction
	AccountName string
}
