package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewIncomeAndExpense_References(t *testing.T) {
	now := time.Now().UTC()

	income := NewIncome("tx-1", "user-1", "acc-1", MoneyFromInt(10), nil, now)
	if income.DestinationAccountID() != "acc-1" || income.SourceAccountID() != "" {
		t.Fatalf("income must reference only its destination, got src=%q dst=%q", income.SourceAccountID(), income.DestinationAccountID())
	}

	expense := NewExpense("tx-2", "user-1", "acc-1", MoneyFromInt(10), nil, now)
	if expense.SourceAccountID() != "acc-1" || expense.DestinationAccountID() != "" {
		t.Fatalf("expense must reference only its source, got src=%q dst=%q", expense.SourceAccountID(), expense.DestinationAccountID())
	}
}

func TestTransaction_Validate(t *testing.T) {
	long := strings.Repeat("x", MaxDescriptionLength+1)

	tests := []struct {
		name    string
		tx      *Transaction
		wantErr error
	}{
		{
			name: "valid income",
			tx:   NewIncome("tx", "u", "acc", MoneyFromInt(1), nil, time.Now()),
		},
		{
			name:    "zero amount",
			tx:      NewExpense("tx", "u", "acc", Zero, nil, time.Now()),
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "missing account",
			tx:      NewIncome("tx", "u", "", MoneyFromInt(1), nil, time.Now()),
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown kind",
			tx:      &Transaction{Kind: "TRANSFER", AccountID: "acc", Amount: MoneyFromInt(1)},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "description too long",
			tx:      NewIncome("tx", "u", "acc", MoneyFromInt(1), &long, time.Now()),
			wantErr: ErrInvalidDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFromReferences(t *testing.T) {
	src, dst := "src", "dst"

	if id, err := FromReferences(KindIncome, nil, &dst); err != nil || id != dst {
		t.Fatalf("expected destination for income, got %q %v", id, err)
	}

	if id, err := FromReferences(KindExpense, &src, nil); err != nil || id != src {
		t.Fatalf("expected source for expense, got %q %v", id, err)
	}

	if _, err := FromReferences(KindIncome, &src, &dst); err == nil {
		t.Fatal("expected error for row with both references")
	}

	if _, err := FromReferences(KindExpense, nil, nil); err == nil {
		t.Fatal("expected error for row with no reference")
	}

	if _, err := FromReferences(KindIncome, &src, nil); err == nil {
		t.Fatal("expected error for income referencing a source")
	}
}

func TestParseTransactionKind(t *testing.T) {
	if k, err := ParseTransactionKind("INCOME"); err != nil || k != KindIncome {
		t.Fatalf("expected INCOME, got %q %v", k, err)
	}

	if _, err := ParseTransactionKind("TRANSFER"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestStartOfMonth(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	got := StartOfMonth(time.Date(2026, 3, 1, 1, 30, 0, 0, loc))

	want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
