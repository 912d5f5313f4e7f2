package domain

import "time"

// SortOrder orders transactions by creation time.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps "asc" to SortAsc and everything else to SortDesc.
func ParseSortOrder(s string) SortOrder {
	if s == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}

// AccountTotals aggregates the history of one account.
type AccountTotals struct {
	IncomeTotal  Money
	IncomeCount  int64
	ExpenseTotal Money
	ExpenseCount int64
}

// AccountSummary is the per-account report.
type AccountSummary struct {
	AccountID        string
	Balance          Money
	TotalIncome      Money
	TotalExpense     Money
	IncomeCount      int64
	ExpenseCount     int64
	TransactionCount int64
}

// PortfolioSummary is the owner-wide report.
type PortfolioSummary struct {
	TotalBalance Money
	// TotalIncome and TotalExpense cover transactions created at or after PeriodStart.
	TotalIncome  Money
	TotalExpense Money
	PeriodStart  time.Time
	Accounts     []*Account
}

// TransactionFilter narrows a listing. Nil fields do not filter; time bounds are inclusive.
type TransactionFilter struct {
	Kind *TransactionKind
	From *time.Time
	To   *time.Time
}

// TransactionPage is one page of an owner's transactions.
type TransactionPage struct {
	Items      []*TransactionView
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// StartOfMonth returns midnight UTC on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
