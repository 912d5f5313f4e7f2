package dto

import (
	"time"

	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	Balance   domain.Money `json:"balance"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// AccountRef names the account a transaction touches.
type AccountRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                   string       `json:"id"`
	Type                 string       `json:"type"`
	Amount               domain.Money `json:"amount"`
	Description          *string      `json:"description"`
	SourceAccountID      *string      `json:"source_account_id"`
	DestinationAccountID *string      `json:"destination_account_id"`
	Account              *AccountRef  `json:"account,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          t.ID,
		Type:        string(t.Kind),
		Amount:      t.Amount,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}

	if id := t.SourceAccountID(); id != "" {
		resp.SourceAccountID = &id
	}
	if id := t.DestinationAccountID(); id != "" {
		resp.DestinationAccountID = &id
	}

	return resp
}

// TransactionViewFromDomain converts a decorated transaction to response.
func TransactionViewFromDomain(v *domain.TransactionView) *TransactionResponse {
	resp := TransactionFromDomain(v.Transaction)
	resp.Account = &AccountRef{ID: v.AccountID, Name: v.AccountName}
	return resp
}

// TransactionViewsFromDomain converts decorated transactions to responses.
func TransactionViewsFromDomain(views []*domain.TransactionView) []*TransactionResponse {
	result := make([]*TransactionResponse, len(views))
	for i, v := range views {
		result[i] = TransactionViewFromDomain(v)
	}
	return result
}

// ListTransactionsResponse represents a filtered list of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// TransferResponse holds both legs of a transfer.
type TransferResponse struct {
	Out *TransactionResponse `json:"out"`
	In  *TransactionResponse `json:"in"`
}

// TransferFromResult converts a transfer result to response.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		Out: TransactionFromDomain(r.Out),
		In:  TransactionFromDomain(r.In),
	}
}

// TransactionPageResponse represents one page of transactions.
type TransactionPageResponse struct {
	Items      []*TransactionResponse `json:"items"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"total_pages"`
}

// TransactionPageFromDomain converts a page to response.
func TransactionPageFromDomain(p *domain.TransactionPage) *TransactionPageResponse {
	return &TransactionPageResponse{
		Items:      TransactionViewsFromDomain(p.Items),
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

// AccountSummaryResponse represents the totals of one account.
type AccountSummaryResponse struct {
	AccountID        string       `json:"account_id"`
	Balance          domain.Money `json:"balance"`
	TotalIncome      domain.Money `json:"total_income"`
	TotalExpense     domain.Money `json:"total_expense"`
	IncomeCount      int64        `json:"income_count"`
	ExpenseCount     int64        `json:"expense_count"`
	TransactionCount int64        `json:"transaction_count"`
}

// AccountSummaryFromDomain converts an account summary to response.
func AccountSummaryFromDomain(s *domain.AccountSummary) *AccountSummaryResponse {
	return &AccountSummaryResponse{
		AccountID:        s.AccountID,
		Balance:          s.Balance,
		TotalIncome:      s.TotalIncome,
		TotalExpense:     s.TotalExpense,
		IncomeCount:      s.IncomeCount,
		ExpenseCount:     s.ExpenseCount,
		TransactionCount: s.TransactionCount,
	}
}

// AccountBalance is one account row of the dashboard.
type AccountBalance struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Type    string       `json:"type"`
	Balance domain.Money `json:"balance"`
}

// DashboardResponse represents the owner's portfolio summary.
type DashboardResponse struct {
	TotalBalance   domain.Money      `json:"total_balance"`
	MonthlyIncome  domain.Money      `json:"monthly_income"`
	MonthlyExpense domain.Money      `json:"monthly_expense"`
	PeriodStart    time.Time         `json:"period_start"`
	Accounts       []*AccountBalance `json:"accounts"`
}

// DashboardFromDomain converts a portfolio summary to response.
func DashboardFromDomain(s *domain.PortfolioSummary) *DashboardResponse {
	accounts := make([]*AccountBalance, len(s.Accounts))
	for i, a := range s.Accounts {
		accounts[i] = &AccountBalance{ID: a.ID, Name: a.Name, Type: string(a.Type), Balance: a.Balance}
	}

	return &DashboardResponse{
		TotalBalance:   s.TotalBalance,
		MonthlyIncome:  s.TotalIncome,
		MonthlyExpense: s.TotalExpense,
		PeriodStart:    s.PeriodStart,
		Accounts:       accounts,
	}
}
