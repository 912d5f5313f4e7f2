package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/moneyledger/internal/adapter/http/dto"
	"github.com/iho/moneyledger/internal/domain"
	"github.com/iho/moneyledger/internal/usecase"
)

// LedgerService defines the ledger mutations exposed over HTTP.
type LedgerService interface {
	AddIncome(ctx context.Context, input usecase.IncomeInput) (*domain.Transaction, error)
	AddExpense(ctx context.Context, input usecase.ExpenseInput) (*domain.Transaction, error)
	AddTransfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
	DeleteTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
}

// TransactionReporter lists transactions.
type TransactionReporter interface {
	PaginateTransactions(ctx context.Context, input usecase.PageInput) (*domain.TransactionPage, error)
	ListTransactions(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]*domain.TransactionView, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	ledgerUC LedgerService
	reportUC TransactionReporter
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerUC LedgerService, reportUC TransactionReporter) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC, reportUC: reportUC}
}

// Income credits an account.
func (h *TransactionHandler) Income(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.IncomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	txn, err := h.ledgerUC.AddIncome(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Expense debits an account.
func (h *TransactionHandler) Expense(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.ExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	txn, err := h.ledgerUC.AddExpense(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Transfer moves money between two of the caller's accounts.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.ledgerUC.AddTransfer(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromResult(result))
}

// Delete reverses a transaction and removes it. Reversing income that was already
// spent answers 422 insufficient_balance.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	txn, err := h.ledgerUC.DeleteTransaction(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// List returns the caller's transactions filtered by type and time range.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, err := h.reportUC.ListTransactions(r.Context(), owner, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionViewsFromDomain(views),
		Total:        int64(len(views)),
	})
}

// Paginate returns one page of the caller's transactions.
func (h *TransactionHandler) Paginate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	pageNum, err := parseIntQuery(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit, err := parseIntQuery(r, "limit", domain.DefaultPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.reportUC.PaginateTransactions(r.Context(), usecase.PageInput{
		OwnerID: owner,
		Page:    pageNum,
		Limit:   limit,
		Sort:    domain.ParseSortOrder(r.URL.Query().Get("sort")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromDomain(page))
}

func parseFilter(r *http.Request) (domain.TransactionFilter, error) {
	var filter domain.TransactionFilter

	if raw := r.URL.Query().Get("type"); raw != "" {
		kind, err := domain.ParseTransactionKind(raw)
		if err != nil {
			return filter, err
		}
		filter.Kind = &kind
	}

	from, err := parseTimeQuery(r, "from", false)
	if err != nil {
		return filter, err
	}

	to, err := parseTimeQuery(r, "to", true)
	if err != nil {
		return filter, err
	}

	filter.From, filter.To = from, to

	return filter, nil
}
