package handler

import (
	"context"
	"net/http"

	"github.com/iho/moneyledger/internal/adapter/http/dto"
	"github.com/iho/moneyledger/internal/domain"
)

// PortfolioReporter summarizes all of an owner's accounts.
type PortfolioReporter interface {
	PortfolioSummary(ctx context.Context, ownerID string) (*domain.PortfolioSummary, error)
}

// DashboardHandler serves the portfolio overview.
type DashboardHandler struct {
	reportUC PortfolioReporter
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportUC PortfolioReporter) *DashboardHandler {
	return &DashboardHandler{reportUC: reportUC}
}

// Summary returns the total balance and this month's income and expense.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	summary, err := h.reportUC.PortfolioSummary(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardFromDomain(summary))
}
