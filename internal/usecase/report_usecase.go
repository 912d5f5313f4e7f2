package usecase

import (
	"context"

	"github.com/iho/moneyledger/internal/domain"
)

// ReportUseCase aggregates the ledger for read-only views. Every report reads one
// consistent snapshot, so it never observes a half-applied ledger operation.
type ReportUseCase struct {
	uow         unitOfWork
	accountRepo AccountRepository
	txRepo      TransactionRepository
	clock       Clock
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	opts ...Option,
) *ReportUseCase {
	o := buildOptions(opts)

	return &ReportUseCase{
		uow:         unitOfWork{txManager: txManager, retrier: o.retrier},
		accountRepo: accountRepo,
		txRepo:      txRepo,
		clock:       o.clock,
	}
}

// AccountSummary returns the balance and income/expense totals of one account.
func (uc *ReportUseCase) AccountSummary(ctx context.Context, ownerID, accountID string) (*domain.AccountSummary, error) {
	if err := domain.ValidateOwner(ownerID); err != nil {
		return nil, err
	}

	var summary *domain.AccountSummary
	err := uc.uow.read(ctx, func(ctx context.Context, tx Transaction) error {
		account, err := uc.accountRepo.GetOwned(ctx, tx, ownerID, accountID)
		if err != nil {
			return err
		}

		totals, err := uc.txRepo.AccountTotals(ctx, tx, ownerID, accountID)
		if err != nil {
			return err
		}

		summary = &domain.AccountSummary{
			AccountID:        account.ID,
			Balance:          account.Balance,
			TotalIncome:      totals.IncomeTotal,
			TotalExpense:     totals.ExpenseTotal,
			IncomeCount:      totals.IncomeCount,
			ExpenseCount:     totals.ExpenseCount,
			TransactionCount: totals.IncomeCount + totals.ExpenseCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// PortfolioSummary returns the owner's total balance, this month's income and expense,
// and every account balance.
func (uc *ReportUseCase) PortfolioSummary(ctx context.Context, ownerID string) (*domain.PortfolioSummary, error) {
	if err := domain.ValidateOwner(ownerID); err != nil {
		return nil, err
	}

	since := domain.StartOfMonth(uc.clock.Now())

	var summary *domain.PortfolioSummary
	err := uc.uow.read(ctx, func(ctx context.Context, tx Transaction) error {
		accounts, err := uc.accountRepo.ListByOwner(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		total := domain.Zero
		for _, a := range accounts {
			if total, err = total.Add(a.Balance); err != nil {
				return err
			}
		}

		income, expense, err := uc.txRepo.PeriodTotals(ctx, tx, ownerID, since)
		if err != nil {
			return err
		}

		summary = &domain.PortfolioSummary{
			TotalBalance: total,
			TotalIncome:  income,
			TotalExpense: expense,
			PeriodStart:  since,
			Accounts:     accounts,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// PageInput represents input for paginating transactions.
type PageInput struct {
	OwnerID string
	Page    int
	Limit   int
	Sort    domain.SortOrder
}

// PaginateTransactions returns one page of the owner's transactions ordered by creation time.
func (uc *ReportUseCase) PaginateTransactions(ctx context.Context, input PageInput) (*domain.TransactionPage, error) {
	if err := domain.ValidateOwner(input.OwnerID); err != nil {
		return nil, err
	}

	page, limit := domain.NormalizePagination(input.Page, input.Limit)
	order := input.Sort
	if order != domain.SortAsc {
		order = domain.SortDesc
	}

	result := &domain.TransactionPage{Page: page, Limit: limit}
	err := uc.uow.read(ctx, func(ctx context.Context, tx Transaction) error {
		total, err := uc.txRepo.Count(ctx, tx, input.OwnerID)
		if err != nil {
			return err
		}

		result.Total = total
		result.TotalPages = int((total + int64(limit) - 1) / int64(limit))
		result.Items = []*domain.TransactionView{}

		// Past the last page: nothing to fetch, and (page-1)*limit could overflow.
		if int64(page) > int64(result.TotalPages) {
			return nil
		}

		items, err := uc.txRepo.ListPage(ctx, tx, input.OwnerID, order, limit, (page-1)*limit)
		if err != nil {
			return err
		}

		views, err := uc.decorate(ctx, tx, input.OwnerID, items)
		if err != nil {
			return err
		}

		result.Items = views
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListTransactions returns the owner's transactions matching filter, newest first.
func (uc *ReportUseCase) ListTransactions(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]*domain.TransactionView, error) {
	if err := domain.ValidateOwner(ownerID); err != nil {
		return nil, err
	}

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.ErrInvalidTimeRange
	}

	var views []*domain.TransactionView
	err := uc.uow.read(ctx, func(ctx context.Context, tx Transaction) error {
		items, err := uc.txRepo.List(ctx, tx, ownerID, filter)
		if err != nil {
			return err
		}

		views, err = uc.decorate(ctx, tx, ownerID, items)
		return err
	})
	if err != nil {
		return nil, err
	}

	return views, nil
}

func (uc *ReportUseCase) decorate(ctx context.Context, tx Transaction, ownerID string, items []*domain.Transaction) ([]*domain.TransactionView, error) {
	views := make([]*domain.TransactionView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	accounts, err := uc.accountRepo.ListByOwner(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	for _, t := range items {
		views = append(views, &domain.TransactionView{Transaction: t, AccountName: names[t.AccountID]})
	}

	return views, nil
}
