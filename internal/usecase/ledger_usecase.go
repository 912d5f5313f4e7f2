package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/moneyledger/internal/domain"
)

// LedgerUseCase is the ledger engine. It owns every balance mutation: each operation reads,
// validates and writes one or two accounts plus the transaction rows in a single atomic unit.
type LedgerUseCase struct {
	uow         unitOfWork
	accountRepo AccountRepository
	txRepo      TransactionRepository
	idGen       IDGenerator
	clock       Clock
	observer    Observer
}

// Option customizes a use case.
type Option func(*options)

type options struct {
	retrier  Retrier
	clock    Clock
	observer Observer
}

// WithRetrier retries atomic units that fail with domain.ErrConflict.
func WithRetrier(r Retrier) Option { return func(o *options) { o.retrier = r } }

// WithClock overrides the time source.
func WithClock(c Clock) Option { return func(o *options) { o.clock = c } }

// WithObserver reports operation outcomes, typically to metrics.
func WithObserver(obs Observer) Option { return func(o *options) { o.observer = obs } }

func buildOptions(opts []Option) options {
	o := options{
		retrier:  noopRetrier{},
		clock:    UTCClock{},
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	idGen IDGenerator,
	opts ...Option,
) *LedgerUseCase {
	o := buildOptions(opts)

	return &LedgerUseCase{
		uow:         unitOfWork{txManager: txManager, retrier: o.retrier},
		accountRepo: accountRepo,
		txRepo:      txRepo,
		idGen:       idGen,
		clock:       o.clock,
		observer:    o.observer,
	}
}

// IncomeInput represents input for crediting an account.
type IncomeInput struct {
	OwnerID     string
	AccountID   string
	Amount      decimal.Decimal
	Description *string
}

// ExpenseInput represents input for debiting an account.
type ExpenseInput struct {
	OwnerID     string
	AccountID   string
	Amount      decimal.Decimal
	Description *string
}

// TransferInput represents input for moving money between two accounts of one owner.
type TransferInput struct {
	OwnerID       string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   *string
}

// TransferResult holds the two legs created by a transfer.
type TransferResult struct {
	Out *domain.Transaction
	In  *domain.Transaction
}

// AddIncome records an INCOME transaction and credits the destination account.
func (uc *LedgerUseCase) AddIncome(ctx context.Context, input IncomeInput) (result *domain.Transaction, err error) {
	defer uc.observe(OpAddIncome, time.Now(), &err)

	amount, err := validateMovement(input.OwnerID, input.Amount, input.Description)
	if err != nil {
		return nil, err
	}

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		account, err := uc.lockOne(ctx, tx, input.OwnerID, input.AccountID)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		income := domain.NewIncome(uc.idGen.Generate(), input.OwnerID, account.ID, amount, input.Description, now)

		if err := uc.credit(ctx, tx, account, income, now); err != nil {
			return err
		}

		result = income
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("transaction_id", result.ID).
		Str("account_id", result.AccountID).
		Stringer("amount", result.Amount).
		Msg("income recorded")

	return result, nil
}

// AddExpense records an EXPENSE transaction and debits the source account.
func (uc *LedgerUseCase) AddExpense(ctx context.Context, input ExpenseInput) (result *domain.Transaction, err error) {
	defer uc.observe(OpAddExpense, time.Now(), &err)

	amount, err := validateMovement(input.OwnerID, input.Amount, input.Description)
	if err != nil {
		return nil, err
	}

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		account, err := uc.lockOne(ctx, tx, input.OwnerID, input.AccountID)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		expense := domain.NewExpense(uc.idGen.Generate(), input.OwnerID, account.ID, amount, input.Description, now)

		if err := uc.debit(ctx, tx, account, expense, now); err != nil {
			return err
		}

		result = expense
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("transaction_id", result.ID).
		Str("account_id", result.AccountID).
		Stringer("amount", result.Amount).
		Msg("expense recorded")

	return result, nil
}

// AddTransfer moves money between two accounts of the same owner. It creates an EXPENSE
// leg on the source and an INCOME leg on the destination; both legs and both balance
// updates commit together.
func (uc *LedgerUseCase) AddTransfer(ctx context.Context, input TransferInput) (result *TransferResult, err error) {
	defer uc.observe(OpAddTransfer, time.Now(), &err)

	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSelfTransfer
	}

	amount, err := validateMovement(input.OwnerID, input.Amount, input.Description)
	if err != nil {
		return nil, err
	}

	outDescription := withDefault(input.Description, domain.TransferOutDescription)
	inDescription := withDefault(input.Description, domain.TransferInDescription)

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		// Locks are taken in ascending id order by the repository (deadlock prevention).
		accounts, err := uc.accountRepo.GetOwnedForUpdate(ctx, tx, input.OwnerID, []string{input.FromAccountID, input.ToAccountID})
		if err != nil {
			return err
		}

		byID := make(map[string]*domain.Account, len(accounts))
		for _, a := range accounts {
			byID[a.ID] = a
		}

		from, to := byID[input.FromAccountID], byID[input.ToAccountID]
		if from == nil || to == nil {
			return domain.ErrAccountNotFound
		}

		now := uc.clock.Now()
		out := domain.NewExpense(uc.idGen.Generate(), input.OwnerID, from.ID, amount, outDescription, now)
		in := domain.NewIncome(uc.idGen.Generate(), input.OwnerID, to.ID, amount, inDescription, now)

		if err := uc.debit(ctx, tx, from, out, now); err != nil {
			return err
		}

		if err := uc.credit(ctx, tx, to, in, now); err != nil {
			return err
		}

		result = &TransferResult{Out: out, In: in}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("out_transaction_id", result.Out.ID).
		Str("in_transaction_id", result.In.ID).
		Stringer("amount", amount).
		Msg("transfer recorded")

	return result, nil
}

// DeleteTransaction reverses the balance effect of one transaction and removes it.
// Only the given row is reversed: deleting one leg of a transfer leaves the other leg standing.
// Reversing an INCOME whose money has since been spent fails with ErrInsufficientBalance,
// so balances never go negative.
func (uc *LedgerUseCase) DeleteTransaction(ctx context.Context, ownerID, id string) (result *domain.Transaction, err error) {
	defer uc.observe(OpDeleteTransaction, time.Now(), &err)

	if err := domain.ValidateOwner(ownerID); err != nil {
		return nil, err
	}

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		txn, err := uc.txRepo.GetOwnedForUpdate(ctx, tx, ownerID, id)
		if err != nil {
			return err
		}

		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, txn.AccountID)
		if err != nil {
			return fmt.Errorf("transaction %s references account %s: %w", txn.ID, txn.AccountID, err)
		}

		if account.OwnerID != txn.OwnerID {
			return fmt.Errorf("transaction %s references foreign account %s: %w", txn.ID, account.ID, domain.ErrAccountNotFound)
		}

		var newBalance domain.Money
		switch txn.Kind {
		case domain.KindIncome:
			if err := account.ValidateDebit(txn.Amount); err != nil {
				return err
			}
			newBalance, err = account.ApplyDebit(txn.Amount)
		case domain.KindExpense:
			newBalance, err = account.ApplyCredit(txn.Amount)
		default:
			err = domain.ErrInvalidKind
		}
		if err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, uc.clock.Now()); err != nil {
			return err
		}

		if err := uc.txRepo.Delete(ctx, tx, txn.ID); err != nil {
			return err
		}

		result = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("transaction_id", result.ID).
		Str("kind", string(result.Kind)).
		Msg("transaction reversed")

	return result, nil
}

func (uc *LedgerUseCase) lockOne(ctx context.Context, tx Transaction, ownerID, accountID string) (*domain.Account, error) {
	accounts, err := uc.accountRepo.GetOwnedForUpdate(ctx, tx, ownerID, []string{accountID})
	if err != nil {
		return nil, err
	}

	if len(accounts) != 1 || accounts[0].ID != accountID {
		return nil, domain.ErrAccountNotFound
	}

	return accounts[0], nil
}

func (uc *LedgerUseCase) credit(ctx context.Context, tx Transaction, account *domain.Account, income *domain.Transaction, now time.Time) error {
	newBalance, err := account.ApplyCredit(income.Amount)
	if err != nil {
		return err
	}

	return uc.write(ctx, tx, account, income, newBalance, now)
}

func (uc *LedgerUseCase) debit(ctx context.Context, tx Transaction, account *domain.Account, expense *domain.Transaction, now time.Time) error {
	if err := account.ValidateDebit(expense.Amount); err != nil {
		return err
	}

	newBalance, err := account.ApplyDebit(expense.Amount)
	if err != nil {
		return err
	}

	return uc.write(ctx, tx, account, expense, newBalance, now)
}

func (uc *LedgerUseCase) write(ctx context.Context, tx Transaction, account *domain.Account, txn *domain.Transaction, newBalance domain.Money, now time.Time) error {
	if err := txn.Validate(); err != nil {
		return err
	}

	if err := uc.txRepo.Create(ctx, tx, txn); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return err
	}

	account.Balance = newBalance
	account.UpdatedAt = now

	return nil
}

func (uc *LedgerUseCase) observe(op string, start time.Time, err *error) {
	uc.observer.ObserveOperation(op, time.Since(start), *err)
}

func validateMovement(ownerID string, raw decimal.Decimal, description *string) (domain.Money, error) {
	if err := domain.ValidateOwner(ownerID); err != nil {
		return domain.Zero, err
	}

	amount, err := domain.NewAmount(raw)
	if err != nil {
		return domain.Zero, err
	}

	if err := domain.ValidateDescription(description); err != nil {
		return domain.Zero, err
	}

	return amount, nil
}

func withDefault(description *string, fallback string) *string {
	if description != nil && *description != "" {
		return description
	}
	return &fallback
}
