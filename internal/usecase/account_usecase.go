package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/moneyledger/internal/domain"
)

// AccountUseCase handles account business logic: creation, listing and the deletion
// lifecycle.
type AccountUseCase struct {
	uow         unitOfWork
	accountRepo AccountRepository
	txRepo      TransactionRepository
	idGen       IDGenerator
	clock       Clock
	observer    Observer
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	idGen IDGenerator,
	opts ...Option,
) *AccountUseCase {
	o := buildOptions(opts)

	return &AccountUseCase{
		uow:         unitOfWork{txManager: txManager, retrier: o.retrier},
		accountRepo: accountRepo,
		txRepo:      txRepo,
		idGen:       idGen,
		clock:       o.clock,
		observer:    o.observer,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID        string
	Name           string
	Type           domain.AccountType
	InitialBalance decimal.Decimal
}

// CreateAccount creates a new account. The initial balance is an opening balance and
// must not be negative.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateOwner(input.OwnerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateAccountName(name); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountType(input.Type); err != nil {
		return nil, err
	}

	balance, err := domain.NewMoney(input.InitialBalance)
	if err != nil {
		return nil, err
	}

	if balance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	now := uc.clock.Now()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		Name:      name,
		Type:      input.Type,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("account_id", account.ID).Msg("account created")

	return account, nil
}

// ListAccounts lists the owner's accounts, oldest first.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	if err := domain.ValidateOwner(ownerID); err != nil {
		return nil, err
	}

	var accounts []*domain.Account
	err := uc.uow.read(ctx, func(ctx context.Context, tx Transaction) error {
		var err error
		accounts, err = uc.accountRepo.ListByOwner(ctx, tx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// DeleteAccount removes an account. Checks run in a fixed order so the reported error
// is deterministic: not found, then non-zero balance, then existing history.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, ownerID, accountID string) (err error) {
	defer func(start time.Time) {
		uc.observer.ObserveOperation(OpDeleteAccount, time.Since(start), err)
	}(time.Now())

	if err := domain.ValidateOwner(ownerID); err != nil {
		return err
	}

	err = uc.uow.run(ctx, func(ctx context.Context, tx Transaction) error {
		accounts, err := uc.accountRepo.GetOwnedForUpdate(ctx, tx, ownerID, []string{accountID})
		if err != nil {
			return err
		}

		if len(accounts) != 1 {
			return domain.ErrAccountNotFound
		}

		if err := accounts[0].ValidateDeletion(); err != nil {
			return err
		}

		used, err := uc.txRepo.ExistsForAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}

		if used {
			return domain.ErrHasHistory
		}

		return uc.accountRepo.Delete(ctx, tx, accountID)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("account_id", accountID).Msg("account deleted")

	return nil
}
