package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/creditledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	directory   *CachedDirectory
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
	}
}

// WithDirectory makes new admin accounts refresh the administrator cache.
func (uc *AccountUseCase) WithDirectory(d *CachedDirectory) *AccountUseCase {
	uc.directory = d
	return uc
}

// OpenAccountInput represents input for registering an account.
type OpenAccountInput struct {
	Name           string
	Role           domain.Role
	ID             int64
	InitialBalance int64
}

// OpenAccount registers an identity-system account with its seed balance.
// The seed is not an entry.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountID(input.ID); err != nil {
		return nil, err
	}
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = domain.RoleCustomer
	}
	if err := domain.ValidateRole(input.Role); err != nil {
		return nil, err
	}
	if input.InitialBalance < 0 || input.InitialBalance > domain.MaxAmount {
		return nil, fmt.Errorf("%w: initial balance %d", domain.ErrInvalidAmount, input.InitialBalance)
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:             input.ID,
		Name:           input.Name,
		Role:           input.Role,
		Balance:        input.InitialBalance,
		InitialBalance: input.InitialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if account.IsAdmin() && uc.directory != nil {
		uc.directory.Invalidate(ctx)
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}
