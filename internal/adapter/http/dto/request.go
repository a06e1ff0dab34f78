package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// CreateAccountRequest represents a request to register an account.
type CreateAccountRequest struct {
	Name           string `json:"name"            validate:"required,max=255"`
	Role           string `json:"role"            validate:"omitempty,oneof=admin customer collaborator"`
	ID             int64  `json:"id"              validate:"gt=0"`
	InitialBalance int64  `json:"initial_balance" validate:"gte=0"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		ID:             r.ID,
		Name:           r.Name,
		Role:           domain.Role(r.Role),
		InitialBalance: r.InitialBalance,
	}
}

// CreateAllocationRequest represents an administrator moving credits. A
// negative amount takes credits back from the target.
type CreateAllocationRequest struct {
	Description string `json:"description,omitempty" validate:"max=1024"`
	SourceID    int64  `json:"source_id"             validate:"gt=0"`
	TargetID    int64  `json:"target_id"             validate:"gt=0"`
	Amount      int64  `json:"amount"                validate:"ne=0"`
}

// ToDomain converts to a ledger transfer.
func (r *CreateAllocationRequest) ToDomain() domain.Transfer {
	return domain.Transfer{
		SourceID:    r.SourceID,
		DestID:      r.TargetID,
		Amount:      r.Amount,
		Kind:        domain.EntryKindAllocation,
		Description: r.Description,
	}
}

// CreatePurchaseRequest represents a confirmed payment.
type CreatePurchaseRequest struct {
	ProviderReference string `json:"provider_reference" validate:"required,max=255"`
	AmountPaid        string `json:"amount_paid"`
	AccountID         int64  `json:"account_id"         validate:"gt=0"`
	Credits           int64  `json:"credits,omitempty"  validate:"gte=0"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePurchaseRequest) ToUseCaseInput() (usecase.PurchaseInput, error) {
	in := usecase.PurchaseInput{
		AccountID:         r.AccountID,
		ProviderReference: r.ProviderReference,
		Credits:           r.Credits,
	}

	if r.AmountPaid != "" {
		paid, err := decimal.NewFromString(r.AmountPaid)
		if err != nil {
			return usecase.PurchaseInput{}, fmt.Errorf("invalid amount_paid: %w", err)
		}
		in.AmountPaid = paid
	}

	return in, nil
}

// GenerateRequest asks for a metered generation.
type GenerateRequest struct {
	Prompt    string `json:"prompt"     validate:"max=65536"`
	AccountID int64  `json:"account_id" validate:"gt=0"`
}

// ToUseCaseInput converts to use case input.
func (r *GenerateRequest) ToUseCaseInput(proposalID string) usecase.GenerationRequest {
	return usecase.GenerationRequest{
		AccountID:  r.AccountID,
		ProposalID: proposalID,
		Prompt:     r.Prompt,
	}
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
