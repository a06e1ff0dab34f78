package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/creditledger/internal/domain"
)

// GenerationCost is the credit price of one AI generation.
const GenerationCost = 1

var ErrGeneratorUnavailable = errors.New("generator not configured")

// GenerationUseCase runs metered AI generations for proposals.
type GenerationUseCase struct {
	meter     *MeterUseCase
	generator Generator
}

// NewGenerationUseCase creates a new GenerationUseCase.
func NewGenerationUseCase(meter *MeterUseCase, generator Generator) *GenerationUseCase {
	return &GenerationUseCase{meter: meter, generator: generator}
}

// GenerateOutput is a generation and the charge it incurred.
type GenerateOutput struct {
	Result *GenerationResult
	Charge *MeterResult
}

// Generate charges the account one credit for a successful generation.
func (uc *GenerationUseCase) Generate(ctx context.Context, req GenerationRequest) (*GenerateOutput, error) {
	if uc.generator == nil {
		return nil, ErrGeneratorUnavailable
	}

	in := MeterInput{
		AccountID:   req.AccountID,
		Cost:        GenerationCost,
		Kind:        domain.EntryKindUsage,
		Description: fmt.Sprintf("generation: proposal %s", req.ProposalID),
	}

	result, charge, err := MeterValue(ctx, uc.meter, in, func(ctx context.Context) (*GenerationResult, error) {
		return uc.generator.Generate(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	return &GenerateOutput{Result: result, Charge: charge}, nil
}
