package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/creditledger/internal/adapter/repository/memory"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
	"github.com/iho/creditledger/internal/usecase/mocks"
)

func TestPurchaseUseCase_CreditsOnce(t *testing.T) {
	l := newLedger(t, []*domain.Account{{ID: 1, Name: "Ada", Balance: 200}})
	uc := usecase.NewPurchaseUseCase(l.transfers, memory.NewPaymentRegistry(), decimal.RequireFromString("0.50"), zerolog.Nop())
	ctx := context.Background()

	in := usecase.PurchaseInput{AccountID: 1, ProviderReference: "pi_3N8x", AmountPaid: decimal.RequireFromString("10.00")}

	change, err := uc.Purchase(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(220), change.Balance)
	assert.Equal(t, domain.EntryKindPurchase, change.Entry.Kind)
	assert.Equal(t, "pi_3N8x", change.Entry.Description)

	_, err = uc.Purchase(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicatePayment)
	assert.Equal(t, int64(220), l.balance(t, 1))

	inbox := l.inboxOf(t, 1)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.CategoryCreditPurchase, inbox[0].Category)
	assert.Contains(t, inbox[0].Body, "220")
}

func TestPurchaseUseCase_DuplicateRefusedAfterRegistryLoss(t *testing.T) {
	l := newLedger(t, []*domain.Account{{ID: 1, Name: "Ada", Balance: 0}, {ID: 2, Name: "Bo", Balance: 0}})
	ctx := context.Background()
	price := decimal.RequireFromString("0.50")
	in := usecase.PurchaseInput{AccountID: 1, ProviderReference: "pi_restart", AmountPaid: decimal.RequireFromString("2.00")}

	_, err := usecase.NewPurchaseUseCase(l.transfers, memory.NewPaymentRegistry(), price, zerolog.Nop()).Purchase(ctx, in)
	require.NoError(t, err)

	// A restarted process starts with an empty registry.
	restarted := usecase.NewPurchaseUseCase(l.transfers, memory.NewPaymentRegistry(), price, zerolog.Nop())
	_, err = restarted.Purchase(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicatePayment)

	in.AccountID = 2
	_, err = restarted.Purchase(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicatePayment)

	assert.Equal(t, int64(4), l.balance(t, 1))
	assert.Equal(t, int64(0), l.balance(t, 2))
	assert.Equal(t, 1, l.entryCount(t, 1))
	l.requireReconciled(t)
}

func TestPurchaseUseCase_ExpiredClaimDoesNotCreditTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockPaymentRegistry(ctrl)
	// Complete fails and the claim later expires, so Claim succeeds again.
	reg.EXPECT().Claim(gomock.Any(), "pi_9").Return(true, nil).Times(2)
	reg.EXPECT().Complete(gomock.Any(), "pi_9", gomock.Any()).Return(errors.New("redis down"))

	l := newLedger(t, []*domain.Account{{ID: 1, Balance: 0}})
	uc := usecase.NewPurchaseUseCase(l.transfers, reg, decimal.Zero, zerolog.Nop())
	in := usecase.PurchaseInput{AccountID: 1, ProviderReference: "pi_9", Credits: 10}

	_, err := uc.Purchase(context.Background(), in)
	require.NoError(t, err)

	_, err = uc.Purchase(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrDuplicatePayment)
	assert.Equal(t, int64(10), l.balance(t, 1))
}

func TestPurchaseUseCase_ExplicitCredits(t *testing.T) {
	l := newLedger(t, []*domain.Account{{ID: 1, Balance: 0}})
	uc := usecase.NewPurchaseUseCase(l.transfers, memory.NewPaymentRegistry(), decimal.Zero, zerolog.Nop())

	change, err := uc.Purchase(context.Background(), usecase.PurchaseInput{AccountID: 1, ProviderReference: "pi_1", Credits: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(50), change.Balance)
}

func TestPurchaseUseCase_PriceConversion(t *testing.T) {
	tests := []struct {
		name    string
		paid    string
		price   string
		credits int64
		wantErr error
	}{
		{name: "exact", paid: "5.00", price: "0.25", credits: 20},
		{name: "floored", paid: "1.99", price: "0.50", credits: 3},
		{name: "below one credit", paid: "0.10", price: "0.50", wantErr: usecase.ErrInvalidPrice},
		{name: "zero paid", paid: "0", price: "0.50", wantErr: usecase.ErrInvalidPayment},
		{name: "unconfigured price", paid: "5", price: "0", wantErr: usecase.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(t, []*domain.Account{{ID: 1, Balance: 100}})
			uc := usecase.NewPurchaseUseCase(l.transfers, memory.NewPaymentRegistry(), decimal.RequireFromString(tt.price), zerolog.Nop())

			change, err := uc.Purchase(context.Background(), usecase.PurchaseInput{
				AccountID: 1, ProviderReference: "pi_" + tt.name, AmountPaid: decimal.RequireFromString(tt.paid),
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, int64(100), l.balance(t, 1))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 100+tt.credits, change.Balance)
		})
	}
}

func TestPurchaseUseCase_FailedCreditReleasesClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockPaymentRegistry(ctrl)

	gomock.InOrder(
		registry.EXPECT().Claim(gomock.Any(), "pi_9").Return(true, nil),
		registry.EXPECT().Release(gomock.Any(), "pi_9").Return(nil),
	)

	l := newLedger(t, nil)
	uc := usecase.NewPurchaseUseCase(l.transfers, registry, decimal.NewFromInt(1), zerolog.Nop())

	_, err := uc.Purchase(context.Background(), usecase.PurchaseInput{AccountID: 1, ProviderReference: "pi_9", Credits: 5})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestPurchaseUseCase_RegistryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockPaymentRegistry(ctrl)
	registry.EXPECT().Claim(gomock.Any(), "pi_1").Return(false, errors.New("redis down"))

	l := newLedger(t, []*domain.Account{{ID: 1, Balance: 0}})
	uc := usecase.NewPurchaseUseCase(l.transfers, registry, decimal.NewFromInt(1), zerolog.Nop())

	_, err := uc.Purchase(context.Background(), usecase.PurchaseInput{AccountID: 1, ProviderReference: "pi_1", Credits: 5})
	require.Error(t, err)
	assert.Equal(t, int64(0), l.balance(t, 1))
}

func TestPurchaseUseCase_CompletesWithEntryID(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockPaymentRegistry(ctrl)
	registry.EXPECT().Claim(gomock.Any(), "pi_2").Return(true, nil)
	registry.EXPECT().Complete(gomock.Any(), "pi_2", gomock.Any()).Return(nil)

	l := newLedger(t, []*domain.Account{{ID: 1, Balance: 0}})
	uc := usecase.NewPurchaseUseCase(l.transfers, registry, decimal.NewFromInt(1), zerolog.Nop())

	_, err := uc.Purchase(context.Background(), usecase.PurchaseInput{AccountID: 1, ProviderReference: "pi_2", Credits: 5})
	require.NoError(t, err)
}

func TestPurchaseUseCase_InvalidReference(t *testing.T) {
	l := newLedger(t, []*domain.Account{{ID: 1}})
	uc := usecase.NewPurchaseUseCase(l.transfers, memory.NewPaymentRegistry(), decimal.NewFromInt(1), zerolog.Nop())

	_, err := uc.Purchase(context.Background(), usecase.PurchaseInput{AccountID: 1, Credits: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}
