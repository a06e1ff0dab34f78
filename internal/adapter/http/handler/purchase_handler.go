package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// PurchaseService defines the behavior needed by PurchaseHandler.
type PurchaseService interface {
	Purchase(ctx context.Context, in usecase.PurchaseInput) (*domain.BalanceChange, error)
}

// PurchaseHandler credits confirmed payments.
type PurchaseHandler struct {
	purchaseUC PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchaseUC PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseUC: purchaseUC}
}

// Create credits the buyer once per provider reference. With auth on only
// administrators may record purchases.
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		writeError(w, http.StatusForbidden, "failed to record purchase", err.Error())
		return
	}

	var req dto.CreatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	change, err := h.purchaseUC.Purchase(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record purchase", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.BalanceChangeFromDomain(change))
}
