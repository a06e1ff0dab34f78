package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
)

// TransferService defines the behavior needed by AllocationHandler.
type TransferService interface {
	Transfer(ctx context.Context, t domain.Transfer) (*domain.TransferRecord, error)
}

// AllocationHandler moves credits from an administrator to another account.
type AllocationHandler struct {
	transferUC TransferService
}

// NewAllocationHandler creates a new AllocationHandler.
func NewAllocationHandler(transferUC TransferService) *AllocationHandler {
	return &AllocationHandler{transferUC: transferUC}
}

// Create allocates credits from the caller's own account. A negative amount
// takes them back.
func (h *AllocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		writeError(w, http.StatusForbidden, "failed to allocate credits", err.Error())
		return
	}

	var req dto.CreateAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := ownSource(r, &req.SourceID); err != nil {
		writeError(w, http.StatusForbidden, "failed to allocate credits", err.Error())
		return
	}

	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.transferUC.Transfer(r.Context(), req.ToDomain())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to allocate credits", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(record))
}
