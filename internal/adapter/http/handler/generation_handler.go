package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/usecase"
)

// GenerationService defines the behavior needed by GenerationHandler.
type GenerationService interface {
	Generate(ctx context.Context, req usecase.GenerationRequest) (*usecase.GenerateOutput, error)
}

// GenerationHandler runs metered generations.
type GenerationHandler struct {
	generationUC GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationUC GenerationService) *GenerationHandler {
	return &GenerationHandler{generationUC: generationUC}
}

// Generate charges one credit for a successful generation on a proposal.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "id")
	if proposalID == "" {
		writeError(w, http.StatusBadRequest, "missing proposal ID", "")
		return
	}

	var req dto.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.AccountID = callerAccount(r, req.AccountID)

	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := authorize(r, req.AccountID); err != nil {
		writeError(w, http.StatusForbidden, "failed to generate", err.Error())
		return
	}

	out, err := h.generationUC.Generate(r.Context(), req.ToUseCaseInput(proposalID))
	if err != nil {
		status := mapDomainError(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		writeError(w, status, "failed to generate", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.GenerateFromUseCase(out))
}
