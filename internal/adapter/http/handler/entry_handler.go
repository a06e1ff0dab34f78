package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// ListByAccount lists an account's entries filtered by kind and time range.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	if err := authorize(r, accountID); err != nil {
		writeError(w, http.StatusForbidden, "failed to list entries", err.Error())
		return
	}

	input, err := parseEntryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	input.AccountID = accountID

	entries, err := h.entryUC.ListEntries(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list entries", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// parseEntryQuery reads kind (repeated or comma separated), from, to
// (RFC3339), limit and offset.
func parseEntryQuery(r *http.Request) (usecase.ListEntriesInput, error) {
	q := r.URL.Query()

	input := usecase.ListEntriesInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	}

	for _, raw := range q["kind"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			kind, err := domain.ParseEntryKind(s)
			if err != nil {
				return input, fmt.Errorf("%w: %q", err, s)
			}
			input.Kinds = append(input.Kinds, kind)
		}
	}

	var err error
	if input.From, err = parseTimeQuery(q.Get("from")); err != nil {
		return input, fmt.Errorf("invalid 'from' (use RFC3339): %w", err)
	}
	if input.To, err = parseTimeQuery(q.Get("to")); err != nil {
		return input, fmt.Errorf("invalid 'to' (use RFC3339): %w", err)
	}

	return input, nil
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
