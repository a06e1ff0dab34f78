package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
)

// NotificationService defines the behavior needed by NotificationHandler.
type NotificationService interface {
	ListNotifications(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID int64, id string) error
	DeleteNotification(ctx context.Context, userID int64, id string) error
}

// NotificationHandler serves a recipient's inbox.
type NotificationHandler struct {
	notificationUC NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationUC NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationUC: notificationUC}
}

// List returns the inbox most recent first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.recipient(w, r)
	if !ok {
		return
	}

	filter := domain.NotificationFilter{
		UserID:     userID,
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      parseIntQuery(r, "limit", 20),
		Offset:     parseIntQuery(r, "offset", 0),
	}

	list, err := h.notificationUC.ListNotifications(r.Context(), filter)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list notifications", err.Error())

		return
	}

	unread, err := h.notificationUC.UnreadCount(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count notifications", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.NotificationsFromDomain(list, unread))
}

// MarkRead marks one message as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.recipient(w, r)
	if !ok {
		return
	}

	if err := h.notificationUC.MarkRead(r.Context(), userID, chi.URLParam(r, "nid")); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to mark notification read", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes one message.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.recipient(w, r)
	if !ok {
		return
	}

	if err := h.notificationUC.DeleteNotification(r.Context(), userID, chi.URLParam(r, "nid")); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete notification", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// recipient resolves the inbox owner. Only the owner may read or change an
// inbox, administrators included.
func (h *NotificationHandler) recipient(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID", err.Error())
		return 0, false
	}

	if caller, ok := domain.CallerFromContext(r.Context()); ok && caller.AccountID != userID {
		writeError(w, http.StatusForbidden, "inbox belongs to another user", domain.ErrForbidden.Error())
		return 0, false
	}

	return userID, true
}
