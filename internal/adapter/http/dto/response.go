package dto

import (
	"time"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	ID             int64     `json:"id"`
	Balance        int64     `json:"balance"`
	InitialBalance int64     `json:"initial_balance"`
	Version        int64     `json:"version"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Role:           string(a.Role),
		Balance:        a.Balance,
		InitialBalance: a.InitialBalance,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse is a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	CreatedAt      time.Time `json:"created_at"`
	CounterpartyID *int64    `json:"counterparty_id,omitempty"`
	Kind           string    `json:"kind"`
	Description    string    `json:"description"`
	ID             int64     `json:"id"`
	AccountID      int64     `json:"account_id"`
	Amount         int64     `json:"amount"`
	BalanceBefore  int64     `json:"balance_before"`
	BalanceAfter   int64     `json:"balance_after"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	if e == nil {
		return nil
	}
	return &EntryResponse{
		ID:             e.ID,
		AccountID:      e.AccountID,
		CounterpartyID: e.CounterpartyID,
		Amount:         e.Amount,
		BalanceBefore:  e.BalanceBefore,
		BalanceAfter:   e.BalanceAfter,
		Kind:           string(e.Kind),
		Description:    e.Description,
		CreatedAt:      e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// TransferResponse is the pair of entries written by an allocation.
type TransferResponse struct {
	CreatedAt     time.Time      `json:"created_at"`
	SourceEntry   *EntryResponse `json:"source_entry"`
	DestEntry     *EntryResponse `json:"dest_entry"`
	Kind          string         `json:"kind"`
	SourceID      int64          `json:"source_id"`
	DestID        int64          `json:"dest_id"`
	Amount        int64          `json:"amount"`
	SourceBalance int64          `json:"source_balance"`
	DestBalance   int64          `json:"dest_balance"`
}

// TransferFromDomain converts a transfer record to response.
func TransferFromDomain(t *domain.TransferRecord) *TransferResponse {
	return &TransferResponse{
		SourceEntry:   EntryFromDomain(t.SourceEntry),
		DestEntry:     EntryFromDomain(t.DestEntry),
		SourceID:      t.SourceID,
		DestID:        t.DestID,
		Amount:        t.Amount,
		SourceBalance: t.SourceBalance,
		DestBalance:   t.DestBalance,
		Kind:          string(t.Kind),
		CreatedAt:     t.CreatedAt,
	}
}

// BalanceChangeResponse reports a single-account mutation.
type BalanceChangeResponse struct {
	Entry     *EntryResponse `json:"entry"`
	AccountID int64          `json:"account_id"`
	Balance   int64          `json:"balance"`
}

// BalanceChangeFromDomain converts a balance change to response.
func BalanceChangeFromDomain(c *domain.BalanceChange) *BalanceChangeResponse {
	return &BalanceChangeResponse{
		Entry:     EntryFromDomain(c.Entry),
		AccountID: c.AccountID,
		Balance:   c.Balance,
	}
}

// GenerateResponse is a generation and its charge.
type GenerateResponse struct {
	Entry   *EntryResponse `json:"entry"`
	Content string         `json:"content"`
	Model   string         `json:"model,omitempty"`
	Balance int64          `json:"balance"`
}

// GenerateFromUseCase converts a generation output to response.
func GenerateFromUseCase(out *usecase.GenerateOutput) *GenerateResponse {
	return &GenerateResponse{
		Content: out.Result.Content,
		Model:   out.Result.Model,
		Entry:   EntryFromDomain(out.Charge.Entry),
		Balance: out.Charge.Balance,
	}
}

// NotificationResponse represents an inbox message.
type NotificationResponse struct {
	CreatedAt time.Time `json:"created_at"`
	Link      *string   `json:"link,omitempty"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	UserID    int64     `json:"user_id"`
	Read      bool      `json:"read"`
}

// NotificationFromDomain converts domain notification to response.
func NotificationFromDomain(n *domain.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Body,
		Category:  string(n.Category),
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// ListNotificationsResponse is a page of an inbox.
type ListNotificationsResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	Unread        int                     `json:"unread"`
}

// NotificationsFromDomain converts domain notifications to responses.
func NotificationsFromDomain(list []*domain.Notification, unread int) *ListNotificationsResponse {
	out := make([]*NotificationResponse, len(list))
	for i, n := range list {
		out[i] = NotificationFromDomain(n)
	}
	return &ListNotificationsResponse{Notifications: out, Unread: unread}
}

// ReconciliationResponse reports one account's audit check.
type ReconciliationResponse struct {
	LastChecked     time.Time `json:"last_checked"`
	AccountID       int64     `json:"account_id"`
	RecordedBalance int64     `json:"recorded_balance"`
	InitialBalance  int64     `json:"initial_balance"`
	EntrySum        int64     `json:"entry_sum"`
	Difference      int64     `json:"difference"`
	IsReconciled    bool      `json:"is_reconciled"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:       r.AccountID,
		RecordedBalance: r.RecordedBalance,
		InitialBalance:  r.InitialBalance,
		EntrySum:        r.EntrySum,
		Difference:      r.Difference,
		IsReconciled:    r.IsReconciled,
		LastChecked:     r.LastChecked,
	}
}

// ReconciliationReportResponse is the ledger-wide audit.
type ReconciliationReportResponse struct {
	CheckedAt          time.Time                 `json:"checked_at"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	TotalBalance       int64                     `json:"total_balance"`
}

// ReconciliationReportFromUseCase converts a report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	out := &ReconciliationReportResponse{
		CheckedAt:          r.CheckedAt,
		Discrepancies:      make([]*ReconciliationResponse, len(r.Discrepancies)),
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		TotalBalance:       r.TotalBalance,
	}
	for i, d := range r.Discrepancies {
		out.Discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return out
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
