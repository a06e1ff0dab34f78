package domain

import (
	"fmt"
	"time"
)

// NotificationCategory groups inbox messages for display.
type NotificationCategory string

const (
	CategoryCreditAlert    NotificationCategory = "credit_alert"
	CategoryCreditPurchase NotificationCategory = "credit_purchase"
)

// Notification is one message in a user's inbox.
type Notification struct {
	CreatedAt time.Time
	Link      *string
	ID        string
	Title     string
	Body      string
	Category  NotificationCategory
	UserID    int64
	Read      bool
}

// NotificationFilter narrows inbox listings.
type NotificationFilter struct {
	UserID     int64
	UnreadOnly bool
	Limit      int
	Offset     int
}

// LowBalanceMessages builds the holder and administrator alert bodies for an
// account whose balance fell to or below threshold.
func LowBalanceMessages(account *Account, threshold int64) (holder, admin Notification) {
	holder = Notification{
		Title:    "Your credit balance is running low",
		Body:     fmt.Sprintf("You have %d credits left (at or below %d). Contact an administrator to get more credits.", account.Balance, threshold),
		Category: CategoryCreditAlert,
	}
	admin = Notification{
		Title:    fmt.Sprintf("Low credit balance: %s", account.Name),
		Body:     fmt.Sprintf("%s (account %d) has %d credits left (at or below %d).", account.Name, account.ID, account.Balance, threshold),
		Category: CategoryCreditAlert,
	}
	return holder, admin
}

// PurchaseMessage builds the confirmation sent after credits are bought.
func PurchaseMessage(credits, balance int64) Notification {
	return Notification{
		Title:    "Credits added",
		Body:     fmt.Sprintf("%d credits were added to your account. Your balance is now %d.", credits, balance),
		Category: CategoryCreditPurchase,
	}
}
