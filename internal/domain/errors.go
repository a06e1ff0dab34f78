package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Transfer errors
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidOperation = errors.New("cannot transfer to same account")
	ErrInvalidEntryKind = errors.New("unknown entry kind")

	// Metering errors
	ErrInsufficientCredits = errors.New("insufficient credits")

	// Purchase errors
	ErrDuplicatePayment = errors.New("payment already processed")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Store errors
	ErrLockTimeout = errors.New("timed out waiting for account lock")
	ErrBusy        = errors.New("ledger busy, try again")
)
