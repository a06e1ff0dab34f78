package domain

import "time"

// Account is a billable identity holding a credit balance.
type Account struct {
	ID             int64
	Name           string
	Role           Role
	Balance        int64
	InitialBalance int64
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount int64) error {
	if a.Balance-amount < 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount int64) int64 {
	return a.Balance - amount
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount int64) int64 {
	return a.Balance + amount
}

// IsAdmin reports whether the account receives administrator fan-out alerts.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
