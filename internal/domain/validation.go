package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidAccountID   = errors.New("account id must be positive")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrDescriptionTooLong = errors.New("description exceeds limit")
	ErrInvalidReference   = errors.New("invalid payment reference")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxDescriptionLength = 1024
	MaxReferenceLength   = 255
	MaxAmount            = int64(1_000_000_000)
)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if utf8.RuneCountInString(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateAccountID validates an identity-system account id
func ValidateAccountID(id int64) error {
	if id <= 0 {
		return ErrInvalidAccountID
	}
	return nil
}

// ValidateRole validates an account role
func ValidateRole(role Role) error {
	if !role.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return nil
}

// ValidateAmount validates a positive credit amount
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if amount > MaxAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateSignedAmount validates a non-zero transfer amount
func ValidateSignedAmount(amount int64) error {
	if amount < 0 {
		return ValidateAmount(-amount)
	}
	return ValidateAmount(amount)
}

// ValidateDescription validates free-text entry descriptions
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d bytes", ErrDescriptionTooLong, len(description), MaxDescriptionLength)
	}
	return nil
}

// ValidateReference validates a payment-provider confirmation id
func ValidateReference(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" || len(ref) > MaxReferenceLength {
		return ErrInvalidReference
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
