package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation constants
const (
	MaxAccountNameLength = 100
	MinAccountNameLength = 1
	MaxDescriptionLength = 255

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation errors
var (
	ErrInvalidAccountName = fmt.Errorf("%w: invalid account name", ErrInvalidInput)
	ErrInvalidAccountType = fmt.Errorf("%w: invalid account type", ErrInvalidInput)
	ErrInvalidDescription = fmt.Errorf("%w: invalid description", ErrInvalidInput)
	ErrInvalidOwner       = fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	ErrInvalidTimeRange   = fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)

	if n < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if n > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateAccountType validates the account type tag
func ValidateAccountType(t AccountType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, t)
	}
	return nil
}

// ValidateDescription validates an optional free-text description
func ValidateDescription(description *string) error {
	if description == nil {
		return nil
	}

	if utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}

	return nil
}

// ValidateOwner rejects an empty owner id.
func ValidateOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrInvalidOwner
	}
	return nil
}

// NormalizePagination applies the page defaults: page >= 1, limit in [1, MaxPageSize].
// A non-positive limit selects DefaultPageSize.
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return page, limit
}
