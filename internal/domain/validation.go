package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// MaxOverrideDescriptionLength bounds the free-text reason on manual
	// overrides.
	MaxOverrideDescriptionLength = 1000
)

// ValidateOverrideBalance checks the requested target balance against the
// hard floor and the configured ceiling.
func ValidateOverrideBalance(newBalance, ceiling decimal.Decimal) error {
	if newBalance.IsNegative() {
		return fmt.Errorf("%w: balance cannot be negative", ErrValidation)
	}

	if newBalance.GreaterThan(ceiling) {
		return fmt.Errorf("%w: balance exceeds the allowed maximum of %s", ErrValidation, ceiling.StringFixed(2))
	}

	return nil
}

// ValidateOverrideDescription checks the free-text reason attached to a
// manual override.
func ValidateOverrideDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}

	if utf8.RuneCountInString(description) > MaxOverrideDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxOverrideDescriptionLength)
	}

	return nil
}

// ValidatePositiveAmount checks a transfer or delta amount.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 1000
	const defaultPageSize = 50

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
