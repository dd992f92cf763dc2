package domain

import "errors"

var (
	// Balance errors
	ErrCompanyBalanceNotFound = errors.New("company balance not found")
	// ErrVersionConflict is returned by the store when a compare-and-swap
	// write loses against a concurrent mutation. Callers retry the whole
	// read-compute-write cycle.
	ErrVersionConflict = errors.New("balance was modified concurrently")
	// ErrConcurrencyExhausted is the hard failure after the bounded retry
	// budget runs out. It must surface to the caller, never be swallowed.
	ErrConcurrencyExhausted = errors.New("balance update retries exhausted")

	// Override errors
	ErrValidation        = errors.New("invalid override request")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Document errors
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrInvalidAmount        = errors.New("amount must be positive")

	ErrOperationNotFound = errors.New("balance operation not found")
)
