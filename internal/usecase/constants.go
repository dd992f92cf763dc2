package usecase

import "time"

const (
	// maxUpdateAttempts bounds the read-compute-write retry cycle on
	// version conflicts. After the budget is spent the update fails
	// loudly with domain.ErrConcurrencyExhausted.
	maxUpdateAttempts = 3

	// defaultRetryInterval is the pause between optimistic retry attempts.
	defaultRetryInterval = 25 * time.Millisecond

	defaultListLimit = 20
	maxListLimit     = 100
)
