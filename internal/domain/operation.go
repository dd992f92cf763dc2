package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceOperation is one entry of the operation ledger: the machine-oriented
// audit record of a single balance mutation. Rows are immutable once written,
// with the sole exception of the approval fields, which a second-step
// approval may fill in later.
type BalanceOperation struct {
	ID              string
	CompanyID       int64
	DocumentID      *string // nil for manual operations
	OperationType   OperationType
	BalanceType     BalanceType
	Amount          decimal.Decimal // signed delta actually applied
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	UserID          string
	UserName        string
	Description     string
	ApprovedBy      *string
	ApprovalDate    *time.Time
	IsApproved      bool
	IPAddress       *string
	Timestamp       time.Time
}

// BalanceHistoryEntry is the human-readable audit view recorded alongside
// each BalanceOperation. It carries the same before/after pair plus a
// free-text description so the operational ledger and the review history
// can evolve independently.
type BalanceHistoryEntry struct {
	ID              string
	CompanyID       int64
	BalanceType     BalanceType
	OperationType   OperationType
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Description     string
	UserID          string
	UserName        string
	CreatedAt       time.Time
}

// OperationFilter narrows ledger listings.
type OperationFilter struct {
	BalanceType   BalanceType // empty means both buckets
	OperationType OperationType
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}
