package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceType identifies one of the two balance buckets kept per company.
type BalanceType string

const (
	BalanceTypeCash BalanceType = "CASH"
	BalanceTypeBank BalanceType = "BANK"
)

// OperationType describes how an amount is applied to a balance bucket.
type OperationType string

const (
	// OperationAdd and OperationSubtract apply a delta to the bucket.
	OperationAdd      OperationType = "ADD"
	OperationSubtract OperationType = "SUBTRACT"
	// OperationCorrection and OperationManualOverride set the bucket
	// to the given amount directly. CORRECTION is reserved for
	// system-originated fixes, MANUAL_OVERRIDE for human ones.
	OperationCorrection     OperationType = "CORRECTION"
	OperationManualOverride OperationType = "MANUAL_OVERRIDE"
)

// PaymentMethod is the settlement method declared on a financial document.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
)

// Direction tells whether a document brings money in or out.
type Direction string

const (
	DirectionIncome  Direction = "INCOME"
	DirectionExpense Direction = "EXPENSE"
)

// DocumentStatus is the lifecycle status of a financial document.
// Only PAID and PARTIALLY_PAID affect company balances.
type DocumentStatus string

const (
	DocumentStatusDraft         DocumentStatus = "DRAFT"
	DocumentStatusNotPaid       DocumentStatus = "NOT_PAID"
	DocumentStatusPartiallyPaid DocumentStatus = "PARTIALLY_PAID"
	DocumentStatusPaid          DocumentStatus = "PAID"
	DocumentStatusCancelled     DocumentStatus = "CANCELLED"
)

// CompanyBalance is the authoritative cash/bank balance pair for one company.
// It is created lazily on first mutation and never deleted. All writes go
// through the balance use case; the version column backs optimistic
// concurrency control.
type CompanyBalance struct {
	CompanyID   int64
	CashBalance decimal.Decimal
	BankBalance decimal.Decimal
	Version     int64
	LastUpdated time.Time
}

// Bucket returns the value of the named balance bucket.
func (b *CompanyBalance) Bucket(t BalanceType) decimal.Decimal {
	if t == BalanceTypeBank {
		return b.BankBalance
	}
	return b.CashBalance
}

// WithBucket returns the cash/bank pair with the named bucket replaced.
func (b *CompanyBalance) WithBucket(t BalanceType, value decimal.Decimal) (cash, bank decimal.Decimal) {
	cash, bank = b.CashBalance, b.BankBalance
	if t == BalanceTypeBank {
		bank = value
	} else {
		cash = value
	}
	return cash, bank
}

// FinancialDocument is the snapshot of an invoice or receipt as carried by
// document-change notifications. The documents module owns the full record;
// the ledger only needs the balance-relevant fields.
type FinancialDocument struct {
	ID            string
	CompanyID     int64
	Direction     Direction
	PaymentMethod PaymentMethod
	TotalGross    decimal.Decimal
	PaidAmount    decimal.Decimal
	Status        DocumentStatus
}

// StatusAffectsBalance reports whether a status implies a balance effect.
func StatusAffectsBalance(s DocumentStatus) bool {
	return s == DocumentStatusPaid || s == DocumentStatusPartiallyPaid
}

// EffectiveAmount returns the amount a given status implies for this
// document: the full gross for PAID, the paid part for PARTIALLY_PAID,
// zero for everything else.
func (d *FinancialDocument) EffectiveAmount(s DocumentStatus) decimal.Decimal {
	switch s {
	case DocumentStatusPaid:
		return d.TotalGross
	case DocumentStatusPartiallyPaid:
		return d.PaidAmount
	default:
		return decimal.Zero
	}
}
