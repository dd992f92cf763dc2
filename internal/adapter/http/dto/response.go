package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/usecase"
)

// BalanceResponse represents a company balance in API responses.
type BalanceResponse struct {
	CompanyID   int64           `json:"company_id"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	BankBalance decimal.Decimal `json:"bank_balance"`
	Version     int64           `json:"version"`
	LastUpdated time.Time       `json:"last_updated"`
}

// BalanceFromDomain converts a domain balance to a response.
func BalanceFromDomain(b *domain.CompanyBalance) *BalanceResponse {
	return &BalanceResponse{
		CompanyID:   b.CompanyID,
		CashBalance: b.CashBalance,
		BankBalance: b.BankBalance,
		Version:     b.Version,
		LastUpdated: b.LastUpdated,
	}
}

// OperationResponse represents a ledger entry in API responses.
type OperationResponse struct {
	ID              string          `json:"id"`
	CompanyID       int64           `json:"company_id"`
	DocumentID      *string         `json:"document_id,omitempty"`
	OperationType   string          `json:"operation_type"`
	BalanceType     string          `json:"balance_type"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	UserID          string          `json:"user_id"`
	UserName        string          `json:"user_name"`
	Description     string          `json:"description"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	ApprovalDate    *time.Time      `json:"approval_date,omitempty"`
	IsApproved      bool            `json:"is_approved"`
	Timestamp       time.Time       `json:"timestamp"`
}

// OperationFromDomain converts a domain operation to a response.
func OperationFromDomain(op *domain.BalanceOperation) *OperationResponse {
	return &OperationResponse{
		ID:              op.ID,
		CompanyID:       op.CompanyID,
		DocumentID:      op.DocumentID,
		OperationType:   string(op.OperationType),
		BalanceType:     string(op.BalanceType),
		Amount:          op.Amount,
		PreviousBalance: op.PreviousBalance,
		NewBalance:      op.NewBalance,
		UserID:          op.UserID,
		UserName:        op.UserName,
		Description:     op.Description,
		ApprovedBy:      op.ApprovedBy,
		ApprovalDate:    op.ApprovalDate,
		IsApproved:      op.IsApproved,
		Timestamp:       op.Timestamp,
	}
}

// OperationsFromDomain converts domain operations to responses.
func OperationsFromDomain(ops []*domain.BalanceOperation) []*OperationResponse {
	result := make([]*OperationResponse, len(ops))
	for i, op := range ops {
		result[i] = OperationFromDomain(op)
	}

	return result
}

// ListOperationsResponse wraps a ledger listing.
type ListOperationsResponse struct {
	Operations []*OperationResponse `json:"operations"`
	Total      int64                `json:"total"`
}

// HistoryEntryResponse represents an audit history entry in API responses.
type HistoryEntryResponse struct {
	ID              string          `json:"id"`
	CompanyID       int64           `json:"company_id"`
	BalanceType     string          `json:"balance_type"`
	OperationType   string          `json:"operation_type"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Description     string          `json:"description"`
	UserID          string          `json:"user_id"`
	UserName        string          `json:"user_name"`
	CreatedAt       time.Time       `json:"created_at"`
}

// HistoryFromDomain converts domain history entries to responses.
func HistoryFromDomain(entries []*domain.BalanceHistoryEntry) []*HistoryEntryResponse {
	result := make([]*HistoryEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &HistoryEntryResponse{
			ID:              e.ID,
			CompanyID:       e.CompanyID,
			BalanceType:     string(e.BalanceType),
			OperationType:   string(e.OperationType),
			PreviousBalance: e.PreviousBalance,
			NewBalance:      e.NewBalance,
			Description:     e.Description,
			UserID:          e.UserID,
			UserName:        e.UserName,
			CreatedAt:       e.CreatedAt,
		}
	}

	return result
}

// OverrideResultResponse is the structured outcome of an override call.
type OverrideResultResponse struct {
	Success         bool            `json:"success"`
	OperationID     string          `json:"operation_id,omitempty"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Message         string          `json:"message"`
}

// OverrideResultFromUseCase converts an override result to a response.
func OverrideResultFromUseCase(r usecase.OverrideResult) *OverrideResultResponse {
	return &OverrideResultResponse{
		Success:         r.Success,
		OperationID:     r.OperationID,
		PreviousBalance: r.PreviousBalance,
		NewBalance:      r.NewBalance,
		Difference:      r.Difference,
		Message:         r.Message,
	}
}

// ReconciliationResponse represents a single-company reconciliation check.
type ReconciliationResponse struct {
	CompanyID      int64           `json:"company_id"`
	StoredCash     decimal.Decimal `json:"stored_cash"`
	StoredBank     decimal.Decimal `json:"stored_bank"`
	CalculatedCash decimal.Decimal `json:"calculated_cash"`
	CalculatedBank decimal.Decimal `json:"calculated_bank"`
	CashDifference decimal.Decimal `json:"cash_difference"`
	BankDifference decimal.Decimal `json:"bank_difference"`
	IsReconciled   bool            `json:"is_reconciled"`
	CheckedAt      time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		CompanyID:      r.CompanyID,
		StoredCash:     r.StoredCash,
		StoredBank:     r.StoredBank,
		CalculatedCash: r.CalculatedCash,
		CalculatedBank: r.CalculatedBank,
		CashDifference: r.CashDifference,
		BankDifference: r.BankDifference,
		IsReconciled:   r.IsReconciled,
		CheckedAt:      r.CheckedAt,
	}
}

// DriftReportResponse summarizes a fleet-wide reconciliation sweep.
type DriftReportResponse struct {
	TotalCompanies      int                       `json:"total_companies"`
	ReconciledCompanies int                       `json:"reconciled_companies"`
	Discrepancies       []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt           time.Time                 `json:"checked_at"`
}

// DriftReportFromUseCase converts a drift report to a response.
func DriftReportFromUseCase(r *usecase.DriftReport) *DriftReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}

	return &DriftReportResponse{
		TotalCompanies:      r.TotalCompanies,
		ReconciledCompanies: r.ReconciledCompanies,
		Discrepancies:       discrepancies,
		CheckedAt:           r.CheckedAt,
	}
}

// DocumentEventBatchResponse reports the outcome of a document event batch.
type DocumentEventBatchResponse struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
