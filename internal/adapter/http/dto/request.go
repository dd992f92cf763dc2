package dto

import (
	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/usecase"
)

// OverrideBalanceRequest represents a manual balance override.
type OverrideBalanceRequest struct {
	CompanyID     int64           `json:"company_id"`
	BalanceType   string          `json:"balance_type"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	Description   string          `json:"description"`
	UserID        string          `json:"user_id"`
	UserName      string          `json:"user_name"`
	ApprovedBy    *string         `json:"approved_by,omitempty"`
	IsPreApproved bool            `json:"is_pre_approved"`
}

// ToUseCaseRequest converts to use case input. The caller's IP is taken
// from the connection, not the payload.
func (r *OverrideBalanceRequest) ToUseCaseRequest(ipAddress string) usecase.OverrideRequest {
	var ip *string
	if ipAddress != "" {
		ip = &ipAddress
	}

	return usecase.OverrideRequest{
		CompanyID:     r.CompanyID,
		BalanceType:   domain.BalanceType(r.BalanceType),
		NewBalance:    r.NewBalance,
		Description:   r.Description,
		UserID:        r.UserID,
		UserName:      r.UserName,
		ApprovedBy:    r.ApprovedBy,
		IPAddress:     ip,
		IsPreApproved: r.IsPreApproved,
	}
}

// UpdateBalanceRequest is a document-free balance mutation submitted by
// internal callers.
type UpdateBalanceRequest struct {
	BalanceType string          `json:"balance_type"`
	Amount      decimal.Decimal `json:"amount"`
	Operation   string          `json:"operation"`
	Description string          `json:"description"`
	UserID      string          `json:"user_id"`
	UserName    string          `json:"user_name"`
	DocumentID  *string         `json:"document_id,omitempty"`
}

// ToUseCaseInput converts to mutator input for the given company.
func (r *UpdateBalanceRequest) ToUseCaseInput(companyID int64, ipAddress string) usecase.UpdateBalanceInput {
	var ip *string
	if ipAddress != "" {
		ip = &ipAddress
	}

	return usecase.UpdateBalanceInput{
		CompanyID:   companyID,
		BalanceType: domain.BalanceType(r.BalanceType),
		Amount:      r.Amount,
		Operation:   domain.OperationType(r.Operation),
		DocumentID:  r.DocumentID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		Description: r.Description,
		IPAddress:   ip,
		IsApproved:  true,
	}
}

// SafeTransferRequest represents a cash movement between the till and the
// office safe, in either direction.
type SafeTransferRequest struct {
	CompanyID   int64           `json:"company_id"`
	Amount      decimal.Decimal `json:"amount"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
}

// BankStatementRequest represents a bank statement reconciliation.
type BankStatementRequest struct {
	CompanyID        int64           `json:"company_id"`
	StatementBalance decimal.Decimal `json:"statement_balance"`
	UserID           string          `json:"user_id"`
	Description      string          `json:"description"`
}

// CashInventoryRequest represents a physical cash count.
type CashInventoryRequest struct {
	CompanyID     int64           `json:"company_id"`
	CountedAmount decimal.Decimal `json:"counted_amount"`
	UserID        string          `json:"user_id"`
	Notes         string          `json:"notes"`
}

// ApproveOperationRequest completes the second approval step on an
// operation submitted unapproved.
type ApproveOperationRequest struct {
	ApprovedBy string `json:"approved_by"`
}

// DocumentEventRequest is one document lifecycle notification.
type DocumentEventRequest struct {
	DocumentID    string          `json:"document_id"`
	CompanyID     int64           `json:"company_id"`
	Direction     string          `json:"direction"`
	PaymentMethod string          `json:"payment_method"`
	TotalGross    decimal.Decimal `json:"total_gross"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	OldStatus     string          `json:"old_status"`
	NewStatus     string          `json:"new_status"`
	Deleted       bool            `json:"deleted,omitempty"`
}

// ToUseCaseEvent converts to a coordinator event.
func (r *DocumentEventRequest) ToUseCaseEvent() usecase.DocumentEvent {
	doc := domain.FinancialDocument{
		ID:            r.DocumentID,
		CompanyID:     r.CompanyID,
		Direction:     domain.Direction(r.Direction),
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		TotalGross:    r.TotalGross,
		PaidAmount:    r.PaidAmount,
		Status:        domain.DocumentStatus(r.OldStatus),
	}

	return usecase.DocumentEvent{
		Document:  doc,
		OldStatus: domain.DocumentStatus(r.OldStatus),
		NewStatus: domain.DocumentStatus(r.NewStatus),
		Deleted:   r.Deleted,
	}
}

// DocumentEventBatchRequest is a batch of document notifications.
type DocumentEventBatchRequest struct {
	Events []DocumentEventRequest `json:"events"`
}

// ToUseCaseEvents converts the batch to coordinator events.
func (r *DocumentEventBatchRequest) ToUseCaseEvents() []usecase.DocumentEvent {
	events := make([]usecase.DocumentEvent, len(r.Events))
	for i, ev := range r.Events {
		events[i] = ev.ToUseCaseEvent()
	}

	return events
}
