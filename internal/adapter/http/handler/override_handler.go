package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/adapter/http/dto"
	"github.com/motocrm/balance/internal/usecase"
)

// OverrideService defines the behavior needed by OverrideHandler.
type OverrideService interface {
	OverrideBalance(ctx context.Context, req usecase.OverrideRequest) usecase.OverrideResult
	MoveCashToSafe(ctx context.Context, companyID int64, amount decimal.Decimal, userID, description string) usecase.OverrideResult
	MoveCashFromSafe(ctx context.Context, companyID int64, amount decimal.Decimal, userID, description string) usecase.OverrideResult
	ReconcileWithBankStatement(ctx context.Context, companyID int64, statementBalance decimal.Decimal, userID, description string) usecase.OverrideResult
	PerformCashInventory(ctx context.Context, companyID int64, countedAmount decimal.Decimal, userID, notes string) usecase.OverrideResult
	ApproveOperation(ctx context.Context, operationID, approvedBy string) error
}

// OverrideHandler handles manual balance corrections. Business failures are
// part of the response body, not bare error statuses, so UI clients always
// get the structured outcome.
type OverrideHandler struct {
	overrideUC OverrideService
}

// NewOverrideHandler creates a new OverrideHandler.
func NewOverrideHandler(overrideUC OverrideService) *OverrideHandler {
	return &OverrideHandler{overrideUC: overrideUC}
}

// Override performs a direct balance set.
func (h *OverrideHandler) Override(w http.ResponseWriter, r *http.Request) {
	var req dto.OverrideBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result := h.overrideUC.OverrideBalance(r.Context(), req.ToUseCaseRequest(r.RemoteAddr))
	writeResult(w, result)
}

// CashToSafe moves cash from the till to the office safe.
func (h *OverrideHandler) CashToSafe(w http.ResponseWriter, r *http.Request) {
	var req dto.SafeTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result := h.overrideUC.MoveCashToSafe(r.Context(), req.CompanyID, req.Amount, req.UserID, req.Description)
	writeResult(w, result)
}

// CashFromSafe moves cash from the office safe back to the till.
func (h *OverrideHandler) CashFromSafe(w http.ResponseWriter, r *http.Request) {
	var req dto.SafeTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result := h.overrideUC.MoveCashFromSafe(r.Context(), req.CompanyID, req.Amount, req.UserID, req.Description)
	writeResult(w, result)
}

// BankStatement reconciles the bank balance with a statement value.
func (h *OverrideHandler) BankStatement(w http.ResponseWriter, r *http.Request) {
	var req dto.BankStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result := h.overrideUC.ReconcileWithBankStatement(r.Context(), req.CompanyID, req.StatementBalance, req.UserID, req.Description)
	writeResult(w, result)
}

// CashInventory records a physical cash count.
func (h *OverrideHandler) CashInventory(w http.ResponseWriter, r *http.Request) {
	var req dto.CashInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result := h.overrideUC.PerformCashInventory(r.Context(), req.CompanyID, req.CountedAmount, req.UserID, req.Notes)
	writeResult(w, result)
}

// Approve completes the second approval step on an unapproved operation.
func (h *OverrideHandler) Approve(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "operationID")
	if operationID == "" {
		writeError(w, http.StatusBadRequest, "missing operation ID", "")
		return
	}

	var req dto.ApproveOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.ApprovedBy == "" {
		writeError(w, http.StatusBadRequest, "missing approved_by", "")
		return
	}

	if err := h.overrideUC.ApproveOperation(r.Context(), operationID, req.ApprovedBy); err != nil {
		writeError(w, mapDomainError(err), "failed to approve operation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func writeResult(w http.ResponseWriter, result usecase.OverrideResult) {
	status := http.StatusOK
	if !result.Success {
		status = mapDomainError(result.Err)
	}

	writeJSON(w, status, dto.OverrideResultFromUseCase(result))
}
