package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/motocrm/balance/internal/adapter/http/dto"
	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GetCurrentBalances(ctx context.Context, companyID int64) (*domain.CompanyBalance, error)
	UpdateBalance(ctx context.Context, input usecase.UpdateBalanceInput) (*domain.BalanceOperation, error)
	ReconcileBalance(ctx context.Context, companyID int64) (*usecase.ReconciliationResult, error)
}

// ReconciliationService runs fleet-wide drift sweeps.
type ReconciliationService interface {
	GenerateDriftReport(ctx context.Context) (*usecase.DriftReport, error)
}

// BalanceHandler handles balance read and reconciliation requests.
type BalanceHandler struct {
	balanceUC        BalanceService
	reconciliationUC ReconciliationService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService, reconciliationUC ReconciliationService) *BalanceHandler {
	return &BalanceHandler{
		balanceUC:        balanceUC,
		reconciliationUC: reconciliationUC,
	}
}

// Get returns the current balances of a company.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompanyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company ID", err.Error())
		return
	}

	balance, err := h.balanceUC.GetCurrentBalances(r.Context(), companyID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Update applies a document-free mutation submitted by an internal caller.
func (h *BalanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompanyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company ID", err.Error())
		return
	}

	var req dto.UpdateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	op, err := h.balanceUC.UpdateBalance(r.Context(), req.ToUseCaseInput(companyID, r.RemoteAddr))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromDomain(op))
}

// Reconcile compares a company's stored balances with its document trail.
// The check is read-only; drift is reported, never corrected.
func (h *BalanceHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompanyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company ID", err.Error())
		return
	}

	result, err := h.balanceUC.ReconcileBalance(r.Context(), companyID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// DriftReport runs the fleet-wide reconciliation sweep.
func (h *BalanceHandler) DriftReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateDriftReport(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate drift report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DriftReportFromUseCase(report))
}
