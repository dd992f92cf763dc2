package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/motocrm/balance/internal/adapter/http/dto"
	"github.com/motocrm/balance/internal/domain"
)

// OperationService defines the behavior needed by OperationHandler.
type OperationService interface {
	ListOperations(ctx context.Context, companyID int64, filter domain.OperationFilter) ([]*domain.BalanceOperation, error)
	ListByDocument(ctx context.Context, documentID string) ([]*domain.BalanceOperation, error)
	ListHistory(ctx context.Context, companyID int64, limit, offset int) ([]*domain.BalanceHistoryEntry, error)
}

// OperationHandler serves the operation ledger and the audit history view.
type OperationHandler struct {
	operationUC OperationService
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(operationUC OperationService) *OperationHandler {
	return &OperationHandler{operationUC: operationUC}
}

// ListByCompany lists ledger entries for a company.
func (h *OperationHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompanyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company ID", err.Error())
		return
	}

	filter := domain.OperationFilter{
		BalanceType:   domain.BalanceType(r.URL.Query().Get("balance_type")),
		OperationType: domain.OperationType(r.URL.Query().Get("operation_type")),
		Limit:         parseIntQuery(r, "limit", 20),
		Offset:        parseIntQuery(r, "offset", 0),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from timestamp", err.Error())
			return
		}
		filter.From = &t
	}

	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to timestamp", err.Error())
			return
		}
		filter.To = &t
	}

	ops, err := h.operationUC.ListOperations(r.Context(), companyID, filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list operations", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListOperationsResponse{
		Operations: dto.OperationsFromDomain(ops),
		Total:      int64(len(ops)),
	})
}

// ListByDocument lists every ledger entry a document produced.
func (h *OperationHandler) ListByDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "missing document ID", "")
		return
	}

	ops, err := h.operationUC.ListByDocument(r.Context(), documentID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list operations", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListOperationsResponse{
		Operations: dto.OperationsFromDomain(ops),
		Total:      int64(len(ops)),
	})
}

// ListHistory lists the audit history view for a company.
func (h *OperationHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompanyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company ID", err.Error())
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.operationUC.ListHistory(r.Context(), companyID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromDomain(entries))
}
