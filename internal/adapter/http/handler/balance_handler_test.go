package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/adapter/http/dto"
	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/usecase"
)

type balanceServiceStub struct {
	getFn       func(ctx context.Context, companyID int64) (*domain.CompanyBalance, error)
	updateFn    func(ctx context.Context, input usecase.UpdateBalanceInput) (*domain.BalanceOperation, error)
	reconcileFn func(ctx context.Context, companyID int64) (*usecase.ReconciliationResult, error)
}

func (s *balanceServiceStub) GetCurrentBalances(ctx context.Context, companyID int64) (*domain.CompanyBalance, error) {
	return s.getFn(ctx, companyID)
}

func (s *balanceServiceStub) UpdateBalance(ctx context.Context, input usecase.UpdateBalanceInput) (*domain.BalanceOperation, error) {
	return s.updateFn(ctx, input)
}

func (s *balanceServiceStub) ReconcileBalance(ctx context.Context, companyID int64) (*usecase.ReconciliationResult, error) {
	return s.reconcileFn(ctx, companyID)
}

type reconciliationServiceStub struct {
	reportFn func(ctx context.Context) (*usecase.DriftReport, error)
}

func (s *reconciliationServiceStub) GenerateDriftReport(ctx context.Context) (*usecase.DriftReport, error) {
	return s.reportFn(ctx)
}

func TestBalanceHandler_Get(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getFn: func(ctx context.Context, companyID int64) (*domain.CompanyBalance, error) {
			if companyID != 42 {
				t.Fatalf("expected company 42, got %d", companyID)
			}
			return &domain.CompanyBalance{
				CompanyID:   42,
				CashBalance: decimal.RequireFromString("150.00"),
				BankBalance: decimal.RequireFromString("2000.50"),
				Version:     3,
			}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/companies/42/balances", nil)
	req = setChiURLParam(req, "companyID", "42")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CompanyID != 42 || !resp.CashBalance.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_Get_InvalidCompanyID(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getFn: func(ctx context.Context, companyID int64) (*domain.CompanyBalance, error) {
			t.Fatal("service should not be called for invalid company ID")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/companies/abc/balances", nil)
	req = setChiURLParam(req, "companyID", "abc")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBalanceHandler_Reconcile(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		reconcileFn: func(ctx context.Context, companyID int64) (*usecase.ReconciliationResult, error) {
			return &usecase.ReconciliationResult{
				CompanyID:      companyID,
				StoredCash:     decimal.RequireFromString("115.00"),
				CalculatedCash: decimal.RequireFromString("100.00"),
				CashDifference: decimal.RequireFromString("15.00"),
				IsReconciled:   false,
			}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/companies/42/reconcile", nil)
	req = setChiURLParam(req, "companyID", "42")
	rec := httptest.NewRecorder()

	handler.Reconcile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ReconciliationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.IsReconciled || !resp.CashDifference.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_DriftReport(t *testing.T) {
	handler := NewBalanceHandler(nil, &reconciliationServiceStub{
		reportFn: func(ctx context.Context) (*usecase.DriftReport, error) {
			return &usecase.DriftReport{
				TotalCompanies:      10,
				ReconciledCompanies: 9,
				Discrepancies: []*usecase.ReconciliationResult{
					{CompanyID: 3, IsReconciled: false},
				},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reconciliation/report", nil)
	rec := httptest.NewRecorder()

	handler.DriftReport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.DriftReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalCompanies != 10 || len(resp.Discrepancies) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_Update(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdateBalanceInput) (*domain.BalanceOperation, error) {
			if input.CompanyID != 42 {
				t.Errorf("expected company 42, got %d", input.CompanyID)
			}
			if input.Operation != domain.OperationAdd || input.BalanceType != domain.BalanceTypeCash {
				t.Errorf("unexpected input: %+v", input)
			}
			if !input.IsApproved {
				t.Error("expected internal mutations to be pre-approved")
			}
			return &domain.BalanceOperation{
				ID:            "op-1",
				CompanyID:     input.CompanyID,
				OperationType: input.Operation,
				BalanceType:   input.BalanceType,
				Amount:        input.Amount,
				NewBalance:    input.Amount,
			}, nil
		},
	}, nil)

	body := `{"balance_type":"CASH","amount":"25.00","operation":"ADD","description":"till top-up","user_id":"u1","user_name":"Anna"}`
	req := httptest.NewRequest(http.MethodPost, "/companies/42/balances/update", strings.NewReader(body))
	req = setChiURLParam(req, "companyID", "42")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.OperationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "op-1" || !resp.Amount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_Update_InvalidBody(t *testing.T) {
	called := false
	handler := NewBalanceHandler(&balanceServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdateBalanceInput) (*domain.BalanceOperation, error) {
			called = true
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/companies/42/balances/update", strings.NewReader("{"))
	req = setChiURLParam(req, "companyID", "42")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Error("expected service not to be called")
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
