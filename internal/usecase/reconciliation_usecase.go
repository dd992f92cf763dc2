package usecase

import (
	"context"
	"fmt"
	"time"
)

// Reconciler verifies a single company, implemented by BalanceUseCase.
type Reconciler interface {
	ReconcileBalance(ctx context.Context, companyID int64) (*ReconciliationResult, error)
}

// ReconciliationUseCase runs fleet-wide drift sweeps. It is strictly
// read-only: drift is reported, never corrected, so upstream bugs stay
// visible until a human resolves them through an override.
type ReconciliationUseCase struct {
	balanceRepo BalanceRepository
	reconciler  Reconciler
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(balanceRepo BalanceRepository, reconciler Reconciler) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		balanceRepo: balanceRepo,
		reconciler:  reconciler,
	}
}

// ReconcileAllCompanies checks every company with a balance row.
func (uc *ReconciliationUseCase) ReconcileAllCompanies(ctx context.Context) ([]*ReconciliationResult, error) {
	// High page size: reconciliation is a batch job, not a UI listing.
	ids, err := uc.balanceRepo.ListCompanyIDs(ctx, 10000, 0)
	if err != nil {
		return nil, err
	}

	results := make([]*ReconciliationResult, 0, len(ids))
	for _, id := range ids {
		result, err := uc.reconciler.ReconcileBalance(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reconcile company %d: %w", id, err)
		}

		results = append(results, result)
	}

	return results, nil
}

// DriftReport summarizes a fleet-wide reconciliation sweep.
type DriftReport struct {
	TotalCompanies      int
	ReconciledCompanies int
	Discrepancies       []*ReconciliationResult
	CheckedAt           time.Time
}

// GenerateDriftReport runs a sweep and keeps only the companies that drift.
func (uc *ReconciliationUseCase) GenerateDriftReport(ctx context.Context) (*DriftReport, error) {
	results, err := uc.ReconcileAllCompanies(ctx)
	if err != nil {
		return nil, err
	}

	report := &DriftReport{
		TotalCompanies: len(results),
		Discrepancies:  make([]*ReconciliationResult, 0),
		CheckedAt:      time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledCompanies++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
