package usecase

import (
	"context"

	"github.com/motocrm/balance/internal/domain"
)

// OperationUseCase serves read access to the operation ledger and the
// history view for back-office review.
type OperationUseCase struct {
	operationRepo OperationRepository
	historyRepo   HistoryRepository
}

// NewOperationUseCase creates a new OperationUseCase.
func NewOperationUseCase(operationRepo OperationRepository, historyRepo HistoryRepository) *OperationUseCase {
	return &OperationUseCase{
		operationRepo: operationRepo,
		historyRepo:   historyRepo,
	}
}

// ListOperations lists ledger entries for a company, newest first.
func (uc *OperationUseCase) ListOperations(ctx context.Context, companyID int64, filter domain.OperationFilter) ([]*domain.BalanceOperation, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}

	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return uc.operationRepo.ListByCompany(ctx, companyID, filter)
}

// ListByDocument lists all ledger entries a document produced, including
// reversals.
func (uc *OperationUseCase) ListByDocument(ctx context.Context, documentID string) ([]*domain.BalanceOperation, error) {
	return uc.operationRepo.ListByDocument(ctx, documentID)
}

// ListHistory lists the human-readable audit view for a company.
func (uc *OperationUseCase) ListHistory(ctx context.Context, companyID int64, limit, offset int) ([]*domain.BalanceHistoryEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	return uc.historyRepo.ListByCompany(ctx, companyID, limit, offset)
}
