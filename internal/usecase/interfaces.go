package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/domain"
)

// BalanceRepository defines data access for company balances. The write path
// is a compare-and-swap keyed on the version read at the start of the
// operation; it returns domain.ErrVersionConflict when the row moved.
type BalanceRepository interface {
	GetOrCreate(ctx context.Context, companyID int64) (*domain.CompanyBalance, error)
	Get(ctx context.Context, companyID int64) (*domain.CompanyBalance, error)
	UpdateWithVersion(ctx context.Context, tx Transaction, companyID int64, cash, bank decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	ListCompanyIDs(ctx context.Context, limit, offset int) ([]int64, error)
}

// OperationRepository defines data access for the operation ledger.
// Entries are append-only; Approve only fills the approval fields of an
// entry written unapproved.
type OperationRepository interface {
	Create(ctx context.Context, tx Transaction, op *domain.BalanceOperation) error
	GetByID(ctx context.Context, id string) (*domain.BalanceOperation, error)
	ListByCompany(ctx context.Context, companyID int64, filter domain.OperationFilter) ([]*domain.BalanceOperation, error)
	ListByDocument(ctx context.Context, documentID string) ([]*domain.BalanceOperation, error)
	Approve(ctx context.Context, id, approvedBy string, approvedAt time.Time) error
}

// HistoryRepository defines data access for the human-readable audit view.
type HistoryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.BalanceHistoryEntry) error
	ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*domain.BalanceHistoryEntry, error)
}

// DocumentRepository mirrors the balance-relevant snapshot of financial
// documents. It is the independent transaction source reconciliation
// aggregates over, deliberately separate from the operation ledger.
type DocumentRepository interface {
	Upsert(ctx context.Context, doc *domain.FinancialDocument) error
	Delete(ctx context.Context, documentID string) error
	SumSettledByCompany(ctx context.Context, companyID int64) (cash, bank decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// BalanceMutator is the single write entry point for company balances.
// The coordinator and override services depend on it instead of touching
// the store directly.
type BalanceMutator interface {
	UpdateBalance(ctx context.Context, input UpdateBalanceInput) (*domain.BalanceOperation, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
