package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/usecase"
)

// MockBalanceRepository is an in-memory BalanceRepository with real
// compare-and-swap semantics, so concurrency behavior can be exercised
// without a database. Set the *Func fields to override individual methods.
type MockBalanceRepository struct {
	mu       sync.Mutex
	balances map[int64]domain.CompanyBalance

	GetOrCreateFunc       func(ctx context.Context, companyID int64) (*domain.CompanyBalance, error)
	GetFunc               func(ctx context.Context, companyID int64) (*domain.CompanyBalance, error)
	UpdateWithVersionFunc func(ctx context.Context, tx usecase.Transaction, companyID int64, cash, bank decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	ListCompanyIDsFunc    func(ctx context.Context, limit, offset int) ([]int64, error)
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[int64]domain.CompanyBalance),
	}
}

// Seed installs a balance row directly, bypassing the use case.
func (m *MockBalanceRepository) Seed(b domain.CompanyBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[b.CompanyID] = b
}

func (m *MockBalanceRepository) GetOrCreate(ctx context.Context, companyID int64) (*domain.CompanyBalance, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, companyID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.balances[companyID]
	if !ok {
		b = domain.CompanyBalance{
			CompanyID:   companyID,
			CashBalance: decimal.Zero,
			BankBalance: decimal.Zero,
			LastUpdated: time.Now().UTC(),
		}
		m.balances[companyID] = b
	}

	// Copy: callers must see a read snapshot, not the live row.
	snapshot := b

	return &snapshot, nil
}

func (m *MockBalanceRepository) Get(ctx context.Context, companyID int64) (*domain.CompanyBalance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, companyID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.balances[companyID]
	if !ok {
		return nil, domain.ErrCompanyBalanceNotFound
	}

	snapshot := b

	return &snapshot, nil
}

func (m *MockBalanceRepository) UpdateWithVersion(ctx context.Context, tx usecase.Transaction, companyID int64, cash, bank decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	if m.UpdateWithVersionFunc != nil {
		return m.UpdateWithVersionFunc(ctx, tx, companyID, cash, bank, expectedVersion, updatedAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.balances[companyID]
	if !ok || b.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	b.CashBalance = cash
	b.BankBalance = bank
	b.Version++
	b.LastUpdated = updatedAt
	m.balances[companyID] = b

	return nil
}

func (m *MockBalanceRepository) ListCompanyIDs(ctx context.Context, limit, offset int) ([]int64, error) {
	if m.ListCompanyIDsFunc != nil {
		return m.ListCompanyIDsFunc(ctx, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.balances))
	for id := range m.balances {
		ids = append(ids, id)
	}

	return ids, nil
}

// MockOperationRepository is an in-memory OperationRepository.
type MockOperationRepository struct {
	mu         sync.Mutex
	Operations []*domain.BalanceOperation

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, op *domain.BalanceOperation) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.BalanceOperation, error)
	ListByCompanyFunc  func(ctx context.Context, companyID int64, filter domain.OperationFilter) ([]*domain.BalanceOperation, error)
	ListByDocumentFunc func(ctx context.Context, documentID string) ([]*domain.BalanceOperation, error)
	ApproveFunc        func(ctx context.Context, id, approvedBy string, approvedAt time.Time) error
}

func NewMockOperationRepository() *MockOperationRepository {
	return &MockOperationRepository{}
}

func (m *MockOperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.BalanceOperation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, op)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Operations = append(m.Operations, op)

	return nil
}

func (m *MockOperationRepository) GetByID(ctx context.Context, id string) (*domain.BalanceOperation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range m.Operations {
		if op.ID == id {
			return op, nil
		}
	}

	return nil, domain.ErrOperationNotFound
}

func (m *MockOperationRepository) ListByCompany(ctx context.Context, companyID int64, filter domain.OperationFilter) ([]*domain.BalanceOperation, error) {
	if m.ListByCompanyFunc != nil {
		return m.ListByCompanyFunc(ctx, companyID, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var ops []*domain.BalanceOperation
	for _, op := range m.Operations {
		if op.CompanyID == companyID {
			ops = append(ops, op)
		}
	}

	return ops, nil
}

func (m *MockOperationRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.BalanceOperation, error) {
	if m.ListByDocumentFunc != nil {
		return m.ListByDocumentFunc(ctx, documentID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var ops []*domain.BalanceOperation
	for _, op := range m.Operations {
		if op.DocumentID != nil && *op.DocumentID == documentID {
			ops = append(ops, op)
		}
	}

	return ops, nil
}

func (m *MockOperationRepository) Approve(ctx context.Context, id, approvedBy string, approvedAt time.Time) error {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, id, approvedBy, approvedAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range m.Operations {
		if op.ID == id {
			op.IsApproved = true
			op.ApprovedBy = &approvedBy
			op.ApprovalDate = &approvedAt

			return nil
		}
	}

	return domain.ErrOperationNotFound
}

// MockHistoryRepository is an in-memory HistoryRepository.
type MockHistoryRepository struct {
	mu      sync.Mutex
	Entries []*domain.BalanceHistoryEntry

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceHistoryEntry) error
	ListByCompanyFunc func(ctx context.Context, companyID int64, limit, offset int) ([]*domain.BalanceHistoryEntry, error)
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

func (m *MockHistoryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceHistoryEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)

	return nil
}

func (m *MockHistoryRepository) ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*domain.BalanceHistoryEntry, error) {
	if m.ListByCompanyFunc != nil {
		return m.ListByCompanyFunc(ctx, companyID, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []*domain.BalanceHistoryEntry
	for _, e := range m.Entries {
		if e.CompanyID == companyID {
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// MockDocumentRepository is an in-memory DocumentRepository.
type MockDocumentRepository struct {
	mu        sync.Mutex
	documents map[string]*domain.FinancialDocument

	UpsertFunc              func(ctx context.Context, doc *domain.FinancialDocument) error
	DeleteFunc              func(ctx context.Context, documentID string) error
	SumSettledByCompanyFunc func(ctx context.Context, companyID int64) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{
		documents: make(map[string]*domain.FinancialDocument),
	}
}

func (m *MockDocumentRepository) Upsert(ctx context.Context, doc *domain.FinancialDocument) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, doc)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *doc
	m.documents[doc.ID] = &copied

	return nil
}

func (m *MockDocumentRepository) Delete(ctx context.Context, documentID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, documentID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.documents, documentID)

	return nil
}

// SumSettledByCompany aggregates stored snapshots the same way the SQL
// aggregate does: PAID counts totalGross, PARTIALLY_PAID counts paidAmount,
// INCOME positive and EXPENSE negative.
func (m *MockDocumentRepository) SumSettledByCompany(ctx context.Context, companyID int64) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumSettledByCompanyFunc != nil {
		return m.SumSettledByCompanyFunc(ctx, companyID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cash, bank := decimal.Zero, decimal.Zero

	for _, doc := range m.documents {
		if doc.CompanyID != companyID {
			continue
		}

		amount := doc.EffectiveAmount(doc.Status)
		if amount.IsZero() {
			continue
		}

		if doc.Direction == domain.DirectionExpense {
			amount = amount.Neg()
		}

		if doc.PaymentMethod == domain.PaymentMethodCash {
			cash = cash.Add(amount)
		} else {
			bank = bank.Add(amount)
		}
	}

	return cash, bank, nil
}

// MockOutboxRepository is an in-memory OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.Mutex
	Events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)

	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var events []*domain.OutboxEvent
	for _, ev := range m.Events {
		if !ev.Published {
			events = append(events, ev)
		}

		if len(events) == limit {
			break
		}
	}

	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ev := range m.Events {
		if ev.ID == id {
			ev.Published = true
			ev.PublishedAt = &publishedAt
		}
	}

	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.Events[:0]
	for _, ev := range m.Events {
		if !ev.Published || ev.PublishedAt == nil || !ev.PublishedAt.Before(before) {
			kept = append(kept, ev)
		}
	}
	m.Events = kept

	return nil
}

// MockTransaction is a no-op Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}

	t.Committed = true

	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}

	if !t.Committed {
		t.RolledBack = true
	}

	return nil
}

// MockTxManager hands out MockTransactions.
type MockTxManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}

	return &MockTransaction{}, nil
}

// MockIDGenerator produces deterministic sequential IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++

	return fmt.Sprintf("id-%04d", m.next)
}

// MockBalanceService stubs the balance service for coordinator and override
// tests that do not need the full mutator.
type MockBalanceService struct {
	UpdateBalanceFunc      func(ctx context.Context, input usecase.UpdateBalanceInput) (*domain.BalanceOperation, error)
	GetCurrentBalancesFunc func(ctx context.Context, companyID int64) (*domain.CompanyBalance, error)
}

func (m *MockBalanceService) UpdateBalance(ctx context.Context, input usecase.UpdateBalanceInput) (*domain.BalanceOperation, error) {
	return m.UpdateBalanceFunc(ctx, input)
}

func (m *MockBalanceService) GetCurrentBalances(ctx context.Context, companyID int64) (*domain.CompanyBalance, error) {
	return m.GetCurrentBalancesFunc(ctx, companyID)
}
