package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/infrastructure/metrics"
)

// BalanceUseCase is the balance mutator: the only component allowed to write
// company balances. Every mutation lands atomically with its operation
// ledger entry, its history entry and its outbox event; the ledger rows are
// written after the balance write inside the same transaction, so the ledger
// never records an operation that did not actually land.
type BalanceUseCase struct {
	txManager     TransactionManager
	balanceRepo   BalanceRepository
	operationRepo OperationRepository
	historyRepo   HistoryRepository
	documentRepo  DocumentRepository
	outboxRepo    OutboxRepository
	idGen         IDGenerator
	logger        zerolog.Logger
	retryInterval time.Duration
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	operationRepo OperationRepository,
	historyRepo HistoryRepository,
	documentRepo DocumentRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *BalanceUseCase {
	return &BalanceUseCase{
		txManager:     txManager,
		balanceRepo:   balanceRepo,
		operationRepo: operationRepo,
		historyRepo:   historyRepo,
		documentRepo:  documentRepo,
		outboxRepo:    outboxRepo,
		idGen:         idGen,
		logger:        logger,
		retryInterval: defaultRetryInterval,
	}
}

// SetRetryInterval overrides the pause between optimistic-lock retries.
func (uc *BalanceUseCase) SetRetryInterval(interval time.Duration) {
	if interval > 0 {
		uc.retryInterval = interval
	}
}

// UpdateBalanceInput represents one balance mutation.
type UpdateBalanceInput struct {
	CompanyID   int64
	BalanceType domain.BalanceType
	// Amount is the delta for ADD/SUBTRACT and the target value for
	// CORRECTION/MANUAL_OVERRIDE.
	Amount      decimal.Decimal
	Operation   domain.OperationType
	DocumentID  *string
	UserID      string
	UserName    string
	Description string
	ApprovedBy  *string
	IPAddress   *string
	IsApproved  bool
}

// UpdateBalance applies the mutation with an optimistic-concurrency retry
// loop: read-compute-write, where the write is rejected if the balance row
// was concurrently modified since it was read. Version conflicts retry the
// whole cycle up to maxUpdateAttempts times; exhaustion surfaces as
// domain.ErrConcurrencyExhausted.
func (uc *BalanceUseCase) UpdateBalance(ctx context.Context, input UpdateBalanceInput) (*domain.BalanceOperation, error) {
	if input.Operation == domain.OperationAdd || input.Operation == domain.OperationSubtract {
		if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
			return nil, err
		}
	}

	var (
		op      *domain.BalanceOperation
		attempt int
	)

	run := func() error {
		attempt++

		result, err := uc.applyOnce(ctx, input)
		if err == nil {
			op = result
			return nil
		}

		if errors.Is(err, domain.ErrVersionConflict) {
			metrics.VersionConflicts.Inc()
			uc.logger.Warn().
				Int64("company_id", input.CompanyID).
				Str("operation", string(input.Operation)).
				Int("attempt", attempt).
				Msg("balance write lost optimistic lock, retrying")

			return err
		}

		return backoff.Permanent(err)
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(uc.retryInterval), maxUpdateAttempts-1)
	if err := backoff.Retry(run, backoff.WithContext(b, ctx)); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			metrics.RetriesExhausted.Inc()
			uc.logger.Error().
				Int64("company_id", input.CompanyID).
				Int("attempts", attempt).
				Msg("balance update abandoned, sustained write contention")

			return nil, fmt.Errorf("%w: company %d after %d attempts", domain.ErrConcurrencyExhausted, input.CompanyID, attempt)
		}

		return nil, err
	}

	metrics.BalanceMutations.WithLabelValues(string(input.Operation), string(input.BalanceType)).Inc()

	return op, nil
}

// applyOnce runs a single read-compute-write cycle.
func (uc *BalanceUseCase) applyOnce(ctx context.Context, input UpdateBalanceInput) (*domain.BalanceOperation, error) {
	balance, err := uc.balanceRepo.GetOrCreate(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	previous := balance.Bucket(input.BalanceType)

	newBalance, delta, err := computeTarget(previous, input.Operation, input.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cash, bank := balance.WithBucket(input.BalanceType, newBalance)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = uc.balanceRepo.UpdateWithVersion(ctx, tx, input.CompanyID, cash, bank, balance.Version, now)
	if err != nil {
		return nil, err
	}

	op := &domain.BalanceOperation{
		ID:              uc.idGen.Generate(),
		CompanyID:       input.CompanyID,
		DocumentID:      input.DocumentID,
		OperationType:   input.Operation,
		BalanceType:     input.BalanceType,
		Amount:          delta,
		PreviousBalance: previous,
		NewBalance:      newBalance,
		UserID:          input.UserID,
		UserName:        input.UserName,
		Description:     input.Description,
		ApprovedBy:      input.ApprovedBy,
		IsApproved:      input.IsApproved,
		IPAddress:       input.IPAddress,
		Timestamp:       now,
	}
	if input.IsApproved {
		op.ApprovalDate = &now
	}

	if err := uc.operationRepo.Create(ctx, tx, op); err != nil {
		return nil, err
	}

	entry := &domain.BalanceHistoryEntry{
		ID:              uc.idGen.Generate(),
		CompanyID:       input.CompanyID,
		BalanceType:     input.BalanceType,
		OperationType:   input.Operation,
		PreviousBalance: previous,
		NewBalance:      newBalance,
		Description:     input.Description,
		UserID:          input.UserID,
		UserName:        input.UserName,
		CreatedAt:       now,
	}

	if err := uc.historyRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, balanceUpdatedEvent(uc.idGen.Generate(), op, now)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return op, nil
}

// GetCurrentBalances returns the stored balances for a company,
// creating the zero row on first access. Pure read otherwise.
func (uc *BalanceUseCase) GetCurrentBalances(ctx context.Context, companyID int64) (*domain.CompanyBalance, error) {
	return uc.balanceRepo.GetOrCreate(ctx, companyID)
}

// ReconciliationResult carries a point-in-time comparison between stored
// balances and balances recalculated from the document source. It is a
// snapshot, not a proof: in-flight writes may be observed mid-way.
type ReconciliationResult struct {
	CompanyID      int64
	StoredCash     decimal.Decimal
	StoredBank     decimal.Decimal
	CalculatedCash decimal.Decimal
	CalculatedBank decimal.Decimal
	CashDifference decimal.Decimal
	BankDifference decimal.Decimal
	IsReconciled   bool
	CheckedAt      time.Time
}

// ReconcileBalance recomputes balances from the financial-document source
// (not from the operation ledger, so ledger-writing bugs are caught too) and
// compares them against the stored row. It never writes; drift is resolved
// by a human through an override.
func (uc *BalanceUseCase) ReconcileBalance(ctx context.Context, companyID int64) (*ReconciliationResult, error) {
	stored, err := uc.balanceRepo.GetOrCreate(ctx, companyID)
	if err != nil {
		return nil, err
	}

	calcCash, calcBank, err := uc.documentRepo.SumSettledByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		CompanyID:      companyID,
		StoredCash:     stored.CashBalance,
		StoredBank:     stored.BankBalance,
		CalculatedCash: calcCash,
		CalculatedBank: calcBank,
		CashDifference: stored.CashBalance.Sub(calcCash),
		BankDifference: stored.BankBalance.Sub(calcBank),
		CheckedAt:      time.Now().UTC(),
	}
	result.IsReconciled = result.CashDifference.IsZero() && result.BankDifference.IsZero()

	company := strconv.FormatInt(companyID, 10)
	metrics.ReconciliationDrift.WithLabelValues(company, string(domain.BalanceTypeCash)).Set(toFloat(result.CashDifference))
	metrics.ReconciliationDrift.WithLabelValues(company, string(domain.BalanceTypeBank)).Set(toFloat(result.BankDifference))

	if !result.IsReconciled {
		uc.logger.Warn().
			Int64("company_id", companyID).
			Str("cash_difference", result.CashDifference.String()).
			Str("bank_difference", result.BankDifference.String()).
			Msg("balance drift detected")
	}

	return result, nil
}

func computeTarget(previous decimal.Decimal, op domain.OperationType, amount decimal.Decimal) (newBalance, delta decimal.Decimal, err error) {
	switch op {
	case domain.OperationAdd:
		return previous.Add(amount), amount, nil
	case domain.OperationSubtract:
		return previous.Sub(amount), amount.Neg(), nil
	case domain.OperationCorrection, domain.OperationManualOverride:
		return amount, amount.Sub(previous), nil
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("unsupported operation type %q", op)
	}
}

func balanceUpdatedEvent(id string, op *domain.BalanceOperation, now time.Time) *domain.OutboxEvent {
	eventType := domain.EventTypeBalanceUpdated
	if op.OperationType == domain.OperationManualOverride {
		eventType = domain.EventTypeBalanceOverridden
	}

	documentID := ""
	if op.DocumentID != nil {
		documentID = *op.DocumentID
	}

	return &domain.OutboxEvent{
		ID:            id,
		AggregateID:   strconv.FormatInt(op.CompanyID, 10),
		AggregateType: domain.AggregateTypeCompanyBalance,
		EventType:     eventType,
		Payload: map[string]any{
			"operation_id":   op.ID,
			"company_id":     op.CompanyID,
			"balance_type":   string(op.BalanceType),
			"operation_type": string(op.OperationType),
			"amount":         op.Amount.String(),
			"new_balance":    op.NewBalance.String(),
			"document_id":    documentID,
		},
		CreatedAt: now,
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
