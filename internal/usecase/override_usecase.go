package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/infrastructure/metrics"
)

// BalanceService is what the override service needs from the balance
// use case: the write entry point plus the current-balance read.
type BalanceService interface {
	BalanceMutator
	GetCurrentBalances(ctx context.Context, companyID int64) (*domain.CompanyBalance, error)
}

// OverrideUseCase handles human-initiated balance corrections: direct sets,
// safe transfers, bank-statement reconciliation and cash inventory. Business
// failures are captured in the returned OverrideResult instead of an error,
// so UI-facing callers always get a structured outcome. This asymmetry with
// the balance use case (which returns errors) is deliberate.
type OverrideUseCase struct {
	balances      BalanceService
	operationRepo OperationRepository
	maxBalance    decimal.Decimal
	logger        zerolog.Logger
}

// NewOverrideUseCase creates a new OverrideUseCase. maxBalance is the
// configured ceiling an override may set a bucket to.
func NewOverrideUseCase(balances BalanceService, operationRepo OperationRepository, maxBalance decimal.Decimal, logger zerolog.Logger) *OverrideUseCase {
	return &OverrideUseCase{
		balances:      balances,
		operationRepo: operationRepo,
		maxBalance:    maxBalance,
		logger:        logger,
	}
}

// OverrideRequest is a human-triggered direct balance set.
type OverrideRequest struct {
	CompanyID     int64
	BalanceType   domain.BalanceType
	NewBalance    decimal.Decimal
	Description   string
	UserID        string
	UserName      string
	ApprovedBy    *string
	IPAddress     *string
	IsPreApproved bool
}

// OverrideResult is the structured outcome of an override submission.
// Success is false for validation and insufficient-funds failures, with the
// cause in Err and a human-readable Message.
type OverrideResult struct {
	Success         bool
	OperationID     string
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Difference      decimal.Decimal
	Message         string
	Err             error
}

// OverrideBalance validates the request and performs a direct set through
// the balance mutator with operation type MANUAL_OVERRIDE. No mutation
// happens on any failure path.
func (uc *OverrideUseCase) OverrideBalance(ctx context.Context, req OverrideRequest) OverrideResult {
	return uc.submit(ctx, "override", req)
}

func (uc *OverrideUseCase) submit(ctx context.Context, kind string, req OverrideRequest) OverrideResult {
	if err := domain.ValidateOverrideBalance(req.NewBalance, uc.maxBalance); err != nil {
		return uc.failure(kind, "validation_error", decimal.Zero, err)
	}

	if err := domain.ValidateOverrideDescription(req.Description); err != nil {
		return uc.failure(kind, "validation_error", decimal.Zero, err)
	}

	previous, err := uc.balances.GetCurrentBalances(ctx, req.CompanyID)
	if err != nil {
		return uc.failure(kind, "error", decimal.Zero, err)
	}

	previousValue := previous.Bucket(req.BalanceType)

	approvedBy := req.ApprovedBy
	if req.IsPreApproved && approvedBy == nil {
		approvedBy = &req.UserID
	}

	op, err := uc.balances.UpdateBalance(ctx, UpdateBalanceInput{
		CompanyID:   req.CompanyID,
		BalanceType: req.BalanceType,
		Amount:      req.NewBalance,
		Operation:   domain.OperationManualOverride,
		UserID:      req.UserID,
		UserName:    req.UserName,
		Description: req.Description,
		ApprovedBy:  approvedBy,
		IPAddress:   req.IPAddress,
		IsApproved:  req.IsPreApproved,
	})
	if err != nil {
		return uc.failure(kind, "error", previousValue, err)
	}

	metrics.OverrideSubmissions.WithLabelValues(kind, "ok").Inc()
	uc.logger.Info().
		Int64("company_id", req.CompanyID).
		Str("balance_type", string(req.BalanceType)).
		Str("operation_id", op.ID).
		Str("previous", op.PreviousBalance.String()).
		Str("new", op.NewBalance.String()).
		Bool("pre_approved", req.IsPreApproved).
		Msg("manual override applied")

	return OverrideResult{
		Success:         true,
		OperationID:     op.ID,
		PreviousBalance: op.PreviousBalance,
		NewBalance:      op.NewBalance,
		Difference:      op.Amount,
		Message:         "override applied",
	}
}

// MoveCashToSafe moves amount from the cash balance to the office safe.
// Fails without any mutation when the cash balance cannot cover it.
func (uc *OverrideUseCase) MoveCashToSafe(ctx context.Context, companyID int64, amount decimal.Decimal, userID, description string) OverrideResult {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return uc.failure("safe_deposit", "validation_error", decimal.Zero, fmt.Errorf("%w: %s", domain.ErrValidation, err))
	}

	current, err := uc.balances.GetCurrentBalances(ctx, companyID)
	if err != nil {
		return uc.failure("safe_deposit", "error", decimal.Zero, err)
	}

	if amount.GreaterThan(current.CashBalance) {
		err := fmt.Errorf("%w: requested %s, cash balance is %s",
			domain.ErrInsufficientFunds, amount.StringFixed(2), current.CashBalance.StringFixed(2))

		return uc.failure("safe_deposit", "insufficient_funds", current.CashBalance, err)
	}

	return uc.submit(ctx, "safe_deposit", OverrideRequest{
		CompanyID:     companyID,
		BalanceType:   domain.BalanceTypeCash,
		NewBalance:    current.CashBalance.Sub(amount),
		Description:   fmt.Sprintf("Przeniesienie %s do sejfu. %s", amount.StringFixed(2), description),
		UserID:        userID,
		UserName:      userID,
		IsPreApproved: true,
	})
}

// MoveCashFromSafe moves amount from the office safe back to the cash
// balance. There is no upper bound beyond the override ceiling.
func (uc *OverrideUseCase) MoveCashFromSafe(ctx context.Context, companyID int64, amount decimal.Decimal, userID, description string) OverrideResult {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return uc.failure("safe_withdrawal", "validation_error", decimal.Zero, fmt.Errorf("%w: %s", domain.ErrValidation, err))
	}

	current, err := uc.balances.GetCurrentBalances(ctx, companyID)
	if err != nil {
		return uc.failure("safe_withdrawal", "error", decimal.Zero, err)
	}

	return uc.submit(ctx, "safe_withdrawal", OverrideRequest{
		CompanyID:     companyID,
		BalanceType:   domain.BalanceTypeCash,
		NewBalance:    current.CashBalance.Add(amount),
		Description:   fmt.Sprintf("Pobranie %s z sejfu. %s", amount.StringFixed(2), description),
		UserID:        userID,
		UserName:      userID,
		IsPreApproved: true,
	})
}

// ReconcileWithBankStatement sets the bank balance to the statement value.
// Bank reconciliations always require a second-step approval, so the
// resulting operation is never pre-approved.
func (uc *OverrideUseCase) ReconcileWithBankStatement(ctx context.Context, companyID int64, statementBalance decimal.Decimal, userID, description string) OverrideResult {
	return uc.submit(ctx, "bank_statement", OverrideRequest{
		CompanyID:     companyID,
		BalanceType:   domain.BalanceTypeBank,
		NewBalance:    statementBalance,
		Description:   fmt.Sprintf("Uzgodnienie z wyciągiem bankowym: saldo %s. %s", statementBalance.StringFixed(2), description),
		UserID:        userID,
		UserName:      userID,
		IsPreApproved: false,
	})
}

// PerformCashInventory records a physical cash count, overriding the cash
// balance to the counted amount. The description states the surplus
// (nadwyżka) or shortage (niedobór) against the stored balance. Inventory
// results are never pre-approved.
func (uc *OverrideUseCase) PerformCashInventory(ctx context.Context, companyID int64, countedAmount decimal.Decimal, userID, notes string) OverrideResult {
	current, err := uc.balances.GetCurrentBalances(ctx, companyID)
	if err != nil {
		return uc.failure("cash_inventory", "error", decimal.Zero, err)
	}

	difference := countedAmount.Sub(current.CashBalance)

	description := fmt.Sprintf("Inwentaryzacja gotówki: stan systemowy %s, stan policzony %s",
		current.CashBalance.StringFixed(2), countedAmount.StringFixed(2))

	switch {
	case difference.IsPositive():
		description += fmt.Sprintf(", nadwyżka %s", difference.StringFixed(2))
	case difference.IsNegative():
		description += fmt.Sprintf(", niedobór %s", difference.StringFixed(2))
	}

	if notes != "" {
		description += ". " + notes
	}

	return uc.submit(ctx, "cash_inventory", OverrideRequest{
		CompanyID:     companyID,
		BalanceType:   domain.BalanceTypeCash,
		NewBalance:    countedAmount,
		Description:   description,
		UserID:        userID,
		UserName:      userID,
		IsPreApproved: false,
	})
}

// ApproveOperation completes the second approval step on an operation that
// was submitted unapproved, such as a bank-statement reconciliation.
func (uc *OverrideUseCase) ApproveOperation(ctx context.Context, operationID, approvedBy string) error {
	op, err := uc.operationRepo.GetByID(ctx, operationID)
	if err != nil {
		return err
	}

	if op.IsApproved {
		return nil
	}

	return uc.operationRepo.Approve(ctx, operationID, approvedBy, time.Now().UTC())
}

func (uc *OverrideUseCase) failure(kind, result string, previous decimal.Decimal, err error) OverrideResult {
	metrics.OverrideSubmissions.WithLabelValues(kind, result).Inc()

	if !errors.Is(err, domain.ErrValidation) && !errors.Is(err, domain.ErrInsufficientFunds) {
		uc.logger.Error().Err(err).Str("kind", kind).Msg("override failed")
	}

	return OverrideResult{
		Success:         false,
		PreviousBalance: previous,
		NewBalance:      previous,
		Message:         err.Error(),
		Err:             err,
	}
}
