package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/usecase"
	"github.com/motocrm/balance/internal/usecase/mocks"
)

type balanceFixture struct {
	uc           *usecase.BalanceUseCase
	balanceRepo  *mocks.MockBalanceRepository
	opRepo       *mocks.MockOperationRepository
	historyRepo  *mocks.MockHistoryRepository
	documentRepo *mocks.MockDocumentRepository
	outboxRepo   *mocks.MockOutboxRepository
}

func newBalanceFixture() *balanceFixture {
	f := &balanceFixture{
		balanceRepo:  mocks.NewMockBalanceRepository(),
		opRepo:       mocks.NewMockOperationRepository(),
		historyRepo:  mocks.NewMockHistoryRepository(),
		documentRepo: mocks.NewMockDocumentRepository(),
		outboxRepo:   mocks.NewMockOutboxRepository(),
	}

	f.uc = usecase.NewBalanceUseCase(
		mocks.NewMockTxManager(),
		f.balanceRepo,
		f.opRepo,
		f.historyRepo,
		f.documentRepo,
		f.outboxRepo,
		mocks.NewMockIDGenerator(),
		zerolog.Nop(),
	)

	return f
}

func TestBalanceUseCase_UpdateBalance_AddAndSubtract(t *testing.T) {
	f := newBalanceFixture()
	ctx := context.Background()

	op, err := f.uc.UpdateBalance(ctx, usecase.UpdateBalanceInput{
		CompanyID:   7,
		BalanceType: domain.BalanceTypeCash,
		Amount:      decimal.NewFromFloat(100.00),
		Operation:   domain.OperationAdd,
		UserID:      "u1",
		Description: "invoice paid",
	})
	require.NoError(t, err)

	assert.True(t, op.Amount.Equal(decimal.NewFromFloat(100.00)))
	assert.True(t, op.PreviousBalance.Equal(decimal.Zero))
	assert.True(t, op.NewBalance.Equal(decimal.NewFromFloat(100.00)))

	op, err = f.uc.UpdateBalance(ctx, usecase.UpdateBalanceInput{
		CompanyID:   7,
		BalanceType: domain.BalanceTypeCash,
		Amount:      decimal.NewFromFloat(40.00),
		Operation:   domain.OperationSubtract,
		UserID:      "u1",
		Description: "expense paid",
	})
	require.NoError(t, err)

	assert.True(t, op.Amount.Equal(decimal.NewFromFloat(-40.00)), "subtract records a negative delta, got %s", op.Amount)
	assert.True(t, op.NewBalance.Equal(decimal.NewFromFloat(60.00)))

	balance, err := f.uc.GetCurrentBalances(ctx, 7)
	require.NoError(t, err)
	assert.True(t, balance.CashBalance.Equal(decimal.NewFromFloat(60.00)))
	assert.True(t, balance.BankBalance.Equal(decimal.Zero), "bank bucket untouched")
}

func TestBalanceUseCase_UpdateBalance_Linearity(t *testing.T) {
	f := newBalanceFixture()
	ctx := context.Background()

	deltas := []int64{10, 25, -5, 100, -30, 7}
	var want int64

	for _, d := range deltas {
		op := domain.OperationAdd
		amount := d
		if d < 0 {
			op = domain.OperationSubtract
			amount = -d
		}

		_, err := f.uc.UpdateBalance(ctx, usecase.UpdateBalanceInput{
			CompanyID:   1,
			BalanceType: domain.BalanceTypeBank,
			Amount:      decimal.NewFromInt(amount),
			Operation:   op,
			UserID:      "u1",
		})
		require.NoError(t, err)

		want += d
	}

	balance, err := f.uc.GetCurrentBalances(ctx, 1)
	require.NoError(t, err)
	assert.True(t, balance.BankBalance.Equal(decimal.NewFromInt(want)),
		"final balance %s, want %d", balance.BankBalance, want)
}

func TestBalanceUseCase_UpdateBalance_DirectSet(t *testing.T) {
	f := newBalanceFixture()
	ctx := context.Background()

	f.balanceRepo.Seed(domain.CompanyBalance{
		CompanyID:   7,
		CashBalance: decimal.NewFromInt(100),
		BankBalance: decimal.Zero,
	})

	op, err := f.uc.UpdateBalance(ctx, usecase.UpdateBalanceInput{
		CompanyID:   7,
		BalanceType: domain.BalanceTypeCash,
		Amount:      decimal.NewFromInt(70),
		Operation:   domain.OperationManualOverride,
		UserID:      "u1",
		Description: "end of day",
	})
	require.NoError(t, err)

	assert.True(t, op.Amount.Equal(decimal.NewFromInt(-30)), "override records the applied delta, got %s", op.Amount)
	assert.True(t, op.PreviousBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, op.NewBalance.Equal(decimal.NewFromInt(70)))
}

func TestBalanceUseCase_UpdateBalance_WritesLedgerHistoryAndOutbox(t *testing.T) {
	f := newBalanceFixture()
	ctx := context.Background()

	docID := "doc-1"
	_, err := f.uc.UpdateBalance(ctx, usecase.UpdateBalanceInput{
		CompanyID:   7,
		BalanceType: domain.BalanceTypeCash,
		Amount:      decimal.NewFromInt(100),
		Operation:   domain.OperationAdd,
		DocumentID:  &docID,
		UserID:      "u1",
		UserName:    "User One",
		Description: "invoice paid",
	})
	require.NoError(t, err)

	require.Len(t, f.opRepo.Operations, 1)
	op := f.opRepo.Operations[0]
	assert.Equal(t, "doc-1", *op.DocumentID)
	assert.Equal(t, "User One", op.UserName)

	require.Len(t, f.historyRepo.Entries, 1)
	entry := f.historyRepo.Entries[0]
	assert.True(t, entry.PreviousBalance.Equal(op.PreviousBalance))
	assert.True(t, entry.NewBalance.Equal(op.NewBalance))
	assert.Equal(t, "invoice paid", entry.Description)

	require.Len(t, f.outboxRepo.Events, 1)
	assert.Equal(t, domain.EventTypeBalanceUpdated, f.outboxRepo.Events[0].EventType)
}

func TestBalanceUseCase_UpdateBalance_RejectsNonPositiveDelta(t *testing.T) {
	f := newBalanceFixture()

	_, err := f.uc.UpdateBalance(context.Background(), usecase.UpdateBalanceInput{
		CompanyID:   7,
		BalanceType: domain.BalanceTypeCash,
		Amount:      decimal.NewFromInt(-10),
		Operation:   domain.OperationAdd,
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Empty(t, f.opRepo.Operations)
}

func TestBalanceUseCase_UpdateBalance_NoLostUpdates(t *testing.T) {
	f := newBalanceFixture()
	ctx := context.Background()

	// Two concurrent increments from balance zero. The loser of the
	// compare-and-swap must retry and land on top of the winner.
	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			defer wg.Done()

			_, errs[i] = f.uc.UpdateBalance(ctx, usecase.UpdateBalanceInput{
				CompanyID:   7,
				BalanceType: domain.BalanceTypeCash,
				Amount:      decimal.NewFromFloat(50.00),
				Operation:   domain.OperationAdd,
				UserID:      "u1",
			})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	balance, err := f.uc.GetCurrentBalances(ctx, 7)
	require.NoError(t, err)
	assert.True(t, balance.CashBalance.Equal(decimal.NewFromFloat(100.00)),
		"expected 100.00, got %s", balance.CashBalance)
	assert.Len(t, f.opRepo.Operations, 2)
}

func TestBalanceUseCase_UpdateBalance_RetriesThenSucceeds(t *testing.T) {
	f := newBalanceFixture()
	ctx := context.Background()

	var calls int
	f.balanceRepo.UpdateWithVersionFunc = func(context.Context, usecase.Transaction, int64, decimal.Decimal, decimal.Decimal, int64, time.Time) error {
		calls++
		if calls < 3 {
			return domain.ErrVersionConflict
		}

		return nil
	}

	op, err := f.uc.UpdateBalance(ctx, usecase.UpdateBalanceInput{
		CompanyID:   7,
		BalanceType: domain.BalanceTypeCash,
		Amount:      decimal.NewFromInt(10),
		Operation:   domain.OperationAdd,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "third attempt should have landed")
	assert.True(t, op.NewBalance.Equal(decimal.NewFromInt(10)))
	assert.Len(t, f.opRepo.Operations, 1, "exactly one ledger entry despite retries")
}

func TestBalanceUseCase_UpdateBalance_ConcurrencyExhausted(t *testing.T) {
	f := newBalanceFixture()

	var calls int
	f.balanceRepo.UpdateWithVersionFunc = func(context.Context, usecase.Transaction, int64, decimal.Decimal, decimal.Decimal, int64, time.Time) error {
		calls++
		return domain.ErrVersionConflict
	}

	_, err := f.uc.UpdateBalance(context.Background(), usecase.UpdateBalanceInput{
		CompanyID:   7,
		BalanceType: domain.BalanceTypeCash,
		Amount:      decimal.NewFromInt(10),
		Operation:   domain.OperationAdd,
	})

	require.ErrorIs(t, err, domain.ErrConcurrencyExhausted)
	assert.Equal(t, 3, calls, "retry budget is exactly three attempts")
	assert.Empty(t, f.opRepo.Operations, "no ledger entry for an update that never landed")
}

func TestBalanceUseCase_UpdateBalance_RepoErrorIsPermanent(t *testing.T) {
	f := newBalanceFixture()

	boom := errors.New("db down")
	var calls int
	f.balanceRepo.UpdateWithVersionFunc = func(context.Context, usecase.Transaction, int64, decimal.Decimal, decimal.Decimal, int64, time.Time) error {
		calls++
		return boom
	}

	_, err := f.uc.UpdateBalance(context.Background(), usecase.UpdateBalanceInput{
		CompanyID:   7,
		BalanceType: domain.BalanceTypeCash,
		Amount:      decimal.NewFromInt(10),
		Operation:   domain.OperationAdd,
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "non-conflict errors must not be retried")
}

func TestBalanceUseCase_GetCurrentBalances_GetOrCreate(t *testing.T) {
	f := newBalanceFixture()

	balance, err := f.uc.GetCurrentBalances(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), balance.CompanyID)
	assert.True(t, balance.CashBalance.IsZero())
	assert.True(t, balance.BankBalance.IsZero())
	assert.Empty(t, f.opRepo.Operations, "pure read has no side effects on the ledger")
}

func TestBalanceUseCase_ReconcileBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("reconciled when stored matches document sum", func(t *testing.T) {
		f := newBalanceFixture()

		require.NoError(t, f.documentRepo.Upsert(ctx, &domain.FinancialDocument{
			ID: "d1", CompanyID: 7,
			Direction:     domain.DirectionIncome,
			PaymentMethod: domain.PaymentMethodCash,
			TotalGross:    decimal.NewFromInt(100),
			Status:        domain.DocumentStatusPaid,
		}))
		f.balanceRepo.Seed(domain.CompanyBalance{
			CompanyID:   7,
			CashBalance: decimal.NewFromInt(100),
			BankBalance: decimal.Zero,
		})

		result, err := f.uc.ReconcileBalance(ctx, 7)
		require.NoError(t, err)

		assert.True(t, result.IsReconciled)
		assert.True(t, result.CashDifference.IsZero())
		assert.True(t, result.BankDifference.IsZero())
	})

	t.Run("reports exact signed drift", func(t *testing.T) {
		f := newBalanceFixture()

		require.NoError(t, f.documentRepo.Upsert(ctx, &domain.FinancialDocument{
			ID: "d1", CompanyID: 7,
			Direction:     domain.DirectionIncome,
			PaymentMethod: domain.PaymentMethodBankTransfer,
			TotalGross:    decimal.NewFromInt(200),
			Status:        domain.DocumentStatusPaid,
		}))
		f.balanceRepo.Seed(domain.CompanyBalance{
			CompanyID:   7,
			CashBalance: decimal.NewFromInt(15),
			BankBalance: decimal.NewFromInt(180),
		})

		result, err := f.uc.ReconcileBalance(ctx, 7)
		require.NoError(t, err)

		assert.False(t, result.IsReconciled)
		assert.True(t, result.CashDifference.Equal(decimal.NewFromInt(15)), "cash drift %s", result.CashDifference)
		assert.True(t, result.BankDifference.Equal(decimal.NewFromInt(-20)), "bank drift %s", result.BankDifference)
	})

	t.Run("never writes", func(t *testing.T) {
		f := newBalanceFixture()
		f.balanceRepo.Seed(domain.CompanyBalance{CompanyID: 7, CashBalance: decimal.NewFromInt(50), BankBalance: decimal.Zero})

		_, err := f.uc.ReconcileBalance(ctx, 7)
		require.NoError(t, err)

		balance, _ := f.uc.GetCurrentBalances(ctx, 7)
		assert.True(t, balance.CashBalance.Equal(decimal.NewFromInt(50)))
		assert.Empty(t, f.opRepo.Operations)
	})
}
