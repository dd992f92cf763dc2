package integration

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/adapter/repository/postgres"
	"github.com/motocrm/balance/internal/usecase"
)

// stack wires the full use-case stack against a real database, the same way
// the server entry point does.
type stack struct {
	balanceRepo   *postgres.BalanceRepository
	operationRepo *postgres.OperationRepository
	historyRepo   *postgres.HistoryRepository
	documentRepo  *postgres.DocumentRepository
	outboxRepo    *postgres.OutboxRepository

	balanceUC        *usecase.BalanceUseCase
	coordinatorUC    *usecase.CoordinatorUseCase
	overrideUC       *usecase.OverrideUseCase
	reconciliationUC *usecase.ReconciliationUseCase
	operationUC      *usecase.OperationUseCase
}

func newStack(pool *pgxpool.Pool) *stack {
	s := &stack{
		balanceRepo:   postgres.NewBalanceRepository(pool),
		operationRepo: postgres.NewOperationRepository(pool),
		historyRepo:   postgres.NewHistoryRepository(pool),
		documentRepo:  postgres.NewDocumentRepository(pool),
		outboxRepo:    postgres.NewOutboxRepository(pool),
	}

	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	logger := zerolog.Nop()

	s.balanceUC = usecase.NewBalanceUseCase(
		txManager,
		s.balanceRepo,
		s.operationRepo,
		s.historyRepo,
		s.documentRepo,
		s.outboxRepo,
		idGen,
		logger,
	)
	s.coordinatorUC = usecase.NewCoordinatorUseCase(s.balanceUC, s.documentRepo, logger)
	s.overrideUC = usecase.NewOverrideUseCase(s.balanceUC, s.operationRepo, decimal.NewFromInt(1_000_000), logger)
	s.reconciliationUC = usecase.NewReconciliationUseCase(s.balanceRepo, s.balanceUC)
	s.operationUC = usecase.NewOperationUseCase(s.operationRepo, s.historyRepo)

	return s
}
