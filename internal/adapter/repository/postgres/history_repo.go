package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/usecase"
)

// HistoryRepository implements usecase.HistoryRepository.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Create appends a history entry within the balance transaction.
func (r *HistoryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceHistoryEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO balance_history (
			id, company_id, balance_type, operation_type,
			previous_balance, new_balance, description,
			user_id, user_name, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := pgxTx.Exec(ctx, query,
		entry.ID,
		entry.CompanyID,
		entry.BalanceType,
		entry.OperationType,
		decimalToNumeric(entry.PreviousBalance),
		decimalToNumeric(entry.NewBalance),
		entry.Description,
		entry.UserID,
		entry.UserName,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// ListByCompany lists history entries for a company, newest first.
func (r *HistoryRepository) ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*domain.BalanceHistoryEntry, error) {
	query := `
		SELECT id, company_id, balance_type, operation_type,
		       previous_balance, new_balance, description,
		       user_id, user_name, created_at
		FROM balance_history
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.BalanceHistoryEntry
	for rows.Next() {
		var (
			entry     domain.BalanceHistoryEntry
			previous  pgtype.Numeric
			current   pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&entry.ID,
			&entry.CompanyID,
			&entry.BalanceType,
			&entry.OperationType,
			&previous,
			&current,
			&entry.Description,
			&entry.UserID,
			&entry.UserName,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		entry.PreviousBalance = numericToDecimal(previous)
		entry.NewBalance = numericToDecimal(current)
		entry.CreatedAt = createdAt.Time

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
