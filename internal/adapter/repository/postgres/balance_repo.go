package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

// GetOrCreate retrieves the balance row for a company, inserting a zeroed
// row at version 0 if none exists yet.
func (r *BalanceRepository) GetOrCreate(ctx context.Context, companyID int64) (*domain.CompanyBalance, error) {
	insert := `
		INSERT INTO company_balances (company_id, cash_balance, bank_balance, version, last_updated)
		VALUES ($1, 0, 0, 0, $2)
		ON CONFLICT (company_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, insert, companyID, timeToPgTimestamptz(time.Now().UTC())); err != nil {
		return nil, err
	}

	return r.Get(ctx, companyID)
}

// Get retrieves the balance row for a company.
func (r *BalanceRepository) Get(ctx context.Context, companyID int64) (*domain.CompanyBalance, error) {
	query := `
		SELECT company_id, cash_balance, bank_balance, version, last_updated
		FROM company_balances
		WHERE company_id = $1
	`

	var (
		balance domain.CompanyBalance
		cash    pgtype.Numeric
		bank    pgtype.Numeric
		updated pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, query, companyID).Scan(
		&balance.CompanyID,
		&cash,
		&bank,
		&balance.Version,
		&updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyBalanceNotFound
		}

		return nil, err
	}

	balance.CashBalance = numericToDecimal(cash)
	balance.BankBalance = numericToDecimal(bank)
	balance.LastUpdated = updated.Time

	return &balance, nil
}

// UpdateWithVersion writes both buckets guarded by the version read at the
// start of the operation. A zero row count means another writer moved the
// row first and the whole read-compute-write cycle must be repeated.
func (r *BalanceRepository) UpdateWithVersion(ctx context.Context, tx usecase.Transaction, companyID int64, cash, bank decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE company_balances
		SET cash_balance = $1, bank_balance = $2, version = version + 1, last_updated = $3
		WHERE company_id = $4 AND version = $5
	`

	tag, err := pgxTx.Exec(ctx, query,
		decimalToNumeric(cash),
		decimalToNumeric(bank),
		timeToPgTimestamptz(updatedAt),
		companyID,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// ListCompanyIDs lists the IDs of all companies that have a balance row.
func (r *BalanceRepository) ListCompanyIDs(ctx context.Context, limit, offset int) ([]int64, error) {
	query := `
		SELECT company_id
		FROM company_balances
		ORDER BY company_id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
