package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/usecase"
)

const operationColumns = `
	id, company_id, document_id, operation_type, balance_type,
	amount, previous_balance, new_balance,
	user_id, user_name, description,
	approved_by, approval_date, is_approved, ip_address, created_at
`

// OperationRepository implements usecase.OperationRepository.
type OperationRepository struct {
	pool *pgxpool.Pool
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(pool *pgxpool.Pool) *OperationRepository {
	return &OperationRepository{pool: pool}
}

// Create appends a ledger entry within the balance transaction.
func (r *OperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.BalanceOperation) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO balance_operations (` + operationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	var approvalDate pgtype.Timestamptz
	if op.ApprovalDate != nil {
		approvalDate = timeToPgTimestamptz(*op.ApprovalDate)
	}

	_, err := pgxTx.Exec(ctx, query,
		op.ID,
		op.CompanyID,
		op.DocumentID,
		op.OperationType,
		op.BalanceType,
		decimalToNumeric(op.Amount),
		decimalToNumeric(op.PreviousBalance),
		decimalToNumeric(op.NewBalance),
		op.UserID,
		op.UserName,
		op.Description,
		op.ApprovedBy,
		approvalDate,
		op.IsApproved,
		op.IPAddress,
		timeToPgTimestamptz(op.Timestamp),
	)

	return err
}

// GetByID retrieves a single ledger entry.
func (r *OperationRepository) GetByID(ctx context.Context, id string) (*domain.BalanceOperation, error) {
	query := `SELECT ` + operationColumns + ` FROM balance_operations WHERE id = $1`

	op, err := scanOperation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}

		return nil, err
	}

	return op, nil
}

// ListByCompany lists ledger entries for a company, newest first.
func (r *OperationRepository) ListByCompany(ctx context.Context, companyID int64, filter domain.OperationFilter) ([]*domain.BalanceOperation, error) {
	query := `SELECT ` + operationColumns + ` FROM balance_operations WHERE company_id = $1`
	args := []any{companyID}

	if filter.BalanceType != "" {
		args = append(args, filter.BalanceType)
		query += fmt.Sprintf(" AND balance_type = $%d", len(args))
	}

	if filter.OperationType != "" {
		args = append(args, filter.OperationType)
		query += fmt.Sprintf(" AND operation_type = $%d", len(args))
	}

	if filter.From != nil {
		args = append(args, timeToPgTimestamptz(*filter.From))
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	if filter.To != nil {
		args = append(args, timeToPgTimestamptz(*filter.To))
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

// ListByDocument lists every ledger entry a document produced, oldest first
// so the apply/reverse sequence reads in order.
func (r *OperationRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.BalanceOperation, error) {
	query := `SELECT ` + operationColumns + ` FROM balance_operations WHERE document_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

// Approve fills the approval fields of an entry written unapproved. Entries
// are otherwise immutable.
func (r *OperationRepository) Approve(ctx context.Context, id, approvedBy string, approvedAt time.Time) error {
	query := `
		UPDATE balance_operations
		SET is_approved = TRUE, approved_by = $1, approval_date = $2
		WHERE id = $3 AND is_approved = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, approvedBy, timeToPgTimestamptz(approvedAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrOperationNotFound
	}

	return nil
}

func scanOperations(rows pgx.Rows) ([]*domain.BalanceOperation, error) {
	var ops []*domain.BalanceOperation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
	}

	return ops, rows.Err()
}

func scanOperation(row pgx.Row) (*domain.BalanceOperation, error) {
	var (
		op           domain.BalanceOperation
		amount       pgtype.Numeric
		previous     pgtype.Numeric
		newBalance   pgtype.Numeric
		approvalDate pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&op.ID,
		&op.CompanyID,
		&op.DocumentID,
		&op.OperationType,
		&op.BalanceType,
		&amount,
		&previous,
		&newBalance,
		&op.UserID,
		&op.UserName,
		&op.Description,
		&op.ApprovedBy,
		&approvalDate,
		&op.IsApproved,
		&op.IPAddress,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	op.Amount = numericToDecimal(amount)
	op.PreviousBalance = numericToDecimal(previous)
	op.NewBalance = numericToDecimal(newBalance)
	op.Timestamp = createdAt.Time

	if approvalDate.Valid {
		t := approvalDate.Time
		op.ApprovalDate = &t
	}

	return &op, nil
}
