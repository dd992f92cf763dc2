package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/domain"
)

// DocumentRepository implements usecase.DocumentRepository. It stores the
// balance-relevant snapshot of financial documents that reconciliation
// aggregates over, independent of the operation ledger.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Upsert records the latest known state of a document.
func (r *DocumentRepository) Upsert(ctx context.Context, doc *domain.FinancialDocument) error {
	query := `
		INSERT INTO financial_documents (
			id, company_id, direction, payment_method,
			total_gross, paid_amount, status, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			company_id = EXCLUDED.company_id,
			direction = EXCLUDED.direction,
			payment_method = EXCLUDED.payment_method,
			total_gross = EXCLUDED.total_gross,
			paid_amount = EXCLUDED.paid_amount,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.CompanyID,
		doc.Direction,
		doc.PaymentMethod,
		decimalToNumeric(doc.TotalGross),
		decimalToNumeric(doc.PaidAmount),
		doc.Status,
		timeToPgTimestamptz(time.Now().UTC()),
	)

	return err
}

// Delete removes the snapshot of a deleted document.
func (r *DocumentRepository) Delete(ctx context.Context, documentID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM financial_documents WHERE id = $1`, documentID)

	return err
}

// SumSettledByCompany aggregates the settled effect of a company's documents
// per bucket: PAID counts total_gross, PARTIALLY_PAID counts paid_amount,
// EXPENSE negates, CASH lands in the cash bucket and everything else in bank.
func (r *DocumentRepository) SumSettledByCompany(ctx context.Context, companyID int64) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN payment_method = 'CASH' THEN amount ELSE 0 END), 0) AS cash_total,
			COALESCE(SUM(CASE WHEN payment_method <> 'CASH' THEN amount ELSE 0 END), 0) AS bank_total
		FROM (
			SELECT payment_method,
			       CASE status
			           WHEN 'PAID' THEN total_gross
			           WHEN 'PARTIALLY_PAID' THEN paid_amount
			           ELSE 0
			       END
			       * CASE direction WHEN 'EXPENSE' THEN -1 ELSE 1 END AS amount
			FROM financial_documents
			WHERE company_id = $1
		) settled
	`

	var cashTotal, bankTotal pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, companyID).Scan(&cashTotal, &bankTotal); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(cashTotal), numericToDecimal(bankTotal), nil
}
