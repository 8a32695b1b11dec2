package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecoleconnect/portail-api/internal/models"
)

// Sentinel errors surfaced by the payment transaction so the service layer
// can map them to user-facing conflicts.
var (
	ErrFeeNotPending = errors.New("fee is not pending")
	ErrPaymentExists = errors.New("completed payment already recorded for fee")
)

// PaymentRepository persists payments and owns the fee-status transition.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, parent_id, student_fee_id, amount, payment_method, status, payment_date, notes, payment_reference, transaction_id, created_at`

// ListByParent returns the parent's payment history, newest first.
func (r *PaymentRepository) ListByParent(ctx context.Context, parentID string) ([]models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE parent_id = $1 ORDER BY created_at DESC`, paymentColumns)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, parentID); err != nil {
		return nil, fmt.Errorf("list payments by parent: %w", err)
	}
	return payments, nil
}

// FindByID fetches one payment by ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1 LIMIT 1`, paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment by id: %w", err)
	}
	return &payment, nil
}

// CreateWithFeeTransition inserts the payment and flips the fee status to
// paid inside one transaction. It fails with ErrFeeNotPending when the fee is
// not pending, and with ErrPaymentExists when a completed payment already
// references the fee, leaving no partial mutation behind.
func (r *PaymentRepository) CreateWithFeeTransition(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var feeStatus string
	if err := tx.GetContext(ctx, &feeStatus, `SELECT status FROM student_fees WHERE id = $1 FOR UPDATE`, payment.StudentFeeID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock fee row: %w", err)
	}
	if feeStatus != models.FeeStatusPending {
		return ErrFeeNotPending
	}

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT 1 FROM payments WHERE student_fee_id = $1 AND status = $2 LIMIT 1`, payment.StudentFeeID, models.PaymentStatusCompleted)
	if err == nil {
		return ErrPaymentExists
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check existing payment: %w", err)
	}

	const insertQuery = `INSERT INTO payments (id, parent_id, student_fee_id, amount, payment_method, status, payment_date, notes, payment_reference, transaction_id, created_at)
        VALUES (:id, :parent_id, :student_fee_id, :amount, :payment_method, :status, :payment_date, :notes, :payment_reference, :transaction_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, payment); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE student_fees SET status = $2, updated_at = $3 WHERE id = $1`, payment.StudentFeeID, models.FeeStatusPaid, now); err != nil {
		return fmt.Errorf("mark fee paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment tx: %w", err)
	}
	return nil
}

// Stats aggregates the payment table for the admin overview: the number of
// pending payments and the revenue collected from completed ones.
func (r *PaymentRepository) Stats(ctx context.Context) (*models.PaymentStats, error) {
	const query = `SELECT
        COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0) AS pending_count,
        COALESCE(SUM(CASE WHEN status = $2 THEN amount ELSE 0 END), 0) AS total_revenue
    FROM payments`
	var stats models.PaymentStats
	if err := r.db.GetContext(ctx, &stats, query, models.PaymentStatusPending, models.PaymentStatusCompleted); err != nil {
		return nil, fmt.Errorf("payment stats: %w", err)
	}
	return &stats, nil
}
