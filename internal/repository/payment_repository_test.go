package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleconnect/portail-api/internal/models"
)

func newPaymentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func testPayment() *models.Payment {
	return &models.Payment{
		ParentID:      "p-1",
		StudentFeeID:  "f-1",
		Amount:        150,
		PaymentMethod: models.PaymentMethodCard,
		Status:        models.PaymentStatusCompleted,
		PaymentDate:   time.Now().UTC(),
	}
}

func TestPaymentRepositoryCreateWithFeeTransition(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM student_fees WHERE id = \$1 FOR UPDATE`).
		WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.FeeStatusPending))
	mock.ExpectQuery(`SELECT 1 FROM payments WHERE student_fee_id = \$1 AND status = \$2 LIMIT 1`).
		WithArgs("f-1", models.PaymentStatusCompleted).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE student_fees SET status = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("f-1", models.FeeStatusPaid, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	payment := testPayment()
	err := repo.CreateWithFeeTransition(context.Background(), payment)
	require.NoError(t, err)
	assert.NotEmpty(t, payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCreateWithFeeTransitionFeeNotPending(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM student_fees WHERE id = \$1 FOR UPDATE`).
		WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.FeeStatusPaid))
	mock.ExpectRollback()

	err := repo.CreateWithFeeTransition(context.Background(), testPayment())
	assert.ErrorIs(t, err, ErrFeeNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCreateWithFeeTransitionDuplicate(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM student_fees WHERE id = \$1 FOR UPDATE`).
		WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.FeeStatusPending))
	mock.ExpectQuery(`SELECT 1 FROM payments WHERE student_fee_id = \$1 AND status = \$2 LIMIT 1`).
		WithArgs("f-1", models.PaymentStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateWithFeeTransition(context.Background(), testPayment())
	assert.ErrorIs(t, err, ErrPaymentExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCreateWithFeeTransitionMissingFee(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM student_fees WHERE id = \$1 FOR UPDATE`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	payment := testPayment()
	payment.StudentFeeID = "missing"
	err := repo.CreateWithFeeTransition(context.Background(), payment)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListByParent(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "parent_id", "student_fee_id", "amount", "payment_method", "status", "payment_date", "notes", "payment_reference", "transaction_id", "created_at"}).
		AddRow("pay-1", "p-1", "f-1", 150.0, "card", "completed", time.Now(), nil, nil, nil, time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM payments WHERE parent_id = \$1 ORDER BY created_at DESC`).
		WithArgs("p-1").
		WillReturnRows(rows)

	payments, err := repo.ListByParent(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "pay-1", payments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryStats(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"pending_count", "total_revenue"}).AddRow(3, 780.5)
	mock.ExpectQuery(`SUM\(CASE WHEN status = \$1 THEN 1 ELSE 0 END\)`).
		WithArgs(models.PaymentStatusPending, models.PaymentStatusCompleted).
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PendingCount)
	assert.Equal(t, 780.5, stats.TotalRevenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
