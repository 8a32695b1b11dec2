package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleconnect/portail-api/internal/models"
)

func newFeeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func feeDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "fee_type_id", "amount", "due_date", "academic_year", "semester", "status", "created_at", "updated_at",
		"fee_type_name", "fee_type_category", "student_first_name", "student_last_name",
	})
}

func TestFeeRepositoryListByStudentIDs(t *testing.T) {
	db, mock, cleanup := newFeeMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	rows := feeDetailRows().
		AddRow("f-1", "s-1", "ft-1", 150.0, time.Now(), "2025-2026", nil, models.FeeStatusPending, time.Now(), time.Now(), "Cantine", "restauration", "Léa", "Martin")
	mock.ExpectQuery(`FROM student_fees sf\s+JOIN fee_types ft ON ft.id = sf.fee_type_id\s+JOIN students s ON s.id = sf.student_id WHERE sf.student_id IN \(\$1, \$2\) ORDER BY sf.due_date`).
		WithArgs("s-1", "s-2").
		WillReturnRows(rows)

	fees, err := repo.ListByStudentIDs(context.Background(), []string{"s-1", "s-2"})
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "Cantine", fees[0].FeeTypeName)
	assert.Equal(t, models.FeeStatusPending, fees[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryListByStudentIDsEmpty(t *testing.T) {
	db, mock, cleanup := newFeeMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	fees, err := repo.ListByStudentIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, fees)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newFeeMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	rows := feeDetailRows().
		AddRow("f-1", "s-1", "ft-1", 150.0, time.Now(), "2025-2026", nil, models.FeeStatusPending, time.Now(), time.Now(), "Cantine", "restauration", "Léa", "Martin")
	mock.ExpectQuery(`WHERE sf.id = \$1 LIMIT 1`).
		WithArgs("f-1").
		WillReturnRows(rows)

	fee, err := repo.FindByID(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "f-1", fee.ID)
	assert.Equal(t, "Léa", fee.StudentFirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
