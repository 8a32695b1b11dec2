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

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryListByParent(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "parent_id", "first_name", "last_name", "student_number", "class_level", "date_of_birth", "enrollment_date", "status", "created_at", "updated_at"}).
		AddRow("s-1", "p-1", "Léa", "Martin", "2024-001", "CM2", time.Now(), time.Now(), "active", time.Now(), time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM students WHERE parent_id = \$1 ORDER BY last_name, first_name`).
		WithArgs("p-1").
		WillReturnRows(rows)

	students, err := repo.ListByParent(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Léa", students[0].FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM students WHERE id = \$1 LIMIT 1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(`INSERT INTO students`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{
		ParentID:      "p-1",
		FirstName:     "Léa",
		LastName:      "Martin",
		StudentNumber: "2024-001",
		ClassLevel:    "CM2",
		Status:        models.StudentStatusActive,
	}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(`UPDATE students SET status = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("s-1", models.StudentStatusInactive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Deactivate(context.Background(), "s-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByNumber(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM students WHERE student_number = \$1 LIMIT 1`).
		WithArgs("2024-001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByNumber(context.Background(), "2024-001", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
