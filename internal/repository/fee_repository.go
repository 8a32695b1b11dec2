package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecoleconnect/portail-api/internal/models"
)

// FeeRepository reads student fee obligations joined with their fee type and
// student names.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

const feeDetailSelect = `SELECT sf.id, sf.student_id, sf.fee_type_id, sf.amount, sf.due_date, sf.academic_year, sf.semester, sf.status, sf.created_at, sf.updated_at,
        ft.name AS fee_type_name, ft.category AS fee_type_category,
        s.first_name AS student_first_name, s.last_name AS student_last_name
        FROM student_fees sf
        JOIN fee_types ft ON ft.id = sf.fee_type_id
        JOIN students s ON s.id = sf.student_id`

// ListByStudentIDs returns the fees of the given students, soonest due first.
func (r *FeeRepository) ListByStudentIDs(ctx context.Context, studentIDs []string) ([]models.StudentFeeDetail, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(feeDetailSelect+` WHERE sf.student_id IN (?) ORDER BY sf.due_date`, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("build fee query: %w", err)
	}
	query = r.db.Rebind(query)
	var fees []models.StudentFeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, fmt.Errorf("list fees by students: %w", err)
	}
	return fees, nil
}

// FindByID fetches one fee detail by ID.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.StudentFeeDetail, error) {
	query := feeDetailSelect + ` WHERE sf.id = $1 LIMIT 1`
	var fee models.StudentFeeDetail
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find fee by id: %w", err)
	}
	return &fee, nil
}
