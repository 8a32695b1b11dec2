package models

import "time"

// Persisted fee statuses. Overdue-ness is never stored: it is derived from
// the due date at evaluation time.
const (
	FeeStatusPending = "pending"
	FeeStatusPaid    = "paid"
)

// FeeType is a catalog entry describing a category of charge. Static
// reference data; end users never mutate it.
type FeeType struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Category     string    `db:"category" json:"category"`
	Description  *string   `db:"description" json:"description,omitempty"`
	BaseAmount   float64   `db:"base_amount" json:"base_amount"`
	IsMandatory  bool      `db:"is_mandatory" json:"is_mandatory"`
	DueFrequency *string   `db:"due_frequency" json:"due_frequency,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StudentFee is a single billable obligation tied to one student and one
// fee category.
type StudentFee struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	FeeTypeID    string    `db:"fee_type_id" json:"fee_type_id"`
	Amount       float64   `db:"amount" json:"amount"`
	DueDate      time.Time `db:"due_date" json:"due_date"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     *string   `db:"semester" json:"semester,omitempty"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFeeDetail denormalizes a fee with its fee type and student names,
// matching what the fee list screens render.
type StudentFeeDetail struct {
	StudentFee
	FeeTypeName      string `db:"fee_type_name" json:"fee_type_name"`
	FeeTypeCategory  string `db:"fee_type_category" json:"fee_type_category"`
	StudentFirstName string `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string `db:"student_last_name" json:"student_last_name"`
}
