package models

import "time"

// Student status values.
const (
	StudentStatusActive   = "active"
	StudentStatusInactive = "inactive"
)

// Student represents a child linked to exactly one parent profile.
type Student struct {
	ID             string     `db:"id" json:"id"`
	ParentID       string     `db:"parent_id" json:"parent_id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	StudentNumber  string     `db:"student_number" json:"student_number"`
	ClassLevel     string     `db:"class_level" json:"class_level"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	EnrollmentDate *time.Time `db:"enrollment_date" json:"enrollment_date,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
