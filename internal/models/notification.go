package models

import "time"

// Notification types emitted by the payment pipeline.
const (
	NotificationTypePaymentReceived = "payment_received"
	NotificationTypeFeeReminder     = "fee_reminder"
)

// Notification is a payment notification addressed to a parent. Rows are
// produced by background processes; parents only read them and flip is_read.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	ParentID  string    `db:"parent_id" json:"parent_id"`
	StudentID *string   `db:"student_id" json:"student_id,omitempty"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
