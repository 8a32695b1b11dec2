package models

import "time"

// Payment methods accepted by the payment form.
const (
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCheck    = "check"
	PaymentMethodCash     = "cash"
)

// Payment statuses. Portal-initiated payments are completed on creation;
// pending rows come from external imports awaiting settlement.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// ValidPaymentMethod reports whether the method is one of the accepted values.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCheck, PaymentMethodCash:
		return true
	}
	return false
}

// Payment records funds submitted by a parent against a specific student fee.
// Payments are never edited or deleted.
type Payment struct {
	ID               string    `db:"id" json:"id"`
	ParentID         string    `db:"parent_id" json:"parent_id"`
	StudentFeeID     string    `db:"student_fee_id" json:"student_fee_id"`
	Amount           float64   `db:"amount" json:"amount"`
	PaymentMethod    string    `db:"payment_method" json:"payment_method"`
	Status           string    `db:"status" json:"status"`
	PaymentDate      time.Time `db:"payment_date" json:"payment_date"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	PaymentReference *string   `db:"payment_reference" json:"payment_reference,omitempty"`
	TransactionID    *string   `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// PaymentStats aggregates the payment table for the admin overview.
type PaymentStats struct {
	PendingCount int     `db:"pending_count" json:"pending_count"`
	TotalRevenue float64 `db:"total_revenue" json:"total_revenue"`
}
