package dto

import "github.com/ecoleconnect/portail-api/internal/models"

// FeeState is the derived classification of a fee at evaluation time.
type FeeState string

const (
	FeeStatePaid     FeeState = "paid"
	FeeStateOverdue  FeeState = "overdue"
	FeeStateUpcoming FeeState = "upcoming"
)

// FeeClassification pairs the derived state with its display label.
type FeeClassification struct {
	State FeeState `json:"state"`
	Label string   `json:"label"`
}

// ClassifiedFee is a denormalized fee row augmented with its derived state.
type ClassifiedFee struct {
	models.StudentFeeDetail
	Classification FeeClassification `json:"classification"`
}

// FeeSummary aggregates the pending subset of a parent's fees.
type FeeSummary struct {
	OverdueCount       int     `json:"overdue_count"`
	UpcomingCount      int     `json:"upcoming_count"`
	TotalPendingAmount float64 `json:"total_pending_amount"`
}

// RecordPaymentRequest is the payment form payload. The amount is always the
// full obligation amount; partial payments are not supported.
type RecordPaymentRequest struct {
	StudentFeeID  string `json:"student_fee_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card transfer check cash"`
	Notes         string `json:"notes"`
}
