package dto

import "github.com/ecoleconnect/portail-api/internal/models"

// ParentDashboardResponse is the aggregate view backing the parent landing
// screen. Collections that failed to load are present but empty; the screen
// never fails wholesale on a read error.
type ParentDashboardResponse struct {
	Profile       *models.Profile       `json:"profile"`
	Students      []models.Student      `json:"students"`
	Fees          []ClassifiedFee       `json:"fees"`
	FeeSummary    FeeSummary            `json:"fee_summary"`
	Notifications []models.Notification `json:"notifications"`
}
