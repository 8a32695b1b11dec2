package dto

// AdminStatsResponse backs the admin overview screen: school-wide headcounts
// plus payment aggregates.
type AdminStatsResponse struct {
	TotalStudents   int     `json:"total_students"`
	TotalTeachers   int     `json:"total_teachers"`
	TotalParents    int     `json:"total_parents"`
	PendingPayments int     `json:"pending_payments"`
	TotalRevenue    float64 `json:"total_revenue"`
}
