package models

// Stats summarises the student collection for the dashboards. PendingRevenue
// is the sum of (total - paid) per student and may be negative when a student
// overpaid; it is deliberately not clamped.
type Stats struct {
	TotalStudents     int     `json:"total_students"`
	TotalPaid         int     `json:"total_paid"`
	TotalPending      int     `json:"total_pending"`
	TotalOverdue      int     `json:"total_overdue"`
	AverageAttendance int     `json:"average_attendance"`
	TotalRevenue      float64 `json:"total_revenue"`
	PendingRevenue    float64 `json:"pending_revenue"`
}
