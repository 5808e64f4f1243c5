package models

// AdminStats is the payload of GET /admin/stats.
type AdminStats struct {
	TotalTeachers       int     `json:"total_teachers" validate:"gte=0"`
	TotalStudents       int     `json:"total_students" validate:"gte=0"`
	TotalGroups         int     `json:"total_groups" validate:"gte=0"`
	TodayAttendanceRate float64 `json:"today_attendance_rate" validate:"gte=0"`
}
