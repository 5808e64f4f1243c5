package models

// AttendanceStatus is the mark a teacher gives a student for one date.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one immutable history row.
type AttendanceRecord struct {
	ID        int64            `json:"id"`
	StudentID int64            `json:"student_id" validate:"required"`
	GroupID   *int64           `json:"group_id,omitempty"`
	Date      string           `json:"date" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required,oneof=present absent late"`
	Note      *string          `json:"note,omitempty"`
}

// AttendanceMark is one student's entry in a teacher submission.
type AttendanceMark struct {
	StudentID int64            `json:"student_id" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required,oneof=present absent late"`
	Note      string           `json:"note,omitempty"`
}

// AttendanceSubmission is the body of POST /teacher/attendance.
type AttendanceSubmission struct {
	GroupID int64            `json:"group_id" validate:"required"`
	Date    string           `json:"date" validate:"required"`
	Records []AttendanceMark `json:"records" validate:"required,min=1,dive"`
}

// AttendanceStats is the student's own summary from /student/attendance/stats.
type AttendanceStats struct {
	Total      int     `json:"total" validate:"gte=0"`
	Present    int     `json:"present" validate:"gte=0"`
	Absent     int     `json:"absent" validate:"gte=0"`
	Late       int     `json:"late" validate:"gte=0"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}
