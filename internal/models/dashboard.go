package models

import (
	"math"
	"strings"
)

// AttendanceLevel buckets an attendance percentage for display.
type AttendanceLevel string

const (
	LevelGood     AttendanceLevel = "good"
	LevelWarning  AttendanceLevel = "warning"
	LevelCritical AttendanceLevel = "critical"
)

// LevelFor maps a percentage to good (>= 80), warning (>= 60) or critical.
func LevelFor(percent int) AttendanceLevel {
	switch {
	case percent >= 80:
		return LevelGood
	case percent >= 60:
		return LevelWarning
	default:
		return LevelCritical
	}
}

// AttendanceSummary counts records by status.
type AttendanceSummary struct {
	Total   int             `json:"total"`
	Present int             `json:"present"`
	Absent  int             `json:"absent"`
	Late    int             `json:"late"`
	Percent int             `json:"percent"`
	Level   AttendanceLevel `json:"level"`
}

// SummarizeAttendance computes counts and round(present/total*100).
func SummarizeAttendance(records []AttendanceRecord) AttendanceSummary {
	s := AttendanceSummary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case AttendancePresent:
			s.Present++
		case AttendanceAbsent:
			s.Absent++
		case AttendanceLate:
			s.Late++
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Present) / float64(s.Total) * 100))
	}
	s.Level = LevelFor(s.Percent)
	return s
}

// StudentsQuery drives the students screen. Status and PaymentStatus are
// sent to the backend; GroupID and Search filter the fetched page.
type StudentsQuery struct {
	Page          int           `form:"page"`
	Size          int           `form:"size" binding:"omitempty,min=0,max=100"`
	GroupID       int64         `form:"group_id"`
	Status        StudentStatus `form:"status" validate:"omitempty,oneof=active inactive graduated suspended expelled"`
	PaymentStatus PaymentStatus `form:"payment_status" validate:"omitempty,oneof=paid unpaid partial overdue"`
	Search        string        `form:"search"`
}

// Matches applies the group and search filters to s. Search is a
// case-insensitive substring match over "first last username".
func (q StudentsQuery) Matches(s Student) bool {
	if q.GroupID != 0 && !s.InGroup(q.GroupID) {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	if needle == "" {
		return true
	}
	haystack := strings.ToLower(s.FirstName + " " + s.LastName + " " + StringValue(s.Username))
	return strings.Contains(haystack, needle)
}

// StudentRow is one student with the name of its group resolved.
type StudentRow struct {
	Student
	GroupName string `json:"group_name,omitempty"`
}

// StudentsScreen is the composed students list.
type StudentsScreen struct {
	Students []StudentRow `json:"students"`
	Groups   []Group      `json:"groups"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	Size     int          `json:"size"`
	Pages    int          `json:"pages"`
}

// StudentProfile is a student with its attendance page and summary.
type StudentProfile struct {
	Student    Student            `json:"student"`
	Attendance []AttendanceRecord `json:"attendance"`
	Summary    AttendanceSummary  `json:"summary"`
}

// TeacherProfile is a teacher with the groups they teach.
type TeacherProfile struct {
	Teacher User    `json:"teacher"`
	Groups  []Group `json:"groups"`
}

// GroupRow is a group with its teacher's name resolved.
type GroupRow struct {
	Group
	TeacherName string `json:"teacher_name,omitempty"`
}

// GroupsScreen is the composed groups list.
type GroupsScreen struct {
	Groups []GroupRow `json:"groups"`
	Total  int        `json:"total"`
	Page   int        `json:"page"`
	Size   int        `json:"size"`
	Pages  int        `json:"pages"`
}

// GroupProfile is one group with its teacher's name and its members.
type GroupProfile struct {
	Group       Group     `json:"group"`
	TeacherName string    `json:"teacher_name,omitempty"`
	Students    []Student `json:"students"`
	// Total is the backend's member count; Students holds at most one
	// lookup page of it.
	Total int `json:"total"`
}
