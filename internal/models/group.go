package models

import "strings"

// Group is a class cohort taught by one teacher.
type Group struct {
	ID           int64   `json:"id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	TeacherID    int64   `json:"teacher_id"`
	Description  *string `json:"description,omitempty"`
	CourseName   *string `json:"course_name,omitempty"`
	Level        *string `json:"level,omitempty"`
	ScheduleDays string  `json:"schedule_days"`
	ClassTime    string  `json:"class_time"`
	MaxStudents  int     `json:"max_students"`
	StudentCount int     `json:"student_count"`
}

// Days splits schedule_days into day codes ("0" is Sunday).
func (g Group) Days() []string {
	if strings.TrimSpace(g.ScheduleDays) == "" {
		return nil
	}
	parts := strings.Split(g.ScheduleDays, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
