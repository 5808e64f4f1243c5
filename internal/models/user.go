package models

import "strings"

// UserRole is the backend role attached to a Telegram identity.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// User is the identity record used for teachers and for the logged-in user.
type User struct {
	ID         int64    `json:"id" validate:"required"`
	TelegramID int64    `json:"telegram_id"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Username   *string  `json:"username,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	PhotoURL   *string  `json:"photo_url,omitempty"`
	Role       UserRole `json:"role,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`

	// Teacher profile fields, present on /admin/teachers payloads.
	Specialization  *string  `json:"specialization,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Bio             *string  `json:"bio,omitempty"`
	Salary          *float64 `json:"salary,omitempty"`
}

// FullName joins first and last name, skipping blanks.
func (u User) FullName() string {
	return joinName(u.FirstName, u.LastName)
}

func joinName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// StringValue dereferences optional string fields.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
