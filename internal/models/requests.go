package models

import "strconv"

// TeacherCreate is the body of POST /admin/teachers.
type TeacherCreate struct {
	TelegramID      int64    `json:"telegram_id" validate:"required"`
	FirstName       string   `json:"first_name" validate:"required"`
	LastName        string   `json:"last_name" validate:"required"`
	Phone           *string  `json:"phone,omitempty"`
	Username        *string  `json:"username,omitempty"`
	Specialization  *string  `json:"specialization,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Bio             *string  `json:"bio,omitempty"`
	Salary          *float64 `json:"salary,omitempty"`
}

// TeacherUpdate is the partial body of PUT /admin/teachers/:id.
type TeacherUpdate struct {
	FirstName       *string  `json:"first_name,omitempty"`
	LastName        *string  `json:"last_name,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	Username        *string  `json:"username,omitempty"`
	Specialization  *string  `json:"specialization,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Bio             *string  `json:"bio,omitempty"`
	Salary          *float64 `json:"salary,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

// StudentCreate is the body of POST /admin/students.
type StudentCreate struct {
	TelegramID       int64    `json:"telegram_id" validate:"required"`
	FirstName        string   `json:"first_name" validate:"required"`
	LastName         string   `json:"last_name" validate:"required"`
	Username         *string  `json:"username,omitempty"`
	Phone            *string  `json:"phone,omitempty"`
	GroupID          *int64   `json:"group_id,omitempty"`
	ParentName       *string  `json:"parent_name,omitempty"`
	ParentPhone      *string  `json:"parent_phone,omitempty"`
	EmergencyContact *string  `json:"emergency_contact,omitempty"`
	Address          *string  `json:"address,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
	EnrollmentDate   *string  `json:"enrollment_date,omitempty"`
	MonthlyFee       *float64 `json:"monthly_fee,omitempty"`
	DiscountPercent  *float64 `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// StudentUpdate is the partial body of PUT /admin/students/:id. GroupID uses
// NullableID so that an explicit JSON null (unassign) can be sent.
type StudentUpdate struct {
	FirstName        *string        `json:"first_name,omitempty"`
	LastName         *string        `json:"last_name,omitempty"`
	Phone            *string        `json:"phone,omitempty"`
	GroupID          *NullableID    `json:"group_id,omitempty"`
	ParentName       *string        `json:"parent_name,omitempty"`
	ParentPhone      *string        `json:"parent_phone,omitempty"`
	EmergencyContact *string        `json:"emergency_contact,omitempty"`
	Address          *string        `json:"address,omitempty"`
	Notes            *string        `json:"notes,omitempty"`
	MonthlyFee       *float64       `json:"monthly_fee,omitempty"`
	DiscountPercent  *float64       `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	PaymentStatus    *PaymentStatus `json:"payment_status,omitempty" validate:"omitempty,oneof=paid unpaid partial overdue"`
	LastPaymentDate  *string        `json:"last_payment_date,omitempty"`
	DebtAmount       *float64       `json:"debt_amount,omitempty"`
	Status           *StudentStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive graduated suspended expelled"`
	IsActive         *bool          `json:"is_active,omitempty"`
}

// NullableID marshals to a number, or to null when Valid is false.
type NullableID struct {
	ID    int64
	Valid bool
}

// MarshalJSON implements json.Marshaler.
func (n NullableID) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.ID, 10)), nil
}

// GroupAssignment is the body of PATCH /admin/students/:id/group.
type GroupAssignment struct {
	GroupID int64 `json:"group_id" validate:"required"`
}

// GroupCreate is the body of POST /admin/groups.
type GroupCreate struct {
	Name         string  `json:"name" validate:"required"`
	TeacherID    int64   `json:"teacher_id" validate:"required"`
	Description  *string `json:"description,omitempty"`
	CourseName   *string `json:"course_name,omitempty"`
	Level        *string `json:"level,omitempty"`
	ScheduleDays *string `json:"schedule_days,omitempty"`
	ClassTime    *string `json:"class_time,omitempty"`
	MaxStudents  *int    `json:"max_students,omitempty" validate:"omitempty,gt=0"`
}

// GroupUpdate is the partial body of PUT /admin/groups/:id.
type GroupUpdate struct {
	Name         *string `json:"name,omitempty"`
	TeacherID    *int64  `json:"teacher_id,omitempty"`
	Description  *string `json:"description,omitempty"`
	CourseName   *string `json:"course_name,omitempty"`
	Level        *string `json:"level,omitempty"`
	ScheduleDays *string `json:"schedule_days,omitempty"`
	ClassTime    *string `json:"class_time,omitempty"`
	MaxStudents  *int    `json:"max_students,omitempty" validate:"omitempty,gt=0"`
}
