package models

// StudentStatus is the enrolment state of a student.
type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentGraduated StudentStatus = "graduated"
	StudentSuspended StudentStatus = "suspended"
	StudentExpelled  StudentStatus = "expelled"
)

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentActive, StudentInactive, StudentGraduated, StudentSuspended, StudentExpelled:
		return true
	default:
		return false
	}
}

// PaymentStatus is the billing state of a student.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentOverdue PaymentStatus = "overdue"
)

// Valid returns true when the status is a supported value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentUnpaid, PaymentPartial, PaymentOverdue:
		return true
	default:
		return false
	}
}

// Student extends the identity record with enrolment, billing and guardian data.
type Student struct {
	ID         int64   `json:"id" validate:"required"`
	TelegramID int64   `json:"telegram_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Username   *string `json:"username,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	PhotoURL   *string `json:"photo_url,omitempty"`

	Status        StudentStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive graduated suspended expelled"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty" validate:"omitempty,oneof=paid unpaid partial overdue"`
	GroupID       *int64        `json:"group_id,omitempty"`
	IsActive      *bool         `json:"is_active,omitempty"`

	MonthlyFee      float64 `json:"monthly_fee"`
	DiscountPercent float64 `json:"discount_percent"`
	DebtAmount      float64 `json:"debt_amount"`
	LastPaymentDate *string `json:"last_payment_date,omitempty"`

	ParentName       *string `json:"parent_name,omitempty"`
	ParentPhone      *string `json:"parent_phone,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`
	Address          *string `json:"address,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	EnrollmentDate   *string `json:"enrollment_date,omitempty"`

	// Detail endpoints nest the identity record.
	User *User `json:"user,omitempty"`
}

// FullName prefers the nested identity when the flat fields are empty.
func (s Student) FullName() string {
	if name := joinName(s.FirstName, s.LastName); name != "" {
		return name
	}
	if s.User != nil {
		return s.User.FullName()
	}
	return ""
}

// InGroup reports whether the student is assigned to groupID.
func (s Student) InGroup(groupID int64) bool {
	return s.GroupID != nil && *s.GroupID == groupID
}
