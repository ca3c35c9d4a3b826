package models

import "time"

// Student is an enrolled student, based on the 'students' table.
// (school, email) is unique. Grade, bus and address are optional and
// null out when the referent is deleted.
type Student struct {
	ID             int64      `json:"id" db:"id"`
	SchoolID       int64      `json:"schoolId" db:"school_id"`
	FirstName      string     `json:"firstName" db:"first_name"`
	LastName       string     `json:"lastName" db:"last_name"`
	Email          string     `json:"email" db:"email"`
	PhoneNumber    *string    `json:"phoneNumber,omitempty" db:"phone_number"`
	DateOfBirth    time.Time  `json:"dateOfBirth" db:"date_of_birth"`
	EnrollmentDate time.Time  `json:"enrollmentDate" db:"enrollment_date"`
	PhotoURL       *string    `json:"photoUrl,omitempty" db:"photo_url"`

	GradeID   *int64 `json:"gradeId,omitempty" db:"grade_id"`
	AddressID *int64 `json:"addressId,omitempty" db:"address_id"`
	BusID     *int64 `json:"busId,omitempty" db:"bus_id"`

	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Grade    *Grade    `json:"grade,omitempty"`
	Bus      *Bus      `json:"bus,omitempty"`
	Address  *Address  `json:"address,omitempty"`
	Parents  []*Parent `json:"parents,omitempty"`
	Subjects []*Subject `json:"subjects,omitempty"`
}
