package models

import "time"

// ParentType distinguishes guardianship kinds.
type ParentType string

const (
	ParentFather   ParentType = "father"
	ParentMother   ParentType = "mother"
	ParentGuardian ParentType = "guardian"
)

// Parent is a guardian of one or more students. (school, email) is unique.
type Parent struct {
	ID          int64      `json:"id" db:"id"`
	SchoolID    int64      `json:"schoolId" db:"school_id"`
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	ParentType  ParentType `json:"parentType" db:"parent_type" example:"mother"`
	Email       string     `json:"email" db:"email"`
	PhoneNumber string     `json:"phoneNumber" db:"phone_number"`
	AddressID   *int64     `json:"addressId,omitempty" db:"address_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// Relation (populated when needed)
	Address *Address `json:"address,omitempty"`
}
