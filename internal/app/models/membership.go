package models

import "time"

// Membership links a user to a school, based on the 'user_schools' table.
// (user, school) pairs are unique. At most one membership per user is
// marked primary by convention; the tenant resolver breaks ties by
// lowest membership id.
type Membership struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	SchoolID  int64     `json:"schoolId" db:"school_id"`
	IsPrimary bool      `json:"isPrimary" db:"is_primary"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	AddedAt   time.Time `json:"addedAt" db:"added_at"`

	// Relation (populated when needed)
	School *School `json:"school,omitempty"`
}
