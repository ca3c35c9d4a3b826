package models

import "time"

// Session is a server-side login session, keyed by the UUID carried in
// the access token's jti claim. It holds the tenant state for the
// session: the active school id and display name. Deleting the row
// invalidates the token on the next request (flush semantics).
type Session struct {
	ID         string     `json:"id" db:"id"`
	UserID     int64      `json:"userId" db:"user_id"`
	SchoolID   *int64     `json:"schoolId,omitempty" db:"school_id"`
	SchoolName *string    `json:"schoolName,omitempty" db:"school_name"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	ExpiresAt  time.Time  `json:"expiresAt" db:"expires_at"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty" db:"last_seen_at"`
}
