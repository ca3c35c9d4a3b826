package models

import "time"

// User defines a staff account based on the 'users' table.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"jane@school.ca"`
	Password    string     `json:"-" db:"password"` // hashed, excluded from JSON
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	IsSuperuser bool       `json:"isSuperuser" db:"is_superuser"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`

	// Relation (populated when needed). A user has at most one role and
	// it is global to the user, not per school.
	Role *UserRole `json:"role,omitempty"`
}

// Role enumerates the staff roles that drive all permission checks.
type Role string

const (
	RoleTeacher       Role = "teacher"
	RoleOperator      Role = "operator"
	RoleReadonly      Role = "readonly"
	RoleAdmin         Role = "admin"
	RolePrincipal     Role = "principal"
	RoleVicePrincipal Role = "vice_principal"
)

// ValidRoles lists every assignable role.
var ValidRoles = []Role{RoleTeacher, RoleOperator, RoleReadonly, RoleAdmin, RolePrincipal, RoleVicePrincipal}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// UserRole is the single role record of a user (one-to-one with users).
// The school reference records where the role was granted; permissions
// themselves are global to the user.
type UserRole struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	SchoolID   *int64    `json:"schoolId,omitempty" db:"school_id"`
	Role       Role      `json:"role" db:"role" example:"teacher"`
	Department *string   `json:"department,omitempty" db:"department"`
	IsActive   bool      `json:"isActive" db:"is_active"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
