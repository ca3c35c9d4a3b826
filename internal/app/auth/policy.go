package auth

import (
	"github.com/skulz/skubackend/internal/app/models"
)

// Role predicates. Every permission check in the application flows through
// these; controllers and middleware never compare role strings directly.
// Superusers bypass the checks on administrative surfaces only, which is
// why the predicates themselves ignore the superuser flag: the caller
// decides whether the bypass applies.

var (
	initiateRoles = map[models.Role]bool{
		models.RoleTeacher:  true,
		models.RoleOperator: true,
	}
	approveRoles = map[models.Role]bool{
		models.RolePrincipal:     true,
		models.RoleVicePrincipal: true,
		models.RoleAdmin:         true,
	}
	editStudentRoles = map[models.Role]bool{
		models.RoleOperator:      true,
		models.RoleTeacher:       true,
		models.RoleAdmin:         true,
		models.RolePrincipal:     true,
		models.RoleVicePrincipal: true,
	}
	deleteStudentRoles = map[models.Role]bool{
		models.RoleAdmin:         true,
		models.RolePrincipal:     true,
		models.RoleVicePrincipal: true,
	}
	viewAllRoles = map[models.Role]bool{
		models.RoleTeacher:       true,
		models.RoleOperator:      true,
		models.RoleAdmin:         true,
		models.RolePrincipal:     true,
		models.RoleVicePrincipal: true,
	}
)

// RoleOf extracts the effective role of a user, or empty when the user
// has no active role record.
func RoleOf(user *models.User) models.Role {
	if user == nil || user.Role == nil || !user.Role.IsActive {
		return ""
	}
	return user.Role.Role
}

// CanInitiateOnboarding reports whether the role may submit onboarding
// requests. Deliberately not superuser-bypassable: submission is a staff
// workflow action, not an administrative one.
func CanInitiateOnboarding(role models.Role) bool {
	return initiateRoles[role]
}

// CanApproveOnboarding reports whether the role may approve or reject
// onboarding requests.
func CanApproveOnboarding(role models.Role) bool {
	return approveRoles[role]
}

// CanEditStudents reports whether the role may create or update students.
func CanEditStudents(role models.Role) bool {
	return editStudentRoles[role]
}

// CanDeleteStudents reports whether the role may delete students.
func CanDeleteStudents(role models.Role) bool {
	return deleteStudentRoles[role]
}

// CanViewAllData reports whether the role may read school-wide data.
// Readonly accounts fall outside this set and only reach their own pages.
func CanViewAllData(role models.Role) bool {
	return viewAllRoles[role]
}

// PortalPathFor maps a role to its landing page after login.
func PortalPathFor(role models.Role, isSuperuser bool) string {
	if isSuperuser {
		return "/portal/admin"
	}
	switch role {
	case models.RoleAdmin, models.RolePrincipal, models.RoleVicePrincipal:
		return "/portal/management"
	case models.RoleOperator:
		return "/portal/operations"
	case models.RoleTeacher:
		return "/portal/teacher"
	default:
		return "/portal/me"
	}
}
