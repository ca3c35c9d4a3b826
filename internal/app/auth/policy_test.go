package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skulz/skubackend/internal/app/models"
)

func userWithRole(role models.Role) *models.User {
	return &models.User{
		ID:       1,
		IsActive: true,
		Role:     &models.UserRole{Role: role, IsActive: true},
	}
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, models.Role(""), RoleOf(nil))
	assert.Equal(t, models.Role(""), RoleOf(&models.User{}))

	inactive := userWithRole(models.RoleTeacher)
	inactive.Role.IsActive = false
	assert.Equal(t, models.Role(""), RoleOf(inactive))

	assert.Equal(t, models.RoleTeacher, RoleOf(userWithRole(models.RoleTeacher)))
}

func TestCanInitiateOnboarding(t *testing.T) {
	assert.True(t, CanInitiateOnboarding(models.RoleTeacher))
	assert.True(t, CanInitiateOnboarding(models.RoleOperator))

	// Approvers and admins do not submit; neither do readonly accounts.
	assert.False(t, CanInitiateOnboarding(models.RoleAdmin))
	assert.False(t, CanInitiateOnboarding(models.RolePrincipal))
	assert.False(t, CanInitiateOnboarding(models.RoleVicePrincipal))
	assert.False(t, CanInitiateOnboarding(models.RoleReadonly))
	assert.False(t, CanInitiateOnboarding(""))
}

func TestCanApproveOnboarding(t *testing.T) {
	assert.True(t, CanApproveOnboarding(models.RolePrincipal))
	assert.True(t, CanApproveOnboarding(models.RoleVicePrincipal))
	assert.True(t, CanApproveOnboarding(models.RoleAdmin))

	assert.False(t, CanApproveOnboarding(models.RoleTeacher))
	assert.False(t, CanApproveOnboarding(models.RoleOperator))
	assert.False(t, CanApproveOnboarding(models.RoleReadonly))
}

func TestCanEditAndDeleteStudents(t *testing.T) {
	for _, role := range []models.Role{
		models.RoleOperator, models.RoleTeacher, models.RoleAdmin,
		models.RolePrincipal, models.RoleVicePrincipal,
	} {
		assert.True(t, CanEditStudents(role), "role %s should edit", role)
	}
	assert.False(t, CanEditStudents(models.RoleReadonly))

	for _, role := range []models.Role{models.RoleAdmin, models.RolePrincipal, models.RoleVicePrincipal} {
		assert.True(t, CanDeleteStudents(role), "role %s should delete", role)
	}
	assert.False(t, CanDeleteStudents(models.RoleTeacher))
	assert.False(t, CanDeleteStudents(models.RoleOperator))
	assert.False(t, CanDeleteStudents(models.RoleReadonly))
}

func TestCanViewAllData(t *testing.T) {
	assert.True(t, CanViewAllData(models.RoleTeacher))
	assert.False(t, CanViewAllData(models.RoleReadonly))
	assert.False(t, CanViewAllData(""))
}

func TestPortalPathFor(t *testing.T) {
	assert.Equal(t, "/portal/admin", PortalPathFor(models.RoleTeacher, true))
	assert.Equal(t, "/portal/management", PortalPathFor(models.RoleAdmin, false))
	assert.Equal(t, "/portal/management", PortalPathFor(models.RolePrincipal, false))
	assert.Equal(t, "/portal/management", PortalPathFor(models.RoleVicePrincipal, false))
	assert.Equal(t, "/portal/operations", PortalPathFor(models.RoleOperator, false))
	assert.Equal(t, "/portal/teacher", PortalPathFor(models.RoleTeacher, false))
	assert.Equal(t, "/portal/me", PortalPathFor(models.RoleReadonly, false))
	assert.Equal(t, "/portal/me", PortalPathFor("", false))
}
