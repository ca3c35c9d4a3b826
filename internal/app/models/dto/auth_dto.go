package dto

import (
	"time"

	"github.com/skulz/skubackend/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email      string      `json:"email" binding:"required,email"`
	Password   string      `json:"password" binding:"required,min=8"`
	FirstName  string      `json:"firstName" binding:"required"`
	LastName   string      `json:"lastName" binding:"required"`
	Role       models.Role `json:"role" binding:"required"`
	Department *string     `json:"department,omitempty"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        string     `json:"role"`
	IsSuperuser bool       `json:"isSuperuser"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token  TokenResponse `json:"token"`
	User   UserResponse  `json:"user"`
	School *SchoolBrief  `json:"school,omitempty"`
}

// SelectSchoolRequest pins the session to one of the caller's schools
type SelectSchoolRequest struct {
	SchoolID int64 `json:"schoolId" binding:"required,min=1"`
}

// MembershipResponse represents one user-school link
type MembershipResponse struct {
	ID        int64     `json:"id"`
	SchoolID  int64     `json:"schoolId"`
	School    string    `json:"school"`
	IsPrimary bool      `json:"isPrimary"`
	IsActive  bool      `json:"isActive"`
	AddedAt   time.Time `json:"addedAt"`
}

// SessionResponse describes the caller's resolved session state
type SessionResponse struct {
	User       UserResponse `json:"user"`
	School     *SchoolBrief `json:"school,omitempty"`
	ExpiresAt  time.Time    `json:"expiresAt"`
	LastSeenAt *time.Time   `json:"lastSeenAt,omitempty"`
}

// FromUser converts a models.User to a UserResponse
func FromUser(user *models.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	role := ""
	if user.Role != nil {
		role = string(user.Role.Role)
	}
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        role,
		IsSuperuser: user.IsSuperuser,
		LastLoginAt: user.LastLoginAt,
	}
}

// FromMembership converts a models.Membership to a MembershipResponse
func FromMembership(m *models.Membership) MembershipResponse {
	if m == nil {
		return MembershipResponse{}
	}
	resp := MembershipResponse{
		ID:        m.ID,
		SchoolID:  m.SchoolID,
		IsPrimary: m.IsPrimary,
		IsActive:  m.IsActive,
		AddedAt:   m.AddedAt,
	}
	if m.School != nil {
		resp.School = m.School.Name
	}
	return resp
}
