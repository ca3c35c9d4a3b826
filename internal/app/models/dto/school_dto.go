package dto

import (
	"time"

	"github.com/skulz/skubackend/internal/app/models"
)

// SchoolBrief is the compact school representation embedded in other payloads
type SchoolBrief struct {
	ID   int64  `json:"id" example:"1"`
	Name string `json:"name" example:"Default School"`
	Code string `json:"code" example:"DEFAULT"`
}

// CreateSchoolRequest represents a new school registration
type CreateSchoolRequest struct {
	Name          string  `json:"name" binding:"required"`
	Code          string  `json:"code" binding:"required,min=2,max=20"`
	Email         string  `json:"email" binding:"required,email"`
	PhoneNumber   string  `json:"phoneNumber" binding:"required"`
	Website       *string `json:"website,omitempty"`
	StreetAddress string  `json:"streetAddress" binding:"required"`
	City          string  `json:"city" binding:"required"`
	State         string  `json:"state" binding:"required"`
	PostalCode    string  `json:"postalCode" binding:"required"`
	Country       string  `json:"country" binding:"required"`
	PrincipalName *string `json:"principalName,omitempty"`
	AdminEmail    *string `json:"adminEmail,omitempty"`
}

// UpdateSchoolRequest represents school profile changes
type UpdateSchoolRequest struct {
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	PhoneNumber   string  `json:"phoneNumber" binding:"required"`
	Website       *string `json:"website,omitempty"`
	StreetAddress string  `json:"streetAddress" binding:"required"`
	City          string  `json:"city" binding:"required"`
	State         string  `json:"state" binding:"required"`
	PostalCode    string  `json:"postalCode" binding:"required"`
	Country       string  `json:"country" binding:"required"`
	PrincipalName *string `json:"principalName,omitempty"`
	AdminEmail    *string `json:"adminEmail,omitempty"`
	IsActive      *bool   `json:"isActive,omitempty"`
}

// SetSubscriptionRequest creates or replaces a school's subscription
type SetSubscriptionRequest struct {
	Plan        models.SubscriptionPlan   `json:"plan" binding:"required,oneof=free basic pro enterprise"`
	Status      models.SubscriptionStatus `json:"status" binding:"required,oneof=active inactive suspended cancelled"`
	MaxStudents int                       `json:"maxStudents" binding:"required,gt=0"`
	MaxUsers    int                       `json:"maxUsers" binding:"required,gt=0"`
}

// SubscriptionResponse represents a school's subscription
type SubscriptionResponse struct {
	Plan        string     `json:"plan" example:"pro"`
	Status      string     `json:"status" example:"active"`
	MaxStudents int        `json:"maxStudents"`
	MaxUsers    int        `json:"maxUsers"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	RenewalDate *time.Time `json:"renewalDate,omitempty"`
}

// SchoolResponse represents full school information
type SchoolResponse struct {
	ID            int64                 `json:"id"`
	Name          string                `json:"name"`
	Code          string                `json:"code"`
	Email         string                `json:"email"`
	PhoneNumber   string                `json:"phoneNumber"`
	Website       *string               `json:"website,omitempty"`
	StreetAddress string                `json:"streetAddress"`
	City          string                `json:"city"`
	State         string                `json:"state"`
	PostalCode    string                `json:"postalCode"`
	Country       string                `json:"country"`
	PrincipalName *string               `json:"principalName,omitempty"`
	AdminEmail    *string               `json:"adminEmail,omitempty"`
	IsActive      bool                  `json:"isActive"`
	Subscription  *SubscriptionResponse `json:"subscription,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// FromSchool converts a models.School to a SchoolResponse
func FromSchool(school *models.School) SchoolResponse {
	if school == nil {
		return SchoolResponse{}
	}
	resp := SchoolResponse{
		ID:            school.ID,
		Name:          school.Name,
		Code:          school.Code,
		Email:         school.Email,
		PhoneNumber:   school.PhoneNumber,
		Website:       school.Website,
		StreetAddress: school.StreetAddress,
		City:          school.City,
		State:         school.State,
		PostalCode:    school.PostalCode,
		Country:       school.Country,
		PrincipalName: school.PrincipalName,
		AdminEmail:    school.AdminEmail,
		IsActive:      school.IsActive,
		CreatedAt:     school.CreatedAt,
	}
	if school.Subscription != nil {
		resp.Subscription = &SubscriptionResponse{
			Plan:        string(school.Subscription.Plan),
			Status:      string(school.Subscription.Status),
			MaxStudents: school.Subscription.MaxStudents,
			MaxUsers:    school.Subscription.MaxUsers,
			StartDate:   school.Subscription.StartDate,
			EndDate:     school.Subscription.EndDate,
			RenewalDate: school.Subscription.RenewalDate,
		}
	}
	return resp
}

// BriefFromSchool converts a models.School to its compact form
func BriefFromSchool(school *models.School) *SchoolBrief {
	if school == nil {
		return nil
	}
	return &SchoolBrief{ID: school.ID, Name: school.Name, Code: school.Code}
}
