package dto

import (
	"github.com/skulz/skubackend/internal/app/models"
)

// CreateParentRequest represents a new guardian record
type CreateParentRequest struct {
	FirstName   string            `json:"firstName" binding:"required"`
	LastName    string            `json:"lastName" binding:"required"`
	ParentType  models.ParentType `json:"parentType" binding:"required,oneof=father mother guardian"`
	Email       string            `json:"email" binding:"required,email"`
	PhoneNumber string            `json:"phoneNumber" binding:"required"`
	Address     *AddressRequest   `json:"address,omitempty"`
}

// UpdateParentRequest represents guardian profile changes
type UpdateParentRequest struct {
	FirstName   string            `json:"firstName" binding:"required"`
	LastName    string            `json:"lastName" binding:"required"`
	ParentType  models.ParentType `json:"parentType" binding:"required,oneof=father mother guardian"`
	Email       string            `json:"email" binding:"required,email"`
	PhoneNumber string            `json:"phoneNumber" binding:"required"`
	Address     *AddressRequest   `json:"address,omitempty"`
}

// ParentResponse represents guardian information
type ParentResponse struct {
	ID          int64            `json:"id"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	ParentType  string           `json:"parentType" example:"mother"`
	Email       string           `json:"email"`
	PhoneNumber string           `json:"phoneNumber"`
	Address     *AddressResponse `json:"address,omitempty"`
}

// FromParent converts a models.Parent to a ParentResponse
func FromParent(parent *models.Parent) ParentResponse {
	if parent == nil {
		return ParentResponse{}
	}
	return ParentResponse{
		ID:          parent.ID,
		FirstName:   parent.FirstName,
		LastName:    parent.LastName,
		ParentType:  string(parent.ParentType),
		Email:       parent.Email,
		PhoneNumber: parent.PhoneNumber,
		Address:     FromAddress(parent.Address),
	}
}
