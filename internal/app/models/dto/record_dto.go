package dto

import (
	"time"

	"github.com/skulz/skubackend/internal/app/models"
)

// CreateRecordRequest attaches a document to a student or a pending
// onboarding request. Exactly one owner id must be set.
type CreateRecordRequest struct {
	StudentID           *int64            `json:"studentId,omitempty"`
	OnboardingRequestID *int64            `json:"onboardingRequestId,omitempty"`
	RecordType          models.RecordType `json:"recordType" binding:"required,oneof=birth_certificate vaccination medical_report previous_school identity_proof other"`
	Description         *string           `json:"description,omitempty"`
}

// RecordResponse represents a stored document
type RecordResponse struct {
	ID                  int64     `json:"id"`
	StudentID           *int64    `json:"studentId,omitempty"`
	OnboardingRequestID *int64    `json:"onboardingRequestId,omitempty"`
	RecordType          string    `json:"recordType" example:"birth_certificate"`
	FileURL             string    `json:"fileUrl"`
	Description         *string   `json:"description,omitempty"`
	UploadedBy          string    `json:"uploadedBy"`
	CreatedAt           time.Time `json:"createdAt"`
}

// FromRecord converts a models.Record to a RecordResponse
func FromRecord(record *models.Record) RecordResponse {
	if record == nil {
		return RecordResponse{}
	}
	return RecordResponse{
		ID:                  record.ID,
		StudentID:           record.StudentID,
		OnboardingRequestID: record.OnboardingRequestID,
		RecordType:          string(record.RecordType),
		FileURL:             record.FileURL,
		Description:         record.Description,
		UploadedBy:          record.UploadedBy,
		CreatedAt:           record.CreatedAt,
	}
}
