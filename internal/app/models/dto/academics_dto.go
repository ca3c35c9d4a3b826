package dto

import (
	"github.com/skulz/skubackend/internal/app/models"
)

// CreateGradeRequest represents a new class level
type CreateGradeRequest struct {
	GradeName   string  `json:"gradeName" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// GradeResponse represents a class level
type GradeResponse struct {
	ID          int64   `json:"id"`
	GradeName   string  `json:"gradeName" example:"Grade 1"`
	Description *string `json:"description,omitempty"`
}

// CreateSubjectRequest represents a new taught subject
type CreateSubjectRequest struct {
	SubjectName string  `json:"subjectName" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// SubjectResponse represents a taught subject
type SubjectResponse struct {
	ID          int64   `json:"id"`
	SubjectName string  `json:"subjectName" example:"Mathematics"`
	Description *string `json:"description,omitempty"`
}

// FromGrade converts a models.Grade to a GradeResponse
func FromGrade(grade *models.Grade) GradeResponse {
	if grade == nil {
		return GradeResponse{}
	}
	return GradeResponse{
		ID:          grade.ID,
		GradeName:   grade.GradeName,
		Description: grade.Description,
	}
}

// FromSubject converts a models.Subject to a SubjectResponse
func FromSubject(subject *models.Subject) SubjectResponse {
	if subject == nil {
		return SubjectResponse{}
	}
	return SubjectResponse{
		ID:          subject.ID,
		SubjectName: subject.SubjectName,
		Description: subject.Description,
	}
}
