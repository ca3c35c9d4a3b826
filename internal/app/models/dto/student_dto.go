package dto

import (
	"time"

	"github.com/skulz/skubackend/internal/app/models"
)

// AddressRequest is the nested postal address payload
type AddressRequest struct {
	StreetAddress string `json:"streetAddress" binding:"required"`
	City          string `json:"city" binding:"required"`
	State         string `json:"state" binding:"required"`
	PostalCode    string `json:"postalCode" binding:"required"`
	Country       string `json:"country" binding:"required"`
}

// AddressResponse represents a stored postal address
type AddressResponse struct {
	ID            int64  `json:"id"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
}

// CreateStudentRequest represents direct student enrollment
type CreateStudentRequest struct {
	FirstName   string          `json:"firstName" binding:"required"`
	LastName    string          `json:"lastName" binding:"required"`
	Email       string          `json:"email" binding:"required,email"`
	PhoneNumber *string         `json:"phoneNumber,omitempty"`
	DateOfBirth string          `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	GradeID     *int64          `json:"gradeId,omitempty"`
	BusID       *int64          `json:"busId,omitempty"`
	Address     *AddressRequest `json:"address,omitempty"`
	ParentIDs   []int64         `json:"parentIds,omitempty"`
	SubjectIDs  []int64         `json:"subjectIds,omitempty"`
}

// UpdateStudentRequest represents student profile changes
type UpdateStudentRequest struct {
	FirstName   string          `json:"firstName" binding:"required"`
	LastName    string          `json:"lastName" binding:"required"`
	Email       string          `json:"email" binding:"required,email"`
	PhoneNumber *string         `json:"phoneNumber,omitempty"`
	DateOfBirth string          `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	GradeID     *int64          `json:"gradeId,omitempty"`
	BusID       *int64          `json:"busId,omitempty"`
	Address     *AddressRequest `json:"address,omitempty"`
	ParentIDs   []int64         `json:"parentIds,omitempty"`
	SubjectIDs  []int64         `json:"subjectIds,omitempty"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

// StudentFilterRequest carries the list endpoint's query parameters
type StudentFilterRequest struct {
	GradeID  *int64  `form:"gradeId"`
	BusID    *int64  `form:"busId"`
	IsActive *bool   `form:"isActive"`
	Search   *string `form:"search"`
	Page     int     `form:"page,default=1"`
	Size     int     `form:"size,default=20"`
	SortBy   string  `form:"sortBy"`
	SortDesc bool    `form:"sortDesc"`
}

// StudentResponse represents full student information
type StudentResponse struct {
	ID             int64             `json:"id"`
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	Email          string            `json:"email"`
	PhoneNumber    *string           `json:"phoneNumber,omitempty"`
	DateOfBirth    string            `json:"dateOfBirth" example:"2015-09-01"`
	EnrollmentDate string            `json:"enrollmentDate" example:"2026-02-10"`
	PhotoURL       *string           `json:"photoUrl,omitempty"`
	Grade          *GradeResponse    `json:"grade,omitempty"`
	Bus            *BusResponse      `json:"bus,omitempty"`
	Address        *AddressResponse  `json:"address,omitempty"`
	Parents        []ParentResponse  `json:"parents,omitempty"`
	Subjects       []SubjectResponse `json:"subjects,omitempty"`
	IsActive       bool              `json:"isActive"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// FromAddress converts a models.Address to an AddressResponse
func FromAddress(a *models.Address) *AddressResponse {
	if a == nil {
		return nil
	}
	return &AddressResponse{
		ID:            a.ID,
		StreetAddress: a.StreetAddress,
		City:          a.City,
		State:         a.State,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
	}
}

// FromStudent converts a models.Student to a StudentResponse
func FromStudent(student *models.Student) StudentResponse {
	if student == nil {
		return StudentResponse{}
	}
	resp := StudentResponse{
		ID:             student.ID,
		FirstName:      student.FirstName,
		LastName:       student.LastName,
		Email:          student.Email,
		PhoneNumber:    student.PhoneNumber,
		DateOfBirth:    student.DateOfBirth.Format("2006-01-02"),
		EnrollmentDate: student.EnrollmentDate.Format("2006-01-02"),
		PhotoURL:       student.PhotoURL,
		Address:        FromAddress(student.Address),
		IsActive:       student.IsActive,
		CreatedAt:      student.CreatedAt,
	}
	if student.Grade != nil {
		g := FromGrade(student.Grade)
		resp.Grade = &g
	}
	if student.Bus != nil {
		b := FromBus(student.Bus)
		resp.Bus = &b
	}
	for _, p := range student.Parents {
		resp.Parents = append(resp.Parents, FromParent(p))
	}
	for _, s := range student.Subjects {
		resp.Subjects = append(resp.Subjects, FromSubject(s))
	}
	return resp
}
