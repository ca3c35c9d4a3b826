package dto

import (
	"time"

	"github.com/skulz/skubackend/internal/app/models"
)

// SubmitOnboardingRequest stages a prospective student for approval
type SubmitOnboardingRequest struct {
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

// RejectOnboardingRequest carries the reviewer's rejection reason
type RejectOnboardingRequest struct {
	Reason string `json:"reason"`
}

// OnboardingFilterRequest carries the list endpoint's query parameters
type OnboardingFilterRequest struct {
	Status      *string `form:"status"`
	RequestedBy *int64  `form:"requestedBy"`
	Page        int     `form:"page,default=1"`
	Size        int     `form:"size,default=20"`
}

// OnboardingResponse represents one onboarding request and its outcome
type OnboardingResponse struct {
	ID               int64            `json:"id"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	Email            string           `json:"email"`
	PhoneNumber      *string          `json:"phoneNumber,omitempty"`
	DateOfBirth      string           `json:"dateOfBirth" example:"2015-09-01"`
	PhotoURL         *string          `json:"photoUrl,omitempty"`
	GradeID          *int64           `json:"gradeId,omitempty"`
	BusID            *int64           `json:"busId,omitempty"`
	Address          *AddressResponse `json:"address,omitempty"`
	ParentIDs        []int64          `json:"parentIds,omitempty"`
	SubjectIDs       []int64          `json:"subjectIds,omitempty"`
	Status           string           `json:"status" example:"pending"`
	RequestedBy      int64            `json:"requestedBy"`
	ApprovedBy       *int64           `json:"approvedBy,omitempty"`
	RejectionReason  *string          `json:"rejectionReason,omitempty"`
	CreatedStudentID *int64           `json:"createdStudentId,omitempty"`
	Records          []RecordResponse `json:"records,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	ApprovedAt       *time.Time       `json:"approvedAt,omitempty"`
}

// ApprovalResponse is returned by a successful approval
type ApprovalResponse struct {
	Request OnboardingResponse `json:"request"`
	Student StudentResponse    `json:"student"`
}

// FromOnboardingRequest converts a models.OnboardingRequest to its response form
func FromOnboardingRequest(req *models.OnboardingRequest) OnboardingResponse {
	if req == nil {
		return OnboardingResponse{}
	}
	resp := OnboardingResponse{
		ID:               req.ID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		DateOfBirth:      req.DateOfBirth.Format("2006-01-02"),
		PhotoURL:         req.PhotoURL,
		GradeID:          req.GradeID,
		BusID:            req.BusID,
		ParentIDs:        req.ParentIDs,
		SubjectIDs:       req.SubjectIDs,
		Status:           string(req.Status),
		RequestedBy:      req.RequestedBy,
		ApprovedBy:       req.ApprovedBy,
		RejectionReason:  req.RejectionReason,
		CreatedStudentID: req.CreatedStudentID,
		CreatedAt:        req.CreatedAt,
		ApprovedAt:       req.ApprovedAt,
	}
	for _, r := range req.Records {
		resp.Records = append(resp.Records, FromRecord(r))
	}
	return resp
}
