package models

import "time"

// OnboardingStatus is the lifecycle state of a student onboarding request.
//
// The engine only ever moves a request from pending to completed or from
// pending to rejected. OnboardingApproved is a declared value that no
// transition sets; it can only appear through direct data manipulation and
// is treated as terminal.
type OnboardingStatus string

const (
	OnboardingPending   OnboardingStatus = "pending"
	OnboardingApproved  OnboardingStatus = "approved"
	OnboardingRejected  OnboardingStatus = "rejected"
	OnboardingCompleted OnboardingStatus = "completed"
)

// IsTerminal reports whether no further transition is permitted.
func (s OnboardingStatus) IsTerminal() bool {
	return s != OnboardingPending
}

// OnboardingRequest is a staged, approvable draft of a future Student.
// It carries the full prospective-student payload; once the status leaves
// pending the payload is immutable at the service boundary.
type OnboardingRequest struct {
	ID          int64 `json:"id" db:"id"`
	SchoolID    int64 `json:"schoolId" db:"school_id"`
	RequestedBy int64 `json:"requestedBy" db:"requested_by"`

	// Prospective student payload
	FirstName   string    `json:"firstName" db:"first_name"`
	LastName    string    `json:"lastName" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	PhoneNumber *string   `json:"phoneNumber,omitempty" db:"phone_number"`
	DateOfBirth time.Time `json:"dateOfBirth" db:"date_of_birth"`
	PhotoURL    *string   `json:"photoUrl,omitempty" db:"photo_url"`
	GradeID     *int64    `json:"gradeId,omitempty" db:"grade_id"`
	AddressID   *int64    `json:"addressId,omitempty" db:"address_id"`
	BusID       *int64    `json:"busId,omitempty" db:"bus_id"`

	// Lifecycle
	Status          OnboardingStatus `json:"status" db:"status" example:"pending"`
	ApprovedBy      *int64           `json:"approvedBy,omitempty" db:"approved_by"`
	RejectionReason *string          `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	ApprovedAt      *time.Time       `json:"approvedAt,omitempty" db:"approved_at"`

	// One-directional, optional link to the Student created on approval.
	CreatedStudentID *int64 `json:"createdStudentId,omitempty" db:"created_student_id"`

	// Relations (populated when needed). A non-nil Address on a new
	// request is persisted together with the request row.
	Address    *Address  `json:"address,omitempty"`
	ParentIDs  []int64   `json:"parentIds,omitempty"`
	SubjectIDs []int64   `json:"subjectIds,omitempty"`
	Records    []*Record `json:"records,omitempty"`
}

// ToStudent copies the staged payload into an enrolled Student. The id
// relation sets are carried separately; enrolledAt becomes the student's
// enrollment date.
func (o *OnboardingRequest) ToStudent(enrolledAt time.Time) *Student {
	return &Student{
		SchoolID:       o.SchoolID,
		FirstName:      o.FirstName,
		LastName:       o.LastName,
		Email:          o.Email,
		PhoneNumber:    o.PhoneNumber,
		DateOfBirth:    o.DateOfBirth,
		EnrollmentDate: enrolledAt,
		PhotoURL:       o.PhotoURL,
		GradeID:        o.GradeID,
		AddressID:      o.AddressID,
		BusID:          o.BusID,
		IsActive:       true,
	}
}
