package models

import "time"

// RecordType enumerates the kinds of documents kept on file for a student.
type RecordType string

const (
	RecordBirthCertificate RecordType = "birth_certificate"
	RecordVaccination      RecordType = "vaccination"
	RecordMedicalReport    RecordType = "medical_report"
	RecordPreviousSchool   RecordType = "previous_school"
	RecordIdentityProof    RecordType = "identity_proof"
	RecordOther            RecordType = "other"
)

// Record is a stored document. It carries at most one owner: an enrolled
// student or a pending onboarding request; with neither set the record is
// orphaned. On approval the onboarding link is cleared and the student
// link is set in the same transaction.
type Record struct {
	ID                  int64      `json:"id" db:"id"`
	SchoolID            int64      `json:"schoolId" db:"school_id"`
	StudentID           *int64     `json:"studentId,omitempty" db:"student_id"`
	OnboardingRequestID *int64     `json:"onboardingRequestId,omitempty" db:"onboarding_request_id"`
	RecordType          RecordType `json:"recordType" db:"record_type" example:"birth_certificate"`
	FileURL             string     `json:"fileUrl" db:"file_url"`
	Description         *string    `json:"description,omitempty" db:"description"`
	UploadedBy          string     `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
}
