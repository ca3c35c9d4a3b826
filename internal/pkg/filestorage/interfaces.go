package filestorage

import (
	"mime/multipart"
)

// Well-known storage subdirectories. The core only moves references
// between owners; the blobs themselves never change location.
const (
	SubdirStudentPhotos    = "student_photos"
	SubdirOnboardingPhotos = "onboarding_photos"
	SubdirStudentRecords   = "student_records"
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile saves a file into the storage root and returns its URL
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// SaveFileWithPath saves a file into a subdirectory and returns its URL
	SaveFileWithPath(fileHeader *multipart.FileHeader, path string) (string, error)

	// DeleteFile removes a file from storage
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a given file URL
	GetFullPath(fileURL string) string
}
