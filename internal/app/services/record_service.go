package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/skulz/skubackend/internal/app/auth"
	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	"github.com/skulz/skubackend/internal/pkg/filestorage"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// RecordService manages document records. A record belongs to exactly one
// owner: an enrolled student, or a pending onboarding request whose
// records are relinked to the created student on approval.
type RecordService interface {
	Upload(ctx context.Context, user *models.User, schoolID int64, req *dto.CreateRecordRequest, file *multipart.FileHeader) (*models.Record, error)
	Get(ctx context.Context, schoolID, id int64) (*models.Record, error)
	ListByStudent(ctx context.Context, schoolID, studentID int64) ([]*models.Record, error)
	ListByOnboarding(ctx context.Context, schoolID, requestID int64) ([]*models.Record, error)
	Delete(ctx context.Context, user *models.User, schoolID, id int64) error
}

type recordServiceImpl struct {
	records    *repositories.RecordRepository
	students   *repositories.StudentRepository
	onboarding *repositories.OnboardingRepository
	storage    filestorage.FileStorage
}

// NewRecordService creates a new record service instance
func NewRecordService(
	records *repositories.RecordRepository,
	students *repositories.StudentRepository,
	onboarding *repositories.OnboardingRepository,
	storage filestorage.FileStorage,
) RecordService {
	return &recordServiceImpl{
		records:    records,
		students:   students,
		onboarding: onboarding,
		storage:    storage,
	}
}

// Upload stores the file and creates the record row. The request must name
// exactly one owner, and an onboarding owner must still be pending.
func (s *recordServiceImpl) Upload(ctx context.Context, user *models.User, schoolID int64, req *dto.CreateRecordRequest, file *multipart.FileHeader) (*models.Record, error) {
	if !auth.CanEditStudents(auth.RoleOf(user)) && !user.IsSuperuser {
		return nil, apperrors.NewForbiddenError("your role cannot upload records")
	}

	if (req.StudentID == nil) == (req.OnboardingRequestID == nil) {
		return nil, fmt.Errorf("%w: exactly one of studentId and onboardingRequestId must be set", apperrors.ErrValidationFailed)
	}

	if req.StudentID != nil {
		if _, err := s.students.GetByID(ctx, schoolID, *req.StudentID); err != nil {
			return nil, err
		}
	} else {
		request, err := s.onboarding.GetByID(ctx, schoolID, *req.OnboardingRequestID)
		if err != nil {
			return nil, err
		}
		if request.Status.IsTerminal() {
			return nil, apperrors.NewStateConflictError(string(request.Status))
		}
	}

	fileURL, err := s.storage.SaveFileWithPath(file, filestorage.SubdirStudentRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to store record file: %w", err)
	}

	rec := &models.Record{
		SchoolID:            schoolID,
		StudentID:           req.StudentID,
		OnboardingRequestID: req.OnboardingRequestID,
		RecordType:          req.RecordType,
		FileURL:             fileURL,
		Description:         req.Description,
		UploadedBy:          user.FirstName + " " + user.LastName,
	}

	id, err := s.records.Create(ctx, rec)
	if err != nil {
		if cleanupErr := s.storage.DeleteFile(fileURL); cleanupErr != nil {
			logger.Warn().Err(cleanupErr).Str("fileURL", fileURL).Msg("Failed to remove orphaned record file")
		}
		return nil, err
	}
	rec.ID = id

	return rec, nil
}

// Get retrieves one record
func (s *recordServiceImpl) Get(ctx context.Context, schoolID, id int64) (*models.Record, error) {
	return s.records.GetByID(ctx, schoolID, id)
}

// ListByStudent lists the records of an enrolled student
func (s *recordServiceImpl) ListByStudent(ctx context.Context, schoolID, studentID int64) ([]*models.Record, error) {
	if _, err := s.students.GetByID(ctx, schoolID, studentID); err != nil {
		return nil, err
	}
	return s.records.ListByStudent(ctx, schoolID, studentID)
}

// ListByOnboarding lists the records staged on an onboarding request
func (s *recordServiceImpl) ListByOnboarding(ctx context.Context, schoolID, requestID int64) ([]*models.Record, error) {
	if _, err := s.onboarding.GetByID(ctx, schoolID, requestID); err != nil {
		return nil, err
	}
	return s.records.ListByOnboarding(ctx, schoolID, requestID)
}

// Delete removes a record row and its stored file
func (s *recordServiceImpl) Delete(ctx context.Context, user *models.User, schoolID, id int64) error {
	if !auth.CanEditStudents(auth.RoleOf(user)) && !user.IsSuperuser {
		return apperrors.NewForbiddenError("your role cannot delete records")
	}

	rec, err := s.records.GetByID(ctx, schoolID, id)
	if err != nil {
		return err
	}

	if err := s.records.Delete(ctx, schoolID, id); err != nil {
		return err
	}

	if err := s.storage.DeleteFile(rec.FileURL); err != nil {
		logger.Warn().Err(err).Str("fileURL", rec.FileURL).Msg("Failed to remove record file")
	}

	return nil
}
