package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/skulz/skubackend/internal/app/auth"
	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	"github.com/skulz/skubackend/internal/pkg/filestorage"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// OnboardingStore is the persistence surface of the onboarding workflow.
// Approve and Reject are transactional in the implementation; the service
// layer only adds the gates in front of them.
type OnboardingStore interface {
	Create(ctx context.Context, req *models.OnboardingRequest) (int64, error)
	GetByID(ctx context.Context, schoolID, id int64) (*models.OnboardingRequest, error)
	List(ctx context.Context, schoolID int64, filter repositories.OnboardingFilter) ([]*models.OnboardingRequest, int64, error)
	Approve(ctx context.Context, schoolID, requestID, approverID int64) (*models.OnboardingRequest, *models.Student, error)
	Reject(ctx context.Context, schoolID, requestID, approverID int64, reason *string) (*models.OnboardingRequest, error)
	SetPhotoURL(ctx context.Context, schoolID, id int64, photoURL *string) error
}

// ReferenceChecker verifies that payload references point inside the school
type ReferenceChecker interface {
	ParentsExist(ctx context.Context, schoolID int64, ids []int64) (bool, error)
	SubjectsExist(ctx context.Context, schoolID int64, ids []int64) (bool, error)
	GradeExists(ctx context.Context, schoolID, gradeID int64) (bool, error)
	BusExists(ctx context.Context, schoolID, busID int64) (bool, error)
}

// OnboardingService runs the student onboarding workflow. All role and
// state gates precede any mutation.
type OnboardingService interface {
	Submit(ctx context.Context, user *models.User, schoolID int64, req *dto.SubmitOnboardingRequest) (*models.OnboardingRequest, error)
	Get(ctx context.Context, user *models.User, schoolID, id int64) (*models.OnboardingRequest, error)
	List(ctx context.Context, user *models.User, schoolID int64, filter repositories.OnboardingFilter) ([]*models.OnboardingRequest, int64, error)
	Approve(ctx context.Context, user *models.User, schoolID, id int64) (*models.OnboardingRequest, *models.Student, error)
	Reject(ctx context.Context, user *models.User, schoolID, id int64, reason string) (*models.OnboardingRequest, error)
	UploadPhoto(ctx context.Context, user *models.User, schoolID, id int64, file *multipart.FileHeader) (string, error)
}

type onboardingServiceImpl struct {
	store        OnboardingStore
	refs         ReferenceChecker
	storage      filestorage.FileStorage
	strictReason bool
}

// NewOnboardingService creates a new onboarding service instance.
// strictReason controls whether rejections must carry a reason.
func NewOnboardingService(store OnboardingStore, refs ReferenceChecker, storage filestorage.FileStorage, strictReason bool) OnboardingService {
	return &onboardingServiceImpl{
		store:        store,
		refs:         refs,
		storage:      storage,
		strictReason: strictReason,
	}
}

// Submit stages a prospective student. Only teachers and operators may
// submit; the superuser bypass deliberately does not apply here.
func (s *onboardingServiceImpl) Submit(ctx context.Context, user *models.User, schoolID int64, req *dto.SubmitOnboardingRequest) (*models.OnboardingRequest, error) {
	if !auth.CanInitiateOnboarding(auth.RoleOf(user)) {
		return nil, apperrors.NewForbiddenError("your role cannot submit onboarding requests")
	}
	if schoolID == 0 {
		return nil, fmt.Errorf("%w: submitting requires a bound school", apperrors.ErrNoActiveSchool)
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: dateOfBirth must be YYYY-MM-DD", apperrors.ErrValidationFailed)
	}

	ok, err := s.refs.ParentsExist(ctx, schoolID, req.ParentIDs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: one or more parents do not belong to this school", apperrors.ErrValidationFailed)
	}
	ok, err = s.refs.SubjectsExist(ctx, schoolID, req.SubjectIDs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: one or more subjects do not belong to this school", apperrors.ErrValidationFailed)
	}
	if req.GradeID != nil {
		ok, err = s.refs.GradeExists(ctx, schoolID, *req.GradeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: grade does not belong to this school", apperrors.ErrValidationFailed)
		}
	}
	if req.BusID != nil {
		ok, err = s.refs.BusExists(ctx, schoolID, *req.BusID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: bus does not belong to this school", apperrors.ErrValidationFailed)
		}
	}

	request := &models.OnboardingRequest{
		SchoolID:    schoolID,
		RequestedBy: user.ID,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: dob,
		GradeID:     req.GradeID,
		BusID:       req.BusID,
		Status:      models.OnboardingPending,
		ParentIDs:   req.ParentIDs,
		SubjectIDs:  req.SubjectIDs,
	}

	// The nested address rides along into the same transaction as the
	// request row, so a failed create leaves nothing behind.
	if req.Address != nil {
		request.Address = &models.Address{
			StreetAddress: req.Address.StreetAddress,
			City:          req.Address.City,
			State:         req.Address.State,
			PostalCode:    req.Address.PostalCode,
			Country:       req.Address.Country,
		}
	}

	id, err := s.store.Create(ctx, request)
	if err != nil {
		return nil, err
	}
	request.ID = id

	logger.Info().
		Int64("requestID", id).
		Int64("schoolID", schoolID).
		Int64("requestedBy", user.ID).
		Msg("Onboarding request submitted")

	return request, nil
}

// Get returns one request. Visible to its requester, to anyone who can
// approve, and to superusers.
func (s *onboardingServiceImpl) Get(ctx context.Context, user *models.User, schoolID, id int64) (*models.OnboardingRequest, error) {
	req, err := s.store.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if req.RequestedBy != user.ID && !auth.CanApproveOnboarding(auth.RoleOf(user)) && !user.IsSuperuser {
		return nil, apperrors.NewForbiddenError("you cannot view this onboarding request")
	}

	return req, nil
}

// List returns requests for the school. Approvers, school-wide viewers and
// superusers see everything; other callers are narrowed to their own.
func (s *onboardingServiceImpl) List(ctx context.Context, user *models.User, schoolID int64, filter repositories.OnboardingFilter) ([]*models.OnboardingRequest, int64, error) {
	role := auth.RoleOf(user)
	if !auth.CanApproveOnboarding(role) && !auth.CanViewAllData(role) && !user.IsSuperuser {
		filter.RequestedBy = &user.ID
	}
	return s.store.List(ctx, schoolID, filter)
}

// Approve converts a pending request into a student. The store does the
// atomic part; the losing side of a concurrent approval observes a state
// conflict carrying the current status.
func (s *onboardingServiceImpl) Approve(ctx context.Context, user *models.User, schoolID, id int64) (*models.OnboardingRequest, *models.Student, error) {
	if !auth.CanApproveOnboarding(auth.RoleOf(user)) && !user.IsSuperuser {
		return nil, nil, apperrors.NewForbiddenError("your role cannot approve onboarding requests")
	}
	return s.store.Approve(ctx, schoolID, id, user.ID)
}

// Reject marks a pending request rejected. Whether a reason is mandatory
// is a deployment choice; the strict default matches the review portal.
func (s *onboardingServiceImpl) Reject(ctx context.Context, user *models.User, schoolID, id int64, reason string) (*models.OnboardingRequest, error) {
	if !auth.CanApproveOnboarding(auth.RoleOf(user)) && !user.IsSuperuser {
		return nil, apperrors.NewForbiddenError("your role cannot reject onboarding requests")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		if s.strictReason {
			return nil, apperrors.ErrRejectionReasonMissing
		}
		return s.store.Reject(ctx, schoolID, id, user.ID, nil)
	}

	return s.store.Reject(ctx, schoolID, id, user.ID, &reason)
}

// UploadPhoto stores a candidate photo on a still-pending request. It is
// carried over to the created student on approval.
func (s *onboardingServiceImpl) UploadPhoto(ctx context.Context, user *models.User, schoolID, id int64, file *multipart.FileHeader) (string, error) {
	req, err := s.store.GetByID(ctx, schoolID, id)
	if err != nil {
		return "", err
	}

	if req.RequestedBy != user.ID && !auth.CanApproveOnboarding(auth.RoleOf(user)) && !user.IsSuperuser {
		return "", apperrors.NewForbiddenError("you cannot modify this onboarding request")
	}
	if req.Status.IsTerminal() {
		return "", apperrors.NewStateConflictError(string(req.Status))
	}

	photoURL, err := s.storage.SaveFileWithPath(file, filestorage.SubdirOnboardingPhotos)
	if err != nil {
		return "", fmt.Errorf("failed to store onboarding photo: %w", err)
	}

	if err := s.store.SetPhotoURL(ctx, schoolID, id, &photoURL); err != nil {
		return "", err
	}

	return photoURL, nil
}
