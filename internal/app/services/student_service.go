package services

import (
	"context"
	"errors"
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
)

// StudentService manages enrolled students. Direct enrollment is reserved
// for admins; everyone else goes through the onboarding workflow.
type StudentService interface {
	Create(ctx context.Context, user *models.User, schoolID int64, req *dto.CreateStudentRequest) (*models.Student, error)
	Get(ctx context.Context, schoolID, id int64) (*models.Student, error)
	List(ctx context.Context, schoolID int64, filter repositories.StudentFilter) ([]*models.Student, int64, error)
	Update(ctx context.Context, user *models.User, schoolID, id int64, req *dto.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, user *models.User, schoolID, id int64) error
	UploadPhoto(ctx context.Context, user *models.User, schoolID, id int64, file *multipart.FileHeader) (string, error)
}

type studentServiceImpl struct {
	students  *repositories.StudentRepository
	parents   *repositories.ParentRepository
	subjects  *repositories.SubjectRepository
	grades    *repositories.GradeRepository
	buses     *repositories.BusRepository
	addresses *repositories.AddressRepository
	refs      ReferenceChecker
	storage   filestorage.FileStorage
}

// NewStudentService creates a new student service instance
func NewStudentService(
	students *repositories.StudentRepository,
	parents *repositories.ParentRepository,
	subjects *repositories.SubjectRepository,
	grades *repositories.GradeRepository,
	buses *repositories.BusRepository,
	addresses *repositories.AddressRepository,
	refs ReferenceChecker,
	storage filestorage.FileStorage,
) StudentService {
	return &studentServiceImpl{
		students:  students,
		parents:   parents,
		subjects:  subjects,
		grades:    grades,
		buses:     buses,
		addresses: addresses,
		refs:      refs,
		storage:   storage,
	}
}

// validateRefs rejects parents, subjects, grades and buses that live in a
// different school. A passing foreign key is not enough; every reference
// must resolve within the caller's school.
func (s *studentServiceImpl) validateRefs(ctx context.Context, schoolID int64, parentIDs, subjectIDs []int64, gradeID, busID *int64) error {
	ok, err := s.refs.ParentsExist(ctx, schoolID, parentIDs)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: one or more parents do not belong to this school", apperrors.ErrValidationFailed)
	}
	ok, err = s.refs.SubjectsExist(ctx, schoolID, subjectIDs)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: one or more subjects do not belong to this school", apperrors.ErrValidationFailed)
	}
	if gradeID != nil {
		ok, err = s.refs.GradeExists(ctx, schoolID, *gradeID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: grade does not belong to this school", apperrors.ErrValidationFailed)
		}
	}
	if busID != nil {
		ok, err = s.refs.BusExists(ctx, schoolID, *busID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: bus does not belong to this school", apperrors.ErrValidationFailed)
		}
	}
	return nil
}

// Create enrolls a student directly, bypassing onboarding. Admin only;
// other editing roles are expected to submit an onboarding request.
func (s *studentServiceImpl) Create(ctx context.Context, user *models.User, schoolID int64, req *dto.CreateStudentRequest) (*models.Student, error) {
	if auth.RoleOf(user) != models.RoleAdmin && !user.IsSuperuser {
		return nil, apperrors.NewForbiddenError("direct enrollment is admin only, submit an onboarding request instead")
	}
	if schoolID == 0 {
		return nil, apperrors.ErrNoActiveSchool
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: dateOfBirth must be YYYY-MM-DD", apperrors.ErrValidationFailed)
	}

	if err := s.validateRefs(ctx, schoolID, req.ParentIDs, req.SubjectIDs, req.GradeID, req.BusID); err != nil {
		return nil, err
	}

	student := &models.Student{
		SchoolID:       schoolID,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:    req.PhoneNumber,
		DateOfBirth:    dob,
		EnrollmentDate: time.Now(),
		GradeID:        req.GradeID,
		BusID:          req.BusID,
		IsActive:       true,
	}

	if req.Address != nil {
		addressID, err := s.addresses.Create(ctx, &models.Address{
			StreetAddress: req.Address.StreetAddress,
			City:          req.Address.City,
			State:         req.Address.State,
			PostalCode:    req.Address.PostalCode,
			Country:       req.Address.Country,
		})
		if err != nil {
			return nil, err
		}
		student.AddressID = &addressID
	}

	id, err := s.students.Create(ctx, student, req.ParentIDs, req.SubjectIDs)
	if err != nil {
		return nil, err
	}
	student.ID = id

	return s.Get(ctx, schoolID, id)
}

// Get returns a student with grade, bus, address, parents and subjects
// populated
func (s *studentServiceImpl) Get(ctx context.Context, schoolID, id int64) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if student.GradeID != nil {
		grade, err := s.grades.GetByID(ctx, schoolID, *student.GradeID)
		if err != nil && !errors.Is(err, apperrors.ErrGradeNotFound) {
			return nil, err
		}
		student.Grade = grade
	}
	if student.BusID != nil {
		bus, err := s.buses.GetByID(ctx, schoolID, *student.BusID)
		if err != nil && !errors.Is(err, apperrors.ErrBusNotFound) {
			return nil, err
		}
		student.Bus = bus
	}
	if student.AddressID != nil {
		address, err := s.addresses.GetByID(ctx, *student.AddressID)
		if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, err
		}
		student.Address = address
	}

	student.Parents, err = s.parents.GetByStudent(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	student.Subjects, err = s.subjects.GetByStudent(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	return student, nil
}

// List returns a filtered page of students
func (s *studentServiceImpl) List(ctx context.Context, schoolID int64, filter repositories.StudentFilter) ([]*models.Student, int64, error) {
	return s.students.List(ctx, schoolID, filter)
}

// Update rewrites a student's profile and relation sets
func (s *studentServiceImpl) Update(ctx context.Context, user *models.User, schoolID, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	if !auth.CanEditStudents(auth.RoleOf(user)) && !user.IsSuperuser {
		return nil, apperrors.NewForbiddenError("your role cannot edit students")
	}

	student, err := s.students.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: dateOfBirth must be YYYY-MM-DD", apperrors.ErrValidationFailed)
	}

	if err := s.validateRefs(ctx, schoolID, req.ParentIDs, req.SubjectIDs, req.GradeID, req.BusID); err != nil {
		return nil, err
	}

	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Email = strings.ToLower(strings.TrimSpace(req.Email))
	student.PhoneNumber = req.PhoneNumber
	student.DateOfBirth = dob
	student.GradeID = req.GradeID
	student.BusID = req.BusID
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	if req.Address != nil {
		address := &models.Address{
			StreetAddress: req.Address.StreetAddress,
			City:          req.Address.City,
			State:         req.Address.State,
			PostalCode:    req.Address.PostalCode,
			Country:       req.Address.Country,
		}
		if student.AddressID != nil {
			address.ID = *student.AddressID
			if err := s.addresses.Update(ctx, address); err != nil {
				return nil, err
			}
		} else {
			addressID, err := s.addresses.Create(ctx, address)
			if err != nil {
				return nil, err
			}
			student.AddressID = &addressID
		}
	}

	if err := s.students.Update(ctx, student, req.ParentIDs, req.SubjectIDs); err != nil {
		return nil, err
	}

	return s.Get(ctx, schoolID, id)
}

// Delete removes a student
func (s *studentServiceImpl) Delete(ctx context.Context, user *models.User, schoolID, id int64) error {
	if !auth.CanDeleteStudents(auth.RoleOf(user)) && !user.IsSuperuser {
		return apperrors.NewForbiddenError("your role cannot delete students")
	}
	return s.students.Delete(ctx, schoolID, id)
}

// UploadPhoto stores a profile photo and stamps its URL on the student
func (s *studentServiceImpl) UploadPhoto(ctx context.Context, user *models.User, schoolID, id int64, file *multipart.FileHeader) (string, error) {
	if !auth.CanEditStudents(auth.RoleOf(user)) && !user.IsSuperuser {
		return "", apperrors.NewForbiddenError("your role cannot edit students")
	}

	if _, err := s.students.GetByID(ctx, schoolID, id); err != nil {
		return "", err
	}

	photoURL, err := s.storage.SaveFileWithPath(file, filestorage.SubdirStudentPhotos)
	if err != nil {
		return "", fmt.Errorf("failed to store student photo: %w", err)
	}

	if err := s.students.SetPhotoURL(ctx, schoolID, id, &photoURL); err != nil {
		return "", err
	}

	return photoURL, nil
}
