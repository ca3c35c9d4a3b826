package services

import (
	"context"
	"strings"
	"time"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

// SchoolService handles school and subscription administration. Every
// method except Get is superuser only; controllers enforce the guard and
// the service re-checks it.
type SchoolService interface {
	Create(ctx context.Context, user *models.User, req *dto.CreateSchoolRequest) (*models.School, error)
	Get(ctx context.Context, id int64) (*models.School, error)
	GetAll(ctx context.Context, user *models.User) ([]*models.School, error)
	Update(ctx context.Context, user *models.User, id int64, req *dto.UpdateSchoolRequest) (*models.School, error)
	SetSubscription(ctx context.Context, user *models.User, schoolID int64, plan models.SubscriptionPlan, status models.SubscriptionStatus, maxStudents, maxUsers int) error
}

type schoolServiceImpl struct {
	schools *repositories.SchoolRepository
}

// NewSchoolService creates a new school service instance
func NewSchoolService(schools *repositories.SchoolRepository) SchoolService {
	return &schoolServiceImpl{schools: schools}
}

func requireSuperuser(user *models.User) error {
	if user == nil || !user.IsSuperuser {
		return apperrors.NewForbiddenError("school administration is superuser only")
	}
	return nil
}

// Create registers a new school tenant
func (s *schoolServiceImpl) Create(ctx context.Context, user *models.User, req *dto.CreateSchoolRequest) (*models.School, error) {
	if err := requireSuperuser(user); err != nil {
		return nil, err
	}

	school := &models.School{
		Name:          strings.TrimSpace(req.Name),
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:   req.PhoneNumber,
		Website:       req.Website,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		PrincipalName: req.PrincipalName,
		AdminEmail:    req.AdminEmail,
		IsActive:      true,
	}

	id, err := s.schools.Create(ctx, school)
	if err != nil {
		return nil, err
	}

	return s.schools.GetByID(ctx, id)
}

// Get retrieves one school with its subscription
func (s *schoolServiceImpl) Get(ctx context.Context, id int64) (*models.School, error) {
	return s.schools.GetByID(ctx, id)
}

// GetAll retrieves every school
func (s *schoolServiceImpl) GetAll(ctx context.Context, user *models.User) ([]*models.School, error) {
	if err := requireSuperuser(user); err != nil {
		return nil, err
	}
	return s.schools.GetAll(ctx)
}

// Update changes a school's profile
func (s *schoolServiceImpl) Update(ctx context.Context, user *models.User, id int64, req *dto.UpdateSchoolRequest) (*models.School, error) {
	if err := requireSuperuser(user); err != nil {
		return nil, err
	}

	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	school.Name = strings.TrimSpace(req.Name)
	school.Email = strings.ToLower(strings.TrimSpace(req.Email))
	school.PhoneNumber = req.PhoneNumber
	school.Website = req.Website
	school.StreetAddress = req.StreetAddress
	school.City = req.City
	school.State = req.State
	school.PostalCode = req.PostalCode
	school.Country = req.Country
	school.PrincipalName = req.PrincipalName
	school.AdminEmail = req.AdminEmail
	if req.IsActive != nil {
		school.IsActive = *req.IsActive
	}

	if err := s.schools.Update(ctx, school); err != nil {
		return nil, err
	}

	return s.schools.GetByID(ctx, id)
}

// SetSubscription creates or replaces a school's subscription
func (s *schoolServiceImpl) SetSubscription(ctx context.Context, user *models.User, schoolID int64, plan models.SubscriptionPlan, status models.SubscriptionStatus, maxStudents, maxUsers int) error {
	if err := requireSuperuser(user); err != nil {
		return err
	}

	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		return err
	}

	return s.schools.UpsertSubscription(ctx, &models.Subscription{
		SchoolID:    schoolID,
		Plan:        plan,
		Status:      status,
		MaxStudents: maxStudents,
		MaxUsers:    maxUsers,
		StartDate:   time.Now(),
	})
}
