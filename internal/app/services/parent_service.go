package services

import (
	"context"
	"errors"
	"strings"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

// ParentService handles guardian management
type ParentService interface {
	Create(ctx context.Context, schoolID int64, req *dto.CreateParentRequest) (*models.Parent, error)
	Get(ctx context.Context, schoolID, id int64) (*models.Parent, error)
	GetAll(ctx context.Context, schoolID int64) ([]*models.Parent, error)
	Update(ctx context.Context, schoolID, id int64, req *dto.UpdateParentRequest) (*models.Parent, error)
	Delete(ctx context.Context, schoolID, id int64) error
}

type parentServiceImpl struct {
	parents   *repositories.ParentRepository
	addresses *repositories.AddressRepository
}

// NewParentService creates a new parent service instance
func NewParentService(parents *repositories.ParentRepository, addresses *repositories.AddressRepository) ParentService {
	return &parentServiceImpl{parents: parents, addresses: addresses}
}

// Create registers a new guardian in the school
func (s *parentServiceImpl) Create(ctx context.Context, schoolID int64, req *dto.CreateParentRequest) (*models.Parent, error) {
	parent := &models.Parent{
		SchoolID:    schoolID,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		ParentType:  req.ParentType,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber: req.PhoneNumber,
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
		parent.AddressID = &addressID
	}

	id, err := s.parents.Create(ctx, parent)
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, schoolID, id)
}

// Get retrieves one guardian with the address populated
func (s *parentServiceImpl) Get(ctx context.Context, schoolID, id int64) (*models.Parent, error) {
	parent, err := s.parents.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if parent.AddressID != nil {
		address, err := s.addresses.GetByID(ctx, *parent.AddressID)
		if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, err
		}
		parent.Address = address
	}

	return parent, nil
}

// GetAll retrieves every guardian of the school
func (s *parentServiceImpl) GetAll(ctx context.Context, schoolID int64) ([]*models.Parent, error) {
	return s.parents.GetAll(ctx, schoolID)
}

// Update changes a guardian's profile
func (s *parentServiceImpl) Update(ctx context.Context, schoolID, id int64, req *dto.UpdateParentRequest) (*models.Parent, error) {
	parent, err := s.parents.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	parent.FirstName = strings.TrimSpace(req.FirstName)
	parent.LastName = strings.TrimSpace(req.LastName)
	parent.ParentType = req.ParentType
	parent.Email = strings.ToLower(strings.TrimSpace(req.Email))
	parent.PhoneNumber = req.PhoneNumber

	if req.Address != nil {
		address := &models.Address{
			StreetAddress: req.Address.StreetAddress,
			City:          req.Address.City,
			State:         req.Address.State,
			PostalCode:    req.Address.PostalCode,
			Country:       req.Address.Country,
		}
		if parent.AddressID != nil {
			address.ID = *parent.AddressID
			if err := s.addresses.Update(ctx, address); err != nil {
				return nil, err
			}
		} else {
			addressID, err := s.addresses.Create(ctx, address)
			if err != nil {
				return nil, err
			}
			parent.AddressID = &addressID
		}
	}

	if err := s.parents.Update(ctx, parent); err != nil {
		return nil, err
	}

	return s.Get(ctx, schoolID, id)
}

// Delete removes a guardian and their student links
func (s *parentServiceImpl) Delete(ctx context.Context, schoolID, id int64) error {
	return s.parents.Delete(ctx, schoolID, id)
}
