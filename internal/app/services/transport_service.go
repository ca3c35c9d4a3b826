package services

import (
	"context"
	"strings"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
)

// TransportService manages bus routes and the buses assigned to them
type TransportService interface {
	CreateRoute(ctx context.Context, schoolID int64, req *dto.CreateRouteRequest) (*models.Route, error)
	GetRoutes(ctx context.Context, schoolID int64) ([]*models.Route, error)
	UpdateRoute(ctx context.Context, schoolID, id int64, req *dto.CreateRouteRequest) (*models.Route, error)
	DeleteRoute(ctx context.Context, schoolID, id int64) error

	CreateBus(ctx context.Context, schoolID int64, req *dto.CreateBusRequest) (*models.Bus, error)
	GetBuses(ctx context.Context, schoolID int64) ([]*models.Bus, error)
	UpdateBus(ctx context.Context, schoolID, id int64, req *dto.CreateBusRequest) (*models.Bus, error)
	DeleteBus(ctx context.Context, schoolID, id int64) error
}

type transportServiceImpl struct {
	routes *repositories.RouteRepository
	buses  *repositories.BusRepository
}

// NewTransportService creates a new transport service instance
func NewTransportService(routes *repositories.RouteRepository, buses *repositories.BusRepository) TransportService {
	return &transportServiceImpl{routes: routes, buses: buses}
}

// CreateRoute adds a bus route to the school
func (s *transportServiceImpl) CreateRoute(ctx context.Context, schoolID int64, req *dto.CreateRouteRequest) (*models.Route, error) {
	route := &models.Route{
		SchoolID:      schoolID,
		RouteName:     strings.TrimSpace(req.RouteName),
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		Stops:         req.Stops,
	}

	id, err := s.routes.Create(ctx, route)
	if err != nil {
		return nil, err
	}

	return s.routes.GetByID(ctx, schoolID, id)
}

// GetRoutes lists the school's bus routes
func (s *transportServiceImpl) GetRoutes(ctx context.Context, schoolID int64) ([]*models.Route, error) {
	return s.routes.GetAll(ctx, schoolID)
}

// UpdateRoute rewrites a bus route
func (s *transportServiceImpl) UpdateRoute(ctx context.Context, schoolID, id int64, req *dto.CreateRouteRequest) (*models.Route, error) {
	route, err := s.routes.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	route.RouteName = strings.TrimSpace(req.RouteName)
	route.StartLocation = req.StartLocation
	route.EndLocation = req.EndLocation
	route.Stops = req.Stops

	if err := s.routes.Update(ctx, route); err != nil {
		return nil, err
	}

	return s.routes.GetByID(ctx, schoolID, id)
}

// DeleteRoute removes a route. Routes with buses still assigned are
// protected and the delete fails with ErrRouteInUse.
func (s *transportServiceImpl) DeleteRoute(ctx context.Context, schoolID, id int64) error {
	return s.routes.Delete(ctx, schoolID, id)
}

// CreateBus assigns a new bus to a route
func (s *transportServiceImpl) CreateBus(ctx context.Context, schoolID int64, req *dto.CreateBusRequest) (*models.Bus, error) {
	if _, err := s.routes.GetByID(ctx, schoolID, req.RouteID); err != nil {
		return nil, err
	}

	bus := &models.Bus{
		SchoolID:    schoolID,
		BusNumber:   strings.TrimSpace(req.BusNumber),
		Capacity:    req.Capacity,
		RouteID:     req.RouteID,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
	}

	id, err := s.buses.Create(ctx, bus)
	if err != nil {
		return nil, err
	}

	return s.buses.GetByID(ctx, schoolID, id)
}

// GetBuses lists the school's buses with their routes attached
func (s *transportServiceImpl) GetBuses(ctx context.Context, schoolID int64) ([]*models.Bus, error) {
	return s.buses.GetAll(ctx, schoolID)
}

// UpdateBus rewrites a bus assignment
func (s *transportServiceImpl) UpdateBus(ctx context.Context, schoolID, id int64, req *dto.CreateBusRequest) (*models.Bus, error) {
	if _, err := s.routes.GetByID(ctx, schoolID, req.RouteID); err != nil {
		return nil, err
	}

	bus, err := s.buses.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	bus.BusNumber = strings.TrimSpace(req.BusNumber)
	bus.Capacity = req.Capacity
	bus.RouteID = req.RouteID
	bus.DriverName = req.DriverName
	bus.DriverPhone = req.DriverPhone

	if err := s.buses.Update(ctx, bus); err != nil {
		return nil, err
	}

	return s.buses.GetByID(ctx, schoolID, id)
}

// DeleteBus removes a bus. Students on the bus keep their rows; the bus
// reference is cleared by the schema.
func (s *transportServiceImpl) DeleteBus(ctx context.Context, schoolID, id int64) error {
	return s.buses.Delete(ctx, schoolID, id)
}
