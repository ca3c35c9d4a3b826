package dto

import (
	"github.com/skulz/skubackend/internal/app/models"
)

// CreateRouteRequest represents a new bus route
type CreateRouteRequest struct {
	RouteName     string  `json:"routeName" binding:"required"`
	StartLocation string  `json:"startLocation" binding:"required"`
	EndLocation   string  `json:"endLocation" binding:"required"`
	Stops         *string `json:"stops,omitempty"`
}

// RouteResponse represents a bus route
type RouteResponse struct {
	ID            int64   `json:"id"`
	RouteName     string  `json:"routeName"`
	StartLocation string  `json:"startLocation"`
	EndLocation   string  `json:"endLocation"`
	Stops         *string `json:"stops,omitempty"`
}

// CreateBusRequest represents a new bus assignment
type CreateBusRequest struct {
	BusNumber   string `json:"busNumber" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,gt=0"`
	RouteID     int64  `json:"routeId" binding:"required,min=1"`
	DriverName  string `json:"driverName" binding:"required"`
	DriverPhone string `json:"driverPhone" binding:"required"`
}

// BusResponse represents a bus and its route
type BusResponse struct {
	ID          int64          `json:"id"`
	BusNumber   string         `json:"busNumber"`
	Capacity    int            `json:"capacity"`
	DriverName  string         `json:"driverName"`
	DriverPhone string         `json:"driverPhone"`
	Route       *RouteResponse `json:"route,omitempty"`
}

// FromRoute converts a models.Route to a RouteResponse
func FromRoute(route *models.Route) RouteResponse {
	if route == nil {
		return RouteResponse{}
	}
	return RouteResponse{
		ID:            route.ID,
		RouteName:     route.RouteName,
		StartLocation: route.StartLocation,
		EndLocation:   route.EndLocation,
		Stops:         route.Stops,
	}
}

// FromBus converts a models.Bus to a BusResponse
func FromBus(bus *models.Bus) BusResponse {
	if bus == nil {
		return BusResponse{}
	}
	resp := BusResponse{
		ID:          bus.ID,
		BusNumber:   bus.BusNumber,
		Capacity:    bus.Capacity,
		DriverName:  bus.DriverName,
		DriverPhone: bus.DriverPhone,
	}
	if bus.Route != nil {
		r := FromRoute(bus.Route)
		resp.Route = &r
	}
	return resp
}
