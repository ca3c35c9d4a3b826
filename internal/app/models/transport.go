package models

import "time"

// Route is a bus route within a school. (school, route_name) is unique.
type Route struct {
	ID            int64     `json:"id" db:"id"`
	SchoolID      int64     `json:"schoolId" db:"school_id"`
	RouteName     string    `json:"routeName" db:"route_name"`
	StartLocation string    `json:"startLocation" db:"start_location"`
	EndLocation   string    `json:"endLocation" db:"end_location"`
	Stops         *string   `json:"stops,omitempty" db:"stops"` // comma-separated
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Bus is a vehicle assigned to a route. (school, bus_number) is unique.
// The route reference is protected: a route with buses cannot be deleted.
type Bus struct {
	ID          int64     `json:"id" db:"id"`
	SchoolID    int64     `json:"schoolId" db:"school_id"`
	BusNumber   string    `json:"busNumber" db:"bus_number"`
	Capacity    int       `json:"capacity" db:"capacity"`
	RouteID     int64     `json:"routeId" db:"route_id"`
	DriverName  string    `json:"driverName" db:"driver_name"`
	DriverPhone string    `json:"driverPhone" db:"driver_phone"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// Relation (populated when needed)
	Route *Route `json:"route,omitempty"`
}
